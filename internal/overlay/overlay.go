// Package overlay draws the engine status in a small window while replaying
// a recording. It needs raylib and therefore a cgo build.
package overlay

import "errors"

var ErrUnavailable = errors.New("debug overlay requires a cgo build with raylib")

type Config struct {
	Title    string
	Width    int32
	Height   int32
	FPS      int32
	FontSize int32
}

func (c Config) withDefaults() Config {
	if c.Title == "" {
		c.Title = "warpctx"
	}
	if c.Width <= 0 {
		c.Width = 640
	}
	if c.Height <= 0 {
		c.Height = 220
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.FontSize <= 0 {
		c.FontSize = 20
	}
	return c
}

// Line is one positioned row of text.
type Line struct {
	Text string
	X, Y int32
}

const margin = 12

// Layout stacks lines top to bottom and drops the ones that do not fit.
func Layout(lines []string, cfg Config) []Line {
	cfg = cfg.withDefaults()
	step := cfg.FontSize + cfg.FontSize/3
	out := make([]Line, 0, len(lines))
	y := int32(margin)
	for _, text := range lines {
		if y+cfg.FontSize > cfg.Height-margin {
			break
		}
		out = append(out, Line{Text: text, X: margin, Y: y})
		y += step
	}
	return out
}
