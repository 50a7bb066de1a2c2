//go:build cgo

package overlay

import (
	"context"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	colorBG   = rl.NewColor(8, 12, 18, 235)
	colorText = rl.NewColor(175, 245, 195, 255)
	colorDim  = rl.NewColor(108, 165, 124, 255)
)

func Available() bool { return true }

// Run opens the window and redraws lines every frame until the window is
// closed or ctx is done. tick runs before each frame on the window's
// goroutine and may be nil.
func Run(ctx context.Context, cfg Config, tick func(), lines func() []string) error {
	cfg = cfg.withDefaults()
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(cfg.Width, cfg.Height, cfg.Title)
	rl.SetExitKey(0)
	rl.SetTargetFPS(cfg.FPS)
	defer rl.CloseWindow()

	for !rl.WindowShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		if tick != nil {
			tick()
		}
		cfg.Width = int32(rl.GetScreenWidth())
		cfg.Height = int32(rl.GetScreenHeight())

		rl.BeginDrawing()
		rl.ClearBackground(colorBG)
		for i, l := range Layout(lines(), cfg) {
			color := colorText
			if i == 0 {
				color = colorDim
			}
			rl.DrawText(l.Text, l.X, l.Y, cfg.FontSize, color)
		}
		rl.EndDrawing()
	}
	return nil
}
