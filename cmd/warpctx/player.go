package main

import (
	"fmt"
	"io"
	"time"

	"github.com/appengine-ltd/warpctx/internal/clock"
	"github.com/appengine-ltd/warpctx/internal/detect"
)

// player feeds recorded events into the engine as wall time passes, so the
// overlay can show a session unfolding at its recorded pace.
type player struct {
	events []detect.Event
	next   int
	first  time.Time
	speed  float64
	clk    *clock.Manual
	engine *detect.Engine
	out    io.Writer
}

func newPlayer(events []detect.Event, engine *detect.Engine, clk *clock.Manual, speed float64, out io.Writer) *player {
	if speed <= 0 {
		speed = 1
	}
	p := &player{events: events, speed: speed, clk: clk, engine: engine, out: out}
	if len(events) > 0 {
		p.first = events[0].At
	}
	return p
}

// advance handles every event recorded within elapsed wall time of the first
// one and returns how many were handled.
func (p *player) advance(elapsed time.Duration) int {
	limit := p.first.Add(time.Duration(float64(elapsed) * p.speed))
	n := 0
	for p.next < len(p.events) {
		ev := p.events[p.next]
		if ev.At.After(limit) {
			break
		}
		p.handle(ev)
		p.next++
		n++
	}
	return n
}

func (p *player) done() bool { return p.next >= len(p.events) }

func (p *player) handle(ev detect.Event) {
	if p.clk != nil {
		p.clk.Set(ev.At)
	}
	printStep(p.out, ev, p.engine.Handle(ev))
}

func printStep(out io.Writer, ev detect.Event, actions []detect.Action) {
	if out == nil {
		return
	}
	for _, a := range actions {
		fmt.Fprintf(out, "%s\t%s\t%s\n", ev.At.Format("15:04:05.000"), ev.Kind, a)
	}
}
