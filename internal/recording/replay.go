package recording

import (
	"errors"
	"io"

	"github.com/appengine-ltd/warpctx/internal/clock"
	"github.com/appengine-ltd/warpctx/internal/detect"
)

// Step is one replayed event and the actions it produced.
type Step struct {
	Event   detect.Event
	Actions []detect.Action
}

// Replay feeds every event from r into e in order. clk, when non-nil, is
// moved to each event's time first so settle windows behave as recorded.
// visit is called after each event and may be nil.
func Replay(r *Reader, e *detect.Engine, clk *clock.Manual, visit func(Step)) (int, error) {
	n := 0
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if clk != nil {
			clk.Set(ev.At)
		}
		actions := e.Handle(ev)
		n++
		if visit != nil {
			visit(Step{Event: ev, Actions: actions})
		}
	}
}
