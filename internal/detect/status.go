package detect

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/appengine-ltd/warpctx/internal/menu"
	"github.com/appengine-ltd/warpctx/internal/scoreboard"
)

// Status is a snapshot of the engine state for the debug overlay and logs.
type Status struct {
	Session           uuid.UUID
	Connected         bool
	BrandChecked      bool
	InMode            bool
	MembershipSettled bool
	ModeCheckSkipped  bool
	Menu              menu.Identity
	FancyMenuOpen     bool
	LateWinter        bool
	Season            scoreboard.Season
	QueuedEvents      int
}

func (e *Engine) Status() Status {
	return Status{
		Session:           e.id,
		Connected:         e.tracker.Connected(),
		BrandChecked:      e.tracker.Checked(),
		InMode:            e.InTargetMode(),
		MembershipSettled: e.membership.Settled(),
		ModeCheckSkipped:  e.membership.Overridden(),
		Menu:              e.current,
		FancyMenuOpen:     e.fancyOpen,
		LateWinter:        e.lateWinter,
		Season:            e.season.Season(),
		QueuedEvents:      e.queue.Len(),
	}
}

// Lines renders the status one fact per line.
func (s Status) Lines() []string {
	return []string{
		"Session: " + s.Session.String(),
		fmt.Sprintf("Connected: %v (brand checked: %v)", s.Connected, s.BrandChecked),
		fmt.Sprintf("In mode: %v (settled: %v, skipped: %v)", s.InMode, s.MembershipSettled, s.ModeCheckSkipped),
		fmt.Sprintf("Menu: %s (fancy menu open: %v)", s.Menu, s.FancyMenuOpen),
		fmt.Sprintf("Season: %s (late winter: %v)", s.Season, s.LateWinter),
		fmt.Sprintf("Queued events: %d", s.QueuedEvents),
	}
}
