package session

import (
	"log/slog"
	"time"

	"github.com/appengine-ltd/warpctx/internal/clock"
)

// DefaultSettleWindow is how long after a world switch sidebar signals may
// still change the membership answer.
const DefaultSettleWindow = 3 * time.Second

// DefaultObjectiveName is the sidebar objective shown only inside the target mode.
const DefaultObjectiveName = "SBScoreboard"

// MembershipState is a copy of the gate's fields.
type MembershipState struct {
	Confirmed bool
	Settled   bool
	Deadline  time.Time
	Override  bool
}

// MembershipGate decides whether the player is in the target game mode.
//
// Sidebar objectives can be missing for a moment while a world loads, so the
// answer follows the latest signal until the settle window after the last
// world switch has passed. The first signal after that freezes it until the
// next world switch. If no signal arrives the gate never settles and stays
// unconfirmed.
type MembershipGate struct {
	clock  clock.Clock
	window time.Duration
	logger *slog.Logger

	confirmed bool
	settled   bool
	deadline  time.Time
	override  bool
}

func NewMembershipGate(clk clock.Clock, window time.Duration, logger *slog.Logger) *MembershipGate {
	if clk == nil {
		clk = clock.Real()
	}
	if window <= 0 {
		window = DefaultSettleWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MembershipGate{
		clock:    clk,
		window:   window,
		logger:   logger,
		deadline: clk.Now().Add(window),
	}
}

// SetOverride forces Active to report true. Used by the debug setting that
// skips the mode check.
func (g *MembershipGate) SetOverride(on bool) {
	g.override = on
}

func (g *MembershipGate) Overridden() bool { return g.override }

// SetWindow changes the settle window from the next world switch on.
func (g *MembershipGate) SetWindow(window time.Duration) {
	if window <= 0 {
		window = DefaultSettleWindow
	}
	g.window = window
}

func (g *MembershipGate) Active() bool {
	return g.override || g.confirmed
}

// OnWorldSwitch clears the answer and opens a new settle window.
func (g *MembershipGate) OnWorldSwitch() {
	g.confirmed = false
	g.settled = false
	g.deadline = g.clock.Now().Add(g.window)
}

// Reset forgets the answer when the connection ends. The next connection
// starts unconfirmed with a fresh settle window.
func (g *MembershipGate) Reset() {
	if g.confirmed {
		g.logger.Info("Player left target mode.")
	}
	g.OnWorldSwitch()
}

// OnSignal records whether the mode's sidebar objective is present. Calls
// after the gate settled are ignored. It reports whether the call was applied.
func (g *MembershipGate) OnSignal(objectivePresent bool) bool {
	if g.settled {
		return false
	}

	if objectivePresent && !g.confirmed {
		g.logger.Info("Player joined target mode.")
	} else if !objectivePresent && g.confirmed {
		g.logger.Info("Player left target mode.")
	}
	g.confirmed = objectivePresent

	if g.clock.Now().After(g.deadline) {
		g.settled = true
		g.logger.Debug("Membership settled", "confirmed", g.confirmed)
	}
	return true
}

func (g *MembershipGate) Confirmed() bool { return g.confirmed }

func (g *MembershipGate) Settled() bool { return g.settled }

func (g *MembershipGate) Window() time.Duration { return g.window }

func (g *MembershipGate) State() MembershipState {
	return MembershipState{
		Confirmed: g.confirmed,
		Settled:   g.settled,
		Deadline:  g.deadline,
		Override:  g.override,
	}
}
