// Package detect is the detection engine. It consumes host events in order
// on one goroutine, keeps session, membership and menu state, and turns what
// it learns into actions for the rendering collaborator.
package detect

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/appengine-ltd/warpctx/internal/clock"
	"github.com/appengine-ltd/warpctx/internal/command"
	"github.com/appengine-ltd/warpctx/internal/constants"
	"github.com/appengine-ltd/warpctx/internal/inventory"
	"github.com/appengine-ltd/warpctx/internal/menu"
	"github.com/appengine-ltd/warpctx/internal/metrics"
	"github.com/appengine-ltd/warpctx/internal/scoreboard"
	"github.com/appengine-ltd/warpctx/internal/session"
	"github.com/appengine-ltd/warpctx/internal/settings"
)

type Options struct {
	// Constants defaults to the embedded document.
	Constants *constants.Constants
	Settings  settings.Settings
	Clock     clock.Clock
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	// Dispatcher receives actions produced while running from the queue.
	Dispatcher Dispatcher
	QueueSize  int
}

// Engine owns all detection state. Handle, Run and Drain must be called from
// a single goroutine; host adapters on other goroutines use Queue.
type Engine struct {
	id         uuid.UUID
	logger     *slog.Logger
	clock      clock.Clock
	metrics    *metrics.Metrics
	dispatcher Dispatcher
	queue      *Queue

	consts   *constants.Constants
	settings settings.Settings
	commands *command.Registry

	tracker    *session.Tracker
	membership *session.MembershipGate
	classifier *menu.Classifier
	late       *scoreboard.LateScan
	season     *scoreboard.SeasonCheck
	board      scoreboard.Board

	open       *openMenu
	current    menu.Identity
	fancyOpen  bool
	lateWinter bool

	pending []Action
}

// openMenu is the state for one container open.
type openMenu struct {
	snap     inventory.Snapshot
	notifier inventory.Notifier
	gate     *inventory.SettleGate
	guess    menu.Identity
}

func New(opts Options) *Engine {
	if opts.Constants == nil {
		opts.Constants = constants.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	id := uuid.New()
	logger := opts.Logger.With("session", id.String())
	e := &Engine{
		id:         id,
		logger:     logger,
		clock:      opts.Clock,
		metrics:    opts.Metrics,
		dispatcher: opts.Dispatcher,
		queue:      NewQueue(opts.QueueSize, logger, opts.Metrics),
		tracker:    session.NewTracker(opts.Constants.BrandPrefix, logger),
		membership: session.NewMembershipGate(opts.Clock, opts.Settings.SettleWindow(), logger),
		season:     scoreboard.NewSeasonCheck(logger),
	}
	e.applyConstants(opts.Constants)
	e.applySettings(opts.Settings)
	return e
}

// Queue is where host adapters post events.
func (e *Engine) Queue() *Queue { return e.queue }

func (e *Engine) SessionID() uuid.UUID { return e.id }

// Run handles queued events until ctx is cancelled, passing actions to the
// dispatcher.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Debug("Detection engine started")
	for {
		select {
		case <-ctx.Done():
			e.logger.Debug("Detection engine stopping")
			return nil
		case <-e.queue.Ready():
			e.Drain()
		}
	}
}

// Drain handles every queued event without blocking, for hosts that tick
// the engine from their own loop. It returns the actions produced.
func (e *Engine) Drain() []Action {
	var all []Action
	for {
		ev, ok := e.queue.Dequeue()
		if !ok {
			return all
		}
		actions := e.Handle(ev)
		e.dispatch(actions)
		all = append(all, actions...)
	}
}

func (e *Engine) dispatch(actions []Action) {
	if e.dispatcher == nil {
		return
	}
	for _, a := range actions {
		e.dispatcher.Dispatch(a)
	}
}

// Handle applies one event and returns the resulting actions.
func (e *Engine) Handle(ev Event) []Action {
	e.pending = nil

	switch ev.Kind {
	case KindConnected:
		e.tracker.OnConnect(ev.Remote, ev.Transport)
	case KindDisconnected:
		e.tracker.OnDisconnect()
		e.membership.Reset()
		e.closeMenu()
		e.fancyOpen = false
		e.board = nil
	case KindChatReceived:
		e.onChatReceived(ev)
	case KindChatSent:
		e.onChatSent(ev.Line)
	case KindWorldSwitch:
		e.membership.OnWorldSwitch()
		e.closeMenu()
		e.fancyOpen = false
	case KindSidebarDisplayed:
		e.onSidebarDisplayed(ev)
	case KindSidebarUpdated:
		if b := ev.board(); b != nil {
			e.board = b
		}
	case KindMenuOpened:
		e.onMenuOpened(ev)
	case KindSlotChanged:
		e.onSlotChanged(ev)
	case KindMenuClosed:
		e.closeMenu()
		e.fancyOpen = false
	case KindWarpMenuKey:
		if e.settings.WarpMenuEnabled && e.InTargetMode() {
			e.openFastTravel(false)
		}
	case KindWarpMenuClosed:
		e.fancyOpen = false
	case KindConstantsReloaded:
		if ev.Constants != nil {
			e.applyConstants(ev.Constants)
		}
	case KindSettingsChanged:
		if ev.Settings != nil {
			e.applySettings(*ev.Settings)
		}
	default:
		e.logger.Warn("Ignoring unknown event", "kind", ev.Kind)
	}

	e.metrics.SetInMode(e.InTargetMode())
	out := e.pending
	e.pending = nil
	return out
}

func (e *Engine) emit(a Action) {
	e.logger.Debug("Emitting action", "action", a.String())
	e.metrics.Action(a.Kind.String())
	e.pending = append(e.pending, a)
}

func (e *Engine) onChatReceived(ev Event) {
	if e.tracker.OnChatLine(ev.Line, ev.brandSource()) {
		e.metrics.BrandChecked(e.tracker.Connected())
	}

	if e.consts.JoinMessage != "" && strings.HasPrefix(ev.Line, e.consts.JoinMessage) {
		e.logger.Debug("Join message received", "connected", e.tracker.Connected())
	}

	if !e.fancyOpen {
		return
	}
	if e.consts.WarpMessages.Succeeded(ev.Line) {
		e.fancyOpen = false
		e.emit(Action{Kind: ActionCloseMenu, Menu: e.current})
		return
	}
	if key, ok := e.consts.WarpMessages.Failed(ev.Line); ok {
		e.emit(Action{Kind: ActionWarpFailed, Menu: e.current, FailKey: key})
	}
}

func (e *Engine) onChatSent(line string) {
	if !e.settings.WarpMenuEnabled || !e.InTargetMode() {
		return
	}
	sent, ok := e.commands.Lookup(line)
	if !ok {
		if s, ok := e.commands.Suggest(line); ok {
			e.logger.Debug("Sent command resembles a warp command", "sent", line, "closest", s.Variant.Command)
		}
		return
	}

	e.logger.Debug("Caught sent command", "command", line, "type", sent.Variant.Type)
	switch {
	case sent.OpensMenu():
		e.openFastTravel(e.settings.AddWarpCommandToHistory)
	case e.settings.SuggestMenuOnWarpCommand:
		e.emit(Action{Kind: ActionRemindUseMenu})
	}
}

func (e *Engine) onSidebarDisplayed(ev Event) {
	if b := ev.board(); b != nil {
		e.board = b
	}
	if ev.DisplaySlot != scoreboard.SidebarSlot || !e.tracker.Connected() {
		return
	}
	if e.membership.OnSignal(ev.Objective == e.consts.ObjectiveName) {
		e.metrics.MembershipSignal(e.membership.Confirmed(), e.membership.Settled())
	}
}

func (e *Engine) onMenuOpened(ev Event) {
	e.closeMenu()
	if !e.InTargetMode() {
		return
	}

	snap := ev.Inventory
	if snap == nil {
		snap = inventory.NewSlots(ev.Title, ev.Size)
	}
	guess := e.classifier.Classify(snap, true)
	e.metrics.Classified(guess.String(), true)

	om := &openMenu{snap: snap, guess: guess}
	e.open = om
	e.current = guess
	if guess == menu.None {
		return
	}

	watermark := e.consts.Rules.Watermark(guess)
	if watermark < 0 {
		e.identify()
		return
	}
	om.gate = inventory.NewSettleGate(watermark, func() {
		e.metrics.Settled()
		e.identify()
	})
	om.gate.Attach(&om.notifier, snap)
	e.logger.Debug("Waiting for menu items", "menu", guess, "watermark", watermark)
}

func (e *Engine) onSlotChanged(ev Event) {
	om := e.open
	if om == nil {
		return
	}
	if ev.Item != nil {
		if w, ok := om.snap.(inventory.Writer); ok {
			w.SetSlot(ev.Slot, *ev.Item)
		}
	}
	om.notifier.Notify()
}

// identify classifies the open menu with item rules and decides what to show.
func (e *Engine) identify() {
	om := e.open
	if om == nil {
		return
	}
	id := e.classifier.Classify(om.snap, false)
	e.metrics.Classified(id.String(), false)
	e.current = id
	e.logger.Debug("Menu identified", "menu", id, "title_guess", om.guess)

	switch id {
	case menu.FastTravel:
		if e.settings.WarpMenuEnabled {
			e.showFancyMenu(id)
		} else {
			e.emit(Action{Kind: ActionShowConfigButton, Menu: id})
		}
	case menu.Porhtal:
		e.showFancyMenu(id)
	}
}

func (e *Engine) showFancyMenu(id menu.Identity) {
	e.refreshSeason()
	e.fancyOpen = true
	e.emit(Action{
		Kind:                  ActionShowFancyMenu,
		Menu:                  id,
		ShowJerryIsland:       e.ShowJerryIsland(),
		ShowRegularMenuButton: e.settings.ShowRegularWarpMenuButton,
	})
}

func (e *Engine) openFastTravel(addToHistory bool) {
	e.refreshSeason()
	e.fancyOpen = true
	e.emit(Action{
		Kind:                  ActionOpenFastTravel,
		Menu:                  menu.FastTravel,
		ShowJerryIsland:       e.ShowJerryIsland(),
		ShowRegularMenuButton: e.settings.ShowRegularWarpMenuButton,
		AddToHistory:          addToHistory,
	})
}

// refreshSeason rescans the sidebar. Outside the target mode the sidebar
// belongs to another game, so the scan is skipped when the mode check is.
func (e *Engine) refreshSeason() {
	if e.settings.ShouldSkipModeCheck() {
		return
	}
	late, ok := e.late.Refresh(e.board)
	if !ok {
		e.metrics.ScanFailed("late_winter")
	}
	e.lateWinter = late
	if _, ok := e.season.Refresh(e.board); !ok {
		e.metrics.ScanFailed("season")
	}
}

func (e *Engine) closeMenu() {
	if e.open != nil && e.open.gate != nil {
		e.open.gate.Cancel()
	}
	e.open = nil
	e.current = menu.None
}

func (e *Engine) applyConstants(c *constants.Constants) {
	e.consts = c
	e.commands = c.Commands
	e.classifier = menu.NewClassifier(c.Rules, e.logger)
	e.late = scoreboard.NewLateScan(c.LateMarker, c.ObjectiveName, e.logger)
	e.tracker.SetPrefix(c.BrandPrefix)
}

func (e *Engine) applySettings(s settings.Settings) {
	e.settings = s
	e.membership.SetOverride(s.ShouldSkipModeCheck())
	e.membership.SetWindow(s.SettleWindow())
}

func (e *Engine) ConnectedToTargetServer() bool { return e.tracker.Connected() }

// InTargetMode reports whether the player is on the target server and in
// the target game mode, or the debug override is on.
func (e *Engine) InTargetMode() bool {
	return e.membership.Overridden() || (e.tracker.Connected() && e.membership.Confirmed())
}

func (e *Engine) CurrentMenu() menu.Identity { return e.current }

// FancyMenuOpen reports whether the custom warp menu is currently shown.
func (e *Engine) FancyMenuOpen() bool { return e.fancyOpen }

func (e *Engine) LateWinter() bool { return e.lateWinter }

func (e *Engine) Season() scoreboard.Season { return e.season.Season() }

// ShowJerryIsland reports whether the seasonal island, open only in late
// winter, should be drawn.
func (e *Engine) ShowJerryIsland() bool {
	if e.settings.ShouldAlwaysShowJerryIsland() {
		return true
	}
	if !e.settings.ShowJerryIsland {
		return false
	}
	return e.lateWinter || e.season.Season().LateWinter()
}

func (e *Engine) Settings() settings.Settings { return e.settings }
