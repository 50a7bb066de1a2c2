package detect

import (
	"fmt"

	"github.com/appengine-ltd/warpctx/internal/menu"
)

// ActionKind is what the rendering collaborator should do.
type ActionKind int

const (
	// ActionShowFancyMenu draws the custom warp menu over the open container.
	ActionShowFancyMenu ActionKind = iota + 1
	// ActionShowConfigButton adds a settings button to the regular menu when
	// the custom menu is disabled.
	ActionShowConfigButton
	// ActionOpenFastTravel opens the custom warp menu without a container,
	// after a bare warp command or the hotkey.
	ActionOpenFastTravel
	ActionRemindUseMenu
	ActionCloseMenu
	ActionWarpFailed
)

var actionNames = map[ActionKind]string{
	ActionShowFancyMenu:    "show_fancy_menu",
	ActionShowConfigButton: "show_config_button",
	ActionOpenFastTravel:   "open_fast_travel",
	ActionRemindUseMenu:    "remind_use_menu",
	ActionCloseMenu:        "close_menu",
	ActionWarpFailed:       "warp_failed",
}

func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// Action is a decision for a collaborator. The engine never renders or sends
// commands itself.
type Action struct {
	Kind ActionKind
	Menu menu.Identity
	// ShowJerryIsland tells the menu whether to draw the seasonal island.
	ShowJerryIsland bool
	// ShowRegularMenuButton adds a button that switches back to the server's
	// own warp menu.
	ShowRegularMenuButton bool
	// AddToHistory asks for "/warp" to be added to the chat history.
	AddToHistory bool
	// FailKey is the translation key of the warp failure message.
	FailKey string
}

func (a Action) String() string {
	switch a.Kind {
	case ActionShowFancyMenu, ActionOpenFastTravel:
		return fmt.Sprintf("%s menu=%s jerry=%v regular_button=%v", a.Kind, a.Menu, a.ShowJerryIsland, a.ShowRegularMenuButton)
	case ActionWarpFailed:
		return fmt.Sprintf("%s key=%s", a.Kind, a.FailKey)
	default:
		return a.Kind.String()
	}
}

// Dispatcher receives actions on the engine goroutine.
type Dispatcher interface {
	Dispatch(Action)
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(Action)

func (f DispatchFunc) Dispatch(a Action) { f(a) }
