package detect

import (
	"fmt"
	"strings"
	"time"

	"github.com/appengine-ltd/warpctx/internal/constants"
	"github.com/appengine-ltd/warpctx/internal/inventory"
	"github.com/appengine-ltd/warpctx/internal/scoreboard"
	"github.com/appengine-ltd/warpctx/internal/session"
	"github.com/appengine-ltd/warpctx/internal/settings"
)

// Kind identifies a host event.
type Kind int

const (
	KindConnected Kind = iota + 1
	KindDisconnected
	KindChatReceived
	KindChatSent
	KindWorldSwitch
	KindSidebarDisplayed
	KindSidebarUpdated
	KindMenuOpened
	KindSlotChanged
	KindMenuClosed
	KindWarpMenuKey
	KindWarpMenuClosed
	KindConstantsReloaded
	KindSettingsChanged
)

var kindNames = map[Kind]string{
	KindConnected:         "connected",
	KindDisconnected:      "disconnected",
	KindChatReceived:      "chat_received",
	KindChatSent:          "chat_sent",
	KindWorldSwitch:       "world_switch",
	KindSidebarDisplayed:  "sidebar_displayed",
	KindSidebarUpdated:    "sidebar_updated",
	KindMenuOpened:        "menu_opened",
	KindSlotChanged:       "slot_changed",
	KindMenuClosed:        "menu_closed",
	KindWarpMenuKey:       "warp_menu_key",
	KindWarpMenuClosed:    "warp_menu_closed",
	KindConstantsReloaded: "constants_reloaded",
	KindSettingsChanged:   "settings_changed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("invalid event kind %d", int(k))
	}
	return []byte(name), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for kind, name := range kindNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", string(text))
}

// Event is one notification from the host. Only the fields relevant to Kind
// are set. Fields tagged "-" hold live host objects and are not recorded;
// the recorded fields stand in for them during replay.
type Event struct {
	Kind Kind      `cbor:"kind"`
	At   time.Time `cbor:"-"`

	// Connected.
	Remote    bool              `cbor:"remote,omitempty"`
	Transport session.Transport `cbor:"transport,omitempty"`

	// ChatReceived and ChatSent.
	Line   string              `cbor:"line,omitempty"`
	Player session.BrandSource `cbor:"-"`
	Brand  *string             `cbor:"brand,omitempty"`

	// SidebarDisplayed and SidebarUpdated.
	DisplaySlot int                     `cbor:"display_slot,omitempty"`
	Objective   string                  `cbor:"objective,omitempty"`
	Board       scoreboard.Board        `cbor:"-"`
	Sidebar     *scoreboard.StaticBoard `cbor:"sidebar,omitempty"`

	// MenuOpened and SlotChanged.
	Title     string             `cbor:"title,omitempty"`
	Size      int                `cbor:"size,omitempty"`
	Inventory inventory.Snapshot `cbor:"-"`
	Slot      int                `cbor:"slot,omitempty"`
	Item      *inventory.Item    `cbor:"item,omitempty"`

	// ConstantsReloaded and SettingsChanged.
	Constants *constants.Constants `cbor:"-"`
	Settings  *settings.Settings   `cbor:"settings,omitempty"`
}

type recordedBrand string

func (b recordedBrand) ServerBrand() (string, bool) {
	return string(b), b != ""
}

func (ev Event) brandSource() session.BrandSource {
	if ev.Player != nil {
		return ev.Player
	}
	if ev.Brand != nil {
		return recordedBrand(*ev.Brand)
	}
	return nil
}

func (ev Event) board() scoreboard.Board {
	if ev.Board != nil {
		return ev.Board
	}
	if ev.Sidebar != nil {
		return ev.Sidebar
	}
	return nil
}

func Connected(remote bool, transport session.Transport) Event {
	return Event{Kind: KindConnected, Remote: remote, Transport: transport}
}

func Disconnected() Event { return Event{Kind: KindDisconnected} }

func ChatReceived(line string, player session.BrandSource) Event {
	return Event{Kind: KindChatReceived, Line: line, Player: player}
}

func ChatSent(line string) Event { return Event{Kind: KindChatSent, Line: line} }

func WorldSwitch() Event { return Event{Kind: KindWorldSwitch} }

// SidebarDisplayed reports a scoreboard display packet: objective was put in
// display slot. board gives read access for seasonal scans and may be nil.
func SidebarDisplayed(slot int, objective string, board scoreboard.Board) Event {
	return Event{Kind: KindSidebarDisplayed, DisplaySlot: slot, Objective: objective, Board: board}
}

func SidebarUpdated(board scoreboard.Board) Event {
	return Event{Kind: KindSidebarUpdated, Board: board}
}

// MenuOpened reports a container screen. snap may be nil, in which case the
// engine tracks slot contents itself from SlotChanged events.
func MenuOpened(title string, size int, snap inventory.Snapshot) Event {
	return Event{Kind: KindMenuOpened, Title: title, Size: size, Inventory: snap}
}

// SlotChanged reports one raw inventory-change notification. item is the
// slot's new content when the host provides it; it is applied to snapshots
// the engine owns.
func SlotChanged(slot int, item *inventory.Item) Event {
	return Event{Kind: KindSlotChanged, Slot: slot, Item: item}
}

func MenuClosed() Event { return Event{Kind: KindMenuClosed} }

func WarpMenuKey() Event { return Event{Kind: KindWarpMenuKey} }

func WarpMenuClosed() Event { return Event{Kind: KindWarpMenuClosed} }

func ConstantsReloaded(c *constants.Constants) Event {
	return Event{Kind: KindConstantsReloaded, Constants: c}
}

func SettingsChanged(s settings.Settings) Event {
	return Event{Kind: KindSettingsChanged, Settings: &s}
}
