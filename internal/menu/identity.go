package menu

import (
	"fmt"
	"strings"
)

// Identity names an in-game container menu. Not serialized as a number; the
// constants document refers to identities by key.
type Identity int

const (
	// None is used when no menu is open or the open menu is unknown or irrelevant.
	None Identity = iota
	SkyBlockMenu
	FastTravel
	Porhtal
)

var identityInfo = []struct {
	key   string
	title string
}{
	None:         {key: "NONE"},
	SkyBlockMenu: {key: "SKYBLOCK_MENU", title: "SkyBlock Menu"},
	FastTravel:   {key: "FAST_TRAVEL", title: "Fast Travel"},
	Porhtal:      {key: "PORHTAL", title: "Porhtal"},
}

// Identities returns every identity except None, in declaration order.
func Identities() []Identity {
	out := make([]Identity, 0, len(identityInfo)-1)
	for id := SkyBlockMenu; int(id) < len(identityInfo); id++ {
		out = append(out, id)
	}
	return out
}

func (id Identity) valid() bool {
	return id >= None && int(id) < len(identityInfo)
}

func (id Identity) String() string {
	if !id.valid() {
		return fmt.Sprintf("Identity(%d)", int(id))
	}
	return identityInfo[id].key
}

// Title is the menu name the server shows at the top of the container.
func (id Identity) Title() string {
	if !id.valid() {
		return ""
	}
	return identityInfo[id].title
}

// ParseIdentity resolves a constants-document key such as "FAST_TRAVEL".
func ParseIdentity(key string) (Identity, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	for i, info := range identityInfo {
		if info.key == key {
			return Identity(i), nil
		}
	}
	return None, fmt.Errorf("unknown menu %q", key)
}

func (id Identity) MarshalText() ([]byte, error) {
	if !id.valid() {
		return nil, fmt.Errorf("invalid menu identity %d", int(id))
	}
	return []byte(id.String()), nil
}

func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
