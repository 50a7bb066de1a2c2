package constants

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appengine-ltd/warpctx/internal/command"
	"github.com/appengine-ltd/warpctx/internal/inventory"
	"github.com/appengine-ltd/warpctx/internal/menu"
)

const jsoncDoc = `{
	// trailing commas and comments are allowed
	"join_message": "Welcome to Hypixel SkyBlock!",
	"menus": [
		{"menu": "FAST_TRAVEL", "rules": [
			{"title": "Fast Travel"},
			{"slot": 53, "domain_id": "WARP_HUB"},
		]},
		{"menu": "porhtal", "rules": [{"title": "Porhtal"}]},
	],
	"warp_messages": {
		"success": ["Warping..."],
		"fail": {"You haven't unlocked this fast travel destination!": "warp.fail.notUnlocked"},
	},
	"warp_command_variants": [{"command": "warp", "type": "ALIAS"}],
}`

func TestDefaultConstants(t *testing.T) {
	c := Default()
	assert.Equal(t, "Hypixel BungeeCord", c.BrandPrefix)
	assert.Equal(t, "SBScoreboard", c.ObjectiveName)
	assert.Equal(t, "Late Winter", c.LateMarker)
	assert.Equal(t, 3, c.Rules.Len())
	assert.Equal(t, 53, c.Rules.Watermark(menu.FastTravel))
	assert.Equal(t, -1, c.Rules.Watermark(menu.Porhtal))

	sent, ok := c.Commands.Lookup("/warp")
	require.True(t, ok)
	assert.Equal(t, command.Alias, sent.Variant.Type)

	assert.True(t, c.WarpMessages.Succeeded("Warping..."))
	key, ok := c.WarpMessages.Failed("You haven't unlocked this fast travel destination!")
	assert.True(t, ok)
	assert.Equal(t, "warp.fail.notUnlocked", key)
}

func TestDefaultClassifiesFastTravel(t *testing.T) {
	c := Default()
	snap := inventory.NewSlots("Fast Travel", 54)
	snap.SetSlot(45, inventory.Item{
		TypeID:      "minecraft:paper",
		DisplayName: "§aPaper Icons",
		Tag: inventory.Tag{
			inventory.TagDisplay: inventory.Tag{inventory.TagLore: []string{"§7Switch icons", "Click to toggle!"}},
		},
	})
	snap.SetSlot(53, inventory.Item{
		TypeID: "minecraft:skull",
		Tag:    inventory.Tag{inventory.TagExtraAttributes: inventory.Tag{inventory.TagID: "WARP_HUB"}},
	})

	cl := menu.NewClassifier(c.Rules, nil)
	assert.Equal(t, menu.FastTravel, cl.Classify(snap, false))
	assert.Equal(t, menu.FastTravel, cl.Classify(snap, true))

	snap.SetSlot(53, inventory.Item{TypeID: "minecraft:skull"})
	assert.Equal(t, menu.None, cl.Classify(snap, false))
}

func TestParseJSONC(t *testing.T) {
	c, err := Parse([]byte(jsoncDoc), FormatJSONC)
	require.NoError(t, err)
	assert.True(t, c.Rules.Has(menu.Porhtal))
	assert.Equal(t, "Hypixel BungeeCord", c.BrandPrefix, "defaults fill missing strings")
}

func TestParseRejectsMalformedRules(t *testing.T) {
	base := func(rules string) []byte {
		return []byte(`join_message: hi
menus:
  - menu: FAST_TRAVEL
    rules:
` + rules + `
warp_messages:
  success: [ok]
  fail: {bad: key}
warp_command_variants:
  - {command: warp, type: ALIAS}
`)
	}

	tests := []struct {
		name  string
		rules string
		want  error
	}{
		{name: "negative slot", rules: "      - {slot: -1, type_id: x}", want: menu.ErrNegativeSlot},
		{name: "no criteria", rules: "      - {slot: 3}", want: menu.ErrNoCriteria},
		{name: "single and list", rules: "      - {slot: 3, item_name: a, item_names: [b]}", want: menu.ErrConflictingCriteria},
		{name: "bad regex", rules: "      - {slot: 3, lore_pattern: '('}", want: menu.ErrBadPattern},
		{name: "mixed", rules: "      - {title: Fast Travel, slot: 3}", want: ErrMixedRule},
		{name: "missing slot", rules: "      - {type_id: x}", want: ErrMissingSlot},
		{name: "empty", rules: "      - {}", want: ErrEmptyRuleEntry},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(base(tc.rules), FormatYAML)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			var verr *menu.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, menu.FastTravel, verr.Identity)
		})
	}
}

func TestParseRejectsDocumentProblems(t *testing.T) {
	_, err := Parse([]byte("join_message: hi\nunknown_field: 1\n"), FormatYAML)
	assert.Error(t, err)

	_, err = Parse([]byte(`join_message: hi
warp_messages: {success: [ok]}
warp_command_variants: [{command: warp, type: ALIAS}]
`), FormatYAML)
	assert.ErrorIs(t, err, ErrNoFailMsgs)

	_, err = Parse([]byte(`warp_messages: {success: [ok], fail: {a: b}}
warp_command_variants: [{command: warp, type: ALIAS}]
`), FormatYAML)
	assert.ErrorIs(t, err, ErrNoJoinMessage)

	_, err = Parse([]byte(`join_message: hi
menus: [{menu: NONE, rules: [{title: x}]}]
warp_messages: {success: [ok], fail: {a: b}}
warp_command_variants: [{command: warp, type: ALIAS}]
`), FormatYAML)
	assert.ErrorIs(t, err, menu.ErrNoneIdentity)

	_, err = Parse(nil, Format(0))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatForPath(t *testing.T) {
	f, err := FormatForPath("a/constants.YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	f, err = FormatForPath("constants.jsonc")
	require.NoError(t, err)
	assert.Equal(t, FormatJSONC, f)
	_, err = FormatForPath("constants.toml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "constants.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(jsoncDoc), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Rules.Len())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "constants.yaml")
	require.NoError(t, os.WriteFile(path, DefaultDocument(), 0o644))

	reloaded := make(chan *Constants, 4)
	w, err := NewWatcher(path, nil, func(c *Constants) { reloaded <- c })
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	// A broken document is ignored.
	require.NoError(t, os.WriteFile(path, []byte("menus: [\n"), 0o644))
	// A valid one with a different objective name is delivered.
	doc := bytes.Replace(DefaultDocument(), []byte("objective_name: SBScoreboard"), []byte("objective_name: Other"), 1)
	require.NoError(t, os.WriteFile(path, doc, 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-reloaded:
			if c.ObjectiveName == "Other" {
				cancel()
				require.NoError(t, <-done)
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}
