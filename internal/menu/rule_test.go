package menu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appengine-ltd/warpctx/internal/inventory"
)

func TestNewItemRuleValidation(t *testing.T) {
	tests := []struct {
		name    string
		c       ItemCriteria
		wantErr error
	}{
		{name: "negative slot", c: ItemCriteria{Slot: -1, TypeID: "minecraft:paper"}, wantErr: ErrNegativeSlot},
		{name: "no criteria", c: ItemCriteria{Slot: 3}, wantErr: ErrNoCriteria},
		{name: "empty lists are unspecified", c: ItemCriteria{Slot: 3, Names: []string{}}, wantErr: ErrNoCriteria},
		{name: "name and names", c: ItemCriteria{Slot: 3, Name: "a", Names: []string{"b"}}, wantErr: ErrConflictingCriteria},
		{name: "type id and type ids", c: ItemCriteria{Slot: 3, TypeID: "a", TypeIDs: []string{"b"}}, wantErr: ErrConflictingCriteria},
		{name: "domain id and domain ids", c: ItemCriteria{Slot: 3, DomainID: "a", DomainIDs: []string{"b"}}, wantErr: ErrConflictingCriteria},
		{name: "bad regex", c: ItemCriteria{Slot: 3, LorePattern: "("}, wantErr: ErrBadPattern},
		{name: "slot zero with lore", c: ItemCriteria{Slot: 0, LorePattern: "Click"}},
		{name: "names list", c: ItemCriteria{Slot: 10, Names: []string{"Hub", "Village"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewItemRule(tt.c)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.c.Slot, r.Slot())
		})
	}
}

func TestNewNameRuleRequiresTitle(t *testing.T) {
	_, err := NewNameRule("")
	assert.ErrorIs(t, err, ErrNoCriteria)
}

func TestItemRuleCriteria(t *testing.T) {
	snap := fastTravelSnapshot()

	tests := []struct {
		name string
		c    ItemCriteria
		want bool
	}{
		{name: "name stripped of formatting", c: ItemCriteria{Slot: 53, Name: "SkyBlock Hub"}, want: true},
		{name: "name is exact", c: ItemCriteria{Slot: 53, Name: "skyblock hub"}, want: false},
		{name: "name from list", c: ItemCriteria{Slot: 53, Names: []string{"Village", "SkyBlock Hub"}}, want: true},
		{name: "type id", c: ItemCriteria{Slot: 53, TypeID: "minecraft:skull"}, want: true},
		{name: "type id mismatch", c: ItemCriteria{Slot: 53, TypeID: "minecraft:paper"}, want: false},
		{name: "domain id", c: ItemCriteria{Slot: 53, DomainID: "WARP_HUB"}, want: true},
		{name: "domain id missing fails closed", c: ItemCriteria{Slot: 45, DomainID: "WARP_HUB"}, want: false},
		{name: "lore across lines", c: ItemCriteria{Slot: 45, LorePattern: `icons\nClick`}, want: true},
		{name: "lore mismatch", c: ItemCriteria{Slot: 45, LorePattern: `^Travel`}, want: false},
		{name: "lore missing fails closed", c: ItemCriteria{Slot: 53, LorePattern: `.*`}, want: false},
		{name: "empty slot", c: ItemCriteria{Slot: 0, TypeID: "minecraft:paper"}, want: false},
		{name: "slot beyond inventory", c: ItemCriteria{Slot: 90, TypeID: "minecraft:paper"}, want: false},
		{name: "all criteria", c: ItemCriteria{Slot: 45, Name: "Paper Icons", TypeID: "minecraft:paper", LorePattern: "toggle"}, want: true},
		{name: "one failing criterion", c: ItemCriteria{Slot: 45, Name: "Paper Icons", TypeID: "minecraft:stone"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewItemRule(tt.c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Match(snap))
		})
	}
}

func TestItemRuleWithoutDisplayName(t *testing.T) {
	snap := inventory.NewSlots("Fast Travel", 9)
	snap.SetSlot(0, inventory.Item{TypeID: "minecraft:paper"})

	r, err := NewItemRule(ItemCriteria{Slot: 0, Name: "Paper"})
	require.NoError(t, err)
	assert.False(t, r.Match(snap))
}

func TestNewRuleSetValidation(t *testing.T) {
	title := nameRule(t, "Fast Travel")

	_, err := NewRuleSet(Entry{Identity: None, Rules: []Rule{title}})
	assert.ErrorIs(t, err, ErrNoneIdentity)

	_, err = NewRuleSet(Entry{Identity: FastTravel})
	assert.ErrorIs(t, err, ErrEmptyRules)

	_, err = NewRuleSet(
		Entry{Identity: FastTravel, Rules: []Rule{title}},
		Entry{Identity: FastTravel, Rules: []Rule{title}},
	)
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	var nilItem *ItemRule
	_, err = NewRuleSet(Entry{Identity: Porhtal, Rules: []Rule{title, nilItem}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, Porhtal, verr.Identity)
	assert.Equal(t, 1, verr.Index)
	assert.ErrorIs(t, err, ErrNilRule)
}

func TestRuleSetWatermark(t *testing.T) {
	rs := newRuleSet(t,
		Entry{Identity: SkyBlockMenu, Rules: []Rule{nameRule(t, "SkyBlock Menu")}},
		Entry{Identity: FastTravel, Rules: []Rule{
			nameRule(t, "Fast Travel"),
			itemRule(t, ItemCriteria{Slot: 45, TypeID: "minecraft:paper"}),
			itemRule(t, ItemCriteria{Slot: 53, DomainID: "WARP_HUB"}),
		}},
		Entry{Identity: Porhtal, Rules: []Rule{
			nameRule(t, "Porhtal"),
			itemRule(t, ItemCriteria{Slot: 31, TypeID: "minecraft:ender_eye"}),
		}},
	)

	assert.Equal(t, 53, rs.Watermark())
	assert.Equal(t, 31, rs.Watermark(Porhtal))
	assert.Equal(t, -1, rs.Watermark(SkyBlockMenu))
	assert.Equal(t, 53, rs.Watermark(Porhtal, FastTravel))
	assert.True(t, rs.Has(Porhtal))
	assert.Equal(t, 3, rs.Len())

	entries := rs.Entries()
	entries[0].Rules = nil
	assert.Len(t, rs.Entries()[0].Rules, 1, "Entries must return a copy")
}

func TestIdentityKeys(t *testing.T) {
	for _, id := range Identities() {
		parsed, err := ParseIdentity(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
		assert.NotEmpty(t, id.Title())
	}

	_, err := ParseIdentity("BANK")
	assert.Error(t, err)

	var id Identity
	require.NoError(t, id.UnmarshalText([]byte("fast_travel")))
	assert.Equal(t, FastTravel, id)
	assert.Equal(t, "", None.Title())
}
