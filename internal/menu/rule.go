package menu

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/appengine-ltd/warpctx/internal/inventory"
)

var (
	ErrNoCriteria          = errors.New("no item name, item type, domain item id or lore criteria specified")
	ErrNegativeSlot        = errors.New("slot index must be greater than or equal to 0")
	ErrConflictingCriteria = errors.New("single value and value list cannot both be set")
	ErrBadPattern          = errors.New("invalid lore pattern")
)

type RuleKind int

const (
	KindName RuleKind = iota + 1
	KindItem
)

func (k RuleKind) String() string {
	switch k {
	case KindName:
		return "name"
	case KindItem:
		return "item"
	default:
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
}

// Rule is one predicate in a menu's rule list. The set of implementations is
// closed: NameRule and *ItemRule.
type Rule interface {
	Kind() RuleKind
	Match(snap inventory.Snapshot) bool
	sealed()
}

// NameRule matches when the container title equals Title exactly.
type NameRule struct {
	Title string
}

func NewNameRule(title string) (NameRule, error) {
	if title == "" {
		return NameRule{}, fmt.Errorf("name rule: %w", ErrNoCriteria)
	}
	return NameRule{Title: title}, nil
}

func (NameRule) Kind() RuleKind { return KindName }

func (r NameRule) Match(snap inventory.Snapshot) bool {
	return snap != nil && snap.Title() == r.Title
}

func (NameRule) sealed() {}

// ItemCriteria is the unvalidated form of an ItemRule. Each of name, type id
// and domain id may be given as a single value or as a list of accepted
// values, not both. Empty strings and empty lists count as unspecified.
type ItemCriteria struct {
	Slot        int
	Name        string
	Names       []string
	TypeID      string
	TypeIDs     []string
	DomainID    string
	DomainIDs   []string
	LorePattern string
}

// ItemRule matches an item in one slot. Every specified criterion must match;
// criteria that need nested metadata fail when it is missing.
type ItemRule struct {
	slot      int
	names     []string
	typeIDs   []string
	domainIDs []string
	lore      *regexp.Regexp
}

func NewItemRule(c ItemCriteria) (*ItemRule, error) {
	if c.Slot < 0 {
		return nil, fmt.Errorf("slot %d: %w", c.Slot, ErrNegativeSlot)
	}

	names, err := acceptedValues("name", c.Name, c.Names)
	if err != nil {
		return nil, err
	}
	typeIDs, err := acceptedValues("type id", c.TypeID, c.TypeIDs)
	if err != nil {
		return nil, err
	}
	domainIDs, err := acceptedValues("domain id", c.DomainID, c.DomainIDs)
	if err != nil {
		return nil, err
	}

	r := &ItemRule{slot: c.Slot, names: names, typeIDs: typeIDs, domainIDs: domainIDs}
	if c.LorePattern != "" {
		re, err := regexp.Compile(c.LorePattern)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w: %w", c.Slot, ErrBadPattern, err)
		}
		r.lore = re
	}

	if len(r.names) == 0 && len(r.typeIDs) == 0 && len(r.domainIDs) == 0 && r.lore == nil {
		return nil, fmt.Errorf("slot %d: %w", c.Slot, ErrNoCriteria)
	}
	return r, nil
}

func acceptedValues(field, single string, list []string) ([]string, error) {
	if single != "" && len(list) > 0 {
		return nil, fmt.Errorf("%s: %w", field, ErrConflictingCriteria)
	}
	if single != "" {
		return []string{single}, nil
	}
	return slices.Clone(list), nil
}

func (*ItemRule) Kind() RuleKind { return KindItem }

func (r *ItemRule) Slot() int { return r.slot }

func (r *ItemRule) Match(snap inventory.Snapshot) bool {
	ok, _ := r.check(snap)
	return ok
}

func (*ItemRule) sealed() {}

// check evaluates the rule and, on failure, says which criterion failed.
func (r *ItemRule) check(snap inventory.Snapshot) (bool, string) {
	if snap == nil {
		return false, "no inventory"
	}
	item := snap.Slot(r.slot)
	if item.Empty() {
		return false, "slot empty"
	}

	if len(r.names) > 0 {
		name, ok := item.Name()
		if !ok || !slices.Contains(r.names, name) {
			return false, fmt.Sprintf("item name mismatch: found %q", name)
		}
	}

	if len(r.typeIDs) > 0 && !slices.Contains(r.typeIDs, item.TypeID) {
		return false, fmt.Sprintf("item type mismatch: found %q", item.TypeID)
	}

	if len(r.domainIDs) > 0 {
		id, ok := item.DomainID()
		if !ok {
			return false, "domain item id missing"
		}
		if !slices.Contains(r.domainIDs, id) {
			return false, fmt.Sprintf("domain item id mismatch: found %q", id)
		}
	}

	if r.lore != nil {
		lines, ok := item.Lore()
		if !ok {
			return false, "lore missing"
		}
		if !r.lore.MatchString(strings.Join(lines, "\n")) {
			return false, "lore did not match pattern"
		}
	}

	return true, ""
}
