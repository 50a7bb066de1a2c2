package menu

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrEmptyRules        = errors.New("menu match rule list cannot be empty")
	ErrDuplicateIdentity = errors.New("menu listed more than once")
	ErrNoneIdentity      = errors.New("NONE cannot have match rules")
	ErrNilRule           = errors.New("rule cannot be nil")
)

// ValidationError reports a malformed entry found while building a RuleSet.
// Index is the rule's position in the entry, or -1 for entry-level problems.
type ValidationError struct {
	Identity Identity
	Index    int
	Err      error
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("menu %s: %v", e.Identity, e.Err)
	}
	return fmt.Sprintf("menu %s rule %d: %v", e.Identity, e.Index, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Entry pairs a menu identity with the rules that identify it.
type Entry struct {
	Identity Identity
	Rules    []Rule
}

// RuleSet is an ordered, immutable list of entries. Order matters: when more
// than one entry matches a snapshot, the last one wins.
type RuleSet struct {
	entries []Entry
}

func NewRuleSet(entries ...Entry) (*RuleSet, error) {
	seen := make(map[Identity]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Identity == None {
			return nil, &ValidationError{Identity: e.Identity, Index: -1, Err: ErrNoneIdentity}
		}
		if !e.Identity.valid() {
			return nil, &ValidationError{Identity: e.Identity, Index: -1, Err: fmt.Errorf("unknown menu identity %d", int(e.Identity))}
		}
		if seen[e.Identity] {
			return nil, &ValidationError{Identity: e.Identity, Index: -1, Err: ErrDuplicateIdentity}
		}
		seen[e.Identity] = true
		if len(e.Rules) == 0 {
			return nil, &ValidationError{Identity: e.Identity, Index: -1, Err: ErrEmptyRules}
		}
		for i, r := range e.Rules {
			if r == nil {
				return nil, &ValidationError{Identity: e.Identity, Index: i, Err: ErrNilRule}
			}
			if item, ok := r.(*ItemRule); ok && item == nil {
				return nil, &ValidationError{Identity: e.Identity, Index: i, Err: ErrNilRule}
			}
		}
		out = append(out, Entry{Identity: e.Identity, Rules: slices.Clone(e.Rules)})
	}
	return &RuleSet{entries: out}, nil
}

// Entries returns a copy of the entries in evaluation order.
func (rs *RuleSet) Entries() []Entry {
	if rs == nil {
		return nil
	}
	out := make([]Entry, len(rs.entries))
	for i, e := range rs.entries {
		out[i] = Entry{Identity: e.Identity, Rules: slices.Clone(e.Rules)}
	}
	return out
}

func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.entries)
}

func (rs *RuleSet) Has(id Identity) bool {
	if rs == nil {
		return false
	}
	for _, e := range rs.entries {
		if e.Identity == id {
			return true
		}
	}
	return false
}

// Watermark returns the highest slot index referenced by an ItemRule of the
// given identities, or of every identity when none are given. It returns -1
// when there are no item rules, meaning no settle wait is needed.
func (rs *RuleSet) Watermark(ids ...Identity) int {
	highest := -1
	if rs == nil {
		return highest
	}
	for _, e := range rs.entries {
		if len(ids) > 0 && !slices.Contains(ids, e.Identity) {
			continue
		}
		for _, r := range e.Rules {
			if item, ok := r.(*ItemRule); ok && item.slot > highest {
				highest = item.slot
			}
		}
	}
	return highest
}
