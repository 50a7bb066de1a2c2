package menu

import (
	"fmt"
	"log/slog"

	"github.com/appengine-ltd/warpctx/internal/inventory"
)

// Classifier identifies the open menu from a RuleSet.
type Classifier struct {
	rules  *RuleSet
	logger *slog.Logger
}

func NewClassifier(rules *RuleSet, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{rules: rules, logger: logger}
}

func (c *Classifier) Rules() *RuleSet { return c.rules }

// Classify evaluates every entry in order and returns the last identity whose
// rules all pass, or None. Scanning does not stop at the first match.
//
// With titleOnly set, item rules are skipped because slot contents may not
// have arrived yet. An entry needs at least one evaluated rule to match, so
// menus identified only by items cannot match in that mode.
func (c *Classifier) Classify(snap inventory.Snapshot, titleOnly bool) Identity {
	result := None
	if c == nil || c.rules == nil || snap == nil {
		return result
	}

	for _, entry := range c.rules.entries {
		if c.entryMatches(entry, snap, titleOnly) {
			result = entry.Identity
		}
	}
	return result
}

func (c *Classifier) entryMatches(entry Entry, snap inventory.Snapshot, titleOnly bool) bool {
	evaluated := 0
	for i, rule := range entry.Rules {
		switch r := rule.(type) {
		case NameRule:
			evaluated++
			if !r.Match(snap) {
				c.logger.Debug("Menu title did not match",
					"menu", entry.Identity,
					"rule", i,
					"title", snap.Title())
				return false
			}
		case *ItemRule:
			if titleOnly {
				continue
			}
			evaluated++
			if ok, reason := r.check(snap); !ok {
				c.logger.Debug("Item match failed",
					"menu", entry.Identity,
					"rule", i,
					"slot", r.slot,
					"reason", reason)
				return false
			}
		default:
			panic(fmt.Sprintf("menu: unhandled rule type %T", rule))
		}
	}
	return evaluated > 0
}
