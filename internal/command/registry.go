// Package command recognizes the warp command and its variants in chat
// messages the player sends.
package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

type Type int

const (
	// Alias works like the warp command itself and opens the warp menu when
	// sent without arguments.
	Alias Type = iota + 1
	// Warp is a shortcut that teleports straight to a single warp.
	Warp
)

func (t Type) String() string {
	switch t {
	case Alias:
		return "ALIAS"
	case Warp:
		return "WARP"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

func (t Type) MarshalText() ([]byte, error) {
	if t != Alias && t != Warp {
		return nil, fmt.Errorf("invalid command type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	switch strings.ToUpper(strings.TrimSpace(string(text))) {
	case "ALIAS":
		*t = Alias
	case "WARP":
		*t = Warp
	default:
		return fmt.Errorf("unknown command type %q", string(text))
	}
	return nil
}

// Variant is one command name that warps the player.
type Variant struct {
	Command string `json:"command" yaml:"command"`
	Type    Type   `json:"type" yaml:"type"`
}

var (
	ErrNoVariants   = errors.New("warp command variant list cannot be empty")
	ErrEmptyCommand = errors.New("warp command variant's command cannot be empty")
	ErrNoType       = errors.New("warp command variant's command type cannot be empty")
)

func (v Variant) Validate() error {
	if normaliseCommand(v.Command) == "" {
		return ErrEmptyCommand
	}
	if v.Type != Alias && v.Type != Warp {
		return fmt.Errorf("%q: %w", v.Command, ErrNoType)
	}
	return nil
}

// Sent is a recognized command message.
type Sent struct {
	Variant Variant
	// Bare is true when the message was just the command, with no arguments.
	Bare bool
}

// OpensMenu reports whether the message should open the warp menu instead of
// being sent to the server.
func (s Sent) OpensMenu() bool {
	return s.Variant.Type == Alias && s.Bare
}

// Registry holds the known variants. Immutable after construction.
type Registry struct {
	variants []Variant
	byName   map[string]Variant
}

func NewRegistry(variants []Variant) (*Registry, error) {
	if len(variants) == 0 {
		return nil, ErrNoVariants
	}
	r := &Registry{byName: make(map[string]Variant, len(variants))}
	for i, v := range variants {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("warp command variant %d: %w", i, err)
		}
		v.Command = normaliseCommand(v.Command)
		if _, dup := r.byName[v.Command]; dup {
			continue
		}
		r.byName[v.Command] = v
		r.variants = append(r.variants, v)
	}
	return r, nil
}

// DefaultRegistry knows /warp and its common shortcuts.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultVariants())
	if err != nil {
		panic(err)
	}
	return r
}

func DefaultVariants() []Variant {
	return []Variant{
		{Command: "warp", Type: Alias},
		{Command: "travel", Type: Alias},
		{Command: "is", Type: Warp},
		{Command: "hub", Type: Warp},
		{Command: "warpforge", Type: Warp},
		{Command: "garden", Type: Warp},
	}
}

func (r *Registry) Variants() []Variant {
	out := make([]Variant, len(r.variants))
	copy(out, r.variants)
	return out
}

// Lookup matches a sent chat message against the variants. Only messages
// starting with "/" are commands; arguments after the first space are ignored.
func (r *Registry) Lookup(message string) (Sent, bool) {
	name, bare, ok := splitCommand(message)
	if !ok {
		return Sent{}, false
	}
	v, ok := r.byName[name]
	if !ok {
		return Sent{}, false
	}
	return Sent{Variant: v, Bare: bare}, true
}

// Suggestion is a near miss for a mistyped command.
type Suggestion struct {
	Variant  Variant
	Distance int
}

// Suggest returns the closest variant to a command that did not match
// exactly, such as "/wrap". Short commands are not guessed at.
func (r *Registry) Suggest(message string) (Suggestion, bool) {
	name, _, ok := splitCommand(message)
	if !ok || len(name) < 3 {
		return Suggestion{}, false
	}
	if _, exact := r.byName[name]; exact {
		return Suggestion{}, false
	}

	cands := make([]Suggestion, 0, 2)
	for _, v := range r.variants {
		dist := levenshtein.ComputeDistance(name, v.Command)
		if dist > levenshteinLimit(len(v.Command)) {
			continue
		}
		cands = append(cands, Suggestion{Variant: v, Distance: dist})
	}
	if len(cands) == 0 {
		return Suggestion{}, false
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Distance == cands[j].Distance {
			return cands[i].Variant.Command < cands[j].Variant.Command
		}
		return cands[i].Distance < cands[j].Distance
	})
	return cands[0], true
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func splitCommand(message string) (name string, bare bool, ok bool) {
	message = strings.TrimSpace(message)
	if !strings.HasPrefix(message, "/") {
		return "", false, false
	}
	fields := strings.Fields(strings.ToLower(message[1:]))
	if len(fields) == 0 {
		return "", false, false
	}
	return fields[0], len(fields) == 1, true
}

func normaliseCommand(raw string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(raw)), "/")
}
