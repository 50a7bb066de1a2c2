// Package constants loads the game constants document: the menu rule set,
// warp result messages, warp command variants and the strings used to
// recognize the server and game mode.
//
// Documents are YAML or JSON with comments, chosen by file extension. A
// default document is embedded in the binary.
package constants

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/appengine-ltd/warpctx/internal/command"
	"github.com/appengine-ltd/warpctx/internal/menu"
	"github.com/appengine-ltd/warpctx/internal/scoreboard"
	"github.com/appengine-ltd/warpctx/internal/session"
)

//go:embed default.yaml
var defaultDocument []byte

type Format int

const (
	FormatYAML Format = iota + 1
	FormatJSONC
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSONC:
		return "jsonc"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

var (
	ErrUnknownFormat   = errors.New("unknown constants file format")
	ErrNoSuccessMsgs   = errors.New("warp success message list cannot be empty")
	ErrNoFailMsgs      = errors.New("warp fail message list cannot be empty")
	ErrNoJoinMessage   = errors.New("join message cannot be empty")
	ErrMixedRule       = errors.New("rule cannot have both a title and item criteria")
	ErrMissingSlot     = errors.New("item rule needs a slot")
	ErrEmptyRuleEntry  = errors.New("rule has no title and no item criteria")
	ErrMissingMenuName = errors.New("menu entry needs a menu key")
)

// FormatForPath picks the document format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSONC, nil
	default:
		return 0, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// Document is the on-disk form of the constants.
type Document struct {
	BrandPrefix   string            `json:"brand_prefix" yaml:"brand_prefix"`
	ObjectiveName string            `json:"objective_name" yaml:"objective_name"`
	LateMarker    string            `json:"late_marker" yaml:"late_marker"`
	JoinMessage   string            `json:"join_message" yaml:"join_message"`
	Menus         []MenuDocument    `json:"menus" yaml:"menus"`
	WarpMessages  WarpMessages      `json:"warp_messages" yaml:"warp_messages"`
	Variants      []command.Variant `json:"warp_command_variants" yaml:"warp_command_variants"`
}

// MenuDocument lists the rules for one menu. Each rule is either a title
// rule or an item rule.
type MenuDocument struct {
	Menu  string         `json:"menu" yaml:"menu"`
	Rules []RuleDocument `json:"rules" yaml:"rules"`
}

type RuleDocument struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	Slot        *int     `json:"slot,omitempty" yaml:"slot,omitempty"`
	ItemName    string   `json:"item_name,omitempty" yaml:"item_name,omitempty"`
	ItemNames   []string `json:"item_names,omitempty" yaml:"item_names,omitempty"`
	TypeID      string   `json:"type_id,omitempty" yaml:"type_id,omitempty"`
	TypeIDs     []string `json:"type_ids,omitempty" yaml:"type_ids,omitempty"`
	DomainID    string   `json:"domain_id,omitempty" yaml:"domain_id,omitempty"`
	DomainIDs   []string `json:"domain_ids,omitempty" yaml:"domain_ids,omitempty"`
	LorePattern string   `json:"lore_pattern,omitempty" yaml:"lore_pattern,omitempty"`
}

func (r RuleDocument) hasItemCriteria() bool {
	return r.Slot != nil || r.ItemName != "" || len(r.ItemNames) > 0 ||
		r.TypeID != "" || len(r.TypeIDs) > 0 ||
		r.DomainID != "" || len(r.DomainIDs) > 0 ||
		r.LorePattern != ""
}

func (r RuleDocument) build() (menu.Rule, error) {
	switch {
	case r.Title != "" && r.hasItemCriteria():
		return nil, ErrMixedRule
	case r.Title != "":
		return menu.NewNameRule(r.Title)
	case !r.hasItemCriteria():
		return nil, ErrEmptyRuleEntry
	case r.Slot == nil:
		return nil, ErrMissingSlot
	}
	return menu.NewItemRule(menu.ItemCriteria{
		Slot:        *r.Slot,
		Name:        r.ItemName,
		Names:       r.ItemNames,
		TypeID:      r.TypeID,
		TypeIDs:     r.TypeIDs,
		DomainID:    r.DomainID,
		DomainIDs:   r.DomainIDs,
		LorePattern: r.LorePattern,
	})
}

// WarpMessages are the chat lines the server sends after a warp attempt.
// Fail maps each failure line to the translation key shown in the menu.
type WarpMessages struct {
	Success []string          `json:"success" yaml:"success"`
	Fail    map[string]string `json:"fail" yaml:"fail"`
}

func (m WarpMessages) Validate() error {
	if len(m.Success) == 0 {
		return ErrNoSuccessMsgs
	}
	if len(m.Fail) == 0 {
		return ErrNoFailMsgs
	}
	return nil
}

// Succeeded reports whether line is a warp success message.
func (m WarpMessages) Succeeded(line string) bool {
	for _, s := range m.Success {
		if s == line {
			return true
		}
	}
	return false
}

// Failed returns the translation key for a warp failure message.
func (m WarpMessages) Failed(line string) (key string, ok bool) {
	key, ok = m.Fail[line]
	return key, ok
}

// Constants is a validated document, ready for the engine.
type Constants struct {
	BrandPrefix   string
	ObjectiveName string
	LateMarker    string
	JoinMessage   string
	Rules         *menu.RuleSet
	Commands      *command.Registry
	WarpMessages  WarpMessages
}

// Default returns the constants embedded in the binary.
func Default() *Constants {
	c, err := Parse(defaultDocument, FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("constants: embedded default is invalid: %v", err))
	}
	return c
}

// DefaultDocument returns a copy of the embedded YAML document.
func DefaultDocument() []byte {
	return bytes.Clone(defaultDocument)
}

// Load reads and validates the constants file at path.
func Load(path string) (*Constants, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	c, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a constants document. Unknown fields are
// rejected so misspelled criteria do not silently match everything.
func Parse(data []byte, format Format) (*Constants, error) {
	var doc Document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing constants: %w", err)
		}
	case FormatJSONC:
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing constants: %w", err)
		}
	default:
		return nil, ErrUnknownFormat
	}
	return doc.Build()
}

// Build validates the document and compiles its rules.
func (d Document) Build() (*Constants, error) {
	entries := make([]menu.Entry, 0, len(d.Menus))
	for i, m := range d.Menus {
		if strings.TrimSpace(m.Menu) == "" {
			return nil, fmt.Errorf("menus[%d]: %w", i, ErrMissingMenuName)
		}
		id, err := menu.ParseIdentity(m.Menu)
		if err != nil {
			return nil, fmt.Errorf("menus[%d]: %w", i, err)
		}
		rules := make([]menu.Rule, 0, len(m.Rules))
		for j, rd := range m.Rules {
			rule, err := rd.build()
			if err != nil {
				return nil, &menu.ValidationError{Identity: id, Index: j, Err: err}
			}
			rules = append(rules, rule)
		}
		entries = append(entries, menu.Entry{Identity: id, Rules: rules})
	}

	rules, err := menu.NewRuleSet(entries...)
	if err != nil {
		return nil, err
	}
	if err := d.WarpMessages.Validate(); err != nil {
		return nil, err
	}
	commands, err := command.NewRegistry(d.Variants)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(d.JoinMessage) == "" {
		return nil, ErrNoJoinMessage
	}

	c := &Constants{
		BrandPrefix:   d.BrandPrefix,
		ObjectiveName: d.ObjectiveName,
		LateMarker:    d.LateMarker,
		JoinMessage:   d.JoinMessage,
		Rules:         rules,
		Commands:      commands,
		WarpMessages:  d.WarpMessages,
	}
	if c.BrandPrefix == "" {
		c.BrandPrefix = session.DefaultBrandPrefix
	}
	if c.ObjectiveName == "" {
		c.ObjectiveName = session.DefaultObjectiveName
	}
	if c.LateMarker == "" {
		c.LateMarker = scoreboard.DefaultLateMarker
	}
	return c, nil
}
