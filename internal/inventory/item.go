package inventory

import (
	"regexp"
	"strings"
)

// Nested metadata keys read by the rule matcher.
const (
	TagExtraAttributes = "ExtraAttributes"
	TagID              = "id"
	TagDisplay         = "display"
	TagLore            = "Lore"
)

var formattingCodeRE = regexp.MustCompile(`(?i)§[0-9a-fk-or]`)

// StripFormatting removes the host's section-sign formatting codes.
func StripFormatting(s string) string {
	if !strings.ContainsRune(s, '§') {
		return s
	}
	return formattingCodeRE.ReplaceAllString(s, "")
}

// Tag is the nested structured metadata attached to an item. Values are
// strings, string lists or nested tags. Decoded documents (JSON, CBOR) produce
// map[string]any and []any, which the accessors accept as well.
type Tag map[string]any

// Compound returns the nested tag stored under key.
func (t Tag) Compound(key string) (Tag, bool) {
	if t == nil {
		return nil, false
	}
	switch v := t[key].(type) {
	case Tag:
		return v, true
	case map[string]any:
		return Tag(v), true
	default:
		return nil, false
	}
}

func (t Tag) String(key string) (string, bool) {
	if t == nil {
		return "", false
	}
	s, ok := t[key].(string)
	return s, ok
}

// StringList returns the list stored under key. A list holding anything but
// strings is reported as absent.
func (t Tag) StringList(key string) ([]string, bool) {
	if t == nil {
		return nil, false
	}
	switch v := t[key].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// Item is the content of one inventory slot. The zero value is an empty slot.
type Item struct {
	TypeID      string `cbor:"type_id,omitempty" json:"type_id,omitempty"`
	Count       int    `cbor:"count,omitempty" json:"count,omitempty"`
	DisplayName string `cbor:"display_name,omitempty" json:"display_name,omitempty"`
	Tag         Tag    `cbor:"tag,omitempty" json:"tag,omitempty"`
}

func (i Item) Empty() bool {
	return i.TypeID == ""
}

// Name returns the display name with formatting codes removed.
// ok is false when the item has no custom display name.
func (i Item) Name() (string, bool) {
	if i.DisplayName == "" {
		return "", false
	}
	return StripFormatting(i.DisplayName), true
}

// DomainID returns the server-specific item id stored in ExtraAttributes.id.
func (i Item) DomainID() (string, bool) {
	extra, ok := i.Tag.Compound(TagExtraAttributes)
	if !ok {
		return "", false
	}
	return extra.String(TagID)
}

// Lore returns the item's flavor text lines from display.Lore.
func (i Item) Lore() ([]string, bool) {
	display, ok := i.Tag.Compound(TagDisplay)
	if !ok {
		return nil, false
	}
	return display.StringList(TagLore)
}
