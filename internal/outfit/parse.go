package outfit

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Draft is one entry of a model reply, before it is stored as a suggestion.
type Draft struct {
	StyleName   string            `json:"styleName"`
	Description string            `json:"description"`
	Item        map[string]string `json:"item"`
}

// LabelString is the compact JSON of the item attributes with sorted keys.
func (d Draft) LabelString() string {
	if len(d.Item) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(d.Item))
	for k := range d.Item {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(",")
		}
		key, _ := json.Marshal(k)
		value, _ := json.Marshal(d.Item[k])
		b.Write(key)
		b.WriteString(":")
		b.Write(value)
	}
	b.WriteString("}")

	return b.String()
}

// ErrBadReply is returned for replies that hold no usable suggestion.
var ErrBadReply = errors.New("unusable model reply")

// ParseSuggestions reads the JSON array the prompts ask for. Code fences,
// surrounding prose and a bare object instead of an array are tolerated.
func ParseSuggestions(raw string) ([]Draft, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrBadReply)
	}

	var data any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadReply, err)
	}

	var entries []any
	switch v := data.(type) {
	case []any:
		entries = v
	case map[string]any:
		entries = []any{v}
	default:
		return nil, fmt.Errorf("%w: unexpected %T", ErrBadReply, data)
	}

	drafts := make([]Draft, 0, len(entries))
	for _, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		draft := Draft{
			StyleName:   coerceString(obj["styleName"]),
			Description: coerceString(obj["description"]),
			Item:        map[string]string{},
		}
		if item, ok := obj["item"].(map[string]any); ok {
			for k, v := range item {
				draft.Item[strings.TrimSpace(k)] = coerceString(v)
			}
		}

		if draft.StyleName == "" && draft.Description == "" && len(draft.Item) == 0 {
			continue
		}
		drafts = append(drafts, draft)
	}

	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: no suggestions found", ErrBadReply)
	}

	return drafts, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.TrimSpace(strings.Trim(raw, "`"))

	// Drop prose around the payload.
	start := strings.IndexAny(raw, "[{")
	if start == -1 {
		return raw
	}
	closer := "]"
	if raw[start] == '{' {
		closer = "}"
	}
	end := strings.LastIndex(raw, closer)
	if end < start {
		return raw[start:]
	}
	return raw[start : end+1]
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
