// Package categories keeps the per-account keyword rules used to suggest a
// category for a new expense description.
//
// Rules are an ordered mapping: suggestion walks categories in insertion
// order and the first one with a matching keyword wins, so the order must
// survive a JSON round-trip.
package categories

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/spendkeeper/internal/common"
)

// Rules maps category names to lowercase keyword substrings, in insertion order.
type Rules struct {
	names    []string
	keywords map[string][]string
}

// NewRules returns empty rules.
func NewRules() Rules {
	return Rules{keywords: make(map[string][]string)}
}

// Defaults returns the rules every new account starts with.
func Defaults() Rules {
	r := NewRules()
	r.set("Food", []string{"grocery", "restaurant", "lunch"})
	r.set("Transport", []string{"uber", "taxi", "gas"})
	r.set("Entertainment", []string{"movie", "game", "concert"})
	r.set("Bills", []string{"electric", "water", "internet"})
	return r
}

// Fallback is what a missing or unreadable categories file reads as.
func Fallback() Rules {
	r := NewRules()
	r.set(common.DefaultCategory, nil)
	return r
}

func (r *Rules) set(name string, keywords []string) {
	if r.keywords == nil {
		r.keywords = make(map[string][]string)
	}
	if _, ok := r.keywords[name]; !ok {
		r.names = append(r.names, name)
	}
	if keywords == nil {
		keywords = []string{}
	}
	r.keywords[name] = keywords
}

// Names returns category names in mapping order.
func (r Rules) Names() []string { return slices.Clone(r.names) }

// Keywords returns the keywords of name, or nil if it is not a category.
func (r Rules) Keywords(name string) []string { return slices.Clone(r.keywords[name]) }

func (r Rules) Has(name string) bool {
	_, ok := r.keywords[name]
	return ok
}

func (r Rules) Len() int { return len(r.names) }

// Clone returns a deep copy, so callers can mutate without touching r.
func (r Rules) Clone() Rules {
	c := NewRules()
	for _, n := range r.names {
		c.set(n, slices.Clone(r.keywords[n]))
	}
	return c
}

// Suggest returns the first category, in mapping order, having a keyword
// contained in the lowercased description, or common.DefaultCategory.
func Suggest(description string, rules Rules) string {
	desc := strings.ToLower(description)
	for _, name := range rules.names {
		for _, kw := range rules.keywords[name] {
			if kw == "" {
				continue
			}
			if strings.Contains(desc, strings.ToLower(kw)) {
				return name
			}
		}
	}
	return common.DefaultCategory
}

// AddCategory inserts name with no keywords. It reports whether rules changed.
func AddCategory(rules *Rules, name string) bool {
	if rules.Has(name) {
		return false
	}
	rules.set(name, nil)
	return true
}

// AddKeyword appends a lowercased keyword to an existing category. It
// reports whether rules changed.
func AddKeyword(rules *Rules, name, keyword string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" || !rules.Has(name) {
		return false
	}
	if slices.Contains(rules.keywords[name], kw) {
		return false
	}
	rules.keywords[name] = append(rules.keywords[name], kw)
	return true
}

// MarshalJSON writes the mapping as a JSON object in mapping order.
func (r Rules) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		kws := r.keywords[name]
		if kws == nil {
			kws = []string{}
		}
		v, err := json.Marshal(kws)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of string arrays, keeping key order.
// A repeated key keeps its first position and its last value.
func (r *Rules) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("categories: want object, got %v", tok)
	}

	out := NewRules()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("categories: want key, got %v", tok)
		}
		var kws []string
		if err := dec.Decode(&kws); err != nil {
			return fmt.Errorf("categories: keywords of %q: %w", name, err)
		}
		out.set(name, kws)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = out
	return nil
}
