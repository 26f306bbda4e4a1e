package catalog

import (
	"fmt"
)

// Entry is one film in the catalog. Immutable after load; CompositeText is
// derived once and cached for the lifetime of the loaded catalog.
type Entry struct {
	ID          string `json:"film_id"`
	Title       string `json:"title"`
	Director    string `json:"director"`
	Year        int    `json:"year"`
	Genre       string `json:"genre"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
	Mood        string `json:"mood"`
	BlockID     string `json:"block_id"`

	CompositeText string `json:"-"`
}

// Catalog is the ordered film referential. Entry order is load order and is
// the alignment contract for the embedding store: vector row i always
// describes Entries()[i]. The slice is never filtered or re-sorted in place.
type Catalog struct {
	entries []Entry
}

func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, dataErr("new", DataErrorEmptyCatalog, "catalog has no entries", nil)
	}
	for i := range entries {
		if entries[i].Category == "" {
			return nil, dataErr("new", DataErrorMissingCategory,
				fmt.Sprintf("entry %q (row %d) has no category", entries[i].ID, i), nil)
		}
		entries[i].CompositeText = BuildCompositeText(entries[i])
	}
	return &Catalog{entries: entries}, nil
}

// BuildCompositeText formats the single string that gets embedded for an
// entry. Field order and punctuation are part of the contract: changing
// them changes every embedding.
func BuildCompositeText(e Entry) string {
	return fmt.Sprintf(
		"%s (%d). Directed by %s. Genre: %s. Description: %s Keywords: %s. Mood: %s.",
		e.Title, e.Year, e.Director, e.Genre, e.Description, e.Keywords, e.Mood,
	)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

func (c *Catalog) Entry(i int) Entry {
	return c.entries[i]
}

// Entries returns a copy so callers cannot break load order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// CompositeTexts returns the embedding inputs in entry order.
func (c *Catalog) CompositeTexts() []string {
	out := make([]string, len(c.entries))
	for i := range c.entries {
		out[i] = c.entries[i].CompositeText
	}
	return out
}

// Categories returns the distinct coarse category labels in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool, 8)
	out := make([]string, 0, 8)
	for i := range c.entries {
		cat := c.entries[i].Category
		if !seen[cat] {
			seen[cat] = true
			out = append(out, cat)
		}
	}
	return out
}
