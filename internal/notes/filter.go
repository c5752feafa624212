package notes

import (
	"slices"
	"sort"
	"strings"
)

// NormalizeTags trims whitespace, drops empties, and suppresses duplicates
// while preserving first-seen order. The result is never nil, so tags
// always serialize as a JSON array.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// Filter narrows notes by a free-text query and an optional tag. A note
// matches when (query is empty OR title or content contains it
// case-insensitively) AND (tag is empty OR the note carries it). Pure
// function over already-loaded data; never hits storage.
func Filter(notes []Note, query, tag string) []Note {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Note, 0, len(notes))
	for _, note := range notes {
		if query != "" &&
			!strings.Contains(strings.ToLower(note.Title), query) &&
			!strings.Contains(strings.ToLower(note.Content), query) {
			continue
		}
		if tag != "" && !slices.Contains(note.Tags, tag) {
			continue
		}
		out = append(out, note)
	}
	return out
}

// TagUniverse returns the sorted set of distinct tags across notes,
// recomputed from whatever list is currently loaded.
func TagUniverse(notes []Note) []string {
	seen := make(map[string]struct{})
	for _, note := range notes {
		for _, tag := range note.Tags {
			seen[tag] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
