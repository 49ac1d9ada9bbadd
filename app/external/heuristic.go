package external

import "strings"

// Categories is the fixed category enumeration offered to readers.
var Categories = []string{"Technology", "Travel", "Food", "Lifestyle", "Health", "Writing"}

const (
	minMatches     = 5
	padLimit       = 10
	fallbackSample = 6
)

type keywords struct {
	tags    []string
	content []string
}

// categoryKeywords is keyed by the lower-cased category.
var categoryKeywords = map[string]keywords{
	"technology": {
		tags:    []string{"tech", "computer", "software", "programming", "science", "gadget"},
		content: []string{"technology", "computer", "software", "internet", "digital", "code", "robot"},
	},
	"travel": {
		tags:    []string{"travel", "adventure", "vacation", "trip", "nature", "explore"},
		content: []string{"travel", "journey", "trip", "vacation", "destination", "abroad", "adventure"},
	},
	"food": {
		tags:    []string{"food", "recipe", "cooking", "cuisine", "dinner", "baking"},
		content: []string{"food", "recipe", "delicious", "cook", "meal", "taste", "restaurant"},
	},
	"lifestyle": {
		tags:    []string{"lifestyle", "life", "fashion", "love", "family", "home"},
		content: []string{"lifestyle", "happiness", "family", "home", "daily", "routine"},
	},
	"health": {
		tags:    []string{"health", "fitness", "wellness", "medical", "exercise", "sport"},
		content: []string{"health", "fitness", "exercise", "wellness", "doctor", "diet", "sleep"},
	},
	"writing": {
		tags:    []string{"writing", "books", "poetry", "literature", "fiction", "story"},
		content: []string{"writing", "write", "story", "book", "novel", "author", "poem"},
	},
}

// MatchCategory picks the source posts that belong to category and retags
// them so the category is their first tag.
//
// Posts qualify when a tag contains a category tag keyword or the title or
// body contains a content keyword. With fewer than five matches the result is
// padded to ten with other source posts. Categories without keywords match on
// tag equality. When nothing qualifies, the first six source posts are
// returned, so a non-empty source always yields a non-empty result.
func MatchCategory(category string, source []Post) []Post {
	kw, known := categoryKeywords[strings.ToLower(category)]

	var matched []Post
	taken := make(map[int]bool)
	for _, p := range source {
		if qualifies(p, category, kw, known) {
			matched = append(matched, withCategory(p, category))
			taken[p.ID] = true
		}
	}

	switch {
	case len(matched) == 0:
		return forceTag(source, category, nil, fallbackSample)
	case known && len(matched) < minMatches:
		return append(matched, forceTag(source, category, taken, padLimit-len(matched))...)
	}
	return matched
}

func qualifies(p Post, category string, kw keywords, known bool) bool {
	if !known {
		for _, tag := range p.Tags {
			if tag == category {
				return true
			}
		}
		return false
	}

	for _, tag := range p.Tags {
		tag = strings.ToLower(tag)
		for _, k := range kw.tags {
			if strings.Contains(tag, k) {
				return true
			}
		}
	}
	text := strings.ToLower(p.Title + " " + p.Body)
	for _, k := range kw.content {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// forceTag takes up to n posts not in skip and tags them with category.
func forceTag(source []Post, category string, skip map[int]bool, n int) []Post {
	var out []Post
	for _, p := range source {
		if len(out) >= n {
			break
		}
		if skip[p.ID] {
			continue
		}
		out = append(out, withCategory(p, category))
	}
	return out
}

// withCategory returns a copy of p whose tags start with category, with any
// other occurrence of it removed.
func withCategory(p Post, category string) Post {
	tags := make([]string, 0, len(p.Tags)+1)
	tags = append(tags, category)
	for _, tag := range p.Tags {
		if !strings.EqualFold(tag, category) {
			tags = append(tags, tag)
		}
	}
	p.Tags = tags
	return p
}
