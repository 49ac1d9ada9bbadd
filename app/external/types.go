// Package external normalizes posts from a third-party content source into
// the local post shape.
package external

import (
	"bytes"
	"encoding/json"
)

// Post is a record as served by the content source.
type Post struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UserID    int       `json:"userId"`
	Tags      []string  `json:"tags"`
	Reactions Reactions `json:"reactions"`
}

// Reactions accepts both the legacy numeric form and the {likes, dislikes} object.
type Reactions struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

func (r *Reactions) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '{' {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*r = Reactions{Likes: n}
		return nil
	}
	type plain Reactions
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Reactions(p)
	return nil
}

// Page is one response of the content source.
type Page struct {
	Posts []Post `json:"posts"`
	Total int    `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}
