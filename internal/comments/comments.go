// Package comments manages an ordered list of comments as plain values.
// Callers own the list; every operation returns a new slice.
package comments

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyComment = errors.New("comment text cannot be empty")
	ErrDuplicateID  = errors.New("comment id already in use")
)

type Comment struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type Stats struct {
	TotalComments int `json:"totalComments"`
}

// NextID returns one past the highest id in list. Once the newest comment is
// deleted its id comes back; callers that hand ids to clients should keep
// their own counter and use AddWithID.
func NextID(list []Comment) int {
	highest := 0
	for _, c := range list {
		if c.ID > highest {
			highest = c.ID
		}
	}
	return highest + 1
}

// Add appends a comment with the given text to a copy of list.
func Add(list []Comment, text string) ([]Comment, error) {
	return AddWithID(list, NextID(list), text)
}

// AddWithID appends a comment with a caller-allocated id to a copy of list.
func AddWithID(list []Comment, id int, text string) ([]Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}
	if _, ok := Find(list, id); ok {
		return nil, fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}

	out := make([]Comment, len(list), len(list)+1)
	copy(out, list)
	return append(out, Comment{ID: id, Text: text}), nil
}

// Delete returns a copy of list without the comment with the given id.
func Delete(list []Comment, id int) []Comment {
	out := make([]Comment, 0, len(list))
	for _, c := range list {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func Find(list []Comment, id int) (Comment, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return Comment{}, false
}

func GetStats(list []Comment) Stats {
	return Stats{TotalComments: len(list)}
}
