package models

import (
	"fmt"
	"strings"
	"time"
)

// Note is a free-text journal entry.
type Note struct {
	Project   string    `json:"project"`
	Timestamp time.Time `json:"timestamp"`
	Comment   string    `json:"comment"`
}

// NewNote validates and builds a journal entry.
func NewNote(project string, timestamp time.Time, comment string) (Note, error) {
	n := Note{
		Project:   strings.TrimSpace(project),
		Timestamp: timestamp,
		Comment:   strings.TrimSpace(comment),
	}
	if err := ValidateProject(n.Project); err != nil {
		return Note{}, err
	}
	if n.Comment == "" {
		return Note{}, fmt.Errorf("%w: comment is required", ErrInvalidInput)
	}
	return n, nil
}
