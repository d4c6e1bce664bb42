// Package tasks holds the ordered task list.
//
// Store has no lock. It belongs to the dispatcher event loop and must only
// be touched from that goroutine.
package tasks

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyTask is returned when a blank task is added.
	ErrEmptyTask = errors.New("task text is empty")
	// ErrIndexOutOfRange is returned when no task exists at an index.
	ErrIndexOutOfRange = errors.New("task index out of range")
)

// Store is an ordered list of task strings. Duplicates are allowed and
// display order is insertion order.
type Store struct {
	items []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add appends text, trimmed of surrounding whitespace.
func (s *Store) Add(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyTask
	}
	s.items = append(s.items, text)
	return nil
}

// Remove deletes the task at index and returns its text.
func (s *Store) Remove(index int) (string, error) {
	if index < 0 || index >= len(s.items) {
		return "", fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(s.items))
	}
	removed := s.items[index]
	s.items = append(s.items[:index], s.items[index+1:]...)
	return removed, nil
}

// Clear removes every task.
func (s *Store) Clear() {
	s.items = nil
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.items)
}

// Items returns a copy of the tasks in display order.
func (s *Store) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
