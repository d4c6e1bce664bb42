package tasks

import (
	"errors"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// TestProperty_StoreMatchesModel drives the store with random operations
// and compares it against a plain slice model.
func TestProperty_StoreMatchesModel(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := NewStore()
		var model []string

		steps := rapid.IntRange(1, 50).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				text := rapid.StringMatching(`[ a-z]{0,8}`).Draw(rt, "text")
				err := s.Add(text)
				if trimmed := strings.TrimSpace(text); trimmed == "" {
					if !errors.Is(err, ErrEmptyTask) {
						rt.Fatalf("Add(%q) error = %v", text, err)
					}
				} else {
					if err != nil {
						rt.Fatalf("Add(%q): %v", text, err)
					}
					model = append(model, trimmed)
				}
			case 1:
				idx := rapid.IntRange(-2, len(model)+2).Draw(rt, "index")
				_, err := s.Remove(idx)
				if idx < 0 || idx >= len(model) {
					if !errors.Is(err, ErrIndexOutOfRange) {
						rt.Fatalf("Remove(%d) error = %v", idx, err)
					}
				} else {
					if err != nil {
						rt.Fatalf("Remove(%d): %v", idx, err)
					}
					model = append(model[:idx], model[idx+1:]...)
				}
			case 2:
				s.Clear()
				model = nil
			}

			got := s.Items()
			if len(got) != len(model) {
				rt.Fatalf("len = %d, model len = %d", len(got), len(model))
			}
			for j := range model {
				if got[j] != model[j] {
					rt.Fatalf("item %d = %q, model %q", j, got[j], model[j])
				}
			}
		}
	})
}
