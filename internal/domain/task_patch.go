package domain

import (
	"encoding/json"
	"fmt"
)

// Optional holds a value that may or may not have been supplied.
// Set distinguishes "field absent" from "field present", including a
// present JSON null, which leaves Set true and Value at its zero value.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// UnmarshalJSON is only invoked by encoding/json when the field is present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// TaskPatch is a merge-patch for a task: only fields that are Set overwrite
// the stored value; everything else keeps its prior value.
type TaskPatch struct {
	Title       Optional[string]  `json:"title"`
	Description Optional[*string] `json:"description"`
	Status      Optional[Status]  `json:"status"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set
}

// Validate checks the supplied fields. Absent fields are never validated.
func (p TaskPatch) Validate() error {
	if p.Title.Set {
		title := NormalizeTitle(p.Title.Value)
		if title == "" {
			return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyTaskTitle)
		}
		if len([]rune(title)) > MaxTitleLength {
			return fmt.Errorf("%w: %w", ErrValidation, ErrTaskTitleTooLong)
		}
	}

	if p.Status.Set && !p.Status.Value.IsValid() {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidStatus)
	}

	return nil
}

// Apply merges the patch into t field by field and reports whether any
// value actually changed. Timestamps are left to the caller.
func (p TaskPatch) Apply(t *Task) bool {
	changed := false

	if p.Title.Set {
		title := NormalizeTitle(p.Title.Value)
		if title != t.Title {
			t.Title = title
			changed = true
		}
	}

	if p.Description.Set {
		if !equalStringPtr(t.Description, p.Description.Value) {
			if p.Description.Value == nil {
				t.Description = nil
			} else {
				d := *p.Description.Value
				t.Description = &d
			}
			changed = true
		}
	}

	if p.Status.Set && p.Status.Value != t.Status {
		t.Status = p.Status.Value
		changed = true
	}

	return changed
}

// MarshalJSON writes only the fields that are Set, so the encoded patch
// round-trips through UnmarshalJSON with the same absent/present shape.
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 3)
	if p.Title.Set {
		out["title"] = p.Title.Value
	}
	if p.Description.Set {
		out["description"] = p.Description.Value
	}
	if p.Status.Set {
		out["status"] = p.Status.Value
	}
	return json.Marshal(out)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
