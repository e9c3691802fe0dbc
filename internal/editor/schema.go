package editor

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/validate"
)

// Schema describes one kind of draft: how to create, copy and validate it,
// which collections and scalar fields the editor may address by path, and
// how it is shaped for the backend.
type Schema[D any] struct {
	Kind      model.Kind
	New       func() *D
	Clone     func(*D) *D
	Normalize func(*D)
	Validate  func(*D) validate.Errors
	Payload   func(d *D, user model.UserID) any
	Redirect  string

	lists   map[string]binding[D]
	scalars map[string]scalar[D]
}

type scalar[D any] struct {
	set   func(d *D, raw json.RawMessage) error
	image bool
}

// Apply returns a copy of d with op applied. d itself is never modified.
func (s *Schema[D]) Apply(d *D, op Op) (*D, error) {
	next := s.Clone(d)

	if op.Op == OpSet {
		f, ok := s.scalars[op.Path]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPath, op.Path)
		}
		if err := f.set(next, op.Value); err != nil {
			return nil, err
		}
		return next, nil
	}

	pattern, idx, err := parsePath(op.Path)
	if err != nil {
		return nil, err
	}
	b, ok := s.lists[pattern]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPath, op.Path)
	}
	if err := b.apply(next, idx, op); err != nil {
		return nil, fmt.Errorf("%s %s: %w", op.Op, op.Path, err)
	}
	return next, nil
}

// isImage reports whether path addresses an image reference: either a
// scalar image field or a collection of images.
func (s *Schema[D]) isImage(path string) bool {
	if f, ok := s.scalars[path]; ok {
		return f.image
	}
	pattern, _, err := parsePath(path)
	if err != nil {
		return false
	}
	b, ok := s.lists[pattern]
	return ok && b.image()
}

// place stores an uploaded image URL at path, slot index.
func (s *Schema[D]) place(d *D, path string, index int, url string) (*D, error) {
	next := s.Clone(d)

	if f, ok := s.scalars[path]; ok {
		if !f.image {
			return nil, ErrNotImageSlot
		}
		raw, _ := json.Marshal(url)
		if err := f.set(next, raw); err != nil {
			return nil, err
		}
		return next, nil
	}

	pattern, idx, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	b, ok := s.lists[pattern]
	if !ok || !b.image() {
		return nil, ErrNotImageSlot
	}
	if err := b.place(next, idx, index, url); err != nil {
		return nil, err
	}
	return next, nil
}

// Paths lists every collection pattern and scalar field the schema accepts.
func (s *Schema[D]) Paths() (lists, scalars []string) {
	for p := range s.lists {
		lists = append(lists, p)
	}
	for p := range s.scalars {
		scalars = append(scalars, p)
	}
	return lists, scalars
}

func stringField[D any](field func(*D) *string) scalar[D] {
	return scalar[D]{set: func(d *D, raw json.RawMessage) error {
		v, err := decodeString(raw)
		if err != nil {
			return err
		}
		*field(d) = v
		return nil
	}}
}

func imageField[D any](field func(*D) *string) scalar[D] {
	f := stringField(field)
	f.image = true
	return f
}

func enumField[D any](field func(*D) *string, allowed func(string) bool) scalar[D] {
	return scalar[D]{set: func(d *D, raw json.RawMessage) error {
		v, err := decodeString(raw)
		if err != nil {
			return err
		}
		if !allowed(v) {
			return fmt.Errorf("%w: %q", ErrBadValue, v)
		}
		*field(d) = v
		return nil
	}}
}

// dateField accepts "2006-01-02" as sent by date inputs, or a full RFC 3339
// timestamp. An empty string or null clears the date.
func dateField[D any](field func(*D) **time.Time) scalar[D] {
	return scalar[D]{set: func(d *D, raw json.RawMessage) error {
		if len(raw) == 0 || string(raw) == "null" {
			*field(d) = nil
			return nil
		}
		v, err := decodeString(raw)
		if err != nil {
			return err
		}
		if v = strings.TrimSpace(v); v == "" {
			*field(d) = nil
			return nil
		}
		t, err := parseDate(v)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		*field(d) = &t
		return nil
	}}
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ISOTime formats t the way the backend stores dates.
func ISOTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
