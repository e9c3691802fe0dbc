package editor

import (
	"encoding/json"
	"fmt"
	"strings"
)

// binding performs path-driven operations on one collection of a draft D.
// The draft passed in is always a private clone, so bindings may assign
// through it freely.
type binding[D any] interface {
	apply(d *D, idx []int, op Op) error
	image() bool
	place(d *D, idx []int, i int, url string) error
}

// stringList binds a []string collection.
type stringList[D any] struct {
	locate func(d *D, idx []int) (*[]string, bool)
	floor  int
	set    bool
	images bool
}

func (b stringList[D]) image() bool { return b.images }

func (b stringList[D]) apply(d *D, idx []int, op Op) error {
	p, ok := b.locate(d, idx)
	if !ok {
		return ErrIndexOutOfRange
	}

	switch op.Op {
	case OpAppend:
		v, err := decodeString(op.Value)
		if err != nil {
			return err
		}
		if b.set {
			if v = strings.TrimSpace(v); v == "" {
				return fmt.Errorf("%w: empty entry", ErrBadValue)
			}
			*p = AddUnique(*p, v)
			return nil
		}
		*p = Append(*p, v)
	case OpRemove:
		if !inRange(op.Index, len(*p)) {
			return ErrIndexOutOfRange
		}
		*p = RemoveAt(*p, op.Index, b.floor)
	case OpUpdate:
		if !inRange(op.Index, len(*p)) {
			return ErrIndexOutOfRange
		}
		v, err := decodeString(op.Value)
		if err != nil {
			return err
		}
		if b.set {
			if v = strings.TrimSpace(v); v == "" {
				return fmt.Errorf("%w: empty entry", ErrBadValue)
			}
			for i, existing := range *p {
				if i != op.Index && existing == v {
					return fmt.Errorf("%w: %q is already listed", ErrBadValue, v)
				}
			}
		}
		*p = UpdateAt(*p, op.Index, func(string) string { return v })
	case OpToggle:
		if !b.set {
			return ErrNotSetLike
		}
		v, err := decodeString(op.Value)
		if err != nil {
			return err
		}
		if v = strings.TrimSpace(v); v == "" {
			return fmt.Errorf("%w: empty entry", ErrBadValue)
		}
		*p = Toggle(*p, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, op.Op)
	}
	return nil
}

// place writes url into slot i, appending when the slot no longer exists.
func (b stringList[D]) place(d *D, idx []int, i int, url string) error {
	p, ok := b.locate(d, idx)
	if !ok {
		return ErrIndexOutOfRange
	}
	if inRange(i, len(*p)) {
		*p = UpdateAt(*p, i, func(string) string { return url })
		return nil
	}
	*p = Append(*p, url)
	return nil
}

// recordList binds a collection of structs. Partial updates are merged by
// decoding the JSON value over a copy of the element.
type recordList[D, T any] struct {
	locate func(d *D, idx []int) (*[]T, bool)
	floor  int
	fresh  func() T
	clone  func(T) T
}

func (b recordList[D, T]) image() bool { return false }

func (b recordList[D, T]) place(*D, []int, int, string) error { return ErrNotImageSlot }

func (b recordList[D, T]) apply(d *D, idx []int, op Op) error {
	p, ok := b.locate(d, idx)
	if !ok {
		return ErrIndexOutOfRange
	}

	switch op.Op {
	case OpAppend:
		v := b.fresh()
		if err := mergeJSON(&v, op.Value); err != nil {
			return err
		}
		*p = Append(*p, v)
	case OpRemove:
		if !inRange(op.Index, len(*p)) {
			return ErrIndexOutOfRange
		}
		*p = RemoveAt(*p, op.Index, b.floor)
	case OpUpdate:
		if !inRange(op.Index, len(*p)) {
			return ErrIndexOutOfRange
		}
		v := b.clone((*p)[op.Index])
		if err := mergeJSON(&v, op.Value); err != nil {
			return err
		}
		*p = UpdateAt(*p, op.Index, func(T) T { return v })
	case OpToggle:
		return ErrNotSetLike
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, op.Op)
	}
	return nil
}

func decodeString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadValue, err)
	}
	return s, nil
}

func mergeJSON(dst any, raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrBadValue, err)
	}
	return nil
}

func identity[T any](v T) T { return v }
