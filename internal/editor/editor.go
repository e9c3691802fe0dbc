// Package editor implements the structured content editor behind the
// dashboard: pure operations over the nested collections of a draft, the
// per-user session that holds the draft while it is being edited, and the
// pipeline that validates and persists it.
package editor

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/validate"
	"github.com/rs/zerolog"
)

var editorLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	editorLogger = l
}

var (
	ErrUnknownPath     = errors.New("unknown collection path")
	ErrUnknownOp       = errors.New("unknown operation")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNotSetLike      = errors.New("collection does not support toggle")
	ErrBadValue        = errors.New("value does not fit the collection")
	ErrNotImageSlot    = errors.New("path does not hold images")
	ErrSubmitting      = errors.New("draft is being submitted")
	ErrSubmitInFlight  = errors.New("a submission is already in progress")
	ErrClosed          = errors.New("editor session is closed")
)

type SessionID string

type OpKind string

const (
	OpAppend OpKind = "append"
	OpRemove OpKind = "remove"
	OpUpdate OpKind = "update"
	OpToggle OpKind = "toggle"
	OpSet    OpKind = "set"
)

// Op is a path-addressed edit as sent by the editor page, for example
// {"op":"remove","path":"sections[2].images","index":0}.
type Op struct {
	Op    OpKind          `json:"op"`
	Path  string          `json:"path"`
	Index int             `json:"index,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// State is a read-only view of a session, safe to serialize.
type State struct {
	ID          SessionID       `json:"id"`
	Kind        model.Kind      `json:"kind"`
	RecordID    string          `json:"recordId,omitempty"`
	Draft       any             `json:"draft"`
	Status      Status          `json:"status"`
	FieldErrors validate.Errors `json:"fieldErrors,omitempty"`
	Error       string          `json:"error,omitempty"`
	Uploads     int             `json:"uploads"`
	Dirty       bool            `json:"dirty"`
	Version     uint64          `json:"version"`
}

// Outcome reports how a submission ended.
type Outcome struct {
	Status      Status          `json:"status"`
	FieldErrors validate.Errors `json:"fieldErrors,omitempty"`
	Error       string          `json:"error,omitempty"`
	Redirect    string          `json:"redirect,omitempty"`
}

// UploadToken ties an asynchronous image upload to the session state it was
// started from.
type UploadToken struct {
	Path       string `json:"path"`
	Index      int    `json:"index"`
	generation uint64
}

// Editor is the kind-independent face of a Session, used by the HTTP layer
// and the draft stores.
type Editor interface {
	ID() SessionID
	Kind() model.Kind
	Owner() model.UserID
	RecordID() string

	State() State
	Version() uint64
	Generation() uint64
	Check() validate.Errors

	ApplyOp(op Op) error
	Reset()
	Close()
	Closed() bool

	BeginUpload(path string, index int) (UploadToken, error)
	CompleteUpload(token UploadToken, url string) bool
	FailUpload(token UploadToken)

	Submit(ctx context.Context, user model.UserID) (Outcome, error)

	Export() ([]byte, error)
	Restore(data []byte) error
}
