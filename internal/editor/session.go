package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/validate"
	"github.com/google/uuid"
)

var ErrRecordMismatch = errors.New("snapshot belongs to another record")

var (
	_ Editor = (*Session[model.BlogDraft])(nil)
	_ Editor = (*Session[model.ProjectDraft])(nil)
)

// Session holds one draft while it is being edited. Every change replaces
// the current snapshot with a new one; snapshots handed out are copies.
//
// HTTP requests, upload completions and the autosaver reach a session from
// different goroutines, so every transition happens under mu.
type Session[D any] struct {
	mu sync.Mutex

	id       SessionID
	owner    model.UserID
	recordID string
	hydrated bool

	initial *D
	current *D

	status      Status
	fieldErrors validate.Errors
	submitErr   string
	uploads     int

	// generation changes whenever the draft is replaced wholesale; uploads
	// started under an older generation are discarded.
	generation uint64
	version    uint64
	closed     bool

	schema   *Schema[D]
	pipeline *Pipeline[D]
}

func NewSession[D any](schema *Schema[D], owner model.UserID, pipeline *Pipeline[D]) *Session[D] {
	return &Session[D]{
		id:       SessionID(uuid.New().String()),
		owner:    owner,
		initial:  schema.New(),
		current:  schema.New(),
		status:   StatusIdle,
		schema:   schema,
		pipeline: pipeline,
	}
}

func (s *Session[D]) ID() SessionID       { return s.id }
func (s *Session[D]) Kind() model.Kind    { return s.schema.Kind }
func (s *Session[D]) Owner() model.UserID { return s.owner }

func (s *Session[D]) RecordID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordID
}

// Hydrate loads a fetched record as both the initial and the current
// snapshot. Hydrating again with the same record is ignored.
func (s *Session[D]) Hydrate(recordID string, d *D) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated && s.recordID == recordID {
		return
	}

	d = s.schema.Clone(d)
	s.schema.Normalize(d)

	s.recordID = recordID
	s.hydrated = true
	s.initial = d
	s.current = s.schema.Clone(d)
	s.clearLocked()
}

// Current returns a copy of the current draft.
func (s *Session[D]) Current() *D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema.Clone(s.current)
}

// Apply replaces the current draft with fn applied to a copy of it.
func (s *Session[D]) Apply(fn func(*D) (*D, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.status == StatusSubmitting {
		return ErrSubmitting
	}

	next, err := fn(s.schema.Clone(s.current))
	if err != nil {
		return err
	}
	s.current = next
	s.touchLocked()
	return nil
}

func (s *Session[D]) ApplyOp(op Op) error {
	return s.Apply(func(d *D) (*D, error) {
		return s.schema.Apply(d, op)
	})
}

// touchLocked records an edit. Any reported outcome goes back to idle and
// field errors already on screen are recomputed against the new snapshot.
func (s *Session[D]) touchLocked() {
	if s.status == StatusSuccess || s.status == StatusError {
		s.status = StatusIdle
		s.submitErr = ""
	}
	if len(s.fieldErrors) > 0 {
		s.fieldErrors = s.schema.Validate(s.current)
	}
	s.version++
}

func (s *Session[D]) clearLocked() {
	s.status = StatusIdle
	s.fieldErrors = nil
	s.submitErr = ""
	s.generation++
	s.version++
}

// Reset returns to the initial snapshot: empty for a new draft, the
// fetched record for an edit.
func (s *Session[D]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = s.schema.Clone(s.initial)
	s.clearLocked()
}

// Close discards the session. Pending uploads and submissions that finish
// afterwards leave it untouched.
func (s *Session[D]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.generation++
}

func (s *Session[D]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Generation changes when the draft is replaced wholesale: reset, restore,
// a successful submit or close.
func (s *Session[D]) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Session[D]) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Session[D]) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session[D]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		ID:          s.id,
		Kind:        s.schema.Kind,
		RecordID:    s.recordID,
		Draft:       s.schema.Clone(s.current),
		Status:      s.status,
		FieldErrors: s.fieldErrors,
		Error:       s.submitErr,
		Uploads:     s.uploads,
		Dirty:       !reflect.DeepEqual(s.current, s.initial),
		Version:     s.version,
	}
}

// Check validates the current draft and keeps the result for display.
func (s *Session[D]) Check() validate.Errors {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := s.schema.Validate(s.current)
	if errs.Valid() {
		s.fieldErrors = nil
	} else {
		s.fieldErrors = errs
	}
	return errs
}

func (s *Session[D]) BeginUpload(path string, index int) (UploadToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return UploadToken{}, ErrClosed
	}
	if !s.schema.isImage(path) {
		return UploadToken{}, fmt.Errorf("%w: %q", ErrNotImageSlot, path)
	}

	s.uploads++
	return UploadToken{Path: path, Index: index, generation: s.generation}, nil
}

// CompleteUpload stores url in the slot the upload was started for. The
// URL is merged into the current snapshot, so a slot the user removed in
// the meantime is added back. Uploads that outlived the session, a reset or
// their parent block are dropped and CompleteUpload reports false.
func (s *Session[D]) CompleteUpload(token UploadToken, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.endUploadLocked()

	if s.closed || token.generation != s.generation {
		editorLogger.Debug().Str("session", string(s.id)).Str("path", token.Path).Msg("Discarding stale upload")
		return false
	}

	next, err := s.schema.place(s.current, token.Path, token.Index, url)
	if err != nil {
		editorLogger.Debug().Err(err).Str("session", string(s.id)).Str("path", token.Path).Msg("Upload target is gone")
		return false
	}
	s.current = next
	s.touchLocked()
	return true
}

func (s *Session[D]) FailUpload(token UploadToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endUploadLocked()
}

func (s *Session[D]) endUploadLocked() {
	if s.uploads > 0 {
		s.uploads--
	}
}

func (s *Session[D]) Submit(ctx context.Context, user model.UserID) (Outcome, error) {
	if s.pipeline == nil {
		return Outcome{}, errors.New("editor: session has no pipeline")
	}
	return s.pipeline.Run(ctx, s, user)
}

type snapshot struct {
	RecordID string          `json:"recordId,omitempty"`
	Draft    json.RawMessage `json:"draft"`
}

// Export serializes the current draft for autosave.
func (s *Session[D]) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := json.Marshal(s.current)
	if err != nil {
		return nil, fmt.Errorf("marshal draft: %w", err)
	}
	return json.Marshal(snapshot{RecordID: s.recordID, Draft: draft})
}

// Restore replaces the current draft with an exported one. The initial
// snapshot is kept, so the restored draft counts as unsaved work.
func (s *Session[D]) Restore(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}

	d := s.schema.New()
	if err := json.Unmarshal(snap.Draft, d); err != nil {
		return fmt.Errorf("unmarshal draft: %w", err)
	}
	s.schema.Normalize(d)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.status == StatusSubmitting {
		return ErrSubmitting
	}
	if snap.RecordID != s.recordID {
		return ErrRecordMismatch
	}

	s.current = d
	s.clearLocked()
	return nil
}

// beginSubmit moves an idle session to submitting and returns the snapshot
// to persist. An invalid draft keeps its status and reports field errors.
func (s *Session[D]) beginSubmit() (*D, string, validate.Errors, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, "", nil, ErrClosed
	}
	if s.status == StatusSubmitting {
		return nil, "", nil, ErrSubmitInFlight
	}

	if errs := s.schema.Validate(s.current); !errs.Valid() {
		s.fieldErrors = errs
		s.status = StatusIdle
		s.submitErr = ""
		s.version++
		return nil, "", errs, nil
	}

	s.fieldErrors = nil
	s.submitErr = ""
	s.status = StatusSubmitting
	s.version++
	return s.schema.Clone(s.current), s.recordID, nil, nil
}

func (s *Session[D]) finishSubmit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if err != nil {
		s.status = StatusError
		s.submitErr = err.Error()
		s.version++
		return
	}

	s.current = s.schema.Clone(s.initial)
	s.fieldErrors = nil
	s.submitErr = ""
	s.status = StatusSuccess
	s.generation++
	s.version++
}
