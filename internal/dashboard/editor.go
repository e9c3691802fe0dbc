package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/debemdeboas/folio/internal/auth"
	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/editor"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/repository"
	"github.com/debemdeboas/folio/internal/repository/drafts"
	"github.com/debemdeboas/folio/internal/sse"
	"github.com/debemdeboas/folio/internal/upload"
	"github.com/debemdeboas/folio/internal/view"
	"github.com/rs/zerolog"
)

const (
	maxOpsBody        = 1 << 20
	multipartOverhead = 1 << 20
	uploadTimeout     = 2 * time.Minute
)

// loadError is returned when the record an editor should start from could
// not be fetched.
type loadError struct {
	status  int
	message string
}

func (e *loadError) Error() string { return e.message }

// openSession creates an editor session for kind. A non-empty recordID
// hydrates the session from the backend first.
func (h *Handler) openSession(ctx context.Context, kind model.Kind, owner model.UserID, recordID string) (editor.Editor, error) {
	switch kind {
	case model.KindBlog:
		s := editor.NewBlogSession(owner, repository.Writer[model.Blog]{Store: h.Blogs})
		if recordID != "" {
			res := h.Blogs.FetchByID(ctx, recordID)
			if !res.Success {
				return nil, &loadError{res.Status, res.Message}
			}
			s.Hydrate(recordID, res.Data.Draft())
		}
		return s, nil
	case model.KindProject:
		s := editor.NewProjectSession(owner, repository.Writer[model.Project]{Store: h.Projects})
		if recordID != "" {
			res := h.Projects.FetchByID(ctx, recordID)
			if !res.Success {
				return nil, &loadError{res.Status, res.Message}
			}
			s.Hydrate(recordID, res.Data.Draft())
		}
		return s, nil
	}
	return nil, &loadError{http.StatusNotFound, config.ErrNotFound}
}

// Vocabulary lists the values the editor offers for enum and set fields.
type Vocabulary struct {
	Types      []string `json:"types"`
	Categories []string `json:"categories"`
	TechStack  []string `json:"techStack,omitempty"`
}

func vocabularyFor(kind model.Kind) Vocabulary {
	if kind == model.KindProject {
		return Vocabulary{Types: model.ProjectTypes, Categories: model.ProjectCategories, TechStack: model.TechStack}
	}
	return Vocabulary{Types: model.BlogTypes, Categories: model.BlogCategories}
}

// AutosaveInfo describes the autosave a session could be restored from.
type AutosaveInfo struct {
	Enabled   bool      `json:"enabled"`
	Available bool      `json:"available"`
	SavedAt   time.Time `json:"savedAt,omitzero"`
}

func (h *Handler) autosaveInfo(e editor.Editor) AutosaveInfo {
	if h.Autosaves == nil {
		return AutosaveInfo{}
	}
	info := AutosaveInfo{Enabled: h.Autosaver != nil}
	a, err := h.Autosaves.Load(drafts.KeyOf(e))
	switch {
	case err == nil:
		info.Available = true
		info.SavedAt = a.SavedAt
	case !errors.Is(err, drafts.ErrNoAutosave):
		dashLogger.Error().Err(err).Str("session", string(e.ID())).Msg("Failed to look up autosave")
	}
	return info
}

type editorPage struct {
	*model.PageData
	SessionID      editor.SessionID
	Kind           model.Kind
	Heading        string
	State          editor.State
	Vocabulary     Vocabulary
	Autosave       AutosaveInfo
	MaxUploadBytes int64
	BackURL        string
}

func (h *Handler) serveEditor(w http.ResponseWriter, r *http.Request, recordID string) {
	kind, ok := kindFromPath(r)
	if !ok {
		h.View.NotFound(w, r, view.PageData(r, "Not found"), config.ErrNotFound)
		return
	}
	user, _ := auth.UserIDFromContext(r.Context())

	e, err := h.openSession(r.Context(), kind, user, recordID)
	if err != nil {
		var le *loadError
		errors.As(err, &le)
		h.loadError(w, r, string(kind), le.status, le.message)
		return
	}
	h.Registry.Add(e)

	heading := "New " + string(kind)
	if recordID != "" {
		heading = "Edit " + string(kind)
	}

	isEditor := true
	pd := view.PageData(r, heading)
	pd.IsEditorPage = &isEditor

	zerolog.Ctx(r.Context()).Debug().
		Str("session", string(e.ID())).
		Str("kind", string(kind)).
		Str("record", recordID).
		Msg("Editor session opened")

	h.View.Page(w, r, http.StatusOK, config.TemplateEditor, editorPage{
		PageData:       pd,
		SessionID:      e.ID(),
		Kind:           kind,
		Heading:        heading,
		State:          e.State(),
		Vocabulary:     vocabularyFor(kind),
		Autosave:       h.autosaveInfo(e),
		MaxUploadBytes: h.MaxUploadBytes,
		BackURL:        "/dashboard/" + kind.Plural(),
	})
}

func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	h.serveEditor(w, r, "")
}

func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	h.serveEditor(w, r, r.PathValue("id"))
}

type apiError struct {
	Error string        `json:"error"`
	State *editor.State `json:"state,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	view.WriteJSON(w, status, apiError{Error: message})
}

// statusFor maps editor errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, editor.ErrClosed):
		return http.StatusGone
	case errors.Is(err, editor.ErrSubmitting),
		errors.Is(err, editor.ErrSubmitInFlight),
		errors.Is(err, editor.ErrRecordMismatch):
		return http.StatusConflict
	}
	return http.StatusUnprocessableEntity
}

// lookup returns the editor session id if it belongs to the signed-in
// user. Sessions of other users look like missing ones.
func (h *Handler) lookup(r *http.Request, id editor.SessionID) (editor.Editor, model.UserID, error) {
	user, _ := auth.UserIDFromContext(r.Context())
	e, err := h.Registry.Get(id, user)
	if errors.Is(err, drafts.ErrNotOwner) {
		zerolog.Ctx(r.Context()).Warn().Str("session", string(id)).Msg("Editor session requested by another user")
	}
	return e, user, err
}

// session returns the editor session named in the path.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (editor.Editor, model.UserID, bool) {
	e, user, err := h.lookup(r, editor.SessionID(r.PathValue("session")))
	if err != nil {
		writeError(w, http.StatusNotFound, config.ErrDraftNotFound)
		return nil, "", false
	}
	return e, user, true
}

// OwnsSession reports whether the signed-in user may watch session id.
func (h *Handler) OwnsSession(r *http.Request, id editor.SessionID) bool {
	_, _, err := h.lookup(r, id)
	return err == nil
}

func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.session(w, r)
	if !ok {
		return
	}
	view.WriteJSON(w, http.StatusOK, e.State())
}

// HandleClose ends a session, for example when the editor page is left.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.session(w, r)
	if !ok {
		return
	}
	h.Registry.Close(e.ID())
	w.WriteHeader(http.StatusNoContent)
}

// decodeOps accepts a single operation, an array of them, or an object
// with an "ops" array.
func decodeOps(body io.Reader) ([]editor.Op, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var ops []editor.Op
		err := json.Unmarshal(data, &ops)
		return ops, err
	}

	var req struct {
		editor.Op
		Ops []editor.Op `json:"ops"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	if len(req.Ops) > 0 {
		return req.Ops, nil
	}
	if req.Op.Op == "" {
		return nil, errors.New("no operation")
	}
	return []editor.Op{req.Op}, nil
}

// HandleOps applies edits in order. The first failing edit stops the batch;
// the ones before it stay applied and the response carries the new state.
func (h *Handler) HandleOps(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.session(w, r)
	if !ok {
		return
	}

	ops, err := decodeOps(http.MaxBytesReader(w, r.Body, maxOpsBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, config.ErrInvalidOp)
		return
	}

	for _, op := range ops {
		if err := e.ApplyOp(op); err != nil {
			zerolog.Ctx(r.Context()).Debug().Err(err).Str("op", string(op.Op)).Str("path", op.Path).Msg("Editor operation rejected")
			state := e.State()
			view.WriteJSON(w, statusFor(err), apiError{Error: err.Error(), State: &state})
			return
		}
	}
	view.WriteJSON(w, http.StatusOK, e.State())
}

type checkResponse struct {
	Valid bool         `json:"valid"`
	State editor.State `json:"state"`
}

func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.session(w, r)
	if !ok {
		return
	}
	errs := e.Check()
	view.WriteJSON(w, http.StatusOK, checkResponse{Valid: errs.Valid(), State: e.State()})
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.session(w, r)
	if !ok {
		return
	}
	e.Reset()
	h.publishState(e)
	view.WriteJSON(w, http.StatusOK, e.State())
}

// publishState tells other pages open on the same session that the draft
// was replaced wholesale.
func (h *Handler) publishState(e editor.Editor) {
	if h.Notifier != nil {
		h.Notifier.Notify(e.ID(), sse.EventState, e.State())
	}
}

// HandleSubmit runs the submission pipeline. A successful submission drops
// the autosave and ends the session; the client follows the redirect in
// the outcome.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	e, user, ok := h.session(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.AppConfig.Backend.Timeout)
	defer cancel()

	key := drafts.KeyOf(e)
	out, err := e.Submit(ctx, user)
	if err != nil {
		if out.Error == "" {
			out.Error = err.Error()
		}
		view.WriteJSON(w, statusFor(err), out)
		return
	}

	switch out.Status {
	case editor.StatusSuccess:
		if h.Autosaves != nil {
			if err := h.Autosaves.Delete(key); err != nil {
				dashLogger.Error().Err(err).Str("session", string(e.ID())).Msg("Failed to drop autosave")
			}
		}
		h.Registry.Close(e.ID())
		if isHtmx(r) {
			w.Header().Set(config.HHxRedirect, out.Redirect)
		}
		view.WriteJSON(w, http.StatusOK, out)
	case editor.StatusError:
		view.WriteJSON(w, http.StatusBadGateway, out)
	default:
		view.WriteJSON(w, http.StatusUnprocessableEntity, out)
	}
}

// UploadEvent is pushed to the editor page when a background upload ends.
type UploadEvent struct {
	Path    string       `json:"path"`
	Index   int          `json:"index"`
	URL     string       `json:"url,omitempty"`
	Applied bool         `json:"applied"`
	Error   string       `json:"error,omitempty"`
	State   editor.State `json:"state"`
}

type uploadAccepted struct {
	Token editor.UploadToken `json:"token"`
	State editor.State       `json:"state"`
}

// HandleUpload checks the image, reserves the slot and uploads in the
// background. The editor stays usable meanwhile; the result arrives as an
// SSE event.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.Uploader == nil {
		writeError(w, http.StatusServiceUnavailable, config.ErrUploadFailed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, upload.ErrImageTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "An image file is required")
		return
	}
	defer file.Close()

	index := 0
	if v := r.FormValue("index"); v != "" {
		if index, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid image index")
			return
		}
	}

	img, err := upload.ReadImage(header.Filename, file, h.MaxUploadBytes)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, upload.ErrImageTooLarge):
			status = http.StatusRequestEntityTooLarge
		case errors.Is(err, upload.ErrUnsupportedImage):
			status = http.StatusUnsupportedMediaType
		}
		writeError(w, status, err.Error())
		return
	}

	token, err := e.BeginUpload(r.FormValue("path"), index)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	h.uploads.Add(1)
	go h.runUpload(e, token, img)

	view.WriteJSON(w, http.StatusAccepted, uploadAccepted{Token: token, State: e.State()})
}

func (h *Handler) runUpload(e editor.Editor, token editor.UploadToken, img *upload.Image) {
	defer h.uploads.Done()

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	event := UploadEvent{Path: token.Path, Index: token.Index}
	url, err := h.Uploader.Upload(ctx, img)
	if err != nil {
		dashLogger.Error().Err(err).Str("session", string(e.ID())).Str("path", token.Path).Msg("Image upload failed")
		e.FailUpload(token)
		event.Error = config.ErrUploadFailed
	} else {
		event.URL = url
		event.Applied = e.CompleteUpload(token, url)
	}
	event.State = e.State()

	if h.Notifier != nil {
		h.Notifier.Notify(e.ID(), sse.EventUpload, event)
	}
}

// HandleRestore replaces the draft with the last autosave of the same
// record.
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.Autosaves == nil {
		writeError(w, http.StatusNotFound, "Autosave is disabled")
		return
	}

	a, err := h.Autosaves.Load(drafts.KeyOf(e))
	if errors.Is(err, drafts.ErrNoAutosave) {
		writeError(w, http.StatusNotFound, "Nothing to restore")
		return
	}
	if err != nil {
		dashLogger.Error().Err(err).Str("session", string(e.ID())).Msg("Failed to load autosave")
		writeError(w, http.StatusInternalServerError, config.ErrUnexpectedError)
		return
	}

	if err := e.Restore(a.Content); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	h.publishState(e)
	view.WriteJSON(w, http.StatusOK, e.State())
}

func (h *Handler) HandleAutosaveInfo(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.session(w, r)
	if !ok {
		return
	}
	view.WriteJSON(w, http.StatusOK, h.autosaveInfo(e))
}

// HandleAutosaveNow saves the draft without waiting for the next tick.
func (h *Handler) HandleAutosaveNow(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.Autosaver == nil {
		writeError(w, http.StatusNotFound, "Autosave is disabled")
		return
	}
	saved := h.Autosaver.Save(e)
	view.WriteJSON(w, http.StatusOK, map[string]any{"saved": saved, "version": e.Version()})
}

func (h *Handler) HandleAutosaveDiscard(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.Autosaves != nil {
		if err := h.Autosaves.Delete(drafts.KeyOf(e)); err != nil {
			dashLogger.Error().Err(err).Str("session", string(e.ID())).Msg("Failed to discard autosave")
			writeError(w, http.StatusInternalServerError, config.ErrUnexpectedError)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
