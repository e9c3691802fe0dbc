// Package sse provides Server-Sent Events client management for the editor pages.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/editor"
	"github.com/rs/zerolog"
)

var sseLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	sseLogger = l
}

const (
	EventState    = "state"
	EventUpload   = "upload"
	EventAutosave = "autosave"
)

type Client struct {
	Msg     chan string
	DraftID editor.SessionID
}

type SSEClients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewSSEClients() *SSEClients {
	return &SSEClients{
		clients: make(map[*Client]bool),
	}
}

func (s *SSEClients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

func (s *SSEClients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client]; !ok {
		return
	}
	delete(s.clients, client)
	close(client.Msg)
}

func (s *SSEClients) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends msg to every client watching draftID. Slow clients miss
// the message instead of blocking the sender.
func (s *SSEClients) Broadcast(draftID editor.SessionID, msg string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients {
		if client.DraftID == draftID {
			select {
			case client.Msg <- msg:
			default:
			}
		}
	}
}

// Notify broadcasts a named event with a JSON payload.
func (s *SSEClients) Notify(draftID editor.SessionID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		sseLogger.Error().Err(err).Str("event", event).Msg("Failed to encode event")
		return
	}
	s.Broadcast(draftID, Format(event, string(data)))
}

// Format renders one event in the text/event-stream wire format.
func Format(event, data string) string {
	return fmt.Sprintf("event: %s\ndata: %s\n\n", event, data)
}

// Authorizer reports whether a request may watch a draft.
type Authorizer func(r *http.Request, draftID editor.SessionID) bool

// Handler streams events for the draft named in the "draft" query
// parameter. Drafts the request may not watch answer 404.
func (s *SSEClients) Handler(allowed Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draftID := editor.SessionID(r.URL.Query().Get("draft"))
		if draftID == "" {
			http.Error(w, "Draft parameter required", http.StatusBadRequest)
			return
		}
		if !allowed(r, draftID) {
			http.Error(w, config.ErrDraftNotFound, http.StatusNotFound)
			return
		}
		s.stream(w, r, draftID)
	}
}

func (s *SSEClients) stream(w http.ResponseWriter, r *http.Request, draftID editor.SessionID) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, "text/event-stream")
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Del("X-Content-Type-Options")

	client := &Client{Msg: make(chan string, 8), DraftID: draftID}
	s.Add(client)
	defer s.Delete(client)

	fmt.Fprint(w, Format("connected", "SSE connection established"))
	flusher.Flush()

	for {
		select {
		case msg, ok := <-client.Msg:
			if !ok {
				return
			}
			fmt.Fprint(w, msg)
			flusher.Flush()
		case <-r.Context().Done():
			sseLogger.Debug().Str("draft", string(draftID)).Msg("SSE client disconnected")
			return
		}
	}
}
