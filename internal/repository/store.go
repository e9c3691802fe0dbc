package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/debemdeboas/folio/internal/cache"
	"github.com/debemdeboas/folio/internal/model"
)

const listKey = ""

// Store is the persistence collaborator for one backend resource. Reads
// are cached for a short while and any write drops the cache.
type Store[T any] struct {
	client   *Client
	resource string

	lists *cache.TTLCache[string, []T]
	items *cache.TTLCache[string, T]
}

func NewStore[T any](client *Client, resource string, ttl time.Duration) *Store[T] {
	return &Store[T]{
		client:   client,
		resource: resource,
		lists:    cache.NewTTLCache[string, []T](ttl),
		items:    cache.NewTTLCache[string, T](ttl),
	}
}

func NewBlogStore(c *Client, ttl time.Duration) *Store[model.Blog] {
	return NewStore[model.Blog](c, "blog", ttl)
}

func NewProjectStore(c *Client, ttl time.Duration) *Store[model.Project] {
	return NewStore[model.Project](c, "project", ttl)
}

func NewSkillStore(c *Client, ttl time.Duration) *Store[model.Skill] {
	return NewStore[model.Skill](c, "skills", ttl)
}

func NewMessageStore(c *Client, ttl time.Duration) *Store[model.Message] {
	return NewStore[model.Message](c, "messages", ttl)
}

func (s *Store[T]) Resource() string {
	return s.resource
}

func (s *Store[T]) path(id string) string {
	if id == "" {
		return s.resource
	}
	return s.resource + "/" + url.PathEscape(id)
}

func (s *Store[T]) List(ctx context.Context) Result[[]T] {
	if items, ok := s.lists.Get(listKey); ok {
		return Result[[]T]{Success: true, Data: items, Status: http.StatusOK}
	}

	res := call[[]T](ctx, s.client, http.MethodGet, s.path(""), nil)
	if res.Success {
		if res.Data == nil {
			res.Data = []T{}
		}
		s.lists.Set(listKey, res.Data)
	}
	return res
}

func (s *Store[T]) FetchByID(ctx context.Context, id string) Result[T] {
	if item, ok := s.items.Get(id); ok {
		return Result[T]{Success: true, Data: item, Status: http.StatusOK}
	}

	res := call[T](ctx, s.client, http.MethodGet, s.path(id), nil)
	if res.Success {
		s.items.Set(id, res.Data)
	}
	return res
}

func (s *Store[T]) Create(ctx context.Context, payload any) Result[T] {
	res := call[T](ctx, s.client, http.MethodPost, s.path(""), payload)
	if res.Success {
		s.invalidate("")
	}
	return res
}

func (s *Store[T]) Update(ctx context.Context, id string, payload any) Result[T] {
	res := call[T](ctx, s.client, http.MethodPatch, s.path(id), payload)
	if res.Success {
		s.invalidate(id)
	}
	return res
}

func (s *Store[T]) Delete(ctx context.Context, id string) Result[json.RawMessage] {
	res := call[json.RawMessage](ctx, s.client, http.MethodDelete, s.path(id), nil)
	if res.Success {
		s.invalidate(id)
	}
	return res
}

func (s *Store[T]) invalidate(id string) {
	s.lists.Clear()
	if id != "" {
		s.items.Delete(id)
	}
}

// Writer adapts a Store to the error-returning interface the editor's
// submission pipeline persists through.
type Writer[T any] struct {
	Store *Store[T]
}

func (w Writer[T]) Create(ctx context.Context, payload any) error {
	return w.Store.Create(ctx, payload).Err()
}

func (w Writer[T]) Update(ctx context.Context, id string, payload any) error {
	return w.Store.Update(ctx, id, payload).Err()
}
