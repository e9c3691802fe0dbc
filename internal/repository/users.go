package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/model"
)

type Users struct {
	client *Client
}

func NewUsers(c *Client) *Users {
	return &Users{client: c}
}

// userEnvelope is the users endpoints' response. Depending on the route the
// user comes beside the flag, under data, or under data.user.
type userEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	User    *model.User     `json:"user"`
	Data    json.RawMessage `json:"data"`
}

func (e *userEnvelope) user() *model.User {
	if e.User != nil {
		return e.User
	}
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}

	var nested struct {
		User *model.User `json:"user"`
	}
	if err := json.Unmarshal(e.Data, &nested); err == nil && nested.User != nil {
		return nested.User
	}

	var u model.User
	if err := json.Unmarshal(e.Data, &u); err != nil || u.ID == "" {
		return nil
	}
	return &u
}

// request sends one users call. rejected is the message used when the
// backend answered with something unreadable.
func (u *Users) request(ctx context.Context, method, path string, body any, rejected string) Result[model.User] {
	log := repoLogger.With().Str("method", method).Str("path", path).Logger()

	var res userEnvelope
	status, err := u.client.do(ctx, method, path, body, &res)
	if err != nil {
		log.Error().Err(err).Int("status", status).Msg("Users request failed")
		switch status {
		case 0:
			return failure[model.User](0, config.ErrBackendUnavailable)
		case http.StatusNotFound:
			return failure[model.User](status, config.ErrNotFound)
		}
		return failure[model.User](status, rejected)
	}

	user := res.user()
	if !res.Success || user == nil {
		msg := res.Message
		if msg == "" {
			msg = rejected
		}
		log.Warn().Int("status", status).Str("message", msg).Msg("Backend reported a failure")
		return failure[model.User](status, msg)
	}

	return Result[model.User]{Success: true, Data: *user, Status: status}
}

// Login checks credentials against the backend. A failed login returns
// the backend's message, or a generic one when it gave none.
func (u *Users) Login(ctx context.Context, creds model.Credentials) Result[model.User] {
	return u.request(ctx, http.MethodPost, "users/login", creds, config.ErrInvalidCredentials)
}

// Register records a user who signed up through the identity provider.
func (u *Users) Register(ctx context.Context, reg model.Registration) Result[model.User] {
	return u.request(ctx, http.MethodPost, "users/register", reg, config.ErrUnexpectedError)
}

func (u *Users) FetchByID(ctx context.Context, id model.UserID) Result[model.User] {
	return u.request(ctx, http.MethodGet, "users/"+url.PathEscape(string(id)), nil, config.ErrUnexpectedError)
}
