// Package model defines the content records shared by the public site, the dashboard and the editor.
package model

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

type UserID string

type BlogID string

type ProjectID string

type SkillID string

type MessageID string

// Kind names a draft type the structured editor can work on.
type Kind string

const (
	KindBlog    Kind = "blog"
	KindProject Kind = "project"
)

func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindBlog:
		return KindBlog, true
	case KindProject:
		return KindProject, true
	}
	return "", false
}

// Plural returns the resource segment the backend uses for this kind.
func (k Kind) Plural() string {
	switch k {
	case KindBlog:
		return "blogs"
	case KindProject:
		return "projects"
	}
	return string(k)
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	ID        UserID    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Image     string    `json:"image,omitempty"`
	Role      Role      `json:"role,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// ProviderEmail is the provider of users created with a password.
const ProviderEmail = "Email"

// SignInProvider names how the user signs in, defaulting to email.
func (u User) SignInProvider() string {
	if u.Provider == "" {
		return ProviderEmail
	}
	return u.Provider
}

// Initials are shown in place of a missing avatar.
func (u User) Initials() string {
	var b strings.Builder
	for _, part := range strings.Fields(u.Name) {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// MemberSince is the "January 2024" month the account was created.
func (u User) MemberSince() string {
	if u.CreatedAt.IsZero() {
		return ""
	}
	return u.CreatedAt.Format("January 2006")
}

// Credentials is the body of a credential login.
type Credentials struct {
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"min=6,max=32,password"`
}

// Registration is sent to the backend when an identity provider creates a user.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Image    string `json:"image,omitempty"`
	Provider string `json:"provider"`
}

type Skill struct {
	ID          SkillID `json:"_id,omitempty"`
	Name        string  `json:"name" validate:"min=2"`
	Description string  `json:"description" validate:"min=10"`
	Rating      int     `json:"rating" validate:"min=1,max=5"`
	Icon        string  `json:"icon" validate:"min=1"`
}

type Message struct {
	ID        MessageID `json:"_id,omitempty"`
	Name      string    `json:"name" validate:"min=3"`
	Email     string    `json:"email" validate:"email"`
	Message   string    `json:"message" validate:"min=10"`
	Social    string    `json:"social,omitempty" validate:"omitempty,url"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}
