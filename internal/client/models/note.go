// Package models holds the data the client exchanges with the notes API.
package models

import (
	"time"
	"unicode/utf8"
)

// Note mirrors the API representation. ID and UpdatedAt are assigned by the
// server; the client never sets them.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   int64     `json:"owner_id,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// NoteInput is the body of create and update requests.
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Credentials is the body of the login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the body of the register request.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Token is the response of login and register.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// PreviewLength is the number of characters of content shown in list views.
const PreviewLength = 200

// Preview cuts content to PreviewLength characters and appends "..." when
// anything was cut. Counting is by rune so multi-byte text is never split.
func Preview(content string) string {
	if utf8.RuneCountInString(content) <= PreviewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:PreviewLength]) + "..."
}

const updatedAtLayout = "Jan 2, 2006, 03:04 PM"

// FormatUpdatedAt renders a timestamp for display in loc. A nil loc means
// the local time zone.
func FormatUpdatedAt(t Timestamp, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(updatedAtLayout)
}
