package client

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
)

type Client interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password, fullName string) (string, error)
	ListNotes(ctx context.Context, token string) ([]models.Note, error)
	CreateNote(ctx context.Context, token, title, content string) (models.Note, error)
	UpdateNote(ctx context.Context, token string, id int64, title, content string) (models.Note, error)
	DeleteNote(ctx context.Context, token string, id int64) error
	Ping(ctx context.Context) error
}
