package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/apitest"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewHTTPClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	return c
}

func newAPIClient(t *testing.T) (*HTTPClient, *apitest.Server) {
	t.Helper()
	api := apitest.New()
	srv := api.Start()
	t.Cleanup(srv.Close)
	c, err := NewHTTPClient(srv.URL+"/", 5*time.Second)
	require.NoError(t, err)
	return c, api
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	for _, raw := range []string{"localhost:8000", "ftp://example.com", "://bad"} {
		_, err := NewHTTPClient(raw, time.Second)
		assert.Error(t, err, raw)
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadRequest, ErrValidation},
		{http.StatusConflict, ErrValidation},
		{http.StatusUnprocessableEntity, ErrValidation},
		{http.StatusInternalServerError, ErrUnavailable},
		{http.StatusBadGateway, ErrUnavailable},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"detail":"boom"}`))
			}))

			err := c.DeleteNote(context.Background(), "tok", 1)
			require.ErrorIs(t, err, tc.want)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, "boom", apiErr.Detail)
		})
	}
}

func TestDetailForms(t *testing.T) {
	cases := map[string]struct {
		body string
		want string
	}{
		"string":    {`{"detail":"Email already registered"}`, "Email already registered"},
		"list":      {`{"detail":[{"msg":"field required"},{"msg":"value is not a valid email"}]}`, "field required; value is not a valid email"},
		"missing":   {`{}`, ""},
		"not json":  {`<html>oops</html>`, ""},
		"odd shape": {`{"detail":42}`, ""},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tc.body))
			}))

			_, err := c.Register(context.Background(), "a@b.com", "secret1", "A")
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tc.want, err.(*APIError).Detail)
		})
	}
}

func TestMessage(t *testing.T) {
	const fallback = "An error occurred. Please try again."
	assert.Equal(t, "Invalid credentials", Message(&APIError{Err: ErrUnauthorized, Detail: "Invalid credentials"}, fallback))
	assert.Equal(t, fallback, Message(&APIError{Err: ErrUnavailable}, fallback))
	assert.Equal(t, fallback, Message(errors.New("x"), fallback))
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`[]`))
	}))
	c.newRequestID = func() string { return "req-1" }

	notes, err := c.ListNotes(context.Background(), "tok123")
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.NotNil(t, notes)

	assert.Equal(t, "Bearer tok123", got.Get(common.AuthorizationHeaderName))
	assert.Equal(t, "req-1", got.Get(common.RequestIDHeaderName))
}

func TestLogin_NoBearerHeader(t *testing.T) {
	var got http.Header
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"access_token":"tok123","token_type":"bearer"}`))
	}))

	tok, err := c.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok123", tok)
	assert.Empty(t, got.Get(common.AuthorizationHeaderName))
}

func TestLogin_EmptyTokenIsUnavailable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token_type":"bearer"}`))
	}))

	_, err := c.Login(context.Background(), "a@b.com", "secret1")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestMalformedBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	}))

	_, err := c.CreateNote(context.Background(), "tok", "t", "c")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(url, time.Second)
	require.NoError(t, err)

	err = c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestCancelledContext(t *testing.T) {
	block := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListNotes(ctx, "tok")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRegister_PayloadShape(t *testing.T) {
	c, api := newAPIClient(t)

	_, err := c.Register(context.Background(), "a@b.com", "secret1", "Ann Example")
	require.NoError(t, err)

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/auth/register", reqs[0].Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	assert.Equal(t, map[string]any{
		"email":     "a@b.com",
		"password":  "secret1",
		"full_name": "Ann Example",
	}, body)
}

func TestAgainstAPI(t *testing.T) {
	ctx := context.Background()
	c, api := newAPIClient(t)

	require.NoError(t, c.Ping(ctx))

	tok, err := c.Register(ctx, "a@b.com", "secret1", "Ann")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	_, err = c.Register(ctx, "a@b.com", "secret1", "Ann")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Email already registered", Message(err, ""))

	_, err = c.Login(ctx, "a@b.com", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", Message(err, ""))

	tok, err = c.Login(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	first, err := c.CreateNote(ctx, tok, "first", "one")
	require.NoError(t, err)
	second, err := c.CreateNote(ctx, tok, "second", "two")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, second.UpdatedAt.IsZero())

	list, err := c.ListNotes(ctx, tok)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	updated, err := c.UpdateNote(ctx, tok, first.ID, "first!", "uno")
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, "first!", updated.Title)
	assert.Equal(t, "uno", updated.Content)

	require.NoError(t, c.DeleteNote(ctx, tok, first.ID))
	err = c.DeleteNote(ctx, tok, first.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Note not found", Message(err, ""))

	_, err = c.ListNotes(ctx, "garbage")
	require.ErrorIs(t, err, ErrUnauthorized)

	api.RevokeTokens()
	_, err = c.ListNotes(ctx, tok)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestListNotes_ZonelessTimestamps(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"title":"T","content":"C","owner_id":1,` +
			`"created_at":"2024-05-01T12:34:56.123456","updated_at":"2024-05-01T12:34:56.123456"}]`))
	}))

	list, err := c.ListNotes(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, list, 1)
	want := time.Date(2024, 5, 1, 12, 34, 56, 123456000, time.UTC)
	assert.True(t, want.Equal(list[0].UpdatedAt.Time), "got %v", list[0].UpdatedAt)
}

func TestAPISendsZonelessTimestamps(t *testing.T) {
	ctx := context.Background()
	c, api := newAPIClient(t)
	tok, err := c.Register(ctx, "a@b.com", "secret1", "Ann")
	require.NoError(t, err)
	_, err = c.CreateNote(ctx, tok, "t", "c")
	require.NoError(t, err)

	srv := httptest.NewServer(api.Routes())
	t.Cleanup(srv.Close)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/notes/", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	require.Len(t, raw, 1)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{6}$`, raw[0]["updated_at"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{6}$`, raw[0]["created_at"])
}

func TestNotesAreScopedToOwner(t *testing.T) {
	ctx := context.Background()
	c, _ := newAPIClient(t)

	ann, err := c.Register(ctx, "ann@b.com", "secret1", "Ann")
	require.NoError(t, err)
	bob, err := c.Register(ctx, "bob@b.com", "secret1", "Bob")
	require.NoError(t, err)

	n, err := c.CreateNote(ctx, ann, "mine", "")
	require.NoError(t, err)

	list, err := c.ListNotes(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = c.UpdateNote(ctx, bob, n.ID, "stolen", "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRequestLogging(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	c.newRequestID = func() string { return "req-7" }

	var buf bytes.Buffer
	c.SetLogger(logging.NewTextLogger(&buf, slog.LevelDebug))

	require.NoError(t, c.DeleteNote(context.Background(), "tok", 5))

	out := buf.String()
	assert.Contains(t, out, "component=api")
	assert.Contains(t, out, "method=DELETE path=/notes/5 status=204 request_id=req-7")
}
