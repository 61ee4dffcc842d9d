package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/google/uuid"
)

// maxErrorBody bounds how much of an error response is read for its detail.
const maxErrorBody = 64 << 10

type HTTPClient struct {
	baseURL      string
	http         *http.Client
	log          logging.Logger
	newRequestID func() string
}

// NewHTTPClient returns a client for the API rooted at baseURL. A non-positive
// timeout leaves requests bounded only by their context.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}

	hc := &http.Client{}
	if timeout > 0 {
		hc.Timeout = timeout
	}
	return &HTTPClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         hc,
		log:          logging.Discard(),
		newRequestID: uuid.NewString,
	}, nil
}

// SetLogger enables per-request debug records.
func (c *HTTPClient) SetLogger(l logging.Logger) {
	c.log = l.With("component", "api")
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	var tok models.Token
	err := c.do(ctx, http.MethodPost, "/auth/login", "", models.Credentials{Email: email, Password: password}, &tok)
	if err != nil {
		return "", err
	}
	return c.accessToken(tok)
}

func (c *HTTPClient) Register(ctx context.Context, email, password, fullName string) (string, error) {
	var tok models.Token
	body := models.Registration{Email: email, Password: password, FullName: fullName}
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", body, &tok); err != nil {
		return "", err
	}
	return c.accessToken(tok)
}

func (c *HTTPClient) accessToken(tok models.Token) (string, error) {
	if tok.AccessToken == "" {
		return "", &APIError{Status: http.StatusOK, Err: ErrUnavailable, Detail: "response carries no access token"}
	}
	return tok.AccessToken, nil
}

func (c *HTTPClient) ListNotes(ctx context.Context, token string) ([]models.Note, error) {
	notes := []models.Note{}
	if err := c.do(ctx, http.MethodGet, "/notes/", token, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *HTTPClient) CreateNote(ctx context.Context, token, title, content string) (models.Note, error) {
	var n models.Note
	err := c.do(ctx, http.MethodPost, "/notes/", token, models.NoteInput{Title: title, Content: content}, &n)
	return n, err
}

func (c *HTTPClient) UpdateNote(ctx context.Context, token string, id int64, title, content string) (models.Note, error) {
	var n models.Note
	err := c.do(ctx, http.MethodPut, notePath(id), token, models.NoteInput{Title: title, Content: content}, &n)
	return n, err
}

func (c *HTTPClient) DeleteNote(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, notePath(id), token, nil, nil)
}

// Ping checks the health endpoint at the API root.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", "", nil, nil)
}

func notePath(id int64) string {
	return "/notes/" + strconv.FormatInt(id, 10)
}

// do sends one request. in is JSON-encoded when non-nil; out is decoded from
// a 2xx body when non-nil. A non-empty token is sent as a bearer credential.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	requestID := c.newRequestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug(ctx, "request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &APIError{Err: ErrUnavailable, Detail: transportDetail(err)}
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Status: resp.StatusCode,
			Err:    mapStatus(resp.StatusCode),
			Detail: readDetail(io.LimitReader(resp.Body, maxErrorBody)),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Err: ErrUnavailable, Detail: "malformed response: " + err.Error()}
	}
	return nil
}

func transportDetail(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}

// readDetail extracts the "detail" field of an error body. It is either a
// string or, for request validation failures, a list of {"msg": ...} objects.
func readDetail(r io.Reader) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
