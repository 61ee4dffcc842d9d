// Package apitest is an in-memory implementation of the notes API contract
// used by client tests. It follows the behaviour of the real service: bcrypt
// password hashes, HS256 bearer tokens, notes scoped to their owner and
// listed newest first, FastAPI-style {"detail": ...} error bodies.
package apitest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type user struct {
	id           int64
	email        string
	fullName     string
	passwordHash []byte
}

// Request is a recorded incoming request.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type failure struct {
	status int
	detail string
}

type Server struct {
	mu       sync.Mutex
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time

	users    map[string]*user
	notes    map[int64]*models.Note
	nextUser int64
	nextNote int64

	failures map[string]failure
	requests []Request
}

func New() *Server {
	secret, err := common.MakeRandHexString(32)
	if err != nil {
		panic(err)
	}
	return &Server{
		secret:   []byte(secret),
		tokenTTL: time.Hour,
		now:      time.Now,
		users:    make(map[string]*user),
		notes:    make(map[int64]*models.Note),
		failures: make(map[string]failure),
	}
}

// Start serves the API on a local listener. The caller closes the result.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.Routes())
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)
	})

	r.Route("/notes", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/", s.listNotes)
		r.Post("/", s.createNote)
		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", s.updateNote)
			r.Delete("/", s.deleteNote)
		})
	})

	return r
}

// FailNext makes the next request matching method and path answer with
// status and detail instead of being handled.
func (s *Server) FailNext(method, path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, detail: detail}
}

// RevokeTokens invalidates every token issued so far.
func (s *Server) RevokeTokens() {
	secret, err := common.MakeRandHexString(32)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = []byte(secret)
}

// Requests returns a copy of all requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// SeedNote stores a note for the user with the given email directly.
func (s *Server) SeedNote(email, title, content string) models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[email]
	if u == nil {
		panic("apitest: unknown user " + email)
	}
	return s.insertNote(u.id, title, content)
}

// NoteCount returns how many notes the server holds in total.
func (s *Server) NoteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		key := r.Method + " " + r.URL.Path
		f, fail := s.failures[key]
		delete(s.failures, key)
		s.mu.Unlock()

		if fail {
			writeDetail(w, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type claims struct {
	jwt.RegisteredClaims
}

func (s *Server) issueToken(email string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})
	return token.SignedString(s.secret)
}

func (s *Server) subject(tokenString string) (string, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	return c.Subject, nil
}

type ctxUserKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get(common.AuthorizationHeaderName)
		raw, ok := strings.CutPrefix(h, common.BearerPrefix)
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		s.mu.Lock()
		email, err := s.subject(raw)
		u := s.users[email]
		s.mu.Unlock()

		if err != nil || u == nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u.id)))
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in models.Registration
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	if _, exists := s.users[in.Email]; exists {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	s.nextUser++
	s.users[in.Email] = &user{id: s.nextUser, email: in.Email, fullName: in.FullName, passwordHash: hash}
	token, err := s.issueToken(in.Email)
	s.mu.Unlock()

	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.Token{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid json")
		return
	}

	s.mu.Lock()
	u := s.users[in.Email]
	s.mu.Unlock()

	if u == nil || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(in.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	s.mu.Lock()
	token, err := s.issueToken(u.email)
	s.mu.Unlock()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.Token{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	owner := userFrom(r.Context())

	s.mu.Lock()
	out := make([]models.Note, 0)
	for _, n := range s.notes {
		if n.OwnerID == owner {
			out = append(out, *n)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt.Time)
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	var in models.NoteInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid json")
		return
	}

	s.mu.Lock()
	n := s.insertNote(userFrom(r.Context()), in.Title, in.Content)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) insertNote(owner int64, title, content string) models.Note {
	s.nextNote++
	now := models.NewTimestamp(s.now().UTC())
	n := &models.Note{ID: s.nextNote, Title: title, Content: content, OwnerID: owner, CreatedAt: now, UpdatedAt: now}
	s.notes[n.ID] = n
	return *n
}

func (s *Server) updateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	var in models.NoteInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid json")
		return
	}

	s.mu.Lock()
	n := s.notes[id]
	if n == nil || n.OwnerID != userFrom(r.Context()) {
		s.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Note not found")
		return
	}
	n.Title, n.Content = in.Title, in.Content
	n.UpdatedAt = models.NewTimestamp(s.now().UTC())
	out := *n
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	n := s.notes[id]
	if n == nil || n.OwnerID != userFrom(r.Context()) {
		s.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Note not found")
		return
	}
	delete(s.notes, id)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func noteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid note id")
		return 0, false
	}
	return id, true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
