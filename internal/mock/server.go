package mock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/studiowebux/postboard/internal/types"
)

// maxLogs bounds the in-memory request log
const maxLogs = 1000

// Server is an in-memory fake of the posts API. Created ids continue after
// the highest id ever stored, like the public placeholder API.
type Server struct {
	config     *Config
	httpServer *http.Server
	log        zerolog.Logger

	mu       sync.Mutex
	posts    []types.Post
	nextID   int
	failures map[string][]int // method -> queued statuses

	logs      []RequestLog
	logsMutex sync.RWMutex
}

// NewServer creates a fake API seeded from the config
func NewServer(config *Config, log zerolog.Logger) *Server {
	if config == nil {
		config = &Config{}
	}
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Host == "" {
		config.Host = "localhost"
	}

	s := &Server{
		config:   config,
		log:      log,
		failures: make(map[string][]int),
		logs:     make([]RequestLog, 0),
	}

	posts := config.Posts
	if len(posts) == 0 && config.Seed > 0 {
		posts = SeedPosts(config.Seed)
	}
	s.Reset(posts)

	return s
}

// SeedPosts generates n placeholder posts with ids 1..n
func SeedPosts(n int) []types.Post {
	posts := make([]types.Post, 0, n)
	for i := 1; i <= n; i++ {
		posts = append(posts, types.Post{
			ID:     i,
			UserID: (i-1)/10 + 1,
			Title:  fmt.Sprintf("Post %d", i),
			Body:   fmt.Sprintf("Body of post %d", i),
		})
	}
	return posts
}

// Reset replaces the stored posts and clears queued failures
func (s *Server) Reset(posts []types.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = make([]types.Post, len(posts))
	copy(s.posts, posts)
	s.nextID = 1
	for _, p := range posts {
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
	s.failures = make(map[string][]int)
}

// Posts returns a copy of the stored posts
func (s *Server) Posts() []types.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// FailNext makes the next request with the given method answer with status
func (s *Server) FailNext(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	method = strings.ToUpper(method)
	s.failures[method] = append(s.failures[method], status)
}

// Handler returns the HTTP handler serving the posts routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /posts", s.handleList)
	mux.HandleFunc("POST /posts", s.handleCreate)
	mux.HandleFunc("GET /posts/{id}", s.handleGet)
	mux.HandleFunc("PUT /posts/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /posts/{id}", s.handleDelete)
	return s.withLogging(s.withFailures(mux))
}

// Start starts serving on the configured host and port
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("fake API server error")
		}
	}()

	return nil
}

// Stop stops the server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// GetAddress returns the server base URL
func (s *Server) GetAddress() string {
	return "http://" + net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Posts())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	i := s.indexOf(id)
	var post types.Post
	if i >= 0 {
		post = s.posts[i]
	}
	s.mu.Unlock()

	if i < 0 {
		writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	post := types.Post{ID: s.nextID, Title: draft.Title, Body: draft.Body}
	s.nextID++
	s.posts = append(s.posts, post)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	i := s.indexOf(id)
	var post types.Post
	if i >= 0 {
		post = s.posts[i]
		post.Title = draft.Title
		post.Body = draft.Body
		s.posts[i] = post
	}
	s.mu.Unlock()

	if i < 0 {
		writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	// Deleting an unknown id succeeds, matching the placeholder API.
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.posts = append(s.posts[:i], s.posts[i+1:]...)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) indexOf(id int) int {
	for i, p := range s.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// withFailures answers with a queued failure status before reaching the routes
func (s *Server) withFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		queue := s.failures[r.Method]
		status := 0
		if len(queue) > 0 {
			status = queue[0]
			s.failures[r.Method] = queue[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging records each request and applies the configured delay
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		bodyBytes, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		if s.config.Delay > 0 {
			time.Sleep(time.Duration(s.config.Delay) * time.Millisecond)
		}

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		entry := RequestLog{
			Timestamp: start,
			Method:    r.Method,
			Path:      r.URL.Path,
			RequestID: r.Header.Get("X-Request-Id"),
			Body:      string(bodyBytes),
			Status:    rw.status,
			Duration:  time.Since(start),
		}
		s.logRequest(entry)

		if s.config.Logging {
			s.log.Info().
				Str("method", entry.Method).
				Str("path", entry.Path).
				Int("status", entry.Status).
				Dur("duration", entry.Duration).
				Msg("fake API request")
		}
	})
}

// logRequest adds a request to the log
func (s *Server) logRequest(log RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, log)

	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}
}

// GetLogs returns all logged requests
func (s *Server) GetLogs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// ClearLogs clears all logged requests
func (s *Server) ClearLogs() {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = make([]RequestLog, 0)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (types.Draft, bool) {
	var draft types.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return types.Draft{}, false
	}
	return draft, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
