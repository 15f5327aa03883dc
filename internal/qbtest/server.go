// Package qbtest provides an in-memory qBittorrent Web API for tests.
package qbtest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	Username = "admin"
	Password = "adminadmin"
	SID      = "test-session-id"
)

// UploadedFile is one binary part received by /torrents/add.
type UploadedFile struct {
	FieldName   string
	FileName    string
	ContentType string
	Data        []byte
}

// AddRequest is one call to /torrents/add as the server saw it.
type AddRequest struct {
	Cookie string
	Fields map[string]string
	Files  []UploadedFile
}

// IsURLs reports whether the request carried the urls field.
func (r AddRequest) IsURLs() bool {
	_, ok := r.Fields["urls"]
	return ok
}

// Server fakes the endpoints the add workflow touches.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	adds     []AddRequest
	logins   int
	logouts  int
	inFlight int
	peak     int

	// URLStatus and FileStatus are returned for url and upload requests; zero means 200.
	URLStatus  int
	FileStatus int
	// Delay holds every add request open for this long.
	Delay time.Duration
	// RejectLogin makes login answer "Fails.".
	RejectLogin bool
}

func NewServer() *Server {
	s := &Server{}

	r := chi.NewRouter()
	r.Route("/api/v2", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Post("/torrents/add", s.handleAdd)
	})

	s.Server = httptest.NewServer(r)
	return s
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	s.mu.Lock()
	s.logins++
	reject := s.RejectLogin
	s.mu.Unlock()

	if reject || r.FormValue("username") != Username || r.FormValue("password") != Password {
		_, _ = io.WriteString(w, "Fails.")
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "SID", Value: SID, Path: "/"})
	_, _ = io.WriteString(w, "Ok.")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.logouts++
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.peak {
		s.peak = s.inFlight
	}
	delay := s.Delay
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if delay > 0 {
		time.Sleep(delay)
	}

	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		http.Error(w, "Invalid content type", http.StatusBadRequest)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := AddRequest{Fields: make(map[string]string)}
	if c, err := r.Cookie("SID"); err == nil {
		req.Cookie = c.Value
	}
	for name, values := range r.MultipartForm.Value {
		req.Fields[name] = strings.Join(values, "\n")
	}
	for name, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			req.Files = append(req.Files, UploadedFile{
				FieldName:   name,
				FileName:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}

	s.mu.Lock()
	s.adds = append(s.adds, req)
	status := s.FileStatus
	if req.IsURLs() {
		status = s.URLStatus
	}
	s.mu.Unlock()

	if req.Cookie != SID {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if status == http.StatusOK {
		_, _ = io.WriteString(w, "Ok.")
	}
}

// Adds returns the add requests received so far.
func (s *Server) Adds() []AddRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AddRequest(nil), s.adds...)
}

func (s *Server) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

func (s *Server) Logouts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logouts
}

// PeakConcurrency is the largest number of add requests seen in flight together.
func (s *Server) PeakConcurrency() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}
