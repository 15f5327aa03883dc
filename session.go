package qbt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jfxdev/go-qbt-add/request"
	"github.com/rs/zerolog"
)

const sessionCookieName = "SID"

// Session holds the qBittorrent login cookie and hands out its SID value.
type Session struct {
	mu      sync.Mutex
	baseURL string
	user    string
	pass    string
	timeout time.Duration
	jar     *cookiejar.Jar
	logger  zerolog.Logger
}

// NewSession prepares a session; nothing is sent until Login or Cookie.
func NewSession(config Config, logger zerolog.Logger) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("error creating cookie jar: %w", err)
	}

	config = config.withDefaults()
	return &Session{
		baseURL: config.BaseURL,
		user:    config.Username,
		pass:    config.Password,
		timeout: config.RequestTimeout,
		jar:     jar,
		logger:  logger,
	}, nil
}

// Cookie returns the SID value, logging in first when none is held.
func (s *Session) Cookie(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sid, ok := s.sid(); ok {
		return sid, nil
	}

	s.logger.Debug().Str("url", s.baseURL).Msg("no session cookie, logging in")
	if err := s.login(ctx); err != nil {
		return "", err
	}

	sid, ok := s.sid()
	if !ok {
		return "", NewClientError(ErrorCodeAuthFailure, "login succeeded but no SID cookie was set", nil, true)
	}
	return sid, nil
}

// Login forces a fresh login.
func (s *Session) Login(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.login(ctx)
}

func (s *Session) login(ctx context.Context) error {
	data := url.Values{
		"username": {s.user},
		"password": {s.pass},
	}

	headers := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
		// qBittorrent rejects logins whose Referer does not match the host
		"Referer": s.baseURL,
	}

	resp, err := request.Do(http.MethodPost,
		fmt.Sprintf("%s/api/v2/auth/login", s.baseURL),
		request.WithContext(ctx),
		request.WithTimeout(s.timeout),
		request.WithBody(strings.NewReader(data.Encode())),
		request.WithHeaders(headers),
		request.WithCookieJar(s.jar),
		request.WithUpdateCookies(),
	)
	if err != nil {
		return newTransportError(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return classifyHTTPStatusCode(resp.StatusCode, string(body))
	}
	if strings.TrimSpace(string(body)) == "Fails." {
		return NewClientError(ErrorCodeAuthFailure, "Invalid username or password", nil, true)
	}

	return nil
}

// Logout ends the server side session and forgets the cookie.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sid(); !ok {
		return nil
	}

	resp, err := request.Do(http.MethodPost,
		fmt.Sprintf("%s/api/v2/auth/logout", s.baseURL),
		request.WithContext(ctx),
		request.WithTimeout(s.timeout),
		request.WithCookieJar(s.jar),
	)
	if err != nil {
		return newTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("logout failed. Status: %d, Response: %s", resp.StatusCode, body)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("error creating cookie jar: %w", err)
	}
	s.jar = jar
	return nil
}

func (s *Session) sid() (string, bool) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", false
	}
	for _, c := range s.jar.Cookies(u) {
		if c.Name == sessionCookieName && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}
