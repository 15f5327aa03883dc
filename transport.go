package qbt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jfxdev/go-qbt-add/request"
	"golang.org/x/time/rate"
)

// AddEndpoint is where every add payload is posted.
const AddEndpoint = "/api/v2/torrents/add"

// Response is what a Sender reports back for a completed request.
type Response struct {
	StatusCode int
	Body       []byte
}

// Success reports a 2xx status.
func (r *Response) Success() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Sender posts a payload. A returned error means no response was obtained;
// any status, including failures, comes back as a Response.
type Sender interface {
	Send(ctx context.Context, endpoint string, payload *Payload, cookie string) (*Response, error)
}

// CookieSource returns the session id used to authenticate every send.
type CookieSource interface {
	Cookie(ctx context.Context) (string, error)
}

// HTTPSender is the default Sender, posting multipart bodies with net/http.
type HTTPSender struct {
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
}

// NewHTTPSender builds a sender for config.BaseURL honouring RequestTimeout and RateLimit.
func NewHTTPSender(config Config) *HTTPSender {
	config = config.withDefaults()
	return &HTTPSender{
		baseURL: config.BaseURL,
		timeout: config.RequestTimeout,
		limiter: request.ParseRateLimit(config.RateLimit),
	}
}

func (s *HTTPSender) Send(ctx context.Context, endpoint string, payload *Payload, cookie string) (*Response, error) {
	body, contentType, err := payload.Encode()
	if err != nil {
		return nil, err
	}

	opts := []request.RequestOption{
		request.WithContext(ctx),
		request.WithTimeout(s.timeout),
		request.WithBody(bytes.NewReader(body)),
		request.WithHeaders(map[string]string{
			"Content-Type": contentType,
			"Cookie":       fmt.Sprintf("SID=%s", cookie),
		}),
	}
	if s.limiter != nil {
		opts = append(opts, request.WithRateLimiter(s.limiter))
	}

	resp, err := request.Do(http.MethodPost, s.baseURL+endpoint, opts...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body (status: %d): %w", resp.StatusCode, err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}
