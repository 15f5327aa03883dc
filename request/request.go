package request

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// RequestOptions holds the per-request settings applied by Do.
type RequestOptions struct {
	Timeout        time.Duration
	Body           io.Reader
	Headers        map[string]string
	Ctx            context.Context
	CookieJar      http.CookieJar
	UpdateCookies  bool
	PreRequestHook func() error
	RateLimiter    *rate.Limiter
}

// RequestOption mutates RequestOptions.
type RequestOption func(*RequestOptions)

// WithTimeout bounds the whole request, including reading the response headers.
func WithTimeout(timeout time.Duration) RequestOption {
	return func(o *RequestOptions) {
		o.Timeout = timeout
	}
}

// WithBody sets the request body.
func WithBody(body io.Reader) RequestOption {
	return func(o *RequestOptions) {
		o.Body = body
	}
}

// WithHeader adds a single header to the request.
func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[key] = value
	}
}

// WithHeaders adds several headers at once.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithContext sets the context the request runs under.
func WithContext(ctx context.Context) RequestOption {
	return func(o *RequestOptions) {
		o.Ctx = ctx
	}
}

// WithCookieJar uses a CookieJar to keep cookies between requests.
func WithCookieJar(jar http.CookieJar) RequestOption {
	return func(o *RequestOptions) {
		o.CookieJar = jar
	}
}

// WithUpdateCookies stores the response cookies back into the jar.
func WithUpdateCookies() RequestOption {
	return func(o *RequestOptions) {
		o.UpdateCookies = true
	}
}

// WithPreRequestHook runs hook before the request is sent; a hook error aborts the request.
func WithPreRequestHook(hook func() error) RequestOption {
	return func(o *RequestOptions) {
		o.PreRequestHook = hook
	}
}

// WithRateLimiter makes Do wait for a token before sending.
func WithRateLimiter(rl *rate.Limiter) RequestOption {
	return func(o *RequestOptions) {
		o.RateLimiter = rl
	}
}

// Do executes an HTTP request with the given options.
func Do(method, url string, opts ...RequestOption) (*http.Response, error) {
	options := &RequestOptions{
		Timeout: 10 * time.Second,
		Ctx:     context.Background(),
	}

	for _, opt := range opts {
		opt(options)
	}

	client := &http.Client{Timeout: options.Timeout}

	if options.CookieJar != nil {
		client.Jar = options.CookieJar
	}

	if options.PreRequestHook != nil {
		if err := options.PreRequestHook(); err != nil {
			return nil, fmt.Errorf("pre-request hook: %w", err)
		}
	}

	if options.RateLimiter != nil {
		if err := options.RateLimiter.Wait(options.Ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(options.Ctx, method, url, options.Body)
	if err != nil {
		return nil, err
	}

	for k, v := range options.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if options.UpdateCookies && options.CookieJar != nil {
		options.CookieJar.SetCookies(req.URL, resp.Cookies())
	}

	return resp, nil
}

var rateLimitPattern = regexp.MustCompile(`^(\d+)/(minute|second)$`)

// ParseRateLimit turns strings like "10/second" or "120/minute" into a limiter.
// An empty or malformed string yields nil, which means unlimited.
func ParseRateLimit(rateStr string) *rate.Limiter {
	if rateStr == "" {
		return nil
	}
	matches := rateLimitPattern.FindStringSubmatch(rateStr)
	if len(matches) != 3 {
		return nil
	}

	count, err := strconv.Atoi(matches[1])
	if err != nil || count <= 0 {
		return nil
	}

	switch matches[2] {
	case "minute":
		burst := int(math.Max(1, float64(count)*0.25))
		return rate.NewLimiter(rate.Limit(float64(count)/60.0), burst)
	case "second":
		return rate.NewLimiter(rate.Limit(float64(count)), count)
	default:
		return nil
	}
}
