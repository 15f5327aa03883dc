package qbt

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Client adds torrents to a qBittorrent instance.
type Client struct {
	config  Config
	sender  Sender
	cookies CookieSource
	session *Session // non-nil only when the client created its own session
	logger  zerolog.Logger
}

// Option customizes a Client built by New.
type Option func(*Client)

// WithSender replaces the HTTP transport.
func WithSender(sender Sender) Option {
	return func(c *Client) {
		c.sender = sender
	}
}

// WithCookieSource replaces the built-in login session.
func WithCookieSource(source CookieSource) Option {
	return func(c *Client) {
		c.cookies = source
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(config Config, opts ...Option) (*Client, error) {
	config = config.withDefaults()
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c := &Client{
		config: config,
		logger: NewLogger(config),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.sender == nil {
		c.sender = NewHTTPSender(config)
	}
	if c.cookies == nil {
		session, err := NewSession(config, c.logger)
		if err != nil {
			return nil, err
		}
		c.session = session
		c.cookies = session
	}

	return c, nil
}

// Close logs out when the client owns its session.
func (c *Client) Close(ctx context.Context) error {
	if c.session == nil {
		return nil
	}
	return c.session.Logout(ctx)
}
