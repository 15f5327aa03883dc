package qbt

import (
	"context"
	"errors"
	"strings"

	"github.com/docker/go-units"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

var errNoResponse = errors.New("sender returned no response")

// AddTorrents submits every source of d. URLs and uploaded files travel in
// separate requests; when both exist the two requests run concurrently and
// both are always awaited before the outcome is decided.
//
// A single request fails with a NETWORK_ERROR carrying the status, or a
// TRANSPORT_ERROR when no response was obtained. A mixed add fails with
// ErrURLsAddFailed, ErrTorrentFilesAddFailed or ErrBothAddFailed, each
// wrapping the underlying half errors. Nothing is retried.
func (c *Client) AddTorrents(ctx context.Context, d *AddDescriptor) error {
	if d == nil {
		return ErrInvalidDescriptor
	}

	logger := c.logger.With().
		Str("op", uuid.NewString()).
		Int("urls", len(d.urls)).
		Int("files", len(d.paths)).
		Logger()

	switch {
	case len(d.paths) == 0 && len(d.urls) == 0:
		return ErrInvalidDescriptor

	case len(d.paths) == 0:
		payload := d.URLPayload()
		logURLs(logger, d.urls)
		return c.sendOne(ctx, logger, payload)

	case len(d.urls) == 0:
		payload, err := d.filePayload(ctx, c.config.FileReadConcurrency)
		if err != nil {
			return err
		}
		logFiles(logger, payload)
		return c.sendOne(ctx, logger, payload)

	default:
		filesPayload, err := d.filePayload(ctx, c.config.FileReadConcurrency)
		if err != nil {
			return err
		}
		urlsPayload := d.URLPayload()
		logFiles(logger, filesPayload)
		logURLs(logger, d.urls)
		return c.sendBoth(ctx, logger, filesPayload, urlsPayload)
	}
}

func (c *Client) sendOne(ctx context.Context, logger zerolog.Logger, payload *Payload) error {
	cookie, err := c.cookies.Cookie(ctx)
	if err != nil {
		return err
	}

	err = c.send(ctx, payload, cookie)
	logger.Debug().Err(err).Msg("add request finished")
	return err
}

func (c *Client) sendBoth(ctx context.Context, logger zerolog.Logger, filesPayload, urlsPayload *Payload) error {
	cookie, err := c.cookies.Cookie(ctx)
	if err != nil {
		return err
	}

	var filesErr, urlsErr error

	// plain Group: no shared context, so one half failing never cancels the other
	var g errgroup.Group
	g.Go(func() error {
		filesErr = c.send(ctx, filesPayload, cookie)
		return nil
	})
	g.Go(func() error {
		urlsErr = c.send(ctx, urlsPayload, cookie)
		return nil
	})
	_ = g.Wait()

	logger.Debug().
		AnErr("files_err", filesErr).
		AnErr("urls_err", urlsErr).
		Msg("add requests finished")

	return reconcile(filesErr, urlsErr)
}

// send performs one request and maps its outcome onto the error taxonomy.
func (c *Client) send(ctx context.Context, payload *Payload, cookie string) error {
	resp, err := c.sender.Send(ctx, AddEndpoint, payload, cookie)
	if err != nil {
		return newTransportError(err)
	}
	if resp == nil {
		return newTransportError(errNoResponse)
	}
	if !resp.Success() {
		return newStatusError(resp.StatusCode, strings.TrimSpace(string(resp.Body)))
	}
	return nil
}

// reconcile folds the two halves of a mixed add into one result.
func reconcile(filesErr, urlsErr error) error {
	switch {
	case filesErr == nil && urlsErr == nil:
		return nil
	case filesErr == nil:
		return compositeError(ErrURLsAddFailed, urlsErr)
	case urlsErr == nil:
		return compositeError(ErrTorrentFilesAddFailed, filesErr)
	default:
		return compositeError(ErrBothAddFailed, multierr.Combine(filesErr, urlsErr))
	}
}

func compositeError(kind *ClientError, cause error) *ClientError {
	return &ClientError{
		Code:      kind.Code,
		Message:   kind.Message,
		Err:       cause,
		Permanent: IsPermanentError(cause),
	}
}

func logURLs(logger zerolog.Logger, urls []string) {
	if logger.GetLevel() > zerolog.DebugLevel {
		return
	}
	for _, u := range urls {
		ev := logger.Debug().Str("url", u)
		if m, err := ParseMagnetLink(u); err == nil {
			ev = ev.Str("hash", m.Hash).Str("name", m.DisplayName)
		}
		ev.Msg("queued url")
	}
}

func logFiles(logger zerolog.Logger, payload *Payload) {
	if logger.GetLevel() > zerolog.DebugLevel {
		return
	}
	for _, f := range payload.Files {
		ev := logger.Debug().Str("size", units.HumanSize(float64(len(f.Data))))
		if info, err := InspectTorrentFile(f.Data); err == nil {
			ev = ev.Str("hash", info.InfoHash).Str("name", info.Name).Str("content_size", units.HumanSize(float64(info.Length)))
		}
		ev.Msg("queued torrent file")
	}
	logger.Debug().Str("total", units.HumanSize(float64(payload.Size()))).Msg("upload payload built")
}
