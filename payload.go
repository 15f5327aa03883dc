package qbt

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	// TorrentFileField is the form field every uploaded .torrent part uses.
	TorrentFileField = "torrents"
	// TorrentFileName is the filename sent for every uploaded part.
	TorrentFileName = "torrent_file.torrent"
	// TorrentContentType is the MIME type of uploaded parts.
	TorrentContentType = "application/x-bittorrent"

	defaultFileReadConcurrency = 4
)

// Field is a text form field.
type Field struct {
	Name  string
	Value string
}

// FilePart is a binary form part.
type FilePart struct {
	FieldName   string
	FileName    string
	ContentType string
	Data        []byte
}

// Payload is one multipart body for /api/v2/torrents/add.
type Payload struct {
	Fields []Field
	Files  []FilePart
}

// Size is the number of bytes held by file parts.
func (p *Payload) Size() int64 {
	var n int64
	for _, f := range p.Files {
		n += int64(len(f.Data))
	}
	return n
}

// Encode renders the payload as multipart/form-data.
func (p *Payload) Encode() ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, f := range p.Fields {
		if err := writer.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f.Name, err)
		}
	}

	for _, f := range p.Files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.FieldName, f.FileName))
		header.Set("Content-Type", f.ContentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part %s: %w", f.FieldName, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write part %s: %w", f.FieldName, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// URLPayload renders the URL half of the add, or nil when there are no URLs.
// The URLs are concatenated without a separator.
func (d *AddDescriptor) URLPayload() *Payload {
	if len(d.urls) == 0 {
		return nil
	}

	fields := []Field{{Name: "urls", Value: strings.Join(d.urls, "")}}
	return &Payload{Fields: append(fields, d.settings.fields()...)}
}

// FilePayload reads every local file and renders the upload half of the add,
// or nil when there are no files. Nothing is returned if any file fails.
func (d *AddDescriptor) FilePayload(ctx context.Context) (*Payload, error) {
	return d.filePayload(ctx, defaultFileReadConcurrency)
}

func (d *AddDescriptor) filePayload(ctx context.Context, concurrency int) (*Payload, error) {
	if len(d.paths) == 0 {
		return nil, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	parts := make([]FilePart, len(d.paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range d.paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return newTorrentFileError(path, err)
			}

			parts[i] = FilePart{
				FieldName:   TorrentFileField,
				FileName:    TorrentFileName,
				ContentType: TorrentContentType,
				Data:        data,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Payload{Files: parts, Fields: d.settings.fields()}, nil
}

// fields renders the settings that are present, always in the same order.
func (s addSettings) fields() []Field {
	var fields []Field
	addString := func(name string, v *string) {
		if v != nil {
			fields = append(fields, Field{Name: name, Value: *v})
		}
	}
	addBool := func(name string, v *bool) {
		if v != nil {
			fields = append(fields, Field{Name: name, Value: strconv.FormatBool(*v)})
		}
	}

	addString("savepath", s.savePath)
	addString("cookie", s.cookie)
	addString("category", s.category)
	addString("tags", s.tags)
	addBool("skip_checking", s.skipChecking)
	addBool("paused", s.paused)
	if s.rootFolder != "" {
		fields = append(fields, Field{Name: "root_folder", Value: s.rootFolder})
	}
	addString("rename", s.rename)
	if s.upLimit != nil {
		fields = append(fields, Field{Name: "upLimit", Value: strconv.FormatUint(*s.upLimit, 10)})
	}
	if s.dlLimit != nil {
		fields = append(fields, Field{Name: "dlLimit", Value: strconv.FormatUint(*s.dlLimit, 10)})
	}
	if s.ratioLimit != nil {
		fields = append(fields, Field{Name: "ratioLimit", Value: strconv.FormatFloat(float64(*s.ratioLimit), 'f', -1, 32)})
	}
	if s.seedingTimeLimit != nil {
		fields = append(fields, Field{Name: "seedingTimeLimit", Value: strconv.FormatUint(uint64(*s.seedingTimeLimit), 10)})
	}
	addBool("autoTMM", s.autoTMM)
	addBool("sequentialDownload", s.sequentialDownload)
	addBool("firstLastPiecePrio", s.firstLastPiecePrio)

	return fields
}
