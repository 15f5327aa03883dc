package qbt

import "strings"

// Root folder values sent to qBittorrent; "unset" defers to the server default.
const (
	RootFolderUnset = "unset"
	RootFolderTrue  = "true"
	RootFolderFalse = "false"
)

// addSettings are the optional parameters shared by every payload of one add.
type addSettings struct {
	savePath           *string
	cookie             *string
	category           *string
	tags               *string
	skipChecking       *bool
	paused             *bool
	rootFolder         string
	rename             *string
	upLimit            *uint64
	dlLimit            *uint64
	ratioLimit         *float32
	seedingTimeLimit   *uint32
	autoTMM            *bool
	sequentialDownload *bool
	firstLastPiecePrio *bool
}

// AddDescriptor is a validated "add torrents" request: the batch split into
// URLs and local files, plus the shared optional settings. It always holds at
// least one source. Build one with NewAddDescriptor or an AddDescriptorBuilder.
type AddDescriptor struct {
	urls     []string
	paths    []string
	settings addSettings
}

// NewAddDescriptor is a shortcut for a builder with no optional settings.
func NewAddDescriptor(sources ...Source) (*AddDescriptor, error) {
	return NewAddDescriptorBuilder(sources...).Build()
}

// URLs returns the URL sources in input order.
func (d *AddDescriptor) URLs() []string {
	return append([]string(nil), d.urls...)
}

// Paths returns the file sources in input order.
func (d *AddDescriptor) Paths() []string {
	return append([]string(nil), d.paths...)
}

// RootFolder returns the normalized root folder value.
func (d *AddDescriptor) RootFolder() string {
	return d.settings.rootFolder
}

// Clone returns a copy that shares no mutable state with d.
func (d *AddDescriptor) Clone() *AddDescriptor {
	return &AddDescriptor{
		urls:     d.URLs(),
		paths:    d.Paths(),
		settings: d.settings,
	}
}

// AddDescriptorBuilder collects sources and optional settings. Setters do not
// validate; Build does. A builder is single use: Build releases the batch, so
// a second call fails with ErrTorrentsNotSet.
type AddDescriptorBuilder struct {
	sources []Source

	savePath           *string
	cookie             *string
	category           *string
	tags               []string
	skipChecking       *bool
	paused             *bool
	rootFolder         *bool
	rename             *string
	upLimit            *uint64
	dlLimit            *uint64
	ratioLimit         *float32
	seedingTimeLimit   *uint32
	autoTMM            *bool
	sequentialDownload *bool
	firstLastPiecePrio *bool
}

func NewAddDescriptorBuilder(sources ...Source) *AddDescriptorBuilder {
	return &AddDescriptorBuilder{sources: sources}
}

// SavePath sets the download folder.
func (b *AddDescriptorBuilder) SavePath(path string) *AddDescriptorBuilder {
	b.savePath = &path
	return b
}

// Cookie is sent by the server when it downloads a .torrent URL.
func (b *AddDescriptorBuilder) Cookie(cookie string) *AddDescriptorBuilder {
	b.cookie = &cookie
	return b
}

func (b *AddDescriptorBuilder) Category(category string) *AddDescriptorBuilder {
	b.category = &category
	return b
}

// Tags replaces the tag set; they are sent comma separated.
func (b *AddDescriptorBuilder) Tags(tags ...string) *AddDescriptorBuilder {
	b.tags = append([]string{}, tags...)
	return b
}

func (b *AddDescriptorBuilder) SkipChecking(skip bool) *AddDescriptorBuilder {
	b.skipChecking = &skip
	return b
}

func (b *AddDescriptorBuilder) Paused(paused bool) *AddDescriptorBuilder {
	b.paused = &paused
	return b
}

// RootFolder sets whether the root folder is created. Left alone it is sent as "unset".
func (b *AddDescriptorBuilder) RootFolder(create bool) *AddDescriptorBuilder {
	b.rootFolder = &create
	return b
}

func (b *AddDescriptorBuilder) Rename(name string) *AddDescriptorBuilder {
	b.rename = &name
	return b
}

// UpLimit is the upload limit in bytes per second.
func (b *AddDescriptorBuilder) UpLimit(limit uint64) *AddDescriptorBuilder {
	b.upLimit = &limit
	return b
}

// DlLimit is the download limit in bytes per second.
func (b *AddDescriptorBuilder) DlLimit(limit uint64) *AddDescriptorBuilder {
	b.dlLimit = &limit
	return b
}

func (b *AddDescriptorBuilder) RatioLimit(limit float32) *AddDescriptorBuilder {
	b.ratioLimit = &limit
	return b
}

// SeedingTimeLimit is in minutes.
func (b *AddDescriptorBuilder) SeedingTimeLimit(minutes uint32) *AddDescriptorBuilder {
	b.seedingTimeLimit = &minutes
	return b
}

// AutoTMM toggles Automatic Torrent Management.
func (b *AddDescriptorBuilder) AutoTMM(enabled bool) *AddDescriptorBuilder {
	b.autoTMM = &enabled
	return b
}

func (b *AddDescriptorBuilder) SequentialDownload(enabled bool) *AddDescriptorBuilder {
	b.sequentialDownload = &enabled
	return b
}

func (b *AddDescriptorBuilder) FirstLastPiecePrio(enabled bool) *AddDescriptorBuilder {
	b.firstLastPiecePrio = &enabled
	return b
}

// Build validates the batch and returns the finalized descriptor.
func (b *AddDescriptorBuilder) Build() (*AddDescriptor, error) {
	sources := b.sources
	b.sources = nil

	if len(sources) == 0 {
		return nil, ErrTorrentsNotSet
	}

	d := &AddDescriptor{}
	invalid := -1
	for i, s := range sources {
		switch s.kind {
		case sourceURL:
			d.urls = append(d.urls, s.value)
		case sourceFile:
			d.paths = append(d.paths, s.value)
		default:
			if invalid < 0 {
				invalid = i
			}
		}
	}

	// a batch made only of zero-value Sources carries nothing to add
	if len(d.urls) == 0 && len(d.paths) == 0 {
		return nil, ErrTorrentsNotSet
	}
	if invalid >= 0 {
		return nil, newInvalidSourceError(invalid)
	}

	d.settings = addSettings{
		savePath:           b.savePath,
		cookie:             b.cookie,
		category:           b.category,
		skipChecking:       b.skipChecking,
		paused:             b.paused,
		rootFolder:         normalizeRootFolder(b.rootFolder),
		rename:             b.rename,
		upLimit:            b.upLimit,
		dlLimit:            b.dlLimit,
		ratioLimit:         b.ratioLimit,
		seedingTimeLimit:   b.seedingTimeLimit,
		autoTMM:            b.autoTMM,
		sequentialDownload: b.sequentialDownload,
		firstLastPiecePrio: b.firstLastPiecePrio,
	}
	if b.tags != nil {
		tags := strings.Join(b.tags, ",")
		d.settings.tags = &tags
	}

	return d, nil
}

func normalizeRootFolder(v *bool) string {
	switch {
	case v == nil:
		return RootFolderUnset
	case *v:
		return RootFolderTrue
	default:
		return RootFolderFalse
	}
}
