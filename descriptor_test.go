package qbt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPartitionsSourcesInOrder(t *testing.T) {
	d, err := NewAddDescriptor(
		URL("u1"),
		RawTorrentFile("f1"),
		URL("u2"),
		RawTorrentFile("f2"),
		URL("u3"),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"u1", "u2", "u3"}, d.URLs())
	assert.Equal(t, []string{"f1", "f2"}, d.Paths())
}

func TestBuildKeepsDuplicates(t *testing.T) {
	d, err := NewAddDescriptor(URL("u"), URL("u"), RawTorrentFile("f"), RawTorrentFile("f"))
	require.NoError(t, err)

	assert.Equal(t, []string{"u", "u"}, d.URLs())
	assert.Equal(t, []string{"f", "f"}, d.Paths())
}

func TestBuildSingleKind(t *testing.T) {
	d, err := NewAddDescriptor(URL("magnet:?xt=urn:btih:abc"))
	require.NoError(t, err)
	assert.Len(t, d.URLs(), 1)
	assert.Empty(t, d.Paths())

	d, err = NewAddDescriptor(RawTorrentFile("/a.torrent"))
	require.NoError(t, err)
	assert.Empty(t, d.URLs())
	assert.Equal(t, []string{"/a.torrent"}, d.Paths())
}

func TestBuildEmptyBatch(t *testing.T) {
	_, err := NewAddDescriptor()
	assert.ErrorIs(t, err, ErrTorrentsNotSet)

	_, err = NewAddDescriptorBuilder().Category("movies").Paused(true).Build()
	assert.ErrorIs(t, err, ErrTorrentsNotSet)

	_, err = NewAddDescriptor(Source{})
	assert.ErrorIs(t, err, ErrTorrentsNotSet)
}

func TestBuildRejectsZeroValueSourceInBatch(t *testing.T) {
	_, err := NewAddDescriptor(URL("u1"), Source{}, RawTorrentFile("f1"))
	require.ErrorIs(t, err, ErrInvalidSource)
	assert.Contains(t, err.Error(), "source 1")

	sources := make([]Source, 3)
	sources[0] = URL("u1")
	sources[2] = RawTorrentFile("f1")
	_, err = NewAddDescriptor(sources...)
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestBuildIsSingleUse(t *testing.T) {
	b := NewAddDescriptorBuilder(URL("u1"))

	_, err := b.Build()
	require.NoError(t, err)

	_, err = b.Build()
	assert.ErrorIs(t, err, ErrTorrentsNotSet)
}

func TestBuildRootFolder(t *testing.T) {
	tests := []struct {
		name     string
		set      func(*AddDescriptorBuilder)
		expected string
	}{
		{"unset", func(*AddDescriptorBuilder) {}, RootFolderUnset},
		{"true", func(b *AddDescriptorBuilder) { b.RootFolder(true) }, RootFolderTrue},
		{"false", func(b *AddDescriptorBuilder) { b.RootFolder(false) }, RootFolderFalse},
		{"last write wins", func(b *AddDescriptorBuilder) { b.RootFolder(true).RootFolder(false) }, RootFolderFalse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewAddDescriptorBuilder(URL("u"))
			tt.set(b)

			d, err := b.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.RootFolder())
		})
	}
}

func TestBuildJoinsTags(t *testing.T) {
	d, err := NewAddDescriptorBuilder(URL("u")).Tags("a", "b", "c").Build()
	require.NoError(t, err)
	require.NotNil(t, d.settings.tags)
	assert.Equal(t, "a,b,c", *d.settings.tags)

	d, err = NewAddDescriptorBuilder(URL("u")).Tags().Build()
	require.NoError(t, err)
	require.NotNil(t, d.settings.tags)
	assert.Equal(t, "", *d.settings.tags)

	d, err = NewAddDescriptor(URL("u"))
	require.NoError(t, err)
	assert.Nil(t, d.settings.tags)
}

func TestBuilderTagsAreCopied(t *testing.T) {
	tags := []string{"a", "b"}
	b := NewAddDescriptorBuilder(URL("u")).Tags(tags...)
	tags[0] = "changed"

	d, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "a,b", *d.settings.tags)
}

func TestDescriptorAccessorsReturnCopies(t *testing.T) {
	d, err := NewAddDescriptor(URL("u"), RawTorrentFile("f"))
	require.NoError(t, err)

	d.URLs()[0] = "changed"
	d.Paths()[0] = "changed"

	assert.Equal(t, []string{"u"}, d.URLs())
	assert.Equal(t, []string{"f"}, d.Paths())
}

func TestDescriptorClone(t *testing.T) {
	d, err := NewAddDescriptorBuilder(URL("u"), RawTorrentFile("f")).Category("tv").Build()
	require.NoError(t, err)

	c := d.Clone()
	c.urls[0] = "other"

	assert.Equal(t, []string{"u"}, d.URLs())
	assert.Equal(t, d.URLPayload().Fields[1:], c.URLPayload().Fields[1:])
}
