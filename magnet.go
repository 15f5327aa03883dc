package qbt

import (
	"bytes"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/pkg/errors"
)

// MagnetLink is the subset of a magnet URI worth logging.
type MagnetLink struct {
	Hash        string
	DisplayName string
	Trackers    []string
}

// TorrentFileInfo describes a decoded .torrent payload.
type TorrentFileInfo struct {
	Name     string
	InfoHash string
	Length   int64
}

// ParseMagnetLink extracts information from a magnet link
func ParseMagnetLink(magnetURI string) (*MagnetLink, error) {
	if !strings.HasPrefix(magnetURI, "magnet:?") {
		return nil, errors.New("invalid magnet link format")
	}

	m, err := metainfo.ParseMagnetUri(magnetURI)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse magnet link")
	}

	return &MagnetLink{
		Hash:        m.InfoHash.HexString(),
		DisplayName: m.DisplayName,
		Trackers:    m.Trackers,
	}, nil
}

// InspectTorrentFile decodes a .torrent file's metadata.
func InspectTorrentFile(data []byte) (*TorrentFileInfo, error) {
	mi, err := metainfo.Load(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode torrent file")
	}

	info, err := mi.UnmarshalInfo()
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode torrent info dictionary")
	}

	return &TorrentFileInfo{
		Name:     info.Name,
		InfoHash: mi.HashInfoBytes().HexString(),
		Length:   info.TotalLength(),
	}, nil
}
