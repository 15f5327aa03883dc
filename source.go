package qbt

import "strings"

type sourceKind uint8

const (
	sourceURL sourceKind = iota + 1
	sourceFile
)

// Source is one torrent to add: either a remote URL (magnet, http, bc) or
// the path of a local .torrent file.
type Source struct {
	kind  sourceKind
	value string
}

// URL returns a Source for a magnet link or a URL the server downloads itself.
func URL(u string) Source {
	return Source{kind: sourceURL, value: u}
}

// RawTorrentFile returns a Source for a local .torrent file that is uploaded.
func RawTorrentFile(path string) Source {
	return Source{kind: sourceFile, value: path}
}

var urlPrefixes = []string{"magnet:", "http://", "https://", "bc://"}

// ParseSource classifies a raw argument. Anything that does not look like a
// URL is taken as a file path.
func ParseSource(arg string) Source {
	lower := strings.ToLower(arg)
	for _, prefix := range urlPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return URL(arg)
		}
	}
	return RawTorrentFile(arg)
}

func (s Source) IsURL() bool  { return s.kind == sourceURL }
func (s Source) IsFile() bool { return s.kind == sourceFile }

// Value is the URL or the path.
func (s Source) Value() string { return s.value }

func (s Source) String() string {
	switch s.kind {
	case sourceURL:
		return "url(" + s.value + ")"
	case sourceFile:
		return "file(" + s.value + ")"
	default:
		return "invalid()"
	}
}
