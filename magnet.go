package transmission

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// MagnetLink is the parsed form of a magnet URI.
type MagnetLink struct {
	Hash             string
	DisplayName      string
	Trackers         []string
	ExactLength      string
	ExactSource      string
	Keywords         string
	AcceptableSource string
}

// Label returns the display name, falling back to the info hash.
func (m *MagnetLink) Label() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Hash
}

// ParseMagnetLink extracts information from a magnet link
func ParseMagnetLink(magnetURI string) (*MagnetLink, error) {
	if !strings.HasPrefix(magnetURI, "magnet:?") {
		return nil, errors.New("invalid magnet link format")
	}

	values, err := url.ParseQuery(strings.TrimPrefix(magnetURI, "magnet:?"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse magnet link query")
	}

	magnet := &MagnetLink{
		Hash:             strings.TrimPrefix(values.Get("xt"), "urn:btih:"),
		DisplayName:      values.Get("dn"),
		Trackers:         values["tr"],
		ExactLength:      values.Get("xl"),
		ExactSource:      values.Get("xs"),
		Keywords:         values.Get("kt"),
		AcceptableSource: values.Get("as"),
	}

	return magnet, nil
}
