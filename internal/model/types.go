package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Channel is the release maturity tag of a build entry.
type Channel string

const (
	ChannelStable Channel = "stable"
	ChannelBeta   Channel = "beta"
)

// Index is the subset of the CEF builds index that cefcheck uses, keyed by
// platform identifier (e.g. "windows64", "linux64"). Entry lists are
// newest-first.
type Index map[string][]Entry

// Entry is one published build of a platform.
type Entry struct {
	Version         string  `json:"version"`
	Channel         Channel `json:"channel"`
	ChromiumVersion string  `json:"chromium_version,omitempty"`
	Files           []File  `json:"files"`
}

// File is one downloadable artifact of a build entry.
type File struct {
	Type         string `json:"type"`
	Name         string `json:"name"`
	SHA1         string `json:"sha1"`
	Size         int64  `json:"size,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
}

// HasVersion reports whether the platform's list contains an entry with the
// identical version string.
func (idx Index) HasVersion(platform, version string) bool {
	for _, e := range idx[platform] {
		if e.Version == version {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts both the CDN's "cef_version" key and the plain
// "version" key. "cef_version" wins when both are present.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Version         string  `json:"version"`
		CEFVersion      string  `json:"cef_version"`
		Channel         Channel `json:"channel"`
		ChromiumVersion string  `json:"chromium_version"`
		Files           []File  `json:"files"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Version = raw.Version
	if raw.CEFVersion != "" {
		e.Version = raw.CEFVersion
	}
	e.Channel = raw.Channel
	e.ChromiumVersion = raw.ChromiumVersion
	e.Files = raw.Files
	return nil
}

// UnmarshalJSON decodes each platform value either as a bare entry list or
// as the CDN's {"versions": [...]} wrapper.
func (idx *Index) UnmarshalJSON(data []byte) error {
	var platforms map[string]json.RawMessage
	if err := json.Unmarshal(data, &platforms); err != nil {
		return err
	}

	out := make(Index, len(platforms))
	for platform, value := range platforms {
		entries, err := decodePlatform(value)
		if err != nil {
			return fmt.Errorf("platform %s: %w", platform, err)
		}
		out[platform] = entries
	}
	*idx = out
	return nil
}

func decodePlatform(value json.RawMessage) ([]Entry, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty platform value")
	}

	switch trimmed[0] {
	case '[':
		var entries []Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	case '{':
		var wrapped struct {
			Versions []Entry `json:"versions"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, err
		}
		return wrapped.Versions, nil
	default:
		return nil, fmt.Errorf("unexpected platform value %.20q", trimmed)
	}
}

// Decode parses a raw index document.
func Decode(data []byte) (Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return idx, nil
}
