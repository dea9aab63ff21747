package update

import (
	"errors"
	"fmt"
	"strings"

	"github.com/3leaps/cefcheck/internal/model"
)

// ErrNoAcceptableVersion is returned when no entry of the main platform
// survives the selection policy.
var ErrNoAcceptableVersion = errors.New("no acceptable version found")

const (
	DefaultChannel    = model.ChannelStable
	DefaultBetaMarker = "_beta"
)

// Policy configures SelectLatest. It is passed in explicitly so the
// selection stays a pure function of its inputs.
type Policy struct {
	MainPlatform      string
	RequiredPlatforms []string
	Channel           model.Channel // defaults to "stable"
	BetaMarker        string        // defaults to "_beta"
}

func (p Policy) channel() model.Channel {
	if p.Channel == "" {
		return DefaultChannel
	}
	return p.Channel
}

func (p Policy) betaMarker() string {
	if p.BetaMarker == "" {
		return DefaultBetaMarker
	}
	return p.BetaMarker
}

type SkipReason string

const (
	SkipChannel         SkipReason = "channel"          // Channel is not the policy channel
	SkipBetaFile        SkipReason = "beta-file"        // A file name carries the beta marker
	SkipMissingPlatform SkipReason = "missing-platform" // A required platform lacks the version
	SkipNoVersion       SkipReason = "no-version"       // The entry carries no version string
)

// Skip records why one entry was passed over.
type Skip struct {
	Version string
	Reason  SkipReason
	Detail  string
}

func (s Skip) String() string {
	switch s.Reason {
	case SkipChannel:
		return fmt.Sprintf("skipping %s: channel is %q", s.Version, s.Detail)
	case SkipBetaFile:
		return fmt.Sprintf("skipping %s: file %s looks like a beta build", s.Version, s.Detail)
	case SkipMissingPlatform:
		return fmt.Sprintf("skipping %s: not published for %s", s.Version, s.Detail)
	case SkipNoVersion:
		return "skipping entry without a version"
	default:
		return fmt.Sprintf("skipping %s: %s", s.Version, s.Reason)
	}
}

// Selection is the outcome of SelectLatest. Skipped lists every entry that
// was passed over before the winner, in index order.
type Selection struct {
	Entry   model.Entry
	Skipped []Skip
}

// SelectLatest walks the main platform's entries in order and returns the
// first one that passes every filter of the policy. Skipped is populated
// even when the error is ErrNoAcceptableVersion.
func SelectLatest(idx model.Index, p Policy) (Selection, error) {
	var sel Selection

	for _, entry := range idx[p.MainPlatform] {
		if skip, ok := check(idx, entry, p); !ok {
			sel.Skipped = append(sel.Skipped, skip)
			continue
		}
		sel.Entry = entry
		return sel, nil
	}

	if len(idx[p.MainPlatform]) == 0 {
		return sel, fmt.Errorf("%w: platform %s has no entries", ErrNoAcceptableVersion, p.MainPlatform)
	}
	return sel, fmt.Errorf("%w: all %d entries of %s were skipped", ErrNoAcceptableVersion, len(sel.Skipped), p.MainPlatform)
}

func check(idx model.Index, entry model.Entry, p Policy) (Skip, bool) {
	if entry.Channel != p.channel() {
		return Skip{Version: entry.Version, Reason: SkipChannel, Detail: string(entry.Channel)}, false
	}

	if strings.TrimSpace(entry.Version) == "" {
		return Skip{Reason: SkipNoVersion}, false
	}

	marker := p.betaMarker()
	for _, f := range entry.Files {
		if strings.Contains(f.Name, marker) {
			return Skip{Version: entry.Version, Reason: SkipBetaFile, Detail: f.Name}, false
		}
	}

	for _, platform := range p.RequiredPlatforms {
		if !idx.HasVersion(platform, entry.Version) {
			return Skip{Version: entry.Version, Reason: SkipMissingPlatform, Detail: platform}, false
		}
	}

	return Skip{}, true
}
