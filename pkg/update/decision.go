package update

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

type Decision string

const (
	DecisionCurrent  Decision = "current"  // Pin matches the selected release
	DecisionOutdated Decision = "outdated" // A different release was selected
)

type Direction string

const (
	DirectionUpgrade   Direction = "upgrade"
	DirectionDowngrade Direction = "downgrade"
	DirectionUnknown   Direction = "unknown"
)

// Exit codes of the version check. Outdated and failed checks share a code;
// stdout tells them apart.
const (
	ExitCurrent  = 0
	ExitOutdated = 1
	ExitFailed   = 1
)

// Decide compares the pinned version with the selected one. Equality is
// exact; no normalisation is applied.
//
// Returns a Decision, a human message, and the exit code.
func Decide(pinned, latest string) (Decision, string, int) {
	if pinned == latest {
		return DecisionCurrent, fmt.Sprintf("pinned version %s is the latest stable release", pinned), ExitCurrent
	}

	dir := ClassifyDirection(pinned, latest)
	switch dir {
	case DirectionUpgrade:
		return DecisionOutdated, fmt.Sprintf("newer release available: %s → %s", pinned, latest), ExitOutdated
	case DirectionDowngrade:
		return DecisionOutdated, fmt.Sprintf("selected release %s is older than pinned %s", latest, pinned), ExitOutdated
	default:
		return DecisionOutdated, fmt.Sprintf("pinned version %s differs from latest %s", pinned, latest), ExitOutdated
	}
}

// ClassifyDirection compares the numeric prefix of both versions. CEF
// versions carry two "+" separated suffixes (commit and chromium version)
// which are not valid semver build metadata, so they are dropped.
func ClassifyDirection(pinned, latest string) Direction {
	from, err := numericPrefix(pinned)
	if err != nil {
		return DirectionUnknown
	}
	to, err := numericPrefix(latest)
	if err != nil {
		return DirectionUnknown
	}

	switch from.Compare(to) {
	case -1:
		return DirectionUpgrade
	case 1:
		return DirectionDowngrade
	default:
		return DirectionUnknown
	}
}

func numericPrefix(v string) (*semver.Version, error) {
	base := strings.TrimSpace(v)
	if idx := strings.IndexByte(base, '+'); idx >= 0 {
		base = base[:idx]
	}
	return semver.NewVersion(base)
}

// DescribeDecision returns a short status line.
func DescribeDecision(d Decision) string {
	switch d {
	case DecisionCurrent:
		return "Up to date"
	case DecisionOutdated:
		return "Update available"
	default:
		return string(d)
	}
}
