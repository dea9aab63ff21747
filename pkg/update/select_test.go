package update

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/3leaps/cefcheck/internal/model"
)

var defaultPolicy = Policy{
	MainPlatform:      "windows64",
	RequiredPlatforms: []string{"windows64", "linux64", "macosx64"},
}

func stable(version string, files ...string) model.Entry {
	e := model.Entry{Version: version, Channel: model.ChannelStable, Files: []model.File{}}
	for _, name := range files {
		e.Files = append(e.Files, model.File{Type: "minimal", Name: name})
	}
	return e
}

func beta(version string) model.Entry {
	return model.Entry{Version: version, Channel: model.ChannelBeta}
}

func TestSelectLatestFirstEntryWins(t *testing.T) {
	t.Parallel()

	idx := model.Index{
		"windows64": {stable("120.0"), stable("119.0")},
		"linux64":   {stable("120.0"), stable("119.0")},
		"macosx64":  {stable("120.0"), stable("119.0")},
	}

	sel, err := SelectLatest(idx, defaultPolicy)
	if err != nil {
		t.Fatalf("SelectLatest: %v", err)
	}
	if sel.Entry.Version != "120.0" {
		t.Fatalf("selected %q want %q", sel.Entry.Version, "120.0")
	}
	if len(sel.Skipped) != 0 {
		t.Fatalf("expected no skips, got %v", sel.Skipped)
	}
}

func TestSelectLatestFirstMatchAfterSkips(t *testing.T) {
	t.Parallel()

	idx := model.Index{
		"windows64": {
			beta("123.0"),
			stable("122.0", "cef_binary_122.0_windows64_beta_minimal.tar.bz2"),
			stable("121.0"),
			stable("120.0"),
			stable("119.0"),
		},
		"linux64":  {stable("123.0"), stable("122.0"), stable("120.0"), stable("119.0")},
		"macosx64": {stable("123.0"), stable("122.0"), stable("121.0"), stable("120.0"), stable("119.0")},
	}

	sel, err := SelectLatest(idx, defaultPolicy)
	if err != nil {
		t.Fatalf("SelectLatest: %v", err)
	}
	if sel.Entry.Version != "120.0" {
		t.Fatalf("selected %q want %q", sel.Entry.Version, "120.0")
	}

	want := []Skip{
		{Version: "123.0", Reason: SkipChannel, Detail: "beta"},
		{Version: "122.0", Reason: SkipBetaFile, Detail: "cef_binary_122.0_windows64_beta_minimal.tar.bz2"},
		{Version: "121.0", Reason: SkipMissingPlatform, Detail: "linux64"},
	}
	if diff := cmp.Diff(want, sel.Skipped); diff != "" {
		t.Fatalf("skips mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectLatestRequiredPlatformMayDifferFromMain(t *testing.T) {
	t.Parallel()

	idx := model.Index{
		"linux64":    {stable("2.0"), stable("1.0")},
		"linuxarm64": {stable("1.0")},
	}
	p := Policy{MainPlatform: "linux64", RequiredPlatforms: []string{"linuxarm64"}}

	sel, err := SelectLatest(idx, p)
	if err != nil {
		t.Fatalf("SelectLatest: %v", err)
	}
	if sel.Entry.Version != "1.0" {
		t.Fatalf("selected %q want %q", sel.Entry.Version, "1.0")
	}
}

func TestSelectLatestRequiredPlatformIgnoresChannel(t *testing.T) {
	t.Parallel()

	// Presence on a required platform is a plain version lookup.
	idx := model.Index{
		"windows64": {stable("120.0")},
		"linux64":   {beta("120.0")},
	}
	p := Policy{MainPlatform: "windows64", RequiredPlatforms: []string{"linux64"}}

	sel, err := SelectLatest(idx, p)
	if err != nil {
		t.Fatalf("SelectLatest: %v", err)
	}
	if sel.Entry.Version != "120.0" {
		t.Fatalf("selected %q", sel.Entry.Version)
	}
}

func TestSelectLatestChannelMatchIsExact(t *testing.T) {
	t.Parallel()

	idx := model.Index{
		"windows64": {{Version: "120.0", Channel: "Stable"}, stable("119.0")},
	}
	p := Policy{MainPlatform: "windows64"}

	sel, err := SelectLatest(idx, p)
	if err != nil {
		t.Fatalf("SelectLatest: %v", err)
	}
	if sel.Entry.Version != "119.0" {
		t.Fatalf("selected %q want %q", sel.Entry.Version, "119.0")
	}
}

func TestSelectLatestNoAcceptableVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		idx       model.Index
		wantSkips int
	}{
		{
			name: "all beta",
			idx: model.Index{
				"windows64": {beta("2.0"), beta("1.0")},
			},
			wantSkips: 2,
		},
		{
			name: "missing everywhere else",
			idx: model.Index{
				"windows64": {stable("2.0")},
				"linux64":   {stable("1.0")},
				"macosx64":  {stable("1.0")},
			},
			wantSkips: 1,
		},
		{
			name:      "main platform absent",
			idx:       model.Index{"linux64": {stable("1.0")}},
			wantSkips: 0,
		},
		{
			name:      "empty index",
			idx:       model.Index{},
			wantSkips: 0,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sel, err := SelectLatest(tc.idx, defaultPolicy)
			if !errors.Is(err, ErrNoAcceptableVersion) {
				t.Fatalf("error: got %v want ErrNoAcceptableVersion", err)
			}
			if len(sel.Skipped) != tc.wantSkips {
				t.Fatalf("skips: got %d want %d (%v)", len(sel.Skipped), tc.wantSkips, sel.Skipped)
			}
			if sel.Entry.Version != "" {
				t.Fatalf("no entry should be selected, got %q", sel.Entry.Version)
			}
		})
	}
}

func TestSelectLatestCustomMarkers(t *testing.T) {
	t.Parallel()

	idx := model.Index{
		"windows64": {
			{Version: "3.0", Channel: "stable", Files: []model.File{{Name: "x-rc.zip"}}},
			{Version: "2.0", Channel: "stable"},
			{Version: "1.0", Channel: "lts"},
		},
	}
	p := Policy{MainPlatform: "windows64", Channel: "lts", BetaMarker: "-rc"}

	sel, err := SelectLatest(idx, p)
	if err != nil {
		t.Fatalf("SelectLatest: %v", err)
	}
	if sel.Entry.Version != "1.0" {
		t.Fatalf("selected %q want %q", sel.Entry.Version, "1.0")
	}
}

func TestSelectLatestSkipsIncompleteEntries(t *testing.T) {
	t.Parallel()

	idx := model.Index{
		"windows64": {
			{Version: "122.0", Files: []model.File{}},
			{Channel: model.ChannelStable},
			stable("120.0"),
		},
		"linux64":  {stable("120.0")},
		"macosx64": {stable("120.0")},
	}

	sel, err := SelectLatest(idx, defaultPolicy)
	if err != nil {
		t.Fatalf("SelectLatest: %v", err)
	}
	if sel.Entry.Version != "120.0" {
		t.Fatalf("selected %q want %q", sel.Entry.Version, "120.0")
	}
	want := []Skip{
		{Version: "122.0", Reason: SkipChannel, Detail: ""},
		{Reason: SkipNoVersion},
	}
	if diff := cmp.Diff(want, sel.Skipped); diff != "" {
		t.Fatalf("skips (-want +got):\n%s", diff)
	}
}

func TestSkipString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		skip Skip
		want string
	}{
		{Skip{Version: "1.0", Reason: SkipChannel, Detail: "beta"}, `skipping 1.0: channel is "beta"`},
		{Skip{Version: "1.0", Reason: SkipBetaFile, Detail: "a_beta.zip"}, "skipping 1.0: file a_beta.zip looks like a beta build"},
		{Skip{Version: "1.0", Reason: SkipMissingPlatform, Detail: "linux64"}, "skipping 1.0: not published for linux64"},
		{Skip{Reason: SkipNoVersion}, "skipping entry without a version"},
	}

	for _, tt := range tests {
		t.Run(string(tt.skip.Reason), func(t *testing.T) {
			if got := tt.skip.String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
