// Package check runs one version check: read the pin, fetch the index,
// select the latest acceptable release and compare.
package check

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/3leaps/cefcheck/internal/config"
	"github.com/3leaps/cefcheck/internal/logger"
	"github.com/3leaps/cefcheck/internal/model"
	"github.com/3leaps/cefcheck/internal/pin"
	"github.com/3leaps/cefcheck/internal/verify"
	"github.com/3leaps/cefcheck/pkg/update"
)

// ExitFatal is used when the index cannot be fetched, verified or decoded.
// It is deliberately distinct from the 0/1 outcome codes.
const ExitFatal = 2

// IndexFetcher retrieves the raw index document.
type IndexFetcher interface {
	FetchIndex(ctx context.Context, url string) ([]byte, error)
}

// Result describes a completed check.
type Result struct {
	Pinned    string
	Latest    string
	Decision  update.Decision
	Direction update.Direction
	ExitCode  int
}

type Checker struct {
	Fs      afero.Fs
	Fetcher IndexFetcher
	Log     *zap.SugaredLogger // nil discards diagnostics
	Stdout  io.Writer
}

func (c *Checker) log() *zap.SugaredLogger {
	if c.Log == nil {
		return logger.Nop()
	}
	return c.Log
}

// Run performs the check described by cfg. A nil error means the outcome is
// fully described by the returned Result (including the exit code for the
// unreadable pin and no acceptable version cases). A non-nil error is fatal
// and maps to ExitFatal.
func (c *Checker) Run(ctx context.Context, cfg *config.Config) (Result, error) {
	pinned, err := pin.Read(c.Fs, cfg.PinFile, cfg.PinMacro)
	if err != nil {
		c.log().Warnw("could not read pinned CEF version", "file", cfg.PinFile, "error", err)
		return Result{ExitCode: update.ExitFailed}, nil
	}
	c.log().Debugw("pinned version", "version", pinned, "file", cfg.PinFile)

	idx, err := c.loadIndex(ctx, cfg)
	if err != nil {
		return Result{Pinned: pinned, ExitCode: ExitFatal}, err
	}

	sel, err := update.SelectLatest(idx, policyFrom(cfg))
	for _, skip := range sel.Skipped {
		c.log().Warnw(skip.String(), "version", skip.Version, "reason", string(skip.Reason))
	}
	if err != nil {
		if errors.Is(err, update.ErrNoAcceptableVersion) {
			c.log().Warnw("no acceptable CEF release found", "platform", cfg.MainPlatform, "error", err)
			return Result{Pinned: pinned, ExitCode: update.ExitFailed}, nil
		}
		return Result{Pinned: pinned, ExitCode: ExitFatal}, err
	}

	latest := sel.Entry.Version
	decision, msg, code := update.Decide(pinned, latest)
	res := Result{
		Pinned:   pinned,
		Latest:   latest,
		Decision: decision,
		ExitCode: code,
	}

	if decision == update.DecisionCurrent {
		c.log().Infow(msg, "status", update.DescribeDecision(decision), "version", pinned)
		return res, nil
	}

	res.Direction = update.ClassifyDirection(pinned, latest)
	c.log().Infow(msg, "status", update.DescribeDecision(decision), "pinned", pinned, "latest", latest, "direction", string(res.Direction))
	if _, err := fmt.Fprintln(c.Stdout, latest); err != nil {
		return res, fmt.Errorf("write result: %w", err)
	}
	return res, nil
}

func (c *Checker) loadIndex(ctx context.Context, cfg *config.Config) (model.Index, error) {
	c.log().Debugw("fetching index", "url", cfg.IndexURL)
	raw, err := c.Fetcher.FetchIndex(ctx, cfg.IndexURL)
	if err != nil {
		return nil, err
	}

	sig := verify.IndexSignature{SigPath: cfg.Signature.Sig, PubKeyPath: cfg.Signature.PubKey}
	if sig.Enabled() {
		if err := sig.Verify(raw); err != nil {
			return nil, fmt.Errorf("verify index signature: %w", err)
		}
		c.log().Infow("index signature verified", "pubkey", cfg.Signature.PubKey)
	}

	if err := verify.ValidateIndex(raw); err != nil {
		return nil, err
	}
	return model.Decode(raw)
}

func policyFrom(cfg *config.Config) update.Policy {
	return update.Policy{
		MainPlatform:      cfg.MainPlatform,
		RequiredPlatforms: cfg.RequiredPlatforms,
		Channel:           model.Channel(cfg.Channel),
		BetaMarker:        cfg.BetaMarker,
	}
}
