// Package cli wires configuration, logging and the index client into the
// cefcheck command and maps every outcome to a process exit code.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/3leaps/cefcheck/internal/check"
	"github.com/3leaps/cefcheck/internal/config"
	"github.com/3leaps/cefcheck/internal/host/cef"
	"github.com/3leaps/cefcheck/internal/logger"
	"github.com/3leaps/cefcheck/internal/pin"
)

// Version is overridden at link time.
var Version = "dev"

type options struct {
	configPath        string
	indexURL          string
	pinFile           string
	pinMacro          string
	mainPlatform      string
	requiredPlatforms []string
	timeout           time.Duration
	indexSig          string
	minisignKey       string
	logLevel          string
}

// Run executes cefcheck with args (without the program name) and returns the
// process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	return run(afero.NewOsFs(), args, stdout, stderr)
}

func run(fs afero.Fs, args []string, stdout, stderr io.Writer) int {
	exitCode := 0
	var opts options

	root := &cobra.Command{
		Use:   "cefcheck",
		Short: "Report whether the pinned CEF version is the latest stable release",
		Long: `cefcheck reads the CEF version pinned in the loader sources, fetches the
CEF build index and selects the newest stable release published for every
required platform.

Exit status is 0 when the pin is current and 1 when it is outdated (the new
version is printed to stdout) or when no decision could be made (nothing is
printed). Fetch, verification and configuration failures exit with 2.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			code, err := execute(cmd.Context(), fs, cmd.Flags(), &opts, stdout, stderr)
			exitCode = code
			return err
		},
	}
	if args == nil {
		// cobra falls back to os.Args on nil
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")
	flags.StringVar(&opts.indexURL, "index-url", cef.DefaultIndexURL, "CEF build index URL")
	flags.StringVar(&opts.pinFile, "pin-file", config.DefaultPinFile, "source file declaring the pinned version")
	flags.StringVar(&opts.pinMacro, "pin-macro", pin.DefaultMacro, "macro holding the pinned version")
	flags.StringVar(&opts.mainPlatform, "main-platform", config.DefaultMainPlatform, "platform whose releases are considered")
	flags.StringSliceVar(&opts.requiredPlatforms, "required-platforms", config.DefaultRequiredPlatforms, "platforms a release must be published for")
	flags.DurationVar(&opts.timeout, "timeout", cef.DefaultTimeout, "index request timeout")
	flags.StringVar(&opts.indexSig, "index-sig", "", "minisign signature of the index")
	flags.StringVar(&opts.minisignKey, "minisign-key", "", "minisign public key used with --index-sig")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newVersionCommand(stdout))

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if exitCode == 0 {
			// flag parsing and unknown commands fail before RunE
			return check.ExitFatal
		}
		return exitCode
	}
	return exitCode
}

func execute(ctx context.Context, fs afero.Fs, flags *pflag.FlagSet, opts *options, stdout, stderr io.Writer) (int, error) {
	cfg, err := config.Load(fs, opts.configPath)
	if err != nil {
		return check.ExitFatal, err
	}
	applyFlags(cfg, flags, opts)
	if err := cfg.Validate(); err != nil {
		return check.ExitFatal, err
	}

	log := logger.New(stderr, cfg.Logging.Level)
	defer func() { _ = log.Sync() }()

	if opts.configPath != "" {
		log.Debugw("using configuration", "file", opts.configPath)
	}

	checker := &check.Checker{
		Fs:      fs,
		Fetcher: cef.NewClient(cfg.Timeout, cef.UserAgent(Version)),
		Log:     log,
		Stdout:  stdout,
	}
	res, err := checker.Run(ctx, cfg)
	return res.ExitCode, err
}

// applyFlags overlays the flags given on the command line. Flags left at their
// defaults never override values from the configuration file.
func applyFlags(cfg *config.Config, flags *pflag.FlagSet, opts *options) {
	if flags.Changed("index-url") {
		cfg.IndexURL = opts.indexURL
	}
	if flags.Changed("pin-file") {
		cfg.PinFile = opts.pinFile
	}
	if flags.Changed("pin-macro") {
		cfg.PinMacro = opts.pinMacro
	}
	if flags.Changed("main-platform") {
		cfg.MainPlatform = opts.mainPlatform
	}
	if flags.Changed("required-platforms") {
		cfg.RequiredPlatforms = opts.requiredPlatforms
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("index-sig") {
		cfg.Signature.Sig = opts.indexSig
	}
	if flags.Changed("minisign-key") {
		cfg.Signature.PubKey = opts.minisignKey
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the cefcheck version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(stdout, "cefcheck", Version)
		},
	}
}
