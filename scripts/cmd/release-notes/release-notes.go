// Command release-notes turns a "file=url,file=url" list of VirusTotal
// report links into Markdown lines for a release body.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := &cobra.Command{
		Use:           "release-notes <file=url,...>",
		Short:         "Format VirusTotal analysis links as Markdown",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(stdout, format(args[0]))
			return err
		},
	}
	if args == nil {
		// cobra falls back to os.Args on nil
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		fmt.Fprintln(stderr, cmd.UseLine())
		return 1
	}
	return 0
}

// format renders one line per comma-separated segment. Only the first "=" of
// a segment separates the file from the URL; a segment without one gets the
// literal URL "undefined". Nothing is escaped or validated.
func format(input string) string {
	segments := strings.Split(input, ",")
	lines := make([]string, 0, len(segments))
	for _, segment := range segments {
		file, url, ok := strings.Cut(segment, "=")
		if !ok {
			url = "undefined"
		}
		lines = append(lines, fmt.Sprintf("`%s`: [VirusTotal analysis](%s)", file, url))
	}
	return strings.Join(lines, "\n")
}
