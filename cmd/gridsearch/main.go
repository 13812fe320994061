// Command gridsearch lays text out on a terminal grid and prints the regex
// matches found in it, the way a terminal's scrollback search sees them.
//
// Usage:
//
//	gridsearch [flags] PATTERN [FILE]
//
// Text is read from FILE, or standard input when FILE is omitted. Each match
// is printed as "row:column: text"; rows count from the oldest scrollback
// line. The exit status is 0 when something matched, 1 when nothing did and
// 2 on error.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Following the grep tool convention.
const (
	exitMatched    = 0
	exitNotMatched = 1
	exitError      = 2
)

var errNotMatched = errors.New("no matches")

func main() {
	os.Exit(mainNoExit(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func mainNoExit(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdin, stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	switch {
	case err == nil:
		return exitMatched
	case errors.Is(err, errNotMatched):
		return exitNotMatched
	default:
		fmt.Fprintf(stderr, "gridsearch: %v\n", err)
		return exitError
	}
}

type arguments struct {
	columns    int
	rows       int
	scrollback int

	backend       string
	encoding      string
	configFile    string
	caseSensitive bool
	json          bool
	verbose       bool
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var args arguments

	cmd := &cobra.Command{
		Use:           "gridsearch [flags] PATTERN [FILE]",
		Short:         "Search text laid out on a terminal grid",
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, positional []string) error {
			p := &program{
				args:   args,
				flags:  cmd.Flags().Changed,
				stdin:  stdin,
				stdout: stdout,
				log:    newLogger(stderr, args.verbose),
			}
			p.pattern = positional[0]
			if len(positional) == 2 {
				p.filename = positional[1]
			}
			return p.run()
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.IntVar(&args.columns, "columns", 80, "grid width in cells")
	f.IntVar(&args.rows, "rows", 24, "screen height in lines")
	f.IntVar(&args.scrollback, "scrollback", 10000, "maximum number of scrollback lines")
	f.StringVar(&args.backend, "backend", "auto", "regex backend: auto, pcre, native or literal")
	f.StringVar(&args.encoding, "encoding", "auto", "input encoding: auto, utf8, utf16le or utf16be")
	f.StringVar(&args.configFile, "config", "", "load settings from a .toml or .yaml file")
	f.BoolVar(&args.caseSensitive, "case-sensitive", false, "match case exactly")
	f.BoolVar(&args.json, "json", false, "print one JSON object per match")
	f.BoolVarP(&args.verbose, "verbose", "v", false, "log debug messages to stderr")
	return cmd
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
