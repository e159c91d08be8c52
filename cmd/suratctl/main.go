// suratctl runs the attachment and submission tooling of the Surat App from
// a terminal: sizing and compressing attachments, checking agenda numbers
// and submitting records against the configured project.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Lllllllleong/suratflow/internal/logging"
	"github.com/spf13/pflag"
)

type command struct {
	name    string
	summary string
	run     func(args []string, stdin io.Reader, stdout io.Writer) error
}

var commands = []command{
	{"size", "print the measured size of attachment files", runSize},
	{"compress", "compress an image under the size limit", runCompress},
	{"check", "check agenda numbers read from stdin (debounced)", runCheck},
	{"submit", "submit a record with an optional attachment", runSubmit},
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	logging.Init()

	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stdout)
		return nil
	}
	for _, c := range commands {
		if c.name == args[0] {
			err := c.run(args[1:], stdin, stdout)
			if errors.Is(err, pflag.ErrHelp) {
				return nil
			}
			return err
		}
	}
	printUsage(os.Stderr)
	return fmt.Errorf("unknown command %q", args[0])
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: suratctl <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	return pflag.NewFlagSet("suratctl "+name, pflag.ContinueOnError)
}
