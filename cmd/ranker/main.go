// Package main is the fdi-ranker CLI: it scores every company in a CSV for
// Netherlands market fit and writes an enriched CSV.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shpitdev/fdi-ranker/internal/config"
	"github.com/shpitdev/fdi-ranker/pkg/pipeline/redact"
)

// configError marks failures that happen before any record is processed.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

type cliEnv struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

func newRootCmd(env cliEnv) *cobra.Command {
	root := &cobra.Command{
		Use:           "fdi-ranker",
		Short:         "Rank companies for Netherlands FDI potential",
		Long:          "fdi-ranker sends one analysis prompt per company in a CSV to an LLM, parses the reply into a score, explanation, ecosystem fit and sources, and writes an enriched CSV.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(env.stdout)
	root.SetErr(env.stderr)

	root.AddCommand(newRunCmd(env))
	root.AddCommand(newInitEnvCmd(env))
	root.AddCommand(newVersionCmd(env))
	return root
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", redact.Secrets(err.Error()))
		os.Exit(2)
	}

	env := cliEnv{stdout: os.Stdout, stderr: os.Stderr, getenv: os.Getenv}
	os.Exit(execute(newRootCmd(env), os.Args[1:], env.stderr))
}

func execute(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return 0
	}
	var ce *configError
	if errors.As(err, &ce) {
		_, _ = fmt.Fprintf(stderr, "config error: %s\n", redact.Secrets(err.Error()))
		return 2
	}
	_, _ = fmt.Fprintf(stderr, "run failed: %s\n", redact.Secrets(err.Error()))
	return 1
}
