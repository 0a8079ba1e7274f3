// Command evscript compiles an evscript source file into the target
// dialect's textual assembler (spec §6.1). Grounded in the teacher's
// pkg/compiler/main.go single-file-in, single-file-out CLI shape, and
// in ajroetker-goat's main.go for the cobra command/flag wiring.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eievui5/evscript/internal/dialect"
	"github.com/eievui5/evscript/internal/diag"
	"github.com/eievui5/evscript/internal/env"
	"github.com/eievui5/evscript/internal/lang"
	"github.com/eievui5/evscript/internal/lower"
)

var outputs []string

var command = &cobra.Command{
	Use:     "evscript -o <outfile> <infile>",
	Short:   "Compile an evscript source file into assembler directives",
	Args:    cobra.ExactArgs(1),
	Version: "0.1.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		report := diag.NewReporter(os.Stderr)
		output := ""
		switch len(outputs) {
		case 0:
			return fmt.Errorf("missing required flag -o/--output")
		case 1:
			output = outputs[0]
		default:
			report.Warn("-o/--output given %d times, using the last one", len(outputs))
			output = outputs[len(outputs)-1]
		}
		return run(args[0], output, report)
	},
}

func init() {
	command.Flags().StringArrayVarP(&outputs, "output", "o", nil, "output path (- for standard output; repeatable, last one wins)")
}

func run(inputPath, outputPath string, report *diag.Reporter) error {
	src, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	script, err := lang.Parse(string(src))
	if err != nil {
		return err
	}

	registry := env.NewRegistry()
	envName := script.Env
	if envName == "" {
		envName = "std"
	}
	e, ok := registry.Resolve(envName)
	if !ok {
		return fmt.Errorf("unknown environment %q", envName)
	}

	out := os.Stdout
	if outputPath != "-" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if warnings := dialect.Default().Validate(); len(warnings) > 0 {
		for _, w := range warnings {
			report.Warn("%s", w)
		}
	}

	lw := lower.New(e, dialect.Default(), out, report)
	name := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	if err := lw.Compile(name, script); err != nil {
		report.Fatal(err)
		os.Exit(1)
	}
	if err := report.Checkpoint("compilation"); err != nil {
		report.Fatal(err)
		os.Exit(1)
	}
	return nil
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
