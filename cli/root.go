// Package cli implements the d3ai command, which runs the disease and drug
// services against a catalog without starting the HTTP server.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/giygas/d3ai-api/catalog"
	"github.com/giygas/d3ai-api/data"
	"github.com/giygas/d3ai-api/disease"
	"github.com/giygas/d3ai-api/drug"
	"github.com/giygas/d3ai-api/logging"
	"github.com/giygas/d3ai-api/validation"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// RootOptions holds the global flags.
type RootOptions struct {
	CatalogPath string
	Matcher     string
	LogLevel    string
}

// services are built lazily so commands that do not need a catalog
// (validate, catalog check) never load one.
type services struct {
	opts      *RootOptions
	diseases  *disease.Service
	drugs     *drug.Service
	validator *validation.InputValidatorImpl
}

func (s *services) load(ctx context.Context) error {
	if s.diseases != nil {
		return nil
	}
	mode, err := disease.ParseMode(s.opts.Matcher)
	if err != nil {
		return err
	}

	var snap *catalog.Catalog
	if s.opts.CatalogPath != "" {
		snap, err = catalog.LoadFile(ctx, s.opts.CatalogPath)
		if err != nil {
			return err
		}
	} else {
		snap = catalog.Default()
	}

	store := data.NewCatalogContainer(snap)
	s.diseases = disease.NewService(store, mode)
	s.drugs = drug.NewService(store)
	return nil
}

// NewRootCommand creates the d3ai command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	svc := &services{
		opts:      opts,
		validator: validation.NewInputValidator(validation.DefaultMaxMolecules),
	}

	cmd := &cobra.Command{
		Use:     "d3ai",
		Short:   "Disease matching and molecule property tools",
		Long:    "d3ai predicts diseases from symptoms and computes properties of small molecules\ngiven as SMILES, using the same services as the D3AI API.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(opts.LogLevel)
			if err != nil {
				return err
			}
			logging.Init(logging.Options{Level: level, Console: cmd.ErrOrStderr()})
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.CatalogPath, "catalog", "", "YAML catalog file (default: built-in catalog)")
	pf.StringVar(&opts.Matcher, "matcher", string(disease.ModePairwise), "symptom matcher (pairwise, corpus)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newPredictDiseaseCmd(svc),
		newDiseaseCmd(svc),
		newCandidatesCmd(svc),
		newValidateCmd(svc),
		newPropertiesCmd(svc),
		newGenerateCmd(svc),
		newDepictCmd(),
		newCatalogCmd(),
	)
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	_ = logging.Shutdown()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Main is the entry point used by cmd/d3ai.
func Main() {
	os.Exit(Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
