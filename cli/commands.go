package cli

import (
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/giygas/d3ai-api/catalog"
	"github.com/giygas/d3ai-api/chem"
	"github.com/giygas/d3ai-api/handlers"
	"github.com/giygas/d3ai-api/validation"
	"github.com/spf13/cobra"
)

func newPredictDiseaseCmd(svc *services) *cobra.Command {
	return &cobra.Command{
		Use:     "predict-disease SYMPTOM...",
		Short:   "Predict the most likely disease for a list of symptoms",
		Example: `  d3ai predict-disease fever cough "body aches"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.validator.ValidateSymptoms(args); err != nil {
				return err
			}
			if err := svc.load(cmd.Context()); err != nil {
				return err
			}
			resp, err := svc.diseases.PredictDisease(cmd.Context(), args)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func newDiseaseCmd(svc *services) *cobra.Command {
	return &cobra.Command{
		Use:   "disease NAME",
		Short: "Show a catalog disease by its exact name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.validator.ValidateName(args[0]); err != nil {
				return err
			}
			if err := svc.load(cmd.Context()); err != nil {
				return err
			}
			d, err := svc.diseases.GetDiseaseInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), d)
		},
	}
}

func newCandidatesCmd(svc *services) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates DISEASE",
		Short: "List drug candidates recorded for a disease",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.validator.ValidateName(args[0]); err != nil {
				return err
			}
			if err := svc.load(cmd.Context()); err != nil {
				return err
			}
			candidates, err := svc.drugs.SearchCandidates(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), candidates)
		},
	}
}

func newValidateCmd(svc *services) *cobra.Command {
	return &cobra.Command{
		Use:   "validate SMILES",
		Short: "Check whether a SMILES string parses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.load(cmd.Context()); err != nil {
				return err
			}
			valid := false
			if svc.validator.ValidateSMILESParam(args[0]) == nil {
				valid = svc.drugs.ValidateStructure(cmd.Context(), args[0])
			}
			return printJSON(cmd.OutOrStdout(), map[string]bool{"valid": valid})
		},
	}
}

func newPropertiesCmd(svc *services) *cobra.Command {
	return &cobra.Command{
		Use:     "properties SMILES",
		Short:   "Compute molecular weight, LogP and TPSA",
		Example: "  d3ai properties CCO",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.validator.ValidateSMILESParam(args[0]); err != nil {
				return err
			}
			if err := svc.load(cmd.Context()); err != nil {
				return err
			}
			pred, err := svc.drugs.PredictProperties(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), pred)
		},
	}
}

func newGenerateCmd(svc *services) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "generate SMILES",
		Short: "Generate molecules from a seed structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.validator.ValidateSMILESParam(args[0]); err != nil {
				return err
			}
			if err := svc.validator.ValidateMoleculeCount(n); err != nil {
				return err
			}
			if err := svc.load(cmd.Context()); err != nil {
				return err
			}
			molecules, err := svc.drugs.GenerateMolecules(cmd.Context(), args[0], n)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), molecules)
		},
	}
	cmd.Flags().IntVarP(&n, "n-molecules", "n", handlers.DefaultMoleculeCount, "number of molecules to generate")
	return cmd
}

func newDepictCmd() *cobra.Command {
	var (
		output string
		size   int
	)
	cmd := &cobra.Command{
		Use:   "depict SMILES",
		Short: "Render a 2D depiction of a molecule as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := chem.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid SMILES string: %w", err)
			}
			img := chem.Depict(m, chem.DepictOptions{Width: size, Height: size})

			f, err := os.Create(filepath.Clean(output))
			if err != nil {
				return err
			}
			if err := png.Encode(f, img); err != nil {
				_ = f.Close()
				return fmt.Errorf("failed to encode PNG: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "molecule.png", "PNG file to write")
	cmd.Flags().IntVar(&size, "size", 300, "image width and height in pixels")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Catalog file utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check FILE",
		Short: "Report data-quality issues of a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := catalog.ReadFile(args[0])
			if err != nil {
				return err
			}
			report := validation.NewCatalogValidator().ReportCatalogQuality(f)
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if validation.HasBlockingIssues(report) {
				return errors.New("catalog cannot be loaded")
			}
			_, err = catalog.Build(args[0], f)
			return err
		},
	})
	return cmd
}
