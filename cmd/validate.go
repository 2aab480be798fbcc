package cmd

import (
	"context"
	"fmt"
	"os"

	"lake-validator/core/config"
	"lake-validator/core/logger"
	"lake-validator/core/reconcile"
	"lake-validator/core/schema"
	"lake-validator/feature/validation"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// validateCmd is the parent command for all validations.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate warehouse tables against their source",
	Long: `Validate compares the records a source API holds with the rows and columns
materialized in the warehouse, one resource type at a time.`,
}

// validateFhirCmd validates every FHIR resource type with a schema document.
var validateFhirCmd = &cobra.Command{
	Use:   "fhir",
	Short: "Validate FHIR resource tables",
	Long: `Validate FHIR resource tables against the FHIR search API.

For every resource type with a schema document, counts the resources updated
since the configured start, queries [fhir].[<type>] and compares row count and
column count with the flattened schema.

Examples:
  # All resource types in ./schema
  validate fhir

  # A subset, including the _Customized tables
  validate fhir --resource-types Patient,Observation --customized-schema

  # Stop at the first failure and print the verdict as JSON
  validate fhir --fail-fast --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidation(cmd, "FHIR Validation Metrics", (*validation.Service).ValidateFhir)
	},
}

// validateDicomCmd validates the DICOM metadata table.
var validateDicomCmd = &cobra.Command{
	Use:   "dicom",
	Short: "Validate the DICOM metadata table",
	Long: `Validate the DICOM metadata table against the changefeed.

Counts changefeed entries created and still current, queries [dicom].[dicom]
and compares the row count and the fixed expected column count.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidation(cmd, "DICOM Validation Metrics", (*validation.Service).ValidateDicom)
	},
}

func init() {
	validateCmd.PersistentFlags().Bool("fail-fast", false, "Stop at the first failed resource type")
	validateCmd.PersistentFlags().Int("concurrency", reconcile.DefaultConcurrency, "Maximum reconciliations in flight")
	validateCmd.PersistentFlags().Bool("json", false, "Print the verdict as JSON")

	validateFhirCmd.Flags().String("resource-types", "", "Comma separated resource types to validate (default: all schemas)")
	validateFhirCmd.Flags().Bool("customized-schema", false, "Also validate {type}_Customized tables")
	validateFhirCmd.Flags().String("schema-dir", "", "Directory holding the schema documents")

	validateCmd.AddCommand(validateFhirCmd, validateDicomCmd)
	RootCmd.AddCommand(validateCmd)
}

type validateFunc func(s *validation.Service, ctx context.Context) (*reconcile.Verdict, error)

func runValidation(cmd *cobra.Command, title string, validate validateFunc) error {
	ctx := cmd.Context()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logg.Sync() }()

	svc := validation.NewService(cfg, logg)
	verdict, err := validate(svc, ctx)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		if err := validation.WriteJSON(os.Stdout, verdict); err != nil {
			return err
		}
	} else {
		validation.PrintReport(os.Stdout, title, verdict)
	}

	if err := verdict.Err(); err != nil {
		logg.Warn("Validation failed", zap.String("run_id", verdict.RunID), zap.Int("failures", len(verdict.Failures)))
		return err
	}
	return nil
}

// applyFlags overrides configuration with flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("fail-fast") {
		cfg.Validation.FailFast, _ = flags.GetBool("fail-fast")
	}
	if flags.Changed("concurrency") {
		cfg.Validation.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("resource-types") {
		cfg.Validation.ResourceTypes, _ = flags.GetString("resource-types")
	}
	if flags.Changed("customized-schema") {
		cfg.Validation.CustomizedSchema, _ = flags.GetBool("customized-schema")
	}
	if flags.Changed("schema-dir") {
		cfg.Schema.Source = schema.SourceDirectory
		cfg.Schema.Directory, _ = flags.GetString("schema-dir")
	}
}
