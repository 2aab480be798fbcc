package cmd

import (
	"fmt"
	"sort"

	"lake-validator/core/config"
	"lake-validator/core/logger"
	"lake-validator/core/schema"
	"lake-validator/feature/validation"

	"github.com/spf13/cobra"
)

// schemaCmd groups schema inspection commands.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect schema documents",
}

// schemaListCmd lists every resource type with its expected column count.
var schemaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List resource types and expected column counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := loadIndex(cmd)
		if err != nil {
			return err
		}

		columns := schema.FlattenAll(index)
		for _, rt := range index.ResourceTypes() {
			fmt.Printf("%-40s %d\n", rt, len(columns[rt]))
		}
		fmt.Printf("\nTotal Resource Types: %d\n", len(index))
		return nil
	},
}

// schemaColumnsCmd prints the flattened column map of one resource type.
var schemaColumnsCmd = &cobra.Command{
	Use:   "columns <ResourceType>",
	Short: "Print the flattened columns of a resource type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := loadIndex(cmd)
		if err != nil {
			return err
		}

		node, ok := index[args[0]]
		if !ok {
			return fmt.Errorf("no schema for resource type: %s", args[0])
		}

		columns := schema.Flatten(node)
		paths := make([]string, 0, len(columns))
		for path := range columns {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		fmt.Printf("=== %s ===\n", args[0])
		for _, path := range paths {
			fmt.Printf("%s -> %s\n", path, columns[path])
		}
		fmt.Printf("\nTotal Columns: %d\n", len(columns))
		return nil
	},
}

func init() {
	schemaCmd.PersistentFlags().String("schema-dir", "", "Directory holding the schema documents")
	schemaCmd.AddCommand(schemaListCmd, schemaColumnsCmd)
	RootCmd.AddCommand(schemaCmd)
}

func loadIndex(cmd *cobra.Command) (schema.Index, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return validation.NewService(cfg, logg).LoadSchemas(cmd.Context())
}
