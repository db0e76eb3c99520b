package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fekuna/omnipos-marketplace-service/internal/catalogload"
	loadRepoPkg "github.com/fekuna/omnipos-marketplace-service/internal/catalogload/repository"
	catRepoPkg "github.com/fekuna/omnipos-marketplace-service/internal/category/repository"
	formRepoPkg "github.com/fekuna/omnipos-marketplace-service/internal/formschema/repository"
	"github.com/spf13/cobra"
)

const defaultDumpPath = "env_files/category_data_dump.json"

var loadDryRun bool

var loadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Load categories and form schemas from a catalog dump",
	Long: `Load categories and their form schemas from a JSON dump: an array of rows
with name, category_code, parent_category_code, order, description, image_url,
is_active and an optional category_fields_config.

Categories are upserted by code and schemas by category, in one transaction,
so loading the same dump twice leaves the catalog unchanged.

Examples:
  catalogctl load                         # Load ` + defaultDumpPath + `
  catalogctl load dump.json --dry-run     # Print the plan and schema diffs only`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := defaultDumpPath
		if len(args) == 1 {
			path = args[0]
		}
		return runLoad(cmd.Context(), cmd.OutOrStdout(), path)
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().BoolVar(&loadDryRun, "dry-run", false, "Parse and plan only; do not write to the database")
}

func runLoad(ctx context.Context, out io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read dump: %w", err)
	}
	records, warnings, err := catalogload.Parse(data)
	if err != nil {
		return err
	}

	db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	loader := catalogload.NewLoader(
		catRepoPkg.NewPGRepository(db),
		formRepoPkg.NewPGRepository(db),
		loadRepoPkg.NewPGStore(db),
		cfg.Catalog.MaxCategoryDepth,
		newLogger(),
	)

	plan, err := loader.Plan(ctx, records)
	if err != nil {
		return err
	}

	for _, w := range append(warnings, plan.Warnings...) {
		fmt.Fprintf(out, "WARNING: %s\n", w)
	}
	fmt.Fprintf(out, "Parsed %d categories (dry_run=%t).\n", len(plan.Categories), loadDryRun)

	if loadDryRun {
		return printPlan(ctx, out, loader, plan)
	}

	res, err := loader.Apply(ctx, plan)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, res.String())
	return nil
}
