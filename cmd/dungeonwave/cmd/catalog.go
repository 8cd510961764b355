package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nfrund/dungeonwave/cmd/dungeonwave/internal/display"
	"github.com/nfrund/dungeonwave/internal/catalog"
)

func newCatalogCmd() *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect game catalogs",
	}
	catalogCmd.AddCommand(newCatalogValidateCmd())
	return catalogCmd
}

func newCatalogValidateCmd() *cobra.Command {
	var strict bool
	validateCmd := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Load a catalog directory and report problems",
		Long: `Load a catalog directory the way the server does and print a summary plus
every problem the loader had to repair. Without a directory the embedded
default catalog is checked.

Examples:
  dungeonwave catalog validate
  dungeonwave catalog validate ./catalog --strict`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, warnings, err := loadCatalog(cmd.Context(), args)
			if err != nil {
				return err
			}
			display.CatalogSummary(cmd.OutOrStdout(), cat, warnings)
			if strict && len(warnings) > 0 {
				return fmt.Errorf("catalog has %d warning(s)", len(warnings))
			}
			return nil
		},
	}
	validateCmd.Flags().BoolVar(&strict, "strict", false, "Fail when the loader repaired anything")
	return validateCmd
}

// loadCatalog reads args[0] from disk, or the embedded catalog.
func loadCatalog(ctx context.Context, args []string) (*catalog.Catalog, []catalog.Warning, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(args) == 0 || args[0] == "" {
		return catalog.LoadDefault(ctx)
	}
	cat, warnings, err := catalog.Load(ctx, afero.NewOsFs(), args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog %s: %w", args[0], err)
	}
	return cat, warnings, nil
}
