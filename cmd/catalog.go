package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evrange/app"
	"github.com/kilianp07/evrange/config"
	"github.com/kilianp07/evrange/core/catalog"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/pkg/export"
)

var (
	catalogField  string
	catalogFormat string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the options offered by the form",
}

var catalogLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the options of every categorical field",
	RunE:  runCatalogLs,
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the option catalog as csv or json",
	RunE:  runCatalogExport,
}

func init() {
	catalogLsCmd.Flags().StringVar(&catalogField, "field", "", "only list this field")
	catalogExportCmd.Flags().StringVar(&catalogFormat, "format", "json", "output format: csv or json")
	catalogCmd.AddCommand(catalogLsCmd, catalogExportCmd)
	rootCmd.AddCommand(catalogCmd)
}

func loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.LoadCatalog(ctx, *cfg)
}

func runCatalogLs(cmd *cobra.Command, args []string) error {
	fields := model.CategoricalFields
	if catalogField != "" {
		f, ok := model.ParseField(catalogField)
		if !ok || f == model.FieldVehicleAge {
			return fmt.Errorf("unknown field %q", catalogField)
		}
		fields = []model.Field{f}
	}
	cat, err := loadCatalog(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, f := range fields {
		opts := cat.Options(f)
		if _, err := fmt.Fprintf(out, "%s (%d)\n", f.Label(), len(opts)); err != nil {
			return err
		}
		for _, o := range opts {
			if _, err := fmt.Fprintf(out, "  %s\n", o); err != nil {
				return err
			}
		}
	}
	return nil
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(catalogFormat)
	if format != "csv" && format != "json" {
		return fmt.Errorf("unsupported format %q", catalogFormat)
	}
	cat, err := loadCatalog(cmd.Context())
	if err != nil {
		return err
	}
	if format == "csv" {
		return export.WriteCSV(cmd.OutOrStdout(), cat)
	}
	return export.WriteJSON(cmd.OutOrStdout(), cat)
}
