package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ifcrag/internal/domain"
	"ifcrag/internal/extractor"
	"ifcrag/internal/loader"
)

var (
	exportFull    bool
	exportCompact bool
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:   "export [file.ifc]",
	Short: "Export extracted elements as JSON",
	Long: `Writes the processed dataset as JSON. By default only the building
element categories are exported; --full exports every non-relationship entity
with all of its attributes, properties, quantities and materials.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportFull, "full", false, "export every entity with all attributes")
	exportCmd.Flags().BoolVar(&exportCompact, "compact", false, "write JSON without indentation")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path (default <name>_processed.json)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	path := args[0]
	var (
		ds  *domain.ProcessedDataset
		err error
	)
	if exportFull {
		ds, err = exportFullDataset(path)
	} else {
		ds, err = loadDataset(cmd, path)
	}
	if err != nil {
		return err
	}

	data, err := domain.MarshalDataset(ds, exportCompact)
	if err != nil {
		return err
	}
	out := exportOut
	if out == "" {
		out = domain.DefaultExportPath(ds.FileInfo.Name)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	cmd.Printf("Exported %d elements to %s\n", ds.Summary.TotalElements, out)
	return nil
}

func exportFullDataset(path string) (*domain.ProcessedDataset, error) {
	m, err := loader.Open(path)
	if err != nil {
		return nil, err
	}
	res := extractor.ExtractFull(m, logger)
	return res.Dataset(domain.FileInfo{
		Name:   filepath.Base(path),
		Path:   path,
		Schema: m.Schema(),
	}), nil
}
