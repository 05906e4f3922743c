package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Show file information and element summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(cmd, args[0])
	if err != nil {
		return err
	}
	fi := ds.FileInfo
	cmd.Printf("File:     %s\n", fi.Name)
	if fi.Schema != "" {
		cmd.Printf("Schema:   %s\n", fi.Schema)
	}
	if fi.Size > 0 {
		cmd.Printf("Size:     %d bytes\n", fi.Size)
	}
	cmd.Printf("Elements: %d\n", ds.Summary.TotalElements)
	cmd.Printf("Types:    %s\n", strings.Join(ds.Summary.ElementTypes, ", "))
	return nil
}
