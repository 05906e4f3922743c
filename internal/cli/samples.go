package cli

import (
	"github.com/spf13/cobra"

	"ifcrag/internal/loader"
)

var samplesCmd = &cobra.Command{
	Use:   "samples [dir]",
	Short: "List sample models and datasets in a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runSamples,
}

func init() {
	rootCmd.AddCommand(samplesCmd)
}

func runSamples(cmd *cobra.Command, args []string) error {
	samples, err := loader.ListSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		cmd.Println("No samples found.")
		return nil
	}
	for _, s := range samples {
		cmd.Printf("%-32s %10d bytes\n", s.Name, s.Size)
	}
	return nil
}
