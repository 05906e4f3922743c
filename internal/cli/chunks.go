package cli

import (
	"github.com/spf13/cobra"

	"ifcrag/internal/serializer"
)

var (
	chunksBatchSize int
	chunksNoCache   bool
)

var chunksCmd = &cobra.Command{
	Use:   "chunks [file]",
	Short: "Print the text chunk of every element",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunks,
}

func init() {
	chunksCmd.Flags().IntVar(&chunksBatchSize, "batch-size", 0, "elements per batch (default from config)")
	chunksCmd.Flags().BoolVar(&chunksNoCache, "no-cache", false, "bypass the chunk cache")
	rootCmd.AddCommand(chunksCmd)
}

func runChunks(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(cmd, args[0])
	if err != nil {
		return err
	}
	opts := serializer.Options{BatchSize: appConfig.Serializer.BatchSize, UseCache: !chunksNoCache}
	if chunksBatchSize > 0 {
		opts.BatchSize = chunksBatchSize
	}
	s := serializer.New(serializer.NewCache(), logger)
	for _, c := range s.ToTextChunks(ds, opts) {
		cmd.Println(c)
	}
	return nil
}
