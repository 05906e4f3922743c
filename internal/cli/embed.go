package cli

import (
	"github.com/spf13/cobra"
)

var (
	embedOut   string
	embedModel string
)

var embedCmd = &cobra.Command{
	Use:   "embed [file]",
	Short: "Embed a model's elements and save the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmbed,
}

func init() {
	embedCmd.Flags().StringVarP(&embedOut, "out", "o", "embeddings.json", "index output path")
	embedCmd.Flags().StringVar(&embedModel, "model", "", "embedding model (openai embedder only)")
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	if embedModel != "" && appConfig.Embedder.OpenAI != nil {
		appConfig.Embedder.OpenAI.Model = embedModel
	}
	s, summary, err := prepareSession(cmd, args[0])
	if err != nil {
		return err
	}
	if err := s.Index().Save(cmd.Context(), embedOut); err != nil {
		return err
	}
	cmd.Println(summary)
	cmd.Printf("Saved index to %s\n", embedOut)
	return nil
}
