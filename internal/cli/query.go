package cli

import (
	"github.com/spf13/cobra"

	"ifcrag/internal/service"
)

var queryThreshold float64

var queryCmd = &cobra.Command{
	Use:   "query [file|embeddings.json] [question]",
	Short: "Answer one question about a model",
	Long: `Retrieves the elements whose similarity to the question reaches the
threshold, keeps the element type named in the question, and phrases an answer.`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().Float64Var(&queryThreshold, "threshold", -1, "similarity threshold 0..1 (default from config)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	s, _, err := prepareSession(cmd, args[0])
	if err != nil {
		return err
	}
	threshold := appConfig.Retrieval.Threshold
	if queryThreshold >= 0 {
		threshold = queryThreshold
	}
	ans := s.Query(cmd.Context(), args[1], threshold)
	if ans.Err != nil {
		return ans.Err
	}
	printAnswer(cmd, ans)
	return nil
}

func printAnswer(cmd *cobra.Command, ans service.Answer) {
	cmd.Println(ans.Text)
	cmd.Println()
	cmd.Printf("Found %d relevant elements:\n", len(ans.Candidates))
	for i, m := range ans.Candidates {
		cmd.Printf("  [%d] %.3f  %s\n", i+1, m.SimilarityScore, m.Text)
	}
}
