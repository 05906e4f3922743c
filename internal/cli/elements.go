package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"ifcrag/internal/domain"
	"ifcrag/internal/serializer"
)

var (
	elementsType   string
	elementsSearch string
)

var elementsCmd = &cobra.Command{
	Use:   "elements [file]",
	Short: "List extracted elements",
	Long: `Lists the elements of a model or exported dataset.
--type keeps one element type, --search keeps elements whose text contains
the given string, ignoring case.`,
	Args: cobra.ExactArgs(1),
	RunE: runElements,
}

func init() {
	elementsCmd.Flags().StringVarP(&elementsType, "type", "t", "", "element type, e.g. IfcWall")
	elementsCmd.Flags().StringVarP(&elementsSearch, "search", "s", "", "case-insensitive text search")
	rootCmd.AddCommand(elementsCmd)
}

func runElements(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(cmd, args[0])
	if err != nil {
		return err
	}
	shown := filterElements(ds.Elements, elementsType, elementsSearch)
	for _, el := range shown {
		name := el.Name
		if name == "" {
			name = "-"
		}
		cmd.Printf("%-16s %-24s %s\n", el.Type, el.ID, name)
	}
	cmd.Printf("Showing %d of %d elements\n", len(shown), len(ds.Elements))
	return nil
}

func filterElements(elements []domain.ElementRecord, typ, search string) []domain.ElementRecord {
	search = strings.ToLower(search)
	var out []domain.ElementRecord
	for _, el := range elements {
		if typ != "" && !strings.EqualFold(el.Type, typ) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(serializer.Chunk(el)), search) {
			continue
		}
		out = append(out, el)
	}
	return out
}
