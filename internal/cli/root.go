// Package cli implements the ifcrag command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"ifcrag/internal/config"
	"ifcrag/internal/domain"
	"ifcrag/internal/loader"
	"ifcrag/internal/logging"
	"ifcrag/internal/service"
)

var (
	cfgPath   string
	verbose   bool
	appConfig *config.AppConfig
	logger    *slog.Logger

	// openSession builds the session used by embed, query and chat.
	openSession = service.Open
)

var rootCmd = &cobra.Command{
	Use:   "ifcrag",
	Short: "Ask questions about IFC building models",
	Long: `ifcrag extracts building elements from IFC models, turns them into
text chunks, embeds them and answers questions from the closest matches.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (default ./ifcrag.yaml or ~/.config/ifcrag/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	config.LoadEnv()

	var err error
	if cfgPath == "" {
		appConfig, _, err = config.LoadDefault()
	} else {
		appConfig, err = config.Load(cfgPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := appConfig.Log.Level
	if verbose {
		level = "debug"
	}
	logger = logging.New(cmd.ErrOrStderr(), level)
	return nil
}

func newLoader() *loader.Loader {
	ld := loader.New(logger)
	ld.Options.IncludeProperties = appConfig.Extraction.IncludeProperties
	ld.Options.IncludeGeometry = appConfig.Extraction.IncludeGeometry
	return ld
}

func loadDataset(cmd *cobra.Command, path string) (*domain.ProcessedDataset, error) {
	return newLoader().Load(cmd.Context(), loader.FromPath(path))
}

// isIndexFile reports whether path is a saved embedding index rather than a
// model or exported dataset.
func isIndexFile(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return gjson.GetBytes(data, "embeddings").IsArray() && gjson.GetBytes(data, "texts").IsArray()
}

// prepareSession opens a session and fills its index from path, which is
// either a saved index or a source to ingest.
func prepareSession(cmd *cobra.Command, path string) (*service.Session, string, error) {
	s, err := openSession(appConfig, logger)
	if err != nil {
		return nil, "", err
	}
	ctx := cmd.Context()

	if isIndexFile(path) {
		f, err := s.Index().Load(ctx, path)
		if err != nil {
			return nil, "", err
		}
		return s, fmt.Sprintf("%s: %d embeddings (%s)", path, len(f.Texts), f.Model), nil
	}

	ds, chunks, err := s.Ingest(ctx, loader.FromPath(path), func(done, total int) {
		logger.Debug("embedding", "done", done, "total", total)
	})
	if err != nil {
		return nil, "", err
	}
	return s, fmt.Sprintf("%s: %d elements, %d chunks", ds.FileInfo.Name, ds.Summary.TotalElements, len(chunks)), nil
}
