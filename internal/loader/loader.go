// Package loader opens IFC models and previously exported datasets.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ifcrag/internal/domain"
	"ifcrag/internal/extractor"
	"ifcrag/internal/ifc"
)

// Open parses the IFC model at path.
func Open(path string) (*ifc.Model, error) {
	m, err := ifc.Open(path)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: err}
	}
	return m, nil
}

// OpenUpload parses an in-memory upload through a temporary file. The file
// is removed whether or not parsing succeeds.
func OpenUpload(name string, data []byte) (*ifc.Model, error) {
	tmp, err := os.CreateTemp("", "upload-*.ifc")
	if err != nil {
		return nil, &domain.LoadError{Path: name, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, &domain.LoadError{Path: name, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return nil, &domain.LoadError{Path: name, Err: err}
	}
	m, err := ifc.Open(tmp.Name())
	if err != nil {
		return nil, &domain.LoadError{Path: name, Err: err}
	}
	return m, nil
}

// Source is a model to load: a path on disk or an upload held in memory.
type Source struct {
	Path string
	Name string
	Data []byte
}

// FromPath returns a Source for a file on disk.
func FromPath(path string) Source { return Source{Path: path, Name: filepath.Base(path)} }

// FromUpload returns a Source for uploaded bytes.
func FromUpload(name string, data []byte) Source { return Source{Name: name, Data: data} }

// Loader turns sources into processed datasets.
type Loader struct {
	Options extractor.Options
	Logger  *slog.Logger
}

// New returns a Loader using the pipeline extraction options.
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	opts := extractor.DefaultOptions()
	opts.Logger = logger
	return &Loader{Options: opts, Logger: logger}
}

// Load reads an .ifc model through filtered extraction or decodes an
// exported .json dataset.
func (l *Loader) Load(ctx context.Context, src Source) (*domain.ProcessedDataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := src.Name
	if name == "" {
		name = filepath.Base(src.Path)
	}
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return l.loadJSON(src)
	}

	var (
		m    *ifc.Model
		err  error
		info = domain.FileInfo{Name: name, Type: domain.FileTypeIFC}
	)
	if src.Data != nil {
		m, err = OpenUpload(name, src.Data)
		info.Size = int64(len(src.Data))
	} else {
		m, err = Open(src.Path)
		info.Path = src.Path
	}
	if err != nil {
		return nil, err
	}
	info.Schema = m.Schema()

	res := extractor.ExtractFiltered(m, l.Options)
	if res.AllFailed() {
		l.Logger.Warn("no element could be extracted", "file", name, "skipped", len(res.Outcomes))
	}
	ds := res.Dataset(info)
	l.Logger.Info("model loaded", "file", name, "schema", info.Schema, "elements", ds.Summary.TotalElements)
	return ds, nil
}

func (l *Loader) loadJSON(src Source) (*domain.ProcessedDataset, error) {
	data := src.Data
	if data == nil {
		var err error
		data, err = os.ReadFile(src.Path)
		if err != nil {
			return nil, &domain.LoadError{Path: src.Path, Err: err}
		}
	}
	ds, err := domain.UnmarshalDataset(data)
	if err != nil {
		return nil, &domain.LoadError{Path: src.Name, Err: err}
	}
	return ds, nil
}

// Sample is a model or dataset file found in a samples directory.
type Sample struct {
	Name string
	Path string
	Size int64
}

// ListSamples lists the .ifc and .json files in dir, sorted by name.
func ListSamples(dir string) ([]Sample, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	var out []Sample
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".ifc", ".json":
		default:
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Sample{Name: e.Name(), Path: filepath.Join(dir, e.Name()), Size: info.Size()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
