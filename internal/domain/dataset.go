package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FileTypeIFC tags datasets produced from IFC models.
const FileTypeIFC = "IFC"

// FileInfo describes the source of a dataset.
type FileInfo struct {
	Name   string `json:"name"`
	Size   int64  `json:"size,omitempty"`
	Path   string `json:"path,omitempty"`
	Type   string `json:"type"`
	Schema string `json:"schema,omitempty"`
}

// Summary counts elements and lists the distinct types in first-seen order.
type Summary struct {
	TotalElements int      `json:"total_elements"`
	ElementTypes  []string `json:"element_types"`
}

// ProcessedDataset is the extraction output for one file.
type ProcessedDataset struct {
	FileInfo FileInfo        `json:"file_info"`
	Elements []ElementRecord `json:"elements"`
	Summary  Summary         `json:"summary"`
}

// NewDataset builds a dataset and its summary.
func NewDataset(info FileInfo, elements []ElementRecord) *ProcessedDataset {
	if elements == nil {
		elements = []ElementRecord{}
	}
	return &ProcessedDataset{FileInfo: info, Elements: elements, Summary: Summarize(elements)}
}

// Summarize counts elements and collects their distinct types.
func Summarize(elements []ElementRecord) Summary {
	seen := make(map[string]struct{})
	types := []string{}
	for _, el := range elements {
		if _, ok := seen[el.Type]; ok {
			continue
		}
		seen[el.Type] = struct{}{}
		types = append(types, el.Type)
	}
	return Summary{TotalElements: len(elements), ElementTypes: types}
}

// CacheKey identifies the dataset source for the text-chunk cache.
func (d *ProcessedDataset) CacheKey() string {
	return fmt.Sprintf("%s_%d", d.FileInfo.Name, d.FileInfo.Size)
}

// MarshalDataset encodes a dataset as UTF-8 JSON without HTML or ASCII escaping.
// Compact output carries no whitespace; otherwise it is indented by two spaces.
func MarshalDataset(d *ProcessedDataset, compact bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if !compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalDataset decodes an exported dataset.
func UnmarshalDataset(data []byte) (*ProcessedDataset, error) {
	var d ProcessedDataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if d.Elements == nil {
		d.Elements = []ElementRecord{}
	}
	if d.Summary.ElementTypes == nil {
		d.Summary = Summarize(d.Elements)
	}
	return &d, nil
}

// DefaultExportPath derives "<stem>_processed.json" from the source file name.
func DefaultExportPath(name string) string {
	if name == "" {
		name = "processed_ifc"
	}
	if strings.HasSuffix(strings.ToLower(name), ".ifc") {
		return name[:len(name)-len(".ifc")] + "_processed.json"
	}
	return name + "_processed.json"
}

// SaveDataset writes the indented JSON form to path, or to DefaultExportPath when empty.
func SaveDataset(d *ProcessedDataset, path string) (string, error) {
	if path == "" {
		path = DefaultExportPath(d.FileInfo.Name)
	}
	data, err := MarshalDataset(d, false)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save dataset: %w", err)
	}
	return path, nil
}
