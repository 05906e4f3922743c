package domain

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementIDDecodesNumberAndString(t *testing.T) {
	var recs []ElementRecord
	require.NoError(t, json.Unmarshal([]byte(`[{"id":42,"type":"IfcWall","name":""},{"id":"2O2Fr$t4X7Zf8NOew3FLOH","type":"IfcDoor","name":"D1"}]`), &recs))
	assert.Equal(t, ElementID("42"), recs[0].ID)
	assert.Equal(t, ElementID("2O2Fr$t4X7Zf8NOew3FLOH"), recs[1].ID)
}

func TestNewDatasetSummary(t *testing.T) {
	ds := NewDataset(FileInfo{Name: "a.ifc", Type: FileTypeIFC}, []ElementRecord{
		{ID: "1", Type: "IfcDoor"}, {ID: "2", Type: "IfcWall"}, {ID: "3", Type: "IfcDoor"},
	})
	assert.Equal(t, 3, ds.Summary.TotalElements)
	assert.Equal(t, []string{"IfcDoor", "IfcWall"}, ds.Summary.ElementTypes)

	empty := NewDataset(FileInfo{Name: "b.ifc"}, nil)
	assert.NotNil(t, empty.Elements)
	assert.Equal(t, []string{}, empty.Summary.ElementTypes)
}

func TestCacheKey(t *testing.T) {
	ds := NewDataset(FileInfo{Name: "wall.ifc", Size: 812}, nil)
	assert.Equal(t, "wall.ifc_812", ds.CacheKey())
}

func TestMarshalDataset(t *testing.T) {
	ds := NewDataset(FileInfo{Name: "Café <1>.ifc", Type: FileTypeIFC}, []ElementRecord{{ID: "1", Type: "IfcWall", Name: "W&1"}})

	t.Run("compact", func(t *testing.T) {
		data, err := MarshalDataset(ds, true)
		require.NoError(t, err)
		s := string(data)
		assert.NotContains(t, s, "\n")
		assert.Contains(t, s, `"name":"Café <1>.ifc"`)
		assert.Contains(t, s, `"name":"W&1"`)
	})

	t.Run("indented", func(t *testing.T) {
		data, err := MarshalDataset(ds, false)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "{\n  \"file_info\": {"))
		assert.False(t, strings.HasSuffix(string(data), "\n"))
	})

	t.Run("round trip", func(t *testing.T) {
		data, err := MarshalDataset(ds, true)
		require.NoError(t, err)
		back, err := UnmarshalDataset(data)
		require.NoError(t, err)
		assert.Equal(t, ds, back)
	})
}

func TestUnmarshalDatasetRecomputesMissingSummary(t *testing.T) {
	ds, err := UnmarshalDataset([]byte(`{"file_info":{"name":"x.ifc","type":"IFC"},"elements":[{"id":7,"type":"IfcSlab","name":""}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"IfcSlab"}, ds.Summary.ElementTypes)

	_, err = UnmarshalDataset([]byte(`{"elements":`))
	assert.Error(t, err)
}

func TestDefaultExportPath(t *testing.T) {
	assert.Equal(t, "wall_processed.json", DefaultExportPath("wall.ifc"))
	assert.Equal(t, "Wall_processed.json", DefaultExportPath("Wall.IFC"))
	assert.Equal(t, "model_processed.json", DefaultExportPath("model"))
	assert.Equal(t, "processed_ifc_processed.json", DefaultExportPath(""))
}

func TestSaveDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	ds := NewDataset(FileInfo{Name: "wall.ifc", Type: FileTypeIFC}, nil)
	got, err := SaveDataset(ds, path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"elements\": []")
}
