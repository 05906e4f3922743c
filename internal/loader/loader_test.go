package loader_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ifcrag/internal/domain"
	"ifcrag/internal/ifc"
	"ifcrag/internal/loader"
	"ifcrag/internal/testutil"
)

func TestOpenMissingFile(t *testing.T) {
	_, err := loader.Open(filepath.Join(t.TempDir(), "nope.ifc"))
	var le *domain.LoadError
	require.ErrorAs(t, err, &le)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOpenUnsupportedSchema(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "old.ifc",
		"ISO-10303-21;\nHEADER;\nFILE_SCHEMA(('IFC2X2'));\nENDSEC;\nDATA;\nENDSEC;\nEND-ISO-10303-21;\n")
	_, err := loader.Open(path)
	var le *domain.LoadError
	require.ErrorAs(t, err, &le)
	assert.ErrorIs(t, err, ifc.ErrUnsupportedSchema)
	assert.Equal(t, path, le.Path)
}

func uploads(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "upload-*.ifc"))
	require.NoError(t, err)
	return matches
}

func TestOpenUploadRemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)

	m, err := loader.OpenUpload("wall.ifc", []byte(testutil.WallOnlyIFC))
	require.NoError(t, err)
	assert.Len(t, m.ByType("IfcWall"), 1)
	assert.Empty(t, uploads(t, dir))

	_, err = loader.OpenUpload("broken.ifc", []byte("not a model"))
	var le *domain.LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "broken.ifc", le.Path)
	assert.Empty(t, uploads(t, dir))
}

func TestLoadPath(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "sample.ifc", testutil.SampleIFC)

	ds, err := loader.New(nil).Load(context.Background(), loader.FromPath(path))
	require.NoError(t, err)
	assert.Equal(t, "sample.ifc", ds.FileInfo.Name)
	assert.Equal(t, path, ds.FileInfo.Path)
	assert.Equal(t, "IFC", ds.FileInfo.Type)
	assert.Equal(t, "IFC4", ds.FileInfo.Schema)
	assert.Equal(t, 5, ds.Summary.TotalElements)
}

func TestLoadUpload(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	data := []byte(testutil.WallOnlyIFC)

	ds, err := loader.New(nil).Load(context.Background(), loader.FromUpload("wall.ifc", data))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), ds.FileInfo.Size)
	assert.Empty(t, ds.FileInfo.Path)
	assert.Equal(t, "wall.ifc_"+strconv.Itoa(len(data)), ds.CacheKey())
}

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "sample.ifc", testutil.SampleIFC)
	l := loader.New(nil)

	ds, err := l.Load(context.Background(), loader.FromPath(path))
	require.NoError(t, err)
	out, err := domain.SaveDataset(ds, filepath.Join(dir, "sample_processed.json"))
	require.NoError(t, err)

	back, err := l.Load(context.Background(), loader.FromPath(out))
	require.NoError(t, err)
	assert.Equal(t, ds.Summary, back.Summary)
	assert.Equal(t, ds.Elements, back.Elements)
	assert.Equal(t, ds.FileInfo, back.FileInfo)
}

func TestLoadInvalidJSON(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "bad.json", "{not json")
	_, err := loader.New(nil).Load(context.Background(), loader.FromPath(path))
	var le *domain.LoadError
	require.ErrorAs(t, err, &le)
}

func TestListSamples(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "b.ifc", testutil.WallOnlyIFC)
	testutil.WriteFile(t, dir, "a.json", "{}")
	testutil.WriteFile(t, dir, "notes.txt", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.ifc"), 0o755))

	samples, err := loader.ListSamples(dir)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "a.json", samples[0].Name)
	assert.Equal(t, "b.ifc", samples[1].Name)
	assert.Equal(t, int64(len(testutil.WallOnlyIFC)), samples[1].Size)
}
