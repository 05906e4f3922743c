package extractor_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ifcrag/internal/domain"
	"ifcrag/internal/extractor"
	"ifcrag/internal/ifc"
	"ifcrag/internal/testutil"
)

func mustParse(t *testing.T, src string) *ifc.Model {
	t.Helper()
	m, err := ifc.Parse([]byte(src))
	require.NoError(t, err)
	return m
}

func TestExtractFilteredWallScenario(t *testing.T) {
	m := mustParse(t, testutil.WallOnlyIFC)

	res := extractor.ExtractFiltered(m, extractor.DefaultOptions())
	recs := res.Records()
	require.Len(t, recs, 1)

	wall := recs[0]
	assert.Equal(t, "IfcWall", wall.Type)
	assert.Equal(t, "W1", wall.Name)
	assert.Equal(t, domain.ElementID("2O2Fr$t4X7Zf8NOew3FLOH"), wall.ID)
	v, ok := wall.Properties.Lookup("Pset_WallCommon", "FireRating")
	require.True(t, ok)
	assert.Equal(t, "2 HR", v.String())
	assert.Nil(t, wall.Geometry)
}

func TestExtractFilteredTypesAreCategories(t *testing.T) {
	m := mustParse(t, testutil.SampleIFC)

	res := extractor.ExtractFiltered(m, extractor.DefaultOptions())
	recs := res.Records()
	require.Len(t, recs, 5)
	for _, r := range recs {
		assert.True(t, domain.IsCategory(r.Type), r.Type)
	}

	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"W1", "W2", "", "D1", "Winé"}, names)

	assert.Equal(t, "IfcWall", recs[1].Type)
	assert.Equal(t, "IfcWallStandardCase", recs[1].Entity)
	assert.Empty(t, recs[0].Entity)
	assert.Equal(t, "Exterior wall", recs[0].Description)
}

func TestExtractFilteredProperties(t *testing.T) {
	m := mustParse(t, testutil.SampleIFC)
	recs := extractor.ExtractFiltered(m, extractor.DefaultOptions()).Records()

	wall := recs[0]
	groups := wall.Properties.Groups()
	require.Len(t, groups, 1, "quantity sets are not property sets")
	assert.Equal(t, "Pset_WallCommon", groups[0].Name)
	require.Len(t, groups[0].Props, 3)
	assert.Equal(t, "IsExternal", groups[0].Props[1].Name)
	assert.Equal(t, "true", groups[0].Props[1].String())
	assert.Equal(t, "0.24", groups[0].Props[2].String())

	door := recs[3]
	width, ok := door.Properties.Lookup("Pset_DoorCommon", "Width")
	require.True(t, ok)
	assert.Equal(t, "900", width.String())
	assert.Equal(t, "millimetre", width.Unit)
}

func TestExtractFilteredDropsBinaryValues(t *testing.T) {
	m := mustParse(t, testutil.SampleIFC)
	res := extractor.ExtractFiltered(m, extractor.DefaultOptions())

	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0], ifc.ErrBinaryValue)
	assert.Empty(t, res.Skipped())

	w2 := res.Records()[1]
	_, ok := w2.Properties.Lookup("Pset_Custom", "Thumbnail")
	assert.False(t, ok)
}

func TestExtractFilteredWithoutProperties(t *testing.T) {
	m := mustParse(t, testutil.SampleIFC)
	recs := extractor.ExtractFiltered(m, extractor.Options{}).Records()
	for _, r := range recs {
		assert.Zero(t, r.Properties.Len())
	}
}

func TestExtractFilteredGeometry(t *testing.T) {
	m := mustParse(t, testutil.SampleIFC)
	recs := extractor.ExtractFiltered(m, extractor.Options{IncludeGeometry: true}).Records()

	require.NotNil(t, recs[0].Geometry)
	assert.Equal(t, domain.Geometry{HasGeometry: false, HasPlacement: true}, *recs[0].Geometry)
	assert.Equal(t, domain.Geometry{}, *recs[1].Geometry)
}

func TestExtractFilteredIsIdempotent(t *testing.T) {
	m := mustParse(t, testutil.SampleIFC)
	a := extractor.ExtractFiltered(m, extractor.DefaultOptions()).Dataset(domain.FileInfo{Name: "sample.ifc"})
	b := extractor.ExtractFiltered(m, extractor.DefaultOptions()).Dataset(domain.FileInfo{Name: "sample.ifc"})
	assert.Equal(t, a, b)
	assert.Equal(t, 5, a.Summary.TotalElements)
	assert.Equal(t, []string{"IfcWall", "IfcSlab", "IfcDoor", "IfcWindow"}, a.Summary.ElementTypes)
	assert.Equal(t, domain.FileTypeIFC, a.FileInfo.Type)
}

func TestExtractFilteredSkipsBrokenElements(t *testing.T) {
	src := strings.Replace(testutil.WallOnlyIFC, "(#1),#3)", "(#1),#99)", 1)
	m := mustParse(t, src)

	res := extractor.ExtractFiltered(m, extractor.DefaultOptions())
	assert.Empty(t, res.Records())
	require.Len(t, res.Skipped(), 1)
	assert.True(t, res.AllFailed())

	var w *domain.ExtractionWarning
	require.True(t, errors.As(res.Skipped()[0], &w))
	assert.Equal(t, "IfcWall", w.Type)
	assert.Equal(t, "#1", w.ElementID)
}

func TestExtractFilteredEmptyModel(t *testing.T) {
	src := strings.Replace(testutil.WallOnlyIFC, "#1=IFCWALL", "#1=IFCSPACE", 1)
	m := mustParse(t, src)

	res := extractor.ExtractFiltered(m, extractor.DefaultOptions())
	assert.Empty(t, res.Outcomes)
	assert.False(t, res.AllFailed())
}

func TestExtractFilteredLocalIDFallback(t *testing.T) {
	src := strings.Replace(testutil.WallOnlyIFC, "IFCWALL('2O2Fr$t4X7Zf8NOew3FLOH'", "IFCWALL($", 1)
	m := mustParse(t, src)

	recs := extractor.ExtractFiltered(m, extractor.DefaultOptions()).Records()
	require.Len(t, recs, 1)
	assert.Equal(t, domain.ElementID("1"), recs[0].ID)
	assert.Empty(t, recs[0].GlobalID)
}
