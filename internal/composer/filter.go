package composer

import (
	"strings"

	"ifcrag/internal/domain"
)

const segmentSeparator = " | "

// typeKeywords are checked in order; the first keyword found in the query wins.
var typeKeywords = []struct {
	keyword  string
	category string
}{
	{"door", "IfcDoor"},
	{"wall", "IfcWall"},
	{"window", "IfcWindow"},
	{"slab", "IfcSlab"},
	{"beam", "IfcBeam"},
	{"column", "IfcColumn"},
	{"stair", "IfcStair"},
	{"roof", "IfcRoof"},
	{"curtain wall", "IfcCurtainWall"},
}

// RequestedType returns the element category named in query, if any.
func RequestedType(query string) (string, bool) {
	q := strings.ToLower(query)
	for _, k := range typeKeywords {
		if strings.Contains(q, k.keyword) {
			return k.category, true
		}
	}
	return "", false
}

// FilterByType keeps the candidates whose leading type segment equals the
// category requested in query. Without a requested category it returns ms.
func FilterByType(query string, ms []domain.Match) []domain.Match {
	category, ok := RequestedType(query)
	if !ok {
		return ms
	}
	out := []domain.Match{}
	for _, m := range ms {
		if LeadingType(m.Text) == category {
			out = append(out, m)
		}
	}
	return out
}

// LeadingType returns the value of a chunk's first "Element Type:" segment.
func LeadingType(text string) string {
	first, _, _ := strings.Cut(text, segmentSeparator)
	t, ok := strings.CutPrefix(first, "Element Type: ")
	if !ok {
		return ""
	}
	return t
}
