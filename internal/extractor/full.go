package extractor

import (
	"fmt"
	"log/slog"
	"strings"

	"ifcrag/internal/domain"
	"ifcrag/internal/ifc"
)

// quantityFields maps quantity entities to their type-specific value attribute.
var quantityFields = map[string]string{
	"IfcQuantityLength": "LengthValue",
	"IfcQuantityArea":   "AreaValue",
	"IfcQuantityVolume": "VolumeValue",
	"IfcQuantityCount":  "CountValue",
	"IfcQuantityWeight": "WeightValue",
	"IfcQuantityTime":   "TimeValue",
}

// ExtractFull records every non-relationship entity with all of its direct
// attributes, simple properties, quantities and material. Unreadable
// attributes are skipped; a broken relationship skips only itself. Property
// values that cannot be rendered are reported as warnings.
func ExtractFull(m *ifc.Model, logger *slog.Logger) *Result {
	if logger == nil {
		logger = slog.Default()
	}
	res := &Result{}
	for _, e := range m.Entities() {
		if ifc.IsRelationship(e) {
			continue
		}
		rec := fullRecord(m, e, func(set, prop string, err error) {
			res.warn(logger, &domain.ExtractionWarning{
				ElementID: string(domain.LocalID(e.ID())),
				Type:      e.Type(),
				Err:       fmt.Errorf("%s.%s: %w", set, prop, err),
			})
		})
		res.Outcomes = append(res.Outcomes, Outcome{Record: rec})
	}
	return res
}

func fullRecord(m *ifc.Model, e *ifc.Entity, warn func(set, prop string, err error)) *domain.ElementRecord {
	rec := &domain.ElementRecord{
		ID:       domain.LocalID(e.ID()),
		Type:     e.Type(),
		Name:     e.Text("Name"),
		GlobalID: e.Text("GlobalId"),
	}

	// 1. direct attributes
	for _, attr := range e.Attributes() {
		if attr.Value.IsNull() {
			continue
		}
		s, err := attributeText(m, attr.Value)
		if err != nil {
			continue
		}
		pv := domain.StringValue(s)
		pv.Type = attr.Value.Tag()
		rec.Properties.SetEntry(attr.Name, pv)
	}

	// 2. property and quantity sets
	for _, rel := range m.IsDefinedBy(e) {
		def := rel.Ref("RelatingPropertyDefinition")
		switch {
		case def == nil:
			continue
		case def.IsA("IfcPropertySet"):
			addPropertySet(&rec.Properties, def, warn)
		case def.IsA("IfcElementQuantity"):
			addQuantitySet(&rec.Properties, def)
		}
	}

	// 3. material
	var materials []string
	var materialType string
	for _, rel := range m.HasAssociations(e) {
		mat := rel.Ref("RelatingMaterial")
		if mat == nil {
			continue
		}
		names := materialNames(mat, map[int]bool{})
		if len(names) == 0 {
			continue
		}
		if materialType == "" {
			materialType = mat.Type()
		}
		materials = appendUnique(materials, names...)
	}
	if len(materials) > 0 {
		pv := domain.StringValue(strings.Join(materials, ", "))
		pv.Type = materialType
		rec.Properties.SetEntry("Material", pv)
	}
	return rec
}

// attributeText renders a direct attribute. References render as the
// referenced instance line.
func attributeText(m *ifc.Model, v ifc.Value) (string, error) {
	if v.Kind == ifc.KindRef {
		if target := m.ByID(v.Ref); target != nil {
			return target.String(), nil
		}
	}
	return v.Text()
}

func addPropertySet(props *domain.Properties, pset *ifc.Entity, warn func(set, prop string, err error)) {
	set := pset.Text("Name")
	for _, prop := range pset.Refs("HasProperties") {
		if !prop.IsA("IfcPropertySingleValue") {
			continue
		}
		pv, err := nominalValue(prop, true)
		if err != nil {
			warn(set, prop.Text("Name"), err)
			continue
		}
		props.SetEntry(set+"."+prop.Text("Name"), pv)
	}
}

func addQuantitySet(props *domain.Properties, qset *ifc.Entity) {
	set := qset.Text("Name")
	for _, q := range qset.Refs("Quantities") {
		name := q.Text("Name")
		if name == "" {
			continue
		}
		var pv domain.PropertyValue
		if field, ok := quantityFields[q.Type()]; ok {
			if v, ok := q.Attr(field); ok && !v.IsNull() {
				if s, err := v.Text(); err == nil {
					pv = domain.StringValue(s)
				}
			}
		}
		pv.Type = q.Type()
		pv.Unit = UnitLabel(q.Ref("Unit"))
		props.SetEntry(fmt.Sprintf("%s.%s", set, name), pv)
	}
}

// materialNames resolves a material select to the names of its materials.
// Entities already in seen are not visited again.
func materialNames(mat *ifc.Entity, seen map[int]bool) []string {
	if seen[mat.ID()] {
		return nil
	}
	seen[mat.ID()] = true
	switch {
	case mat.IsA("IfcMaterial"):
		if n := mat.Text("Name"); n != "" {
			return []string{n}
		}
	case mat.IsA("IfcMaterialLayerSetUsage"):
		if set := mat.Ref("ForLayerSet"); set != nil {
			return materialNames(set, seen)
		}
	case mat.IsA("IfcMaterialLayerSet"):
		var out []string
		for _, layer := range mat.Refs("MaterialLayers") {
			out = appendUnique(out, materialNames(layer, seen)...)
		}
		return out
	case mat.IsA("IfcMaterialLayer"), mat.IsA("IfcMaterialConstituent"):
		if inner := mat.Ref("Material"); inner != nil {
			return materialNames(inner, seen)
		}
	case mat.IsA("IfcMaterialList"):
		var out []string
		for _, item := range mat.Refs("Materials") {
			out = appendUnique(out, materialNames(item, seen)...)
		}
		return out
	case mat.IsA("IfcMaterialConstituentSet"):
		var out []string
		for _, c := range mat.Refs("MaterialConstituents") {
			out = appendUnique(out, materialNames(c, seen)...)
		}
		return out
	}
	return nil
}

func appendUnique(dst []string, items ...string) []string {
	for _, it := range items {
		dup := false
		for _, d := range dst {
			if d == it {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, it)
		}
	}
	return dst
}
