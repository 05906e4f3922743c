// Package extractor flattens IFC entities into element records.
package extractor

import (
	"errors"
	"fmt"
	"log/slog"

	"ifcrag/internal/domain"
	"ifcrag/internal/ifc"
)

var errDanglingRef = errors.New("dangling reference")

// Options control filtered extraction.
type Options struct {
	IncludeProperties bool
	IncludeGeometry   bool
	Logger            *slog.Logger
}

// DefaultOptions are the options used by the embedding pipeline.
func DefaultOptions() Options {
	return Options{IncludeProperties: true}
}

// Outcome is the result of extracting one entity: a record or the reason it was skipped.
type Outcome struct {
	Record *domain.ElementRecord
	Skip   *domain.ExtractionWarning
}

// Result aggregates per-entity outcomes and value-level warnings.
type Result struct {
	Outcomes []Outcome
	Warnings []*domain.ExtractionWarning
}

// Records returns the extracted records in traversal order.
func (r *Result) Records() []domain.ElementRecord {
	out := make([]domain.ElementRecord, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Record != nil {
			out = append(out, *o.Record)
		}
	}
	return out
}

// Skipped returns the reasons entities were skipped.
func (r *Result) Skipped() []*domain.ExtractionWarning {
	var out []*domain.ExtractionWarning
	for _, o := range r.Outcomes {
		if o.Skip != nil {
			out = append(out, o.Skip)
		}
	}
	return out
}

// AllFailed reports whether entities were found but none could be extracted.
func (r *Result) AllFailed() bool {
	return len(r.Outcomes) > 0 && len(r.Skipped()) == len(r.Outcomes)
}

// Dataset assembles the records into a processed dataset.
func (r *Result) Dataset(info domain.FileInfo) *domain.ProcessedDataset {
	if info.Type == "" {
		info.Type = domain.FileTypeIFC
	}
	return domain.NewDataset(info, r.Records())
}

func (r *Result) warn(logger *slog.Logger, w *domain.ExtractionWarning) {
	r.Warnings = append(r.Warnings, w)
	logger.Warn("extraction warning", "type", w.Type, "id", w.ElementID, "error", w.Err)
}

// ExtractFiltered extracts the entities of the recognised categories. Each
// entity is reported once, under the first category it matches.
func ExtractFiltered(m *ifc.Model, opts Options) *Result {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	res := &Result{}
	seen := make(map[int]bool)
	for _, category := range domain.Categories {
		for _, e := range m.ByType(category) {
			if seen[e.ID()] {
				continue
			}
			seen[e.ID()] = true
			rec, err := filteredRecord(m, e, category, opts, res, logger)
			if err != nil {
				w := &domain.ExtractionWarning{ElementID: fmt.Sprintf("#%d", e.ID()), Type: e.Type(), Err: err}
				logger.Warn("skipping element", "type", w.Type, "id", w.ElementID, "error", err)
				res.Outcomes = append(res.Outcomes, Outcome{Skip: w})
				continue
			}
			res.Outcomes = append(res.Outcomes, Outcome{Record: rec})
		}
	}
	logger.Debug("filtered extraction done", "records", len(res.Outcomes)-len(res.Skipped()), "skipped", len(res.Skipped()))
	return res
}

func filteredRecord(m *ifc.Model, e *ifc.Entity, category string, opts Options, res *Result, logger *slog.Logger) (*domain.ElementRecord, error) {
	name, err := optionalText(e, "Name")
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	desc, err := optionalText(e, "Description")
	if err != nil {
		return nil, fmt.Errorf("description: %w", err)
	}
	gid := e.Text("GlobalId")
	rec := &domain.ElementRecord{
		ID:          domain.ElementID(gid),
		GlobalID:    gid,
		Type:        category,
		Name:        name,
		Description: desc,
	}
	if gid == "" {
		rec.ID = domain.LocalID(e.ID())
	}
	if t := e.Type(); t != category {
		rec.Entity = t
	}

	if opts.IncludeProperties {
		for _, rel := range m.IsDefinedBy(e) {
			def := rel.Ref("RelatingPropertyDefinition")
			if def == nil {
				return nil, fmt.Errorf("property definition of #%d: %w", rel.ID(), errDanglingRef)
			}
			if !def.IsA("IfcPropertySet") {
				continue
			}
			set := def.Text("Name")
			rec.Properties.AddSet(set)
			for _, prop := range def.Refs("HasProperties") {
				if !prop.IsA("IfcPropertySingleValue") {
					continue
				}
				pv, err := nominalValue(prop, false)
				if err != nil {
					res.warn(logger, &domain.ExtractionWarning{
						ElementID: string(rec.ID),
						Type:      category,
						Err:       fmt.Errorf("%s.%s: %w", set, prop.Text("Name"), err),
					})
					continue
				}
				rec.Properties.SetProperty(set, prop.Text("Name"), pv)
			}
		}
	}

	if opts.IncludeGeometry {
		rec.Geometry = &domain.Geometry{
			HasGeometry:  present(e, "Representation"),
			HasPlacement: present(e, "ObjectPlacement"),
		}
	}
	return rec, nil
}

// optionalText reads a text attribute, treating absent and null as "".
func optionalText(e *ifc.Entity, name string) (string, error) {
	v, ok := e.Attr(name)
	if !ok {
		return "", nil
	}
	return v.Text()
}

func present(e *ifc.Entity, name string) bool {
	v, ok := e.Attr(name)
	return ok && !v.IsNull()
}

// nominalValue describes the value of an IfcPropertySingleValue. withType
// adds the measure type of the nominal value.
func nominalValue(prop *ifc.Entity, withType bool) (domain.PropertyValue, error) {
	var pv domain.PropertyValue
	if v, ok := prop.Attr("NominalValue"); ok && !v.IsNull() {
		s, err := v.Text()
		if err != nil {
			return pv, err
		}
		pv = domain.StringValue(s)
		if withType {
			pv.Type = v.TypeName()
		}
	}
	pv.Unit = UnitLabel(prop.Ref("Unit"))
	return pv, nil
}
