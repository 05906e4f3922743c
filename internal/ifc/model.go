// Package ifc reads IFC models stored as ISO 10303-21 (STEP) exchange files.
//
// The package knows a subset of the IFC schema: the building element
// categories, property and quantity sets, materials, units and the
// relationships linking them. Entities outside that subset still load and
// expose their parameters under positional attribute names.
package ifc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrUnsupportedSchema is returned for files declaring a schema other than IFC2X3 or IFC4.x.
var ErrUnsupportedSchema = errors.New("unsupported schema")

// Header holds the fields of the STEP header section that callers care about.
type Header struct {
	Description    []string
	FileName       string
	TimeStamp      string
	Author         []string
	Organization   []string
	Preprocessor   string
	OriginatingApp string
	Schemas        []string
}

// Attribute is one declared attribute of an entity and its value.
type Attribute struct {
	Name  string
	Value Value
}

// Entity is one instance of the DATA section.
type Entity struct {
	id      int
	keyword string
	args    []Value
	raw     string
	model   *Model
}

// ID returns the STEP instance number.
func (e *Entity) ID() int { return e.id }

// Type returns the schema-cased entity type, e.g. IfcWallStandardCase.
func (e *Entity) Type() string { return TypeName(e.keyword) }

// IsA reports whether the entity is of type name or one of its declared subtypes.
func (e *Entity) IsA(name string) bool {
	return isSubtype(e.keyword, strings.ToUpper(name))
}

// Attributes lists the entity's attributes in declaration order. Parameters
// beyond the declared attributes, or of undeclared types, are named
// Attribute1..N by position.
func (e *Entity) Attributes() []Attribute {
	names := attributeNames(e.keyword, e.model.schema)
	out := make([]Attribute, len(e.args))
	for i, v := range e.args {
		name := "Attribute" + strconv.Itoa(i+1)
		if i < len(names) {
			name = names[i]
		}
		out[i] = Attribute{Name: name, Value: v}
	}
	return out
}

// Attr returns the value of a declared attribute. Missing attributes report false.
func (e *Entity) Attr(name string) (Value, bool) {
	for i, n := range attributeNames(e.keyword, e.model.schema) {
		if n != name {
			continue
		}
		if i >= len(e.args) {
			return Value{}, false
		}
		return e.args[i], true
	}
	return Value{}, false
}

// Text returns the text of an attribute, or "" when absent, null or binary.
func (e *Entity) Text(name string) string {
	v, ok := e.Attr(name)
	if !ok {
		return ""
	}
	s, err := v.Text()
	if err != nil {
		return ""
	}
	return s
}

// Ref resolves an attribute holding an entity reference.
func (e *Entity) Ref(name string) *Entity {
	v, ok := e.Attr(name)
	if !ok || v.Kind != KindRef {
		return nil
	}
	return e.model.ByID(v.Ref)
}

// Refs resolves an attribute holding a list of references, or a single reference.
func (e *Entity) Refs(name string) []*Entity {
	v, ok := e.Attr(name)
	if !ok {
		return nil
	}
	return e.model.resolve(v)
}

// String renders the instance as it appears in the file, e.g. #12=IfcWall(...).
func (e *Entity) String() string {
	return fmt.Sprintf("#%d=%s(%s)", e.id, e.Type(), e.raw)
}

// Model is a parsed IFC file.
type Model struct {
	schema       string
	header       Header
	entities     []*Entity
	byID         map[int]*Entity
	definedBy    map[int][]*Entity
	associations map[int][]*Entity
}

// Open parses the file at path.
func Open(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Read parses a model from r.
func Read(r io.Reader) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses STEP file contents.
func Parse(data []byte) (*Model, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	headerArgs, records, err := newParser(data).document()
	if err != nil {
		return nil, err
	}
	m := &Model{
		header:       parseHeader(headerArgs),
		entities:     make([]*Entity, 0, len(records)),
		byID:         make(map[int]*Entity, len(records)),
		definedBy:    make(map[int][]*Entity),
		associations: make(map[int][]*Entity),
	}
	if len(m.header.Schemas) > 0 {
		m.schema = strings.ToUpper(m.header.Schemas[0])
	}
	if !supportedSchema(m.schema) {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedSchema, m.schema)
	}
	for _, rec := range records {
		e := &Entity{id: rec.id, keyword: rec.name, args: rec.args, raw: rec.raw, model: m}
		m.entities = append(m.entities, e)
		m.byID[rec.id] = e
	}
	m.index()
	return m, nil
}

func supportedSchema(s string) bool {
	return strings.HasPrefix(s, "IFC2X3") || strings.HasPrefix(s, "IFC4")
}

func parseHeader(args map[string][]Value) Header {
	var h Header
	if v := args["FILE_DESCRIPTION"]; len(v) > 0 {
		h.Description = texts(v[0])
	}
	if v := args["FILE_NAME"]; len(v) > 0 {
		at := func(i int) Value {
			if i < len(v) {
				return v[i]
			}
			return Value{}
		}
		h.FileName, _ = at(0).Text()
		h.TimeStamp, _ = at(1).Text()
		h.Author = texts(at(2))
		h.Organization = texts(at(3))
		h.Preprocessor, _ = at(4).Text()
		h.OriginatingApp, _ = at(5).Text()
	}
	if v := args["FILE_SCHEMA"]; len(v) > 0 {
		h.Schemas = texts(v[0])
	}
	return h
}

func texts(v Value) []string {
	if v.Kind != KindList {
		if s, err := v.Text(); err == nil && s != "" {
			return []string{s}
		}
		return nil
	}
	var out []string
	for _, item := range v.List {
		if s, err := item.Text(); err == nil && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// index builds the inverse relations used by extraction.
func (m *Model) index() {
	for _, e := range m.entities {
		switch {
		case e.IsA("IfcRelDefinesByProperties"):
			for _, obj := range e.Refs("RelatedObjects") {
				m.definedBy[obj.id] = append(m.definedBy[obj.id], e)
			}
		case e.IsA("IfcRelAssociatesMaterial"):
			for _, obj := range e.Refs("RelatedObjects") {
				m.associations[obj.id] = append(m.associations[obj.id], e)
			}
		}
	}
}

func (m *Model) resolve(v Value) []*Entity {
	switch v.Kind {
	case KindRef:
		if e := m.ByID(v.Ref); e != nil {
			return []*Entity{e}
		}
	case KindList:
		var out []*Entity
		for _, item := range v.List {
			out = append(out, m.resolve(item)...)
		}
		return out
	}
	return nil
}

// Schema returns the declared schema identifier, e.g. IFC4 or IFC2X3.
func (m *Model) Schema() string { return m.schema }

// Header returns the parsed header section.
func (m *Model) Header() Header { return m.header }

// Entities returns every instance in file order.
func (m *Model) Entities() []*Entity { return m.entities }

// ByID returns the instance with the given number, or nil.
func (m *Model) ByID(id int) *Entity { return m.byID[id] }

// ByType returns the instances of type name and its declared subtypes, in file order.
func (m *Model) ByType(name string) []*Entity {
	upper := strings.ToUpper(name)
	var out []*Entity
	for _, e := range m.entities {
		if isSubtype(e.keyword, upper) {
			out = append(out, e)
		}
	}
	return out
}

// IsDefinedBy returns the IfcRelDefinesByProperties relationships naming e.
func (m *Model) IsDefinedBy(e *Entity) []*Entity { return m.definedBy[e.id] }

// HasAssociations returns the IfcRelAssociatesMaterial relationships naming e.
func (m *Model) HasAssociations(e *Entity) []*Entity { return m.associations[e.id] }

// IsRelationship reports whether e is an IfcRelationship, including
// relationship types missing from the declared schema subset.
func IsRelationship(e *Entity) bool {
	return e.IsA("IfcRelationship") || strings.HasPrefix(e.keyword, "IFCREL")
}
