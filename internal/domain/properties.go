package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// PropertyValue is the exported description of one property value.
// A nil Value means the property exists but carries no value.
type PropertyValue struct {
	Value *string `json:"value"`
	Type  string  `json:"type,omitempty"`
	Unit  string  `json:"unit,omitempty"`
}

// StringValue returns a PropertyValue holding v.
func StringValue(v string) PropertyValue {
	return PropertyValue{Value: &v}
}

// HasValue reports whether a value is present.
func (v PropertyValue) HasValue() bool { return v.Value != nil }

// String returns the value or an empty string.
func (v PropertyValue) String() string {
	if v.Value == nil {
		return ""
	}
	return *v.Value
}

// Property is a named member of a property set.
type Property struct {
	Name string
	PropertyValue
}

// PropertyGroup is either a property set with ordered members or a single
// qualified entry such as "Pset_WallCommon.FireRating".
type PropertyGroup struct {
	Name  string
	Props []Property
	Entry *PropertyValue
}

// IsEntry reports whether the group is a single qualified entry.
func (g PropertyGroup) IsEntry() bool { return g.Entry != nil }

// Properties is an insertion-ordered property bag. Group keys are unique.
type Properties struct {
	groups []PropertyGroup
}

// Groups returns the groups in insertion order.
func (p Properties) Groups() []PropertyGroup { return p.groups }

// Len returns the number of groups.
func (p Properties) Len() int { return len(p.groups) }

func (p *Properties) find(name string) int {
	for i := range p.groups {
		if p.groups[i].Name == name {
			return i
		}
	}
	return -1
}

// SetEntry stores a qualified entry, replacing any group with the same key.
func (p *Properties) SetEntry(key string, v PropertyValue) {
	entry := v
	if i := p.find(key); i >= 0 {
		p.groups[i] = PropertyGroup{Name: key, Entry: &entry}
		return
	}
	p.groups = append(p.groups, PropertyGroup{Name: key, Entry: &entry})
}

// AddSet ensures a property set named set exists. Existing members are kept.
func (p *Properties) AddSet(set string) {
	if i := p.find(set); i >= 0 && !p.groups[i].IsEntry() {
		return
	} else if i >= 0 {
		p.groups[i] = PropertyGroup{Name: set}
		return
	}
	p.groups = append(p.groups, PropertyGroup{Name: set})
}

// SetProperty stores name inside the property set set, creating the set if needed.
func (p *Properties) SetProperty(set, name string, v PropertyValue) {
	p.AddSet(set)
	g := &p.groups[p.find(set)]
	for i := range g.Props {
		if g.Props[i].Name == name {
			g.Props[i].PropertyValue = v
			return
		}
	}
	g.Props = append(g.Props, Property{Name: name, PropertyValue: v})
}

// Lookup returns a property set member.
func (p Properties) Lookup(set, name string) (PropertyValue, bool) {
	i := p.find(set)
	if i < 0 {
		return PropertyValue{}, false
	}
	for _, prop := range p.groups[i].Props {
		if prop.Name == name {
			return prop.PropertyValue, true
		}
	}
	return PropertyValue{}, false
}

// Entry returns a qualified entry.
func (p Properties) Entry(key string) (PropertyValue, bool) {
	i := p.find(key)
	if i < 0 || p.groups[i].Entry == nil {
		return PropertyValue{}, false
	}
	return *p.groups[i].Entry, true
}

// MarshalJSON writes groups as a JSON object in insertion order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range p.groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, g.Name); err != nil {
			return nil, err
		}
		if g.Entry != nil {
			if err := writeValue(&buf, *g.Entry); err != nil {
				return nil, err
			}
			continue
		}
		buf.WriteByte('{')
		for j, prop := range g.Props {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, prop.Name); err != nil {
				return nil, err
			}
			if err := writeValue(&buf, prop.PropertyValue); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a properties object keeping document key order.
// Objects carrying a scalar "value" key are qualified entries, other objects
// are property sets, and bare scalars are entries holding that scalar.
func (p *Properties) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("properties: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if root.Type == gjson.Null {
		p.groups = nil
		return nil
	}
	if !root.IsObject() {
		return fmt.Errorf("properties: expected object, got %s", root.Type)
	}
	var out Properties
	root.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		switch {
		case isValueObject(value):
			out.SetEntry(name, decodeValue(value))
		case value.IsObject():
			out.AddSet(name)
			value.ForEach(func(k, v gjson.Result) bool {
				if v.IsObject() {
					out.SetProperty(name, k.String(), decodeValue(v))
				} else {
					out.SetProperty(name, k.String(), scalarValue(v))
				}
				return true
			})
		default:
			out.SetEntry(name, scalarValue(value))
		}
		return true
	})
	p.groups = out.groups
	return nil
}

func isValueObject(r gjson.Result) bool {
	if !r.IsObject() {
		return false
	}
	v := r.Get("value")
	return v.Exists() && !v.IsObject()
}

func decodeValue(r gjson.Result) PropertyValue {
	pv := scalarValue(r.Get("value"))
	pv.Type = r.Get("type").String()
	pv.Unit = r.Get("unit").String()
	return pv
}

func scalarValue(r gjson.Result) PropertyValue {
	if !r.Exists() || r.Type == gjson.Null {
		return PropertyValue{}
	}
	return StringValue(r.String())
}

func writeKey(buf *bytes.Buffer, key string) error {
	b, err := marshalNoEscape(key)
	if err != nil {
		return err
	}
	buf.Write(b)
	buf.WriteByte(':')
	return nil
}

func writeValue(buf *bytes.Buffer, v PropertyValue) error {
	b, err := marshalNoEscape(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
