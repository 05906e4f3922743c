package domain

import (
	"encoding/json"
	"strconv"
)

// Categories recognised by filtered extraction, in traversal order.
var Categories = []string{
	"IfcWall", "IfcSlab", "IfcBeam", "IfcColumn", "IfcDoor", "IfcWindow",
	"IfcStair", "IfcRailing", "IfcRoof", "IfcCurtainWall", "IfcBuildingElementProxy",
}

// IsCategory reports whether t is one of the filtered extraction categories.
func IsCategory(t string) bool {
	for _, c := range Categories {
		if c == t {
			return true
		}
	}
	return false
}

// ElementID is an element identifier. It decodes from a JSON string or number.
type ElementID string

// UnmarshalJSON accepts both "2O2Fr$t4X7Zf8NOew3FLOH" and 42.
func (id *ElementID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ElementID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ElementID(n.String())
	return nil
}

// LocalID formats a STEP instance number as an ElementID.
func LocalID(n int) ElementID { return ElementID(strconv.Itoa(n)) }

// Geometry records presence flags only.
type Geometry struct {
	HasGeometry  bool `json:"has_geometry"`
	HasPlacement bool `json:"has_placement"`
}

// ElementRecord is the flattened representation of one model entity.
type ElementRecord struct {
	ID          ElementID  `json:"id"`
	GlobalID    string     `json:"globalId,omitempty"`
	Type        string     `json:"type"`
	Entity      string     `json:"entity,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Properties  Properties `json:"properties"`
	Geometry    *Geometry  `json:"geometry,omitempty"`
}
