package extractor

import (
	"strings"

	"ifcrag/internal/ifc"
)

// UnitLabel renders a unit entity as a readable label, e.g. "millimetre"
// for IfcSIUnit(*,.LENGTHUNIT.,.MILLI.,.METRE.). A nil unit yields "".
func UnitLabel(u *ifc.Entity) string {
	if u == nil {
		return ""
	}
	switch {
	case u.IsA("IfcSIUnit"):
		return readable(u.Text("Prefix") + u.Text("Name"))
	case u.IsA("IfcConversionBasedUnit"), u.IsA("IfcContextDependentUnit"):
		return u.Text("Name")
	case u.IsA("IfcDerivedUnit"):
		if s := u.Text("UserDefinedType"); s != "" {
			return s
		}
		return "DERIVED"
	}
	return ""
}

func readable(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", " "))
}
