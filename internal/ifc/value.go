package ifc

import (
	"errors"
	"strconv"
	"strings"
)

// Kind classifies a STEP parameter value.
type Kind int

const (
	KindNull Kind = iota
	KindDerived
	KindInteger
	KindReal
	KindString
	KindEnum
	KindRef
	KindList
	KindTyped
	KindBinary
)

var kindNames = [...]string{
	KindNull:    "null",
	KindDerived: "derived",
	KindInteger: "integer",
	KindReal:    "real",
	KindString:  "string",
	KindEnum:    "enumeration",
	KindRef:     "entity",
	KindList:    "list",
	KindTyped:   "typed",
	KindBinary:  "binary",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ErrBinaryValue is returned when a binary value is asked for its text form.
var ErrBinaryValue = errors.New("binary value is not string-coercible")

// Value is one parameter of an entity instance.
//
// Str holds the decoded text of strings, the literal of enumerations and
// binaries, and the STEP type name of typed values (whose payload is Inner).
type Value struct {
	Kind  Kind
	Int   int64
	Real  float64
	Str   string
	Ref   int
	List  []Value
	Inner *Value
}

// IsNull reports whether the value is unset ($) or derived (*).
func (v Value) IsNull() bool { return v.Kind == KindNull || v.Kind == KindDerived }

// Unwrap returns the payload of a typed value, or v itself.
func (v Value) Unwrap() Value {
	for v.Kind == KindTyped && v.Inner != nil {
		v = *v.Inner
	}
	return v
}

// TypeName returns the schema-cased name of a typed value such as IfcLabel.
func (v Value) TypeName() string {
	if v.Kind != KindTyped {
		return ""
	}
	return TypeName(v.Str)
}

// Text renders the value as a string. Binary values cannot be rendered.
func (v Value) Text() (string, error) {
	switch v.Kind {
	case KindNull, KindDerived:
		return "", nil
	case KindInteger:
		return strconv.FormatInt(v.Int, 10), nil
	case KindReal:
		return strconv.FormatFloat(v.Real, 'f', -1, 64), nil
	case KindString:
		return v.Str, nil
	case KindEnum:
		switch v.Str {
		case "T":
			return "true", nil
		case "F":
			return "false", nil
		case "U":
			return "unknown", nil
		}
		return v.Str, nil
	case KindRef:
		return "#" + strconv.Itoa(v.Ref), nil
	case KindList:
		parts := make([]string, 0, len(v.List))
		for _, item := range v.List {
			s, err := item.Text()
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "(" + strings.Join(parts, ", ") + ")", nil
	case KindTyped:
		if v.Inner == nil {
			return "", nil
		}
		return v.Inner.Text()
	case KindBinary:
		return "", ErrBinaryValue
	}
	return "", nil
}

// Tag names the value kind for export: schema type names for typed values,
// "boolean" or "logical" for those enumerations, otherwise the kind name.
func (v Value) Tag() string {
	switch v.Kind {
	case KindTyped:
		return v.TypeName()
	case KindEnum:
		switch v.Str {
		case "T", "F":
			return "boolean"
		case "U":
			return "logical"
		}
	}
	return v.Kind.String()
}
