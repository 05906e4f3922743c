package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertiesKeepInsertionOrder(t *testing.T) {
	var p Properties
	p.SetProperty("Pset_WallCommon", "IsExternal", PropertyValue{Value: strPtr("true"), Type: "IfcBoolean"})
	p.SetProperty("Pset_WallCommon", "FireRating", StringValue("2 HR"))
	p.SetEntry("Name", PropertyValue{Value: strPtr("W1"), Type: "IfcLabel"})
	p.SetEntry("Qto_WallBaseQuantities.Length", PropertyValue{Value: strPtr("5000"), Type: "IfcQuantityLength", Unit: "millimetre"})
	p.SetProperty("Pset_WallCommon", "FireRating", StringValue("1 HR"))

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"Pset_WallCommon":{"IsExternal":{"value":"true","type":"IfcBoolean"},"FireRating":{"value":"1 HR"}},`+
		`"Name":{"value":"W1","type":"IfcLabel"},`+
		`"Qto_WallBaseQuantities.Length":{"value":"5000","type":"IfcQuantityLength","unit":"millimetre"}}`, string(data))

	var back Properties
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}

func TestPropertiesNullValue(t *testing.T) {
	var p Properties
	p.SetProperty("Pset", "Empty", PropertyValue{})
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"Pset":{"Empty":{"value":null}}}`, string(data))

	var back Properties
	require.NoError(t, json.Unmarshal(data, &back))
	v, ok := back.Lookup("Pset", "Empty")
	require.True(t, ok)
	assert.False(t, v.HasValue())
}

func TestPropertiesDecodeScalars(t *testing.T) {
	var p Properties
	require.NoError(t, json.Unmarshal([]byte(`{"Tag":"W-01","Pset":{"Width":900,"Flag":true}}`), &p))

	v, ok := p.Entry("Tag")
	require.True(t, ok)
	assert.Equal(t, "W-01", v.String())

	w, ok := p.Lookup("Pset", "Width")
	require.True(t, ok)
	assert.Equal(t, "900", w.String())
	f, _ := p.Lookup("Pset", "Flag")
	assert.Equal(t, "true", f.String())
}

func TestPropertiesRejectNonObject(t *testing.T) {
	var p Properties
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &p))
}

func TestSetEntryReplacesSet(t *testing.T) {
	var p Properties
	p.SetProperty("Material", "Name", StringValue("Concrete"))
	p.SetEntry("Material", StringValue("Concrete, Steel"))
	require.Equal(t, 1, p.Len())
	assert.True(t, p.Groups()[0].IsEntry())
	_, ok := p.Lookup("Material", "Name")
	assert.False(t, ok)
}

func strPtr(s string) *string { return &s }
