package ifc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeString(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{`a\\b`, `a\b`},
		{`\X2\00E9\X0\t\X2\00E9\X0\`, "été"},
		{`\X\E9`, "é"},
		{`\S\i`, "é"},
		{`\X4\0001F600\X0\`, "\U0001F600"},
		{`\PA\text`, "text"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, decodeString(c.in), c.in)
	}
}

func TestValueText(t *testing.T) {
	p := newParser([]byte("(1,2.5,3.,'it''s',.T.,.F.,.U.,.NOTDEFINED.,#7,(1,2),IFCLABEL('x'),$,*)"))
	vals, _, err := p.params()
	require.NoError(t, err)

	want := []string{"1", "2.5", "3", "it's", "true", "false", "unknown", "NOTDEFINED", "#7", "(1, 2)", "x", "", ""}
	require.Len(t, vals, len(want))
	for i, v := range vals {
		s, err := v.Text()
		require.NoError(t, err)
		assert.Equal(t, want[i], s, "value %d", i)
	}
}

func TestValueTags(t *testing.T) {
	p := newParser([]byte(`(1,2.5,'s',.T.,.U.,.X.,#1,(1),IFCLENGTHMEASURE(3.),"0F")`))
	vals, _, err := p.params()
	require.NoError(t, err)

	want := []string{"integer", "real", "string", "boolean", "logical", "enumeration", "entity", "list", "IfcLengthMeasure", "binary"}
	for i, v := range vals {
		assert.Equal(t, want[i], v.Tag(), "value %d", i)
	}
}

func TestBinaryTextFails(t *testing.T) {
	p := newParser([]byte(`(IFCBINARY("0A1B"))`))
	vals, _, err := p.params()
	require.NoError(t, err)

	_, err = vals[0].Text()
	assert.ErrorIs(t, err, ErrBinaryValue)
	assert.Equal(t, KindBinary, vals[0].Unwrap().Kind)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "IfcWallStandardCase", TypeName("IFCWALLSTANDARDCASE"))
	assert.Equal(t, "IfcLabel", TypeName("IFCLABEL"))
	assert.Equal(t, "IfcFoo", TypeName("IFCFOO"))
}

func TestIsSubtype(t *testing.T) {
	assert.True(t, isSubtype("IFCWALLSTANDARDCASE", "IFCWALL"))
	assert.True(t, isSubtype("IFCDOOR", "IFCPRODUCT"))
	assert.False(t, isSubtype("IFCWALL", "IFCWALLSTANDARDCASE"))
	assert.False(t, isSubtype("IFCUNKNOWN", "IFCWALL"))
}
