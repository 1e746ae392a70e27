package patient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_AcceptsStringNumberAndNull(t *testing.T) {
	var body SavePatientRequest
	raw := `{"branch":"Dentsun Menemen","name":"Ali","lines":[
		{"diameter":"3,5","length":7,"qty":"2"},
		{"diameter":null,"length":"","qty":1},
		{"diameter":4.5,"length":"11.5","qty":3}
	]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	require.Len(t, body.Lines, 3)

	assert.Equal(t, Field("3,5"), body.Lines[0].Diameter)
	assert.Equal(t, Field("7"), body.Lines[0].Length)
	assert.Equal(t, Field(""), body.Lines[1].Diameter)
	assert.Equal(t, Field("4.5"), body.Lines[2].Diameter)

	lines := ParseLines(body.Lines)
	assert.Equal(t, []Line{
		{Diameter: 3.5, Length: 7, Qty: 2},
		{Diameter: 4.5, Length: 11.5, Qty: 3},
	}, lines)
}

func TestParseLines_SkipsIncompleteLines(t *testing.T) {
	lines := ParseLines([]LineInput{
		{Diameter: "", Length: "7", Qty: "1"},
		{Diameter: "4", Length: "abc", Qty: "1"},
		{Diameter: "4", Length: "8.5", Qty: "0"},
		{Diameter: "4", Length: "8.5", Qty: "-3"},
		{Diameter: "4", Length: "8.5", Qty: "x"},
		{Diameter: "-4", Length: "8.5", Qty: "1"},
		{Diameter: "4", Length: "8.5", Qty: " 2 "},
	})
	assert.Equal(t, []Line{{Diameter: 4, Length: 8.5, Qty: 2}}, lines)
}

func TestParseLines_IntegerValuedQty(t *testing.T) {
	lines := ParseLines([]LineInput{
		{Diameter: "4", Length: "10", Qty: "2.0"},
		{Diameter: "4", Length: "10", Qty: "2e0"},
		{Diameter: "4", Length: "10", Qty: "1.5"},
		{Diameter: "4", Length: "10", Qty: "1e30"},
		{Diameter: "4", Length: "10", Qty: "0.0"},
	})
	assert.Equal(t, []Line{
		{Diameter: 4, Length: 10, Qty: 2},
		{Diameter: 4, Length: 10, Qty: 2},
	}, lines)
}

func TestParseLines_TruncatesToMaxLines(t *testing.T) {
	in := make([]LineInput, MaxLines+5)
	for i := range in {
		in[i] = LineInput{Diameter: "3.5", Length: "7", Qty: "1"}
	}
	assert.Len(t, ParseLines(in), MaxLines)
}

func TestParseLines_Empty(t *testing.T) {
	assert.Empty(t, ParseLines(nil))
}
