package design

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadPlate(t *testing.T) *Design {
	t.Helper()
	d, err := Load("testdata/plate.json")
	require.NoError(t, err)
	return d
}

func TestLoadJSON(t *testing.T) {
	d := loadPlate(t)

	require.Len(t, d.Entities, 4)
	require.Len(t, d.Timeline, 4)
	assert.Equal(t, "sketch-1", d.Timeline[0].Entity)

	s := d.Entities["sketch-1"]
	require.NotNil(t, s.Sketch)
	assert.Nil(t, s.Extrude)
	assert.Equal(t, "Sketch1", s.Name)
	assert.Len(t, s.Sketch.Curves, 6)
	assert.True(t, s.Sketch.Curves["k1"].ConstructionGeom)
	assert.Equal(t, 1.0, s.Sketch.Curves["c1"].Radius)

	plate := s.Sketch.Profiles["prof-plate"]
	require.NotNil(t, plate)
	assert.Equal(t, []string{"l1", "l2", "l3", "l4", "c1"}, plate.CurveIDs())
	assert.InDelta(t, 12.858407346410207, plate.Properties.Area, 0)

	x := d.Entities["extrude-2"].Extrude
	require.NotNil(t, x)
	assert.Equal(t, ExtentSymmetric, x.ExtentType)
	assert.True(t, x.ExtentOne.IsFullLength)
	assert.Equal(t, 0.0, x.ExtentOne.Taper())

	other := d.Entities["construction-plane"]
	assert.Equal(t, "ConstructionPlane", other.Type)
	assert.Nil(t, other.Sketch)
	assert.Nil(t, other.Extrude)
}

func TestLoadYAML(t *testing.T) {
	d, err := Load("testdata/plate.yaml")
	require.NoError(t, err)

	x := d.Entities["extrude-1"].Extrude
	require.NotNil(t, x)
	assert.Equal(t, ExtentTwoSides, x.ExtentType)
	require.NotNil(t, x.ExtentTwo)
	assert.Equal(t, 0.1, x.ExtentTwo.Taper())
	require.NotNil(t, x.StartExtent.Offset)
	assert.Equal(t, 0.5, x.StartExtent.Offset.Value)

	s := d.Entities["sketch-1"].Sketch
	require.NotNil(t, s)
	assert.Equal(t, 4.0, s.Points["p2"].Y)
}

func TestReferenceSketchHasNilCurves(t *testing.T) {
	src := `{"entities":{"s":{"type":"Sketch","name":"Ref"}},"timeline":[]}`
	d, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	assert.Nil(t, d.Entities["s"].Sketch.Curves)

	src = `{"entities":{"s":{"type":"Sketch","name":"Empty","curves":{}}},"timeline":[]}`
	d, err = Decode(strings.NewReader(src))
	require.NoError(t, err)
	assert.NotNil(t, d.Entities["s"].Sketch.Curves)
	assert.Empty(t, d.Entities["s"].Sketch.Curves)
}

func TestEncodePreservesEntities(t *testing.T) {
	d := loadPlate(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, d))

	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, d.Timeline, again.Timeline)
	assert.Equal(t, d.Entities["sketch-1"].Sketch, again.Entities["sketch-1"].Sketch)
	assert.Equal(t, d.Entities["extrude-2"].Extrude, again.Entities["extrude-2"].Extrude)
	assert.Equal(t, "ConstructionPlane", again.Entities["construction-plane"].Type)
}

func TestValidate(t *testing.T) {
	d := loadPlate(t)
	require.NoError(t, d.Validate())

	x := d.Entities["extrude-1"].Extrude
	x.Operation = "ExplodeFeatureOperation"
	x.ExtentType = ExtentTwoSides

	err := d.Validate()
	require.Error(t, err)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)

	rules := make(map[string]string)
	for _, fe := range verrs {
		rules[fe.Rule] = fe.Field
	}
	assert.Contains(t, rules["oneof"], "operation")
	assert.Contains(t, rules["required_if"], "extent_two")
}

func TestCurvePointIDs(t *testing.T) {
	tests := []struct {
		curve Curve
		want  []string
	}{
		{Curve{Type: CurveLine, StartPoint: "a", EndPoint: "b"}, []string{"a", "b"}},
		{Curve{Type: CurveArc, CenterPoint: "c", StartPoint: "a", EndPoint: "b"}, []string{"c", "a"}},
		{Curve{Type: CurveCircle, CenterPoint: "c"}, []string{"c"}},
		{Curve{Type: "SketchEllipse", CenterPoint: "c"}, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.curve.PointIDs(), tt.curve.Type)
	}
}
