package wgsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUniformLayout(t *testing.T) {
	src := `
struct Light {
    position: vec3<f32>,
    light_type: u32,
    color: vec3<f32>,
    intensity: f32,
    direction: vec2<f32>,
}`
	s, err := Lookup(src, "Light")
	require.NoError(t, err)
	assert.False(t, s.Vertex)
	assert.EqualValues(t, 48, s.Size)
	assert.EqualValues(t, 16, s.Align)

	want := map[string]uint64{"position": 0, "light_type": 12, "color": 16, "intensity": 28, "direction": 32}
	for name, off := range want {
		f, ok := s.Field(name)
		require.True(t, ok, name)
		assert.Equal(t, off, f.Offset, name)
	}
}

func TestParseArraysAndNestedStructs(t *testing.T) {
	// Outer is declared before Inner on purpose.
	src := `
struct Outer {
    inner: Inner,
    mats: array<mat4x4<f32>, 4>,
    count: u32,
}
struct Inner {
    a: f32,
    b: vec3<f32>,
}`
	structs, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, structs, 2)

	inner := structs[1]
	assert.Equal(t, "Inner", inner.Name)
	assert.EqualValues(t, 32, inner.Size)

	outer := structs[0]
	mats, _ := outer.Field("mats")
	count, _ := outer.Field("count")
	assert.EqualValues(t, 32, mats.Offset)
	assert.EqualValues(t, 256, mats.Size)
	assert.EqualValues(t, 288, count.Offset)
	assert.EqualValues(t, 304, outer.Size)
}

func TestParseStripsComments(t *testing.T) {
	src := `
/* block /* nested */ comment */
struct Tone {
    operator: u32, // selected curve
    exposure: f32,
    // white_point: f32,
}`
	s, err := First(src)
	require.NoError(t, err)
	require.Len(t, s.Fields, 2)
	assert.EqualValues(t, 8, s.Size)
}

func TestParseVertexInputIsPacked(t *testing.T) {
	src := `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) uv: vec2<f32>,
}
struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
}`
	in, err := Lookup(src, "VertexInput")
	require.NoError(t, err)
	assert.True(t, in.Vertex)
	assert.EqualValues(t, 32, in.Size)
	normal, _ := in.Field("normal")
	assert.EqualValues(t, 12, normal.Offset)
	assert.Equal(t, 1, normal.Location)

	out, err := Lookup(src, "VertexOutput")
	require.NoError(t, err)
	assert.False(t, out.Vertex)
	clip, _ := out.Field("clip")
	assert.True(t, clip.Builtin)
	uv, _ := out.Field("uv")
	assert.EqualValues(t, 0, uv.Offset)
}

func TestParseRuntimeSizedArray(t *testing.T) {
	src := `
struct Lights {
    count: u32,
    items: array<vec4<f32>>,
}
struct Only {
    items: array<vec3<f32>>,
}`
	lights, err := Lookup(src, "Lights")
	require.NoError(t, err)
	items, _ := lights.Field("items")
	assert.EqualValues(t, 16, items.Offset)
	assert.EqualValues(t, 16, lights.Size)

	only, err := Lookup(src, "Only")
	require.NoError(t, err)
	assert.EqualValues(t, 16, only.Size)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("struct Bad { x: Missing, }")
	assert.ErrorIs(t, err, ErrUnresolved)

	_, err = Lookup("struct A { x: f32, }", "B")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = First("fn main() {}")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Parse("struct Zero { x: array<f32, 0>, }")
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestSplitAtTopLevelCommas(t *testing.T) {
	parts := splitAtTopLevelCommas("a: f32, b: array<vec4<f32>, 4>, c: u32")
	require.Len(t, parts, 3)
	assert.Equal(t, " b: array<vec4<f32>, 4>", parts[1])
}
