package wgsl

import (
	"strconv"
	"strings"
)

// primitiveLayouts maps WGSL primitive, vector, matrix, and atomic type names
// to their byte size and alignment.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var primitiveLayouts = map[string]typeLayout{
	// Scalars
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"f16":  {2, 2},
	"bool": {4, 4},

	// Vectors – f32
	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},

	// Vectors – i32
	"vec2<i32>": {8, 8},
	"vec2i":     {8, 8},
	"vec3<i32>": {12, 16},
	"vec3i":     {12, 16},
	"vec4<i32>": {16, 16},
	"vec4i":     {16, 16},

	// Vectors – u32
	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec3<u32>": {12, 16},
	"vec3u":     {12, 16},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	// Vectors – f16
	"vec2<f16>": {4, 4},
	"vec2h":     {4, 4},
	"vec4<f16>": {8, 8},
	"vec4h":     {8, 8},

	// Matrices – matCxR<f32>: C columns of vecR<f32>, stride = roundUp(align(vecR), size(vecR))
	"mat2x2<f32>": {16, 8},
	"mat2x3<f32>": {32, 16},
	"mat2x4<f32>": {32, 16},
	"mat3x2<f32>": {24, 8},
	"mat3x3<f32>": {48, 16},
	"mat3x4<f32>": {48, 16},
	"mat4x2<f32>": {32, 8},
	"mat4x3<f32>": {64, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
	"mat3x3f":     {48, 16},

	// Atomic types
	"atomic<u32>": {4, 4},
	"atomic<i32>": {4, 4},
}

// roundUpAlign rounds value up to the next multiple of alignment.
// Alignment must be a power of two.
//
// Parameters:
//   - alignment: the required alignment (must be a power of two)
//   - value: the value to align
//
// Returns:
//   - uint64: value rounded up to the next multiple of alignment
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// arrayParts splits array<T, N> or array<T> into its element type and count
// text. ok is false when typeName is not an array.
func arrayParts(typeName string) (elem, count string, ok bool) {
	if !strings.HasPrefix(typeName, "array<") || !strings.HasSuffix(typeName, ">") {
		return "", "", false
	}
	parts := splitAtTopLevelCommas(typeName[6 : len(typeName)-1])
	elem = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		count = strings.TrimSpace(parts[1])
	}
	return elem, count, true
}

// isRuntimeArray reports an array type without an element count.
func isRuntimeArray(typeName string) bool {
	_, count, ok := arrayParts(typeName)
	return ok && count == ""
}

// resolveTypeLayout resolves a WGSL type name to its size and alignment using primitives
// and previously-computed struct layouts. A runtime-sized array resolves to a single
// element stride.
//
// Parameters:
//   - typeName: the WGSL type name to resolve, e.g. "f32", "Light", "array<mat4x4<f32>, 4>"
//   - knownTypes: a map of already-resolved struct names to their layouts
//
// Returns:
//   - typeLayout: the resolved layout
//   - bool: false for unknown types or a malformed element count
func resolveTypeLayout(typeName string, knownTypes map[string]typeLayout) (typeLayout, bool) {
	if layout, ok := primitiveLayouts[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	elemType, countStr, ok := arrayParts(typeName)
	if !ok {
		return typeLayout{}, false
	}
	elemLayout, ok := resolveTypeLayout(elemType, knownTypes)
	if !ok {
		return typeLayout{}, false
	}
	stride := roundUpAlign(elemLayout.align, elemLayout.size)
	if countStr == "" {
		return typeLayout{stride, elemLayout.align}, true
	}
	count, err := strconv.ParseUint(countStr, 10, 64)
	if err != nil || count == 0 {
		return typeLayout{}, false
	}
	return typeLayout{count * stride, elemLayout.align}, true
}

// computeStructLayout places every member of ps and returns the struct with
// offsets filled in. Members are placed at the next offset aligned for their
// type and the total size is rounded up to the largest alignment. A trailing
// runtime-sized array contributes nothing to the size. Vertex input structs are
// packed without alignment padding. Builtin members are skipped.
//
// Parameters:
//   - ps: the parsed struct whose layout to compute
//   - knownTypes: a map of already-resolved struct names to their layouts
//
// Returns:
//   - Struct: the laid out struct
//   - bool: true if all members could be resolved
func computeStructLayout(ps parsedStruct, knownTypes map[string]typeLayout) (Struct, bool) {
	out := Struct{Name: ps.name, Vertex: isVertexInputStruct(ps), Fields: make([]Field, 0, len(ps.fields))}
	offset := uint64(0)
	maxAlign := uint64(1)
	runtimeTail := false

	for _, pf := range ps.fields {
		f := Field{Name: pf.name, Type: pf.typeName, Location: pf.location, Builtin: pf.isBuiltin}
		if pf.isBuiltin {
			out.Fields = append(out.Fields, f)
			continue
		}

		layout, ok := resolveTypeLayout(pf.typeName, knownTypes)
		if !ok {
			return Struct{}, false
		}
		f.Size, f.Align = layout.size, layout.align

		if !out.Vertex {
			offset = roundUpAlign(layout.align, offset)
		}
		f.Offset = offset
		out.Fields = append(out.Fields, f)

		if layout.align > maxAlign {
			maxAlign = layout.align
		}
		if isRuntimeArray(pf.typeName) {
			runtimeTail = true
			continue
		}
		offset += layout.size
	}

	out.Align = maxAlign
	switch {
	case out.Vertex:
		out.Size = offset
	case runtimeTail && offset == 0:
		last := out.Fields[len(out.Fields)-1]
		out.Size = roundUpAlign(last.Align, last.Size)
	default:
		out.Size = roundUpAlign(maxAlign, offset)
	}
	return out, true
}

// computeStructSizes resolves the layouts of all parsed structs. It iterates
// until no further struct resolves, so one struct may contain another declared
// later in the source.
//
// Parameters:
//   - structs: all parsed struct blocks from the WGSL source
//
// Returns:
//   - map[string]typeLayout: struct name to computed layout, missing entries could not be resolved
func computeStructSizes(structs []parsedStruct) map[string]typeLayout {
	resolved := make(map[string]typeLayout, len(structs))
	remaining := make([]parsedStruct, len(structs))
	copy(remaining, structs)

	for {
		progress := false
		next := remaining[:0]

		for _, ps := range remaining {
			if s, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = typeLayout{s.Size, s.Align}
				progress = true
			} else {
				next = append(next, ps)
			}
		}

		remaining = next
		if !progress || len(remaining) == 0 {
			break
		}
	}

	return resolved
}
