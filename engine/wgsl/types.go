package wgsl

// Field is a single member of a parsed WGSL struct together with its resolved layout.
type Field struct {
	// Name is the member identifier.
	Name string
	// Type is the WGSL type as written, e.g. "vec3<f32>" or "array<mat4x4<f32>, 4>".
	Type string
	// Location is the @location index, or -1 when the member has none.
	Location int
	// Builtin reports an @builtin member. Builtins take no space in a buffer.
	Builtin bool
	// Offset is the byte offset of the member from the start of the struct.
	Offset uint64
	// Size is the byte size of the member.
	Size uint64
	// Align is the byte alignment of the member.
	Align uint64
}

// Struct is a parsed WGSL struct with the host-shareable layout of its members.
type Struct struct {
	// Name is the struct identifier.
	Name string
	// Fields holds the members in declaration order.
	Fields []Field
	// Size is the total byte size, rounded up to Align. For a struct ending in a
	// runtime-sized array it is the size of the fixed prefix.
	Size uint64
	// Align is the largest member alignment.
	Align uint64
	// Vertex reports a vertex input struct. Its members are packed tightly in
	// declaration order the way a vertex buffer layout stores them.
	Vertex bool
}

// Field looks up a member by name.
//
// Parameters:
//   - name: the member identifier
//
// Returns:
//   - Field: the member and its layout
//   - bool: false if the struct has no such member
func (s Struct) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// typeLayout holds the byte size and alignment for a WGSL type.
type typeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}
