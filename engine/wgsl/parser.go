// Package wgsl reads struct declarations out of WGSL source and computes their
// host-shareable memory layout, so the byte packing of a uniform block on the Go
// side can be checked against the shader that consumes it.
package wgsl

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when the requested struct is not declared in the source.
	ErrNotFound = errors.New("wgsl: struct not found")
	// ErrUnresolved is returned when a member type is neither a known primitive nor a declared struct.
	ErrUnresolved = errors.New("wgsl: unresolved type")
)

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)
)

// Parse extracts every struct declared in source and resolves its layout.
// Structs may reference each other in any order.
//
// Parameters:
//   - source: WGSL source, comments allowed
//
// Returns:
//   - []Struct: the structs in declaration order
//   - error: ErrUnresolved naming the first struct whose members could not be resolved
func Parse(source string) ([]Struct, error) {
	parsed := parseStructBlocks(stripComments(source))
	known := computeStructSizes(parsed)

	out := make([]Struct, 0, len(parsed))
	for _, ps := range parsed {
		s, ok := computeStructLayout(ps, known)
		if !ok {
			return nil, fmt.Errorf("%w in struct %s", ErrUnresolved, ps.name)
		}
		out = append(out, s)
	}
	return out, nil
}

// Lookup parses source and returns the struct with the given name.
//
// Parameters:
//   - source: WGSL source
//   - name: the struct identifier
//
// Returns:
//   - Struct: the resolved struct
//   - error: ErrNotFound, or any error from Parse
func Lookup(source, name string) (Struct, error) {
	structs, err := Parse(source)
	if err != nil {
		return Struct{}, err
	}
	for _, s := range structs {
		if s.Name == name {
			return s, nil
		}
	}
	return Struct{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// First parses source and returns its first struct. Uniform assets declare exactly one.
//
// Parameters:
//   - source: WGSL source
//
// Returns:
//   - Struct: the first declared struct
//   - error: ErrNotFound if source declares no struct, or any error from Parse
func First(source string) (Struct, error) {
	structs, err := Parse(source)
	if err != nil {
		return Struct{}, err
	}
	if len(structs) == 0 {
		return Struct{}, ErrNotFound
	}
	return structs[0], nil
}

// parseStructBlocks extracts all struct blocks from comment-free WGSL source.
//
// Parameters:
//   - source: WGSL source with comments removed
//
// Returns:
//   - []parsedStruct: the structs in declaration order
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}

	return structs
}

// parseStructFields parses the body of a struct block into individual fields,
// extracting @location and @builtin attributes along with the field name and type
//
// Parameters:
//   - body: the content between { and } of a struct declaration
//
// Returns:
//   - []parsedField: all fields found in the struct body
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field := parsedField{location: -1}
		if builtinRegex.MatchString(line) {
			field.isBuiltin = true
		}
		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			if loc, err := strconv.Atoi(locMatch[1]); err == nil {
				field.location = loc
			}
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])
		fields = append(fields, field)
	}

	return fields
}

// isVertexInputStruct returns true if the struct is a pure vertex input, meaning
// it has at least one @location field and zero @builtin fields.
func isVertexInputStruct(ps parsedStruct) bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// stripComments removes both single-line (//) and block (/* */) comments from WGSL source.
// Block comments may be nested.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

func stripLineComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i += 2
				continue
			}
			if source[i] == '*' && source[i+1] == '/' {
				if depth > 0 {
					depth--
				}
				i += 2
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
		i++
	}
	return sb.String()
}

// splitAtTopLevelCommas splits a string at commas that are not nested inside angle brackets,
// so array<CascadeData, 4> stays one member.
//
// Parameters:
//   - s: the string to split (typically the body of a WGSL struct)
//
// Returns:
//   - []string: substrings between top-level commas
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
