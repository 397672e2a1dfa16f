package postprocess

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/chewxy/math32"
)

// ErrInvalidLUT is returned for malformed lookup tables.
var ErrInvalidLUT = errors.New("postprocess: invalid lut")

// MaxLUTSize bounds the edge length of a 3D lookup table.
const MaxLUTSize = 256

// LUT is a size^3 RGB lookup table with red varying fastest, then green, then blue.
type LUT struct {
	Size int
	Data []common.Vec3
}

// NewIdentityLUT builds a table that maps every color to itself.
func NewIdentityLUT(size int) *LUT {
	size = max(size, 2)
	l := &LUT{Size: size, Data: make([]common.Vec3, size*size*size)}
	scale := 1 / float32(size-1)
	for b := 0; b < size; b++ {
		for g := 0; g < size; g++ {
			for r := 0; r < size; r++ {
				l.Data[l.index(r, g, b)] = common.Vec3{float32(r) * scale, float32(g) * scale, float32(b) * scale}
			}
		}
	}
	return l
}

// Validate checks the table dimensions.
func (l *LUT) Validate() error {
	if l.Size < 2 || l.Size > MaxLUTSize {
		return fmt.Errorf("%w: size %d", ErrInvalidLUT, l.Size)
	}
	if len(l.Data) != l.Size*l.Size*l.Size {
		return fmt.Errorf("%w: %d entries for size %d", ErrInvalidLUT, len(l.Data), l.Size)
	}
	return nil
}

func (l *LUT) index(r, g, b int) int {
	return (b*l.Size+g)*l.Size + r
}

// Sample looks up c with trilinear interpolation. Inputs are clamped to [0, 1].
func (l *LUT) Sample(c common.Vec3) common.Vec3 {
	n := float32(l.Size - 1)
	var i0, i1 [3]int
	var f [3]float32
	for k := 0; k < 3; k++ {
		p := common.Saturate(c[k]) * n
		fl := math32.Floor(p)
		i0[k] = int(fl)
		i1[k] = min(i0[k]+1, l.Size-1)
		f[k] = p - fl
	}
	at := func(r, g, b int) common.Vec3 { return l.Data[l.index(r, g, b)] }

	c00 := at(i0[0], i0[1], i0[2]).Lerp(at(i1[0], i0[1], i0[2]), f[0])
	c10 := at(i0[0], i1[1], i0[2]).Lerp(at(i1[0], i1[1], i0[2]), f[0])
	c01 := at(i0[0], i0[1], i1[2]).Lerp(at(i1[0], i0[1], i1[2]), f[0])
	c11 := at(i0[0], i1[1], i1[2]).Lerp(at(i1[0], i1[1], i1[2]), f[0])
	c0 := c00.Lerp(c10, f[1])
	c1 := c01.Lerp(c11, f[1])
	return c0.Lerp(c1, f[2])
}

// ParseCubeLUT reads an Adobe .cube 3D table. DOMAIN_MIN and DOMAIN_MAX
// rescale entries into [0, 1]; 1D tables are rejected.
func ParseCubeLUT(r io.Reader) (*LUT, error) {
	var (
		l         = &LUT{}
		domainMin = common.Vec3{0, 0, 0}
		domainMax = common.Vec3{1, 1, 1}
	)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		switch strings.ToUpper(fields[0]) {
		case "TITLE":
			continue
		case "LUT_1D_SIZE":
			return nil, fmt.Errorf("%w: line %d: 1D tables are not supported", ErrInvalidLUT, line)
		case "LUT_3D_SIZE":
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: line %d: malformed size", ErrInvalidLUT, line)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 2 || n > MaxLUTSize {
				return nil, fmt.Errorf("%w: line %d: size %q", ErrInvalidLUT, line, fields[1])
			}
			l.Size = n
			l.Data = make([]common.Vec3, 0, n*n*n)
			continue
		case "DOMAIN_MIN", "DOMAIN_MAX":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidLUT, line, err)
			}
			if strings.EqualFold(fields[0], "DOMAIN_MIN") {
				domainMin = v
			} else {
				domainMax = v
			}
			continue
		}
		if l.Size == 0 {
			return nil, fmt.Errorf("%w: line %d: data before LUT_3D_SIZE", ErrInvalidLUT, line)
		}
		v, err := parseVec3(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidLUT, line, err)
		}
		for k := 0; k < 3; k++ {
			if span := domainMax[k] - domainMin[k]; span > 0 {
				v[k] = (v[k] - domainMin[k]) / span
			}
		}
		l.Data = append(l.Data, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// LoadCubeLUT reads a .cube file from disk.
func LoadCubeLUT(path string) (*LUT, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	l, err := ParseCubeLUT(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// LUTFromStrip converts an N^2 x N strip image, N slices of N x N laid out
// left to right by blue, into a table.
func LUTFromStrip(img image.Image) (*LUT, error) {
	b := img.Bounds()
	n := b.Dy()
	if n < 2 || b.Dx() != n*n {
		return nil, fmt.Errorf("%w: strip is %dx%d, want N*N x N", ErrInvalidLUT, b.Dx(), b.Dy())
	}
	l := &LUT{Size: n, Data: make([]common.Vec3, n*n*n)}
	for blue := 0; blue < n; blue++ {
		for g := 0; g < n; g++ {
			for r := 0; r < n; r++ {
				cr, cg, cb, _ := img.At(b.Min.X+blue*n+r, b.Min.Y+g).RGBA()
				l.Data[l.index(r, g, blue)] = common.Vec3{float32(cr) / 0xffff, float32(cg) / 0xffff, float32(cb) / 0xffff}
			}
		}
	}
	return l, l.Validate()
}

// LoadStripLUT decodes a strip image from disk.
func LoadStripLUT(path string) (*LUT, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, err
	}
	l, err := LUTFromStrip(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// LoadLUT picks the loader by file extension: .cube files are parsed as
// text, anything else is decoded as a strip image.
func LoadLUT(path string) (*LUT, error) {
	if strings.EqualFold(strings.TrimPrefix(filepath.Ext(path), "."), "cube") {
		return LoadCubeLUT(path)
	}
	return LoadStripLUT(path)
}

func parseVec3(fields []string) (common.Vec3, error) {
	var v common.Vec3
	if len(fields) != 3 {
		return v, fmt.Errorf("want 3 values, got %d", len(fields))
	}
	for k, s := range fields {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return v, err
		}
		v[k] = float32(f)
	}
	return v, nil
}
