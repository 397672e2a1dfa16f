package debug

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-render/engine/log"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
)

// Dumper writes the images of a FrameResult into a directory.
type Dumper struct {
	dir      string
	prefix   string
	exposure float32
	tile     int
	thumb    int
	logger   log.Logger
}

// NewDumper creates the output directory if needed.
//
// Parameters:
//   - dir: the output directory
//   - options: functional options
//
// Returns:
//   - *Dumper: the dumper
//   - error: an error if the directory cannot be created
func NewDumper(dir string, options ...DumperBuilderOption) (*Dumper, error) {
	d := &Dumper{
		dir:      dir,
		prefix:   "frame",
		exposure: 1,
		tile:     256,
		logger:   log.New("debug"),
	}
	for _, option := range options {
		option(d)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("debug: %w", err)
	}
	return d, nil
}

// Dump writes the output, the HDR shading result and the cascade atlas of
// a frame. Missing intermediates are skipped.
//
// Parameters:
//   - res: the frame to dump
//
// Returns:
//   - []string: the paths written
//   - error: the first write error
func (d *Dumper) Dump(res *renderer.FrameResult) ([]string, error) {
	type entry struct {
		name string
		img  image.Image
	}
	var entries []entry
	if res.Output.Valid() {
		entries = append(entries, entry{"output", Preview(res.Output, 1)})
	}
	if res.HDR.Valid() {
		entries = append(entries, entry{"hdr", Preview(res.HDR, d.exposure)})
	}
	if atlas := CascadeAtlas(res.ShadowMaps, d.tile); atlas != nil {
		entries = append(entries, entry{"cascades", atlas})
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		path := filepath.Join(d.dir, fmt.Sprintf("%s%04d_%s.png", d.prefix, res.Index, e.name))
		if err := SavePNG(path, Thumbnail(e.img, d.thumb)); err != nil {
			return paths, fmt.Errorf("debug: %s: %w", e.name, err)
		}
		paths = append(paths, path)
	}
	d.logger.Debugf("frame %d: wrote %d images to %s", res.Index, len(paths), d.dir)
	return paths, nil
}
