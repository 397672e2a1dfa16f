package postprocess

import (
	"github.com/Carmen-Shannon/oxy-render/engine/target"
)

// resampleStage bilinearly scales in to the size of out.
func (c *chain) resampleStage(in target.Reader, out target.Writer) error {
	w, h := out.Width(), out.Height()
	c.dispatcher.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			v := (float32(y) + 0.5) / float32(h)
			for x := 0; x < w; x++ {
				out.Store(x, y, in.Sample((float32(x)+0.5)/float32(w), v))
			}
		}
	})
	return nil
}
