package camera

import (
	"encoding/binary"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/engine/wgsl"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUCameraUniformMatchesWGSL(t *testing.T) {
	s, err := wgsl.Lookup(GPUCameraUniformSource, "CameraUniform")
	require.NoError(t, err)

	g := GPUCameraUniform{Near: 0.25, Far: 512}
	g.ViewProj[0] = 3
	g.Position[0] = 7
	buf := g.Marshal()
	require.Len(t, buf, int(s.Size))
	assert.EqualValues(t, s.Size, g.Size())

	for name, want := range map[string]float32{"view_proj": 3, "position": 7, "near": 0.25, "far": 512} {
		f, ok := s.Field(name)
		require.True(t, ok, name)
		assert.Equal(t, want, math32.Float32frombits(binary.LittleEndian.Uint32(buf[f.Offset:])), name)
	}
}
