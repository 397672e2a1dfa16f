package material

import (
	"encoding/binary"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/wgsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUMaterialParamsMatchesWGSL(t *testing.T) {
	s, err := wgsl.First(GPUMaterialParamsSource)
	require.NoError(t, err)
	assert.Equal(t, "MaterialParams", s.Name)

	p := NewGPUMaterialParams(NewMaterial(
		WithBaseColor(common.Vec4{1, 1, 1, 0.5}),
		WithAlphaMode(AlphaModeBlend),
		WithTexture(common.SolidTexture(common.Vec4{1, 0, 0, 1})),
	))
	buf := p.Marshal()
	require.Len(t, buf, int(s.Size))
	assert.EqualValues(t, s.Size, p.Size())

	hasTex, _ := s.Field("has_texture")
	mode, _ := s.Field("alpha_mode")
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[hasTex.Offset:]))
	assert.Equal(t, uint32(AlphaModeBlend), binary.LittleEndian.Uint32(buf[mode.Offset:]))
}
