package main

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/material"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-render/engine/shadow"
	"github.com/Carmen-Shannon/oxy-render/engine/wgsl"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// uniformBlock is a Go type packed into a WGSL struct.
type uniformBlock struct {
	source string
	size   int
}

func uniformBlocks() []uniformBlock {
	return []uniformBlock{
		{camera.GPUCameraUniformSource, (&camera.GPUCameraUniform{}).Size()},
		{light.GPULightHeaderSource, (&light.GPULightHeader{}).Size()},
		{light.GPULightSource, (&light.GPULight{}).Size()},
		{model.GPUVertexSource, (&model.GPUVertex{}).Size()},
		{model.GPUModelUniformSource, (&model.GPUModelUniform{}).Size()},
		{material.GPUMaterialParamsSource, (&material.GPUMaterialParams{}).Size()},
		{shadow.GPUCascadeDataSource, (&shadow.GPUCascadeData{}).Size()},
		{postprocess.GPUBloomUniformsSource, (&postprocess.GPUBloomUniforms{}).Size()},
		{postprocess.GPUToneMapUniformsSource, (&postprocess.GPUToneMapUniforms{}).Size()},
		{postprocess.GPUGradingUniformsSource, (&postprocess.GPUGradingUniforms{}).Size()},
		{postprocess.GPUFXAAUniformsSource, (&postprocess.GPUFXAAUniforms{}).Size()},
		{postprocess.GPUEffectsUniformsSource, (&postprocess.GPUEffectsUniforms{}).Size()},
	}
}

// formatLayouts renders the member layout of every uniform block as a table
// and reports blocks whose packed Go size differs from the WGSL declaration.
func formatLayouts(blocks []uniformBlock, fields bool) (string, error) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	if fields {
		table.SetHeader([]string{"Struct", "Field", "Type", "Offset", "Size"})
	} else {
		table.SetHeader([]string{"Struct", "Fields", "Align", "Size", "Packed"})
	}

	var mismatched []error
	for _, b := range blocks {
		s, err := wgsl.First(b.source)
		if err != nil {
			return "", err
		}
		if uint64(b.size) != s.Size {
			mismatched = append(mismatched, fmt.Errorf("%s: packed %d bytes, declared %d", s.Name, b.size, s.Size))
		}
		if !fields {
			table.Append([]string{s.Name, fmt.Sprint(len(s.Fields)), fmt.Sprint(s.Align), fmt.Sprint(s.Size), fmt.Sprint(b.size)})
			continue
		}
		for _, f := range s.Fields {
			table.Append([]string{s.Name, f.Name, f.Type, fmt.Sprint(f.Offset), fmt.Sprint(f.Size)})
		}
	}

	table.Render()
	return buf.String(), errors.Join(mismatched...)
}

// Print the layout of every uniform block the renderer packs.
func printLayouts(ctx *cli.Context) error {
	out, err := formatLayouts(uniformBlocks(), ctx.Bool("fields"))
	if out != "" {
		fmt.Fprint(ctx.App.Writer, out)
	}
	return err
}
