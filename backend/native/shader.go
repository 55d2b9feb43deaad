// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Shader entry points.
const (
	VertexEntryPoint   = "vs_main"
	ColorEntryPoint    = "fs_main"
	MaskEntryPoint     = "fs_mask"
	shaderModuleSuffix = "_shader"
)

//go:embed shaders/atlas.wgsl
var atlasShaderSource string

// ShaderSource returns the WGSL source of the atlas quad shader.
// Group 0 holds the texture array at TextureBinding and the sampler at
// SamplerBinding, matching Binder.Layout.
func ShaderSource() string {
	return atlasShaderSource
}

// CompileShader compiles the atlas shader to SPIR-V words.
func CompileShader() ([]uint32, error) {
	spirvBytes, err := naga.Compile(atlasShaderSource)
	if err != nil {
		return nil, fmt.Errorf("native: compile atlas shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// CreateShaderModule compiles the atlas shader and creates a module on d.
func CreateShaderModule(d *Device) (hal.ShaderModule, error) {
	code, err := CompileShader()
	if err != nil {
		return nil, err
	}
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  d.label + shaderModuleSuffix,
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create shader module: %w", err)
	}
	return module, nil
}
