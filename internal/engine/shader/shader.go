// Package shader provides OpenGL shader compilation and the GLSL programs
// nodes are drawn with.
//
// All functions must be called on the goroutine that owns the current
// GL context.
package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// UniformBinding is the uniform buffer binding point of the Uniforms block.
const UniformBinding = 0

// TextureUnit is the texture unit sampled by textured programs.
const TextureUnit = 0

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or an error if compilation/linking fails.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", string(log))
	}

	return program, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, string(log))
	}

	return shader, nil
}

// Build compiles the program of kind k and wires its uniform block to
// UniformBinding and its sampler, if any, to TextureUnit.
func Build(k Kind) (uint32, error) {
	vs, fs := k.Sources()
	program, err := CompileProgram(vs, fs)
	if err != nil {
		return 0, fmt.Errorf("%s program: %w", k, err)
	}

	block := gl.GetUniformBlockIndex(program, gl.Str("Uniforms\x00"))
	if block == gl.INVALID_INDEX {
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%s program: no Uniforms block", k)
	}
	gl.UniformBlockBinding(program, block, UniformBinding)

	if k != KindColor {
		loc := gl.GetUniformLocation(program, gl.Str("tex\x00"))
		if loc < 0 {
			gl.DeleteProgram(program)
			return 0, fmt.Errorf("%s program: sampler uniform %q not found", k, "tex")
		}
		gl.UseProgram(program)
		gl.Uniform1i(loc, TextureUnit)
		gl.UseProgram(0)
	}
	return program, nil
}
