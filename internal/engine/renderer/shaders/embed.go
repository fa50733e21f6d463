// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// MeshVertexShader is the vertex shader for expanded OBJ meshes.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader is the Blinn-Phong fragment shader with optional normal mapping.
//
//go:embed mesh.frag
var MeshFragmentShader string
