// Package model expands parsed meshes into GPU-ready vertex buffers with
// per-vertex tangent frames for normal mapping.
package model

import (
	"fmt"
	"strings"
)

// Vertex represents an expanded mesh vertex. Field order matches the GPU layout.
type Vertex struct {
	Position  [3]float32
	Normal    [3]float32
	TexCoord  [2]float32
	Tangent   [3]float32
	Bitangent [3]float32
}

// DrawMode tells the renderer how to assemble vertices into primitives.
type DrawMode int

const (
	// DrawTriangles is a non-indexed triangle list: every three consecutive
	// vertices form one triangle.
	DrawTriangles DrawMode = iota
)

// String returns a human-readable draw mode name.
func (m DrawMode) String() string {
	switch m {
	case DrawTriangles:
		return "Triangles"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// VertexBuffer holds the complete expanded mesh ready for GPU upload.
type VertexBuffer struct {
	Vertices []Vertex
	Mode     DrawMode
	Bounds   Bounds
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Center returns the midpoint of the box.
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// TangentMode selects how a vertex shared by several triangles gets its tangent frame.
type TangentMode int

const (
	// TangentOverwrite assigns each triangle's frame to its vertices; the last triangle wins.
	TangentOverwrite TangentMode = iota
	// TangentAccumulate sums the frames of all incident triangles and normalizes the sum.
	TangentAccumulate
)

// String returns the config name of the mode.
func (m TangentMode) String() string {
	switch m {
	case TangentOverwrite:
		return "overwrite"
	case TangentAccumulate:
		return "accumulate"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseTangentMode parses a config name. Empty selects TangentOverwrite.
func ParseTangentMode(s string) (TangentMode, error) {
	switch strings.ToLower(s) {
	case "", "overwrite":
		return TangentOverwrite, nil
	case "accumulate":
		return TangentAccumulate, nil
	default:
		return 0, fmt.Errorf("unknown tangent mode %q", s)
	}
}

// DegenerateUVPolicy selects what happens when a triangle has zero UV area.
type DegenerateUVPolicy int

const (
	// DegenerateUVPropagate lets Inf/NaN tangent values flow into the output.
	DegenerateUVPropagate DegenerateUVPolicy = iota
	// DegenerateUVReject fails the expansion with a *DegenerateUVError.
	DegenerateUVReject
	// DegenerateUVSkip leaves the triangle out of tangent computation.
	DegenerateUVSkip
)

// String returns the config name of the policy.
func (p DegenerateUVPolicy) String() string {
	switch p {
	case DegenerateUVPropagate:
		return "propagate"
	case DegenerateUVReject:
		return "reject"
	case DegenerateUVSkip:
		return "skip"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// ParseDegenerateUVPolicy parses a config name. Empty selects DegenerateUVPropagate.
func ParseDegenerateUVPolicy(s string) (DegenerateUVPolicy, error) {
	switch strings.ToLower(s) {
	case "", "propagate":
		return DegenerateUVPropagate, nil
	case "reject":
		return DegenerateUVReject, nil
	case "skip":
		return DegenerateUVSkip, nil
	default:
		return 0, fmt.Errorf("unknown degenerate UV policy %q", s)
	}
}

// ExpandOptions contains options for vertex expansion.
// The zero value overwrites tangents and lets degenerate UVs propagate.
type ExpandOptions struct {
	Tangents     TangentMode
	DegenerateUV DegenerateUVPolicy
}
