package model

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/objscene/pkg/formats"
	"github.com/Faultbox/objscene/pkg/math"
)

// Expansion errors.
var (
	ErrNilMesh      = errors.New("nil mesh")
	ErrDegenerateUV = errors.New("degenerate UV triangle")
)

// DegenerateUVError reports a triangle whose UV determinant cannot be inverted.
type DegenerateUVError struct {
	Triangle    int     // Index into the mesh triangle list
	Determinant float32 // du1*dv2 - du2*dv1
}

func (e *DegenerateUVError) Error() string {
	return fmt.Sprintf("triangle %d: %s (determinant %g)", e.Triangle, ErrDegenerateUV, e.Determinant)
}

// Is matches ErrDegenerateUV.
func (e *DegenerateUVError) Is(target error) bool {
	return target == ErrDegenerateUV
}

// Expand builds a GPU vertex buffer from a parsed mesh, with one output vertex
// per mesh vertex and tangent/bitangent computed per triangle.
// The mesh is not modified.
func Expand(obj *formats.OBJ, opts ExpandOptions) (*VertexBuffer, error) {
	if obj == nil {
		return nil, ErrNilMesh
	}
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	vertices := make([]Vertex, len(obj.Vertices))
	for i, v := range obj.Vertices {
		vertices[i] = Vertex{
			Position: v.Position.Array(),
			Normal:   v.Normal.Array(),
			TexCoord: v.TexCoord.Array(),
		}
	}

	// Running sums for TangentAccumulate
	var tangentSum, bitangentSum []math.Vec3
	if opts.Tangents == TangentAccumulate {
		tangentSum = make([]math.Vec3, len(vertices))
		bitangentSum = make([]math.Vec3, len(vertices))
	}

	for ti, tri := range obj.Triangles {
		a, b, c := obj.Vertices[tri[0]], obj.Vertices[tri[1]], obj.Vertices[tri[2]]
		frame := ComputeTangentFrame(a.Position, b.Position, c.Position, a.TexCoord, b.TexCoord, c.TexCoord)

		if frame.Degenerate() {
			switch opts.DegenerateUV {
			case DegenerateUVReject:
				return nil, &DegenerateUVError{Triangle: ti, Determinant: frame.Determinant}
			case DegenerateUVSkip:
				continue
			}
		}

		for _, idx := range tri {
			if opts.Tangents == TangentAccumulate {
				tangentSum[idx] = tangentSum[idx].Add(frame.Tangent)
				bitangentSum[idx] = bitangentSum[idx].Add(frame.Bitangent)
				continue
			}
			vertices[idx].Tangent = frame.Tangent.Array()
			vertices[idx].Bitangent = frame.Bitangent.Array()
		}
	}

	if opts.Tangents == TangentAccumulate {
		for i := range vertices {
			vertices[i].Tangent = tangentSum[i].Normalize().Array()
			vertices[i].Bitangent = bitangentSum[i].Normalize().Array()
		}
	}

	return &VertexBuffer{
		Vertices: vertices,
		Mode:     DrawTriangles,
		Bounds:   computeBounds(vertices),
	}, nil
}

// TangentFrame is the per-triangle tangent basis derived from UV derivatives.
type TangentFrame struct {
	Tangent     math.Vec3
	Bitangent   math.Vec3
	Determinant float32
}

// Degenerate reports whether the UV determinant could not be inverted.
// Tangent and Bitangent of a degenerate frame are not finite.
func (f TangentFrame) Degenerate() bool {
	inv := 1 / f.Determinant
	return math32.IsInf(inv, 0) || math32.IsNaN(inv)
}

// ComputeTangentFrame computes the normalized tangent and bitangent of one triangle.
// A zero UV determinant is not guarded; the result is then Inf/NaN.
func ComputeTangentFrame(p0, p1, p2 math.Vec3, uv0, uv1, uv2 math.Vec2) TangentFrame {
	edge1 := p1.Sub(p0)
	edge2 := p2.Sub(p0)
	duv1 := uv1.Sub(uv0)
	duv2 := uv2.Sub(uv0)

	det := duv1.X*duv2.Y - duv2.X*duv1.Y
	f := 1 / det

	tangent := edge1.Scale(duv2.Y).Sub(edge2.Scale(duv1.Y)).Scale(f)
	bitangent := edge2.Scale(duv1.X).Sub(edge1.Scale(duv2.X)).Scale(f)

	return TangentFrame{
		Tangent:     tangent.Normalize(),
		Bitangent:   bitangent.Normalize(),
		Determinant: det,
	}
}

// computeBounds returns the bounding box of all vertex positions.
func computeBounds(vertices []Vertex) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}
	bounds := Bounds{Min: vertices[0].Position, Max: vertices[0].Position}
	for i := range vertices[1:] {
		updateBounds(&bounds, vertices[i+1].Position)
	}
	return bounds
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
