package model

// FloatsPerVertex is the number of float32 values in one interleaved vertex.
const FloatsPerVertex = 3 + 3 + 2 + 3 + 3

// VertexStride is the byte size of one interleaved vertex.
const VertexStride = FloatsPerVertex * 4

// Attribute describes one vertex attribute in the interleaved layout.
type Attribute struct {
	Name     string
	Location uint32
	Size     int32 // Component count
	Offset   int   // Byte offset within a vertex
}

// Attributes is the shader input layout for Vertex, in field order.
var Attributes = []Attribute{
	{Name: "aPosition", Location: 0, Size: 3, Offset: 0},
	{Name: "aNormal", Location: 1, Size: 3, Offset: 3 * 4},
	{Name: "aTexCoord", Location: 2, Size: 2, Offset: 6 * 4},
	{Name: "aTangent", Location: 3, Size: 3, Offset: 8 * 4},
	{Name: "aBitangent", Location: 4, Size: 3, Offset: 11 * 4},
}

// Count returns the number of vertices to draw.
func (vb *VertexBuffer) Count() int32 {
	return int32(len(vb.Vertices))
}

// Interleave flattens the buffer into position, normal, uv, tangent, bitangent
// per vertex, matching Attributes.
func (vb *VertexBuffer) Interleave() []float32 {
	out := make([]float32, 0, len(vb.Vertices)*FloatsPerVertex)
	for _, v := range vb.Vertices {
		out = append(out, v.Position[:]...)
		out = append(out, v.Normal[:]...)
		out = append(out, v.TexCoord[:]...)
		out = append(out, v.Tangent[:]...)
		out = append(out, v.Bitangent[:]...)
	}
	return out
}
