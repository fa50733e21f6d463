package model

import (
	"testing"
	"unsafe"
)

func TestLayout_MatchesVertexStruct(t *testing.T) {
	if got := int(unsafe.Sizeof(Vertex{})); got != VertexStride {
		t.Fatalf("Vertex size = %d, want stride %d", got, VertexStride)
	}

	offsets := []uintptr{
		unsafe.Offsetof(Vertex{}.Position),
		unsafe.Offsetof(Vertex{}.Normal),
		unsafe.Offsetof(Vertex{}.TexCoord),
		unsafe.Offsetof(Vertex{}.Tangent),
		unsafe.Offsetof(Vertex{}.Bitangent),
	}
	if len(offsets) != len(Attributes) {
		t.Fatalf("expected %d attributes, got %d", len(offsets), len(Attributes))
	}
	total := 0
	for i, attr := range Attributes {
		if attr.Offset != int(offsets[i]) {
			t.Errorf("%s offset = %d, want %d", attr.Name, attr.Offset, offsets[i])
		}
		if attr.Location != uint32(i) {
			t.Errorf("%s location = %d, want %d", attr.Name, attr.Location, i)
		}
		total += int(attr.Size)
	}
	if total != FloatsPerVertex {
		t.Errorf("attribute sizes sum to %d, want %d", total, FloatsPerVertex)
	}
}

func TestInterleave(t *testing.T) {
	vb := &VertexBuffer{
		Vertices: []Vertex{
			{
				Position:  [3]float32{1, 2, 3},
				Normal:    [3]float32{0, 0, 1},
				TexCoord:  [2]float32{0.25, 0.75},
				Tangent:   [3]float32{1, 0, 0},
				Bitangent: [3]float32{0, 1, 0},
			},
			{Position: [3]float32{4, 5, 6}},
		},
	}

	got := vb.Interleave()
	if len(got) != 2*FloatsPerVertex {
		t.Fatalf("expected %d floats, got %d", 2*FloatsPerVertex, len(got))
	}

	want := []float32{1, 2, 3, 0, 0, 1, 0.25, 0.75, 1, 0, 0, 0, 1, 0}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("float %d = %v, want %v", i, got[i], w)
		}
	}
	if got[FloatsPerVertex] != 4 {
		t.Errorf("second vertex should start at %d, got %v", FloatsPerVertex, got[FloatsPerVertex])
	}
	if vb.Count() != 2 {
		t.Errorf("Count() = %d, want 2", vb.Count())
	}
}

func TestParseTangentMode(t *testing.T) {
	tests := []struct {
		in      string
		want    TangentMode
		wantErr bool
	}{
		{"", TangentOverwrite, false},
		{"overwrite", TangentOverwrite, false},
		{"Accumulate", TangentAccumulate, false},
		{"average", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTangentMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTangentMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseTangentMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDegenerateUVPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    DegenerateUVPolicy
		wantErr bool
	}{
		{"", DegenerateUVPropagate, false},
		{"propagate", DegenerateUVPropagate, false},
		{"REJECT", DegenerateUVReject, false},
		{"skip", DegenerateUVSkip, false},
		{"clamp", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDegenerateUVPolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDegenerateUVPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseDegenerateUVPolicy(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{DrawTriangles.String(), "Triangles"},
		{DrawMode(7).String(), "Unknown(7)"},
		{TangentAccumulate.String(), "accumulate"},
		{TangentMode(9).String(), "unknown(9)"},
		{DegenerateUVSkip.String(), "skip"},
		{DegenerateUVPolicy(5).String(), "unknown(5)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
