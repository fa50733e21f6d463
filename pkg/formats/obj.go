package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Faultbox/objscene/pkg/math"
)

// OBJ format errors.
var (
	ErrOBJFileRead        = errors.New("cannot open OBJ file")
	ErrOBJLineRead        = errors.New("cannot read OBJ line")
	ErrOBJStrParse        = errors.New("invalid numeric token")
	ErrMalformedVertex    = errors.New("malformed face vertex")
	ErrOBJIndexOutOfRange = errors.New("triangle index out of range")
)

// maxOBJLineLength bounds a single line; longer lines fail with ErrOBJLineRead.
const maxOBJLineLength = 1 << 20

// MalformedVertexError reports a face line that does not resolve to exactly
// three position/uv/normal descriptors. Line is 1-based.
type MalformedVertexError struct {
	Line       int
	Descriptor string // Offending descriptor, empty when the face shape itself is wrong
	Err        error  // Underlying cause, may be nil
}

func (e *MalformedVertexError) Error() string {
	msg := fmt.Sprintf("line %d: %s", e.Line, ErrMalformedVertex)
	if e.Descriptor != "" {
		msg += fmt.Sprintf(" %q", e.Descriptor)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches ErrMalformedVertex.
func (e *MalformedVertexError) Is(target error) bool {
	return target == ErrMalformedVertex
}

func (e *MalformedVertexError) Unwrap() error {
	return e.Err
}

// OBJVertex is one resolved face corner.
type OBJVertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord math.Vec2
}

// OBJ represents a parsed OBJ mesh.
// Every face corner owns its own vertex, so len(Vertices) == 3*len(Triangles).
type OBJ struct {
	Name      string      // First "o" directive, if any
	Vertices  []OBJVertex // One entry per face corner, in file order
	Triangles [][3]uint32 // Indices into Vertices
	Transform math.Mat4   // Model transform, identity after parsing
}

// objPools holds the raw attribute arrays referenced by face lines.
// They live only for the duration of one parse.
type objPools struct {
	positions []math.Vec3
	normals   []math.Vec3
	uvs       []math.Vec2
}

// ParseOBJ parses OBJ text from a reader.
// No partial mesh is returned on error.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxOBJLineLength)

	obj := &OBJ{Transform: math.Identity()}
	var pools objPools

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if !utf8.ValidString(line) {
			return nil, fmt.Errorf("line %d: %w: invalid UTF-8", lineNum, ErrOBJLineRead)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseVec3(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			pools.positions = append(pools.positions, v)

		case "vn":
			v, err := parseVec3(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			pools.normals = append(pools.normals, v)

		case "vt":
			v, err := parseVec2(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			pools.uvs = append(pools.uvs, v)

		case "f":
			if err := obj.addFace(fields[1:], &pools, lineNum); err != nil {
				return nil, err
			}

		case "o":
			if obj.Name == "" && len(fields) > 1 {
				obj.Name = strings.Join(fields[1:], " ")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w: %v", lineNum+1, ErrOBJLineRead, err)
	}

	return obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrOBJFileRead, path, err)
	}
	defer f.Close()

	obj, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obj, nil
}

// addFace resolves a triangular face and appends three new vertices.
func (obj *OBJ) addFace(descriptors []string, pools *objPools, lineNum int) error {
	if len(descriptors) != 3 {
		return &MalformedVertexError{
			Line: lineNum,
			Err:  fmt.Errorf("expected 3 vertices for triangular face; got %d", len(descriptors)),
		}
	}

	// Resolve all three corners before touching the mesh
	var corners [3]OBJVertex
	for i, desc := range descriptors {
		v, err := pools.resolve(desc)
		if err != nil {
			return &MalformedVertexError{Line: lineNum, Descriptor: desc, Err: err}
		}
		corners[i] = v
	}

	base := uint32(len(obj.Vertices))
	obj.Vertices = append(obj.Vertices, corners[:]...)
	obj.Triangles = append(obj.Triangles, [3]uint32{base, base + 1, base + 2})
	return nil
}

// resolve looks up a "position/uv/normal" descriptor in the pools.
func (p *objPools) resolve(desc string) (OBJVertex, error) {
	parts := strings.Split(desc, "/")
	if len(parts) != 3 {
		return OBJVertex{}, fmt.Errorf("expected position/uv/normal; got %d components", len(parts))
	}

	pi, err := selectIndex(parts[0], len(p.positions))
	if err != nil {
		return OBJVertex{}, fmt.Errorf("position: %w", err)
	}
	ti, err := selectIndex(parts[1], len(p.uvs))
	if err != nil {
		return OBJVertex{}, fmt.Errorf("uv: %w", err)
	}
	ni, err := selectIndex(parts[2], len(p.normals))
	if err != nil {
		return OBJVertex{}, fmt.Errorf("normal: %w", err)
	}

	return OBJVertex{
		Position: p.positions[pi],
		Normal:   p.normals[ni],
		TexCoord: p.uvs[ti],
	}, nil
}

// selectIndex converts a 1-based index token into a 0-based pool index.
func selectIndex(token string, poolLen int) (int, error) {
	if token == "" {
		return -1, errors.New("missing index")
	}
	idx, err := strconv.Atoi(token)
	if err != nil {
		return -1, fmt.Errorf("%w: %v", ErrOBJStrParse, err)
	}
	if idx < 1 || idx > poolLen {
		return -1, fmt.Errorf("index %d out of bounds [1, %d]", idx, poolLen)
	}
	return idx - 1, nil
}

// parseFloat32 parses a float32 token. Values beyond float32 range
// saturate to ±Inf, the same as the literals "inf" and "nan" are accepted.
func parseFloat32(token string) (float32, error) {
	f, err := strconv.ParseFloat(token, 32)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w %q", ErrOBJStrParse, token)
	}
	return float32(f), nil
}

func parseVec3(fields []string) (math.Vec3, error) {
	if len(fields) < 4 {
		return math.Vec3{}, fmt.Errorf("%w: '%s' expects 3 arguments; got %d", ErrOBJStrParse, fields[0], len(fields)-1)
	}
	var out [3]float32
	for i := range out {
		f, err := parseFloat32(fields[i+1])
		if err != nil {
			return math.Vec3{}, err
		}
		out[i] = f
	}
	return math.Vec3From(out), nil
}

func parseVec2(fields []string) (math.Vec2, error) {
	if len(fields) < 3 {
		return math.Vec2{}, fmt.Errorf("%w: '%s' expects 2 arguments; got %d", ErrOBJStrParse, fields[0], len(fields)-1)
	}
	u, err := parseFloat32(fields[1])
	if err != nil {
		return math.Vec2{}, err
	}
	v, err := parseFloat32(fields[2])
	if err != nil {
		return math.Vec2{}, err
	}
	return math.Vec2{X: u, Y: v}, nil
}

// Validate checks that every triangle index refers to an existing vertex.
func (obj *OBJ) Validate() error {
	n := uint32(len(obj.Vertices))
	for i, tri := range obj.Triangles {
		for _, idx := range tri {
			if idx >= n {
				return fmt.Errorf("%w: triangle %d references vertex %d of %d", ErrOBJIndexOutOfRange, i, idx, n)
			}
		}
	}
	return nil
}

// VertexCount returns the number of vertices.
func (obj *OBJ) VertexCount() int {
	return len(obj.Vertices)
}

// TriangleCount returns the number of triangles.
func (obj *OBJ) TriangleCount() int {
	return len(obj.Triangles)
}

// Bounds returns the axis-aligned bounding box of all vertex positions.
// ok is false for an empty mesh.
func (obj *OBJ) Bounds() (min, max math.Vec3, ok bool) {
	if len(obj.Vertices) == 0 {
		return math.Vec3{}, math.Vec3{}, false
	}
	min = obj.Vertices[0].Position
	max = min
	for _, v := range obj.Vertices[1:] {
		p := v.Position
		min = math.Vec3{X: minf(min.X, p.X), Y: minf(min.Y, p.Y), Z: minf(min.Z, p.Z)}
		max = math.Vec3{X: maxf(max.X, p.X), Y: maxf(max.Y, p.Y), Z: maxf(max.Z, p.Z)}
	}
	return min, max, true
}

func minf(a, b float32) float32 {
	if b < a {
		return b
	}
	return a
}

func maxf(a, b float32) float32 {
	if b > a {
		return b
	}
	return a
}
