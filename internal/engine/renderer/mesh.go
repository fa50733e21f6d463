package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/objscene/internal/engine/model"
	"github.com/Faultbox/objscene/internal/logger"
)

// Mesh is a vertex buffer resident on the GPU.
type Mesh struct {
	vao   uint32
	vbo   uint32
	count int32
	mode  uint32
}

// Upload copies an expanded vertex buffer to the GPU.
func Upload(vb *model.VertexBuffer) (*Mesh, error) {
	mode, err := glMode(vb.Mode)
	if err != nil {
		return nil, err
	}

	m := &Mesh{count: vb.Count(), mode: mode}
	if m.count == 0 {
		return m, nil
	}

	data := vb.Interleave()

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	for _, a := range model.Attributes {
		gl.VertexAttribPointerWithOffset(a.Location, a.Size, gl.FLOAT, false, model.VertexStride, uintptr(a.Offset))
		gl.EnableVertexAttribArray(a.Location)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	logger.Debug("mesh uploaded",
		zap.Uint32("vao", m.vao),
		zap.Int32("vertices", m.count),
	)
	return m, nil
}

func glMode(mode model.DrawMode) (uint32, error) {
	switch mode {
	case model.DrawTriangles:
		return gl.TRIANGLES, nil
	default:
		return 0, fmt.Errorf("unsupported draw mode %v", mode)
	}
}

// Draw issues a non-indexed draw call.
func (m *Mesh) Draw() {
	if m.count == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawArrays(m.mode, 0, m.count)
}

// Delete releases the GPU buffers.
func (m *Mesh) Delete() {
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
}
