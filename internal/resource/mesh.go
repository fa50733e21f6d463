package resource

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/objscene/internal/engine/model"
	"github.com/Faultbox/objscene/internal/logger"
	"github.com/Faultbox/objscene/pkg/formats"
)

// MeshStore caches expanded meshes by OBJ path.
type MeshStore = Store[*model.VertexBuffer]

// NewMeshStore creates a store that parses OBJ files and expands them with opts.
func NewMeshStore(opts model.ExpandOptions) *MeshStore {
	return NewStore("mesh", MeshLoader(opts))
}

// MeshLoader parses and expands an OBJ file.
func MeshLoader(opts model.ExpandOptions) Loader[*model.VertexBuffer] {
	return func(ctx context.Context, path string) (*model.VertexBuffer, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		obj, err := formats.ParseOBJFile(path)
		if err != nil {
			return nil, err
		}
		parsed := time.Since(start)

		vb, err := model.Expand(obj, opts)
		if err != nil {
			return nil, err
		}

		logger.Debug("mesh expanded",
			zap.String("path", path),
			zap.String("name", obj.Name),
			zap.Int("vertices", len(vb.Vertices)),
			zap.Int("triangles", obj.TriangleCount()),
			zap.Stringer("tangents", opts.Tangents),
			zap.Duration("parse", parsed),
			zap.Duration("total", time.Since(start)))
		return vb, nil
	}
}
