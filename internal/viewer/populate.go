package viewer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/objscene/internal/config"
	"github.com/Faultbox/objscene/internal/engine/model"
	"github.com/Faultbox/objscene/internal/logger"
	"github.com/Faultbox/objscene/internal/resource"
	"github.com/Faultbox/objscene/internal/scene"
	"github.com/Faultbox/objscene/pkg/math"
)

// TextureFunc turns an image path into a GPU texture handle.
type TextureFunc func(ctx context.Context, path string) (uint32, error)

// Populate loads every configured mesh in parallel and spawns one entity per
// mesh and per light. It returns the world-space bounds of all meshes; ok is
// false when the scene has no geometry.
func Populate(ctx context.Context, reg *scene.Registry, cfg *config.Config, meshes *resource.MeshStore, texture TextureFunc) (min, max math.Vec3, ok bool, err error) {
	paths := make([]string, len(cfg.Scene.Meshes))
	for i, m := range cfg.Scene.Meshes {
		if paths[i], err = filepath.Abs(m.Path); err != nil {
			return min, max, false, err
		}
	}

	buffers, err := meshes.LoadAll(ctx, paths)
	if err != nil {
		return min, max, false, err
	}

	for i, m := range cfg.Scene.Meshes {
		vb := buffers[i]
		transform := meshTransform(m)

		e := reg.Spawn()
		reg.SetName(e, m.Name)
		reg.SetModel(e, scene.Model{Path: paths[i], Buffer: vb})
		reg.SetTransform(e, transform)
		reg.SetMaterial(e, scene.Material{
			Ambient:   m.Material.Ambient,
			Diffuse:   m.Material.Diffuse,
			Specular:  m.Material.Specular,
			Shininess: m.Material.Shininess,
		})

		if m.Texture != "" && texture != nil {
			handle, err := texture(ctx, m.Texture)
			if err != nil {
				return min, max, false, fmt.Errorf("mesh %s: %w", m.Name, err)
			}
			reg.SetTexture(e, handle)
		}

		if len(vb.Vertices) > 0 {
			lo, hi := worldBounds(vb.Bounds, transform)
			if !ok {
				min, max, ok = lo, hi, true
			} else {
				min = math.Vec3{X: math32.Min(min.X, lo.X), Y: math32.Min(min.Y, lo.Y), Z: math32.Min(min.Z, lo.Z)}
				max = math.Vec3{X: math32.Max(max.X, hi.X), Y: math32.Max(max.Y, hi.Y), Z: math32.Max(max.Z, hi.Z)}
			}
		}

		logger.Info("mesh added",
			zap.String("name", m.Name),
			zap.String("path", paths[i]),
			zap.Int("vertices", len(vb.Vertices)),
		)
	}

	for _, l := range cfg.Scene.Lights {
		e := reg.Spawn()
		if l.Name != "" {
			reg.SetName(e, l.Name)
		}
		reg.SetLight(e, scene.Light{Color: l.Color})
		reg.SetTransform(e, math.Translate(l.Position[0], l.Position[1], l.Position[2]))
	}

	return min, max, ok, nil
}

// meshTransform builds the model matrix for a configured mesh.
func meshTransform(m config.MeshConfig) math.Mat4 {
	return math.TRS(math.Vec3From(m.Position), m.RotationY*math32.Pi/180, math.Vec3From(m.Scale))
}

// worldBounds transforms the eight corners of a local box.
func worldBounds(b model.Bounds, m math.Mat4) (min, max math.Vec3) {
	for i := 0; i < 8; i++ {
		corner := math.Vec3{X: b.Min[0], Y: b.Min[1], Z: b.Min[2]}
		if i&1 != 0 {
			corner.X = b.Max[0]
		}
		if i&2 != 0 {
			corner.Y = b.Max[1]
		}
		if i&4 != 0 {
			corner.Z = b.Max[2]
		}
		p := m.TransformPoint(corner)
		if i == 0 {
			min, max = p, p
			continue
		}
		min = math.Vec3{X: math32.Min(min.X, p.X), Y: math32.Min(min.Y, p.Y), Z: math32.Min(min.Z, p.Z)}
		max = math.Vec3{X: math32.Max(max.X, p.X), Y: math32.Max(max.Y, p.Y), Z: math32.Max(max.Z, p.Z)}
	}
	return min, max
}

// Reload re-reads the mesh at path and swaps it into every entity that uses
// it. The replaced buffers are returned so their GPU copies can be released.
// On error the entities keep their current mesh.
func Reload(ctx context.Context, reg *scene.Registry, meshes *resource.MeshStore, path string) ([]*model.VertexBuffer, error) {
	var old []*model.VertexBuffer
	seen := make(map[*model.VertexBuffer]bool)
	reg.Query(scene.CompModel, func(v scene.View) bool {
		if v.Model.Path == path && v.Model.Buffer != nil && !seen[v.Model.Buffer] {
			seen[v.Model.Buffer] = true
			old = append(old, v.Model.Buffer)
		}
		return true
	})
	if len(old) == 0 {
		return nil, nil
	}

	vb, err := meshes.Reload(ctx, path)
	if err != nil {
		return nil, err
	}

	n := reg.ReplaceModel(path, vb)
	logger.Info("mesh reloaded",
		zap.String("path", path),
		zap.Int("entities", n),
		zap.Int("vertices", len(vb.Vertices)),
	)
	return old, nil
}
