// Package renderer draws scene entities with OpenGL.
package renderer

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/objscene/internal/engine/model"
	"github.com/Faultbox/objscene/internal/engine/renderer/shaders"
	"github.com/Faultbox/objscene/internal/engine/shader"
	"github.com/Faultbox/objscene/internal/logger"
	"github.com/Faultbox/objscene/internal/scene"
	"github.com/Faultbox/objscene/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [3]float32
	FOV        float32 // Vertical field of view, degrees
	Near, Far  float32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	program *shader.Program
	meshes  map[*model.VertexBuffer]*Mesh

	// Used as the light when the scene has none
	defaultLight scene.Light
}

// New creates a new renderer.
// Must be called after the OpenGL context is created.
func New(cfg Config) (*Renderer, error) {
	if cfg.Near <= 0 {
		cfg.Near = 0.01
	}
	if cfg.Far <= cfg.Near {
		cfg.Far = 1000
	}
	if cfg.FOV <= 0 {
		cfg.FOV = 45
	}

	r := &Renderer{
		config:       cfg,
		meshes:       make(map[*model.VertexBuffer]*Mesh),
		defaultLight: scene.Light{Color: [3]float32{1, 1, 1}},
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.program, err = shader.New(shaders.MeshVertexShader, shaders.MeshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	logger.Debug("shader program created", zap.Uint32("program", r.program.ID))

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for vb, m := range r.meshes {
		m.Delete()
		delete(r.meshes, vb)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Projection returns the perspective matrix for the current viewport.
func (r *Renderer) Projection() math.Mat4 {
	aspect := float32(1)
	if r.config.Height > 0 {
		aspect = float32(r.config.Width) / float32(r.config.Height)
	}
	return math.Perspective(r.config.FOV*math32.Pi/180, aspect, r.config.Near, r.config.Far)
}

// FOV returns the vertical field of view in radians.
func (r *Renderer) FOV() float32 {
	return r.config.FOV * math32.Pi / 180
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {}

// Release frees the GPU copy of vb, if any. Call it after a model is replaced.
func (r *Renderer) Release(vb *model.VertexBuffer) {
	if m, ok := r.meshes[vb]; ok {
		m.Delete()
		delete(r.meshes, vb)
	}
}

// mesh returns the GPU mesh for vb, uploading it on first use.
func (r *Renderer) mesh(vb *model.VertexBuffer) (*Mesh, error) {
	if m, ok := r.meshes[vb]; ok {
		return m, nil
	}
	m, err := Upload(vb)
	if err != nil {
		return nil, err
	}
	r.meshes[vb] = m
	return m, nil
}

// DrawScene draws every entity with a model and transform, lit by the first
// light in the registry.
func (r *Renderer) DrawScene(reg *scene.Registry, view math.Mat4, eye math.Vec3) {
	lightPos, light, ok := reg.FirstLight()
	if !ok {
		lightPos, light = eye, r.defaultLight
	}

	p := r.program
	p.Use()
	p.SetMat4("uView", view)
	p.SetMat4("uProjection", r.Projection())
	p.SetVec3("uLightPos", lightPos.Array())
	p.SetVec3("uLightColor", light.Color)
	p.SetVec3("uViewPos", eye.Array())
	p.SetInt("uNormalMap", 0)

	reg.Query(scene.CompModel|scene.CompTransform, func(v scene.View) bool {
		if v.Model.Buffer == nil {
			return true
		}
		m, err := r.mesh(v.Model.Buffer)
		if err != nil {
			logger.Error("mesh upload failed", zap.String("path", v.Model.Path), zap.Error(err))
			return true
		}

		mat := v.Material
		if !v.Has(scene.CompMaterial) {
			mat = defaultMaterial
		}
		p.SetMat4("uModel", v.Transform)
		p.SetMat3("uNormalMatrix", v.Transform.NormalMatrix())
		p.SetVec3("uAmbient", mat.Ambient)
		p.SetVec3("uDiffuse", mat.Diffuse)
		p.SetVec3("uSpecular", mat.Specular)
		p.SetFloat("uShininess", mat.Shininess)

		useNormalMap := v.Has(scene.CompTexture) && v.Texture != 0
		p.SetBool("uUseNormalMap", useNormalMap)
		if useNormalMap {
			gl.ActiveTexture(gl.TEXTURE0)
			gl.BindTexture(gl.TEXTURE_2D, v.Texture)
		}

		m.Draw()
		return true
	})

	gl.BindVertexArray(0)
}

var defaultMaterial = scene.Material{
	Ambient:   [3]float32{0.1, 0.1, 0.1},
	Diffuse:   [3]float32{0.8, 0.8, 0.8},
	Specular:  [3]float32{0.5, 0.5, 0.5},
	Shininess: 32,
}

// ReadPixels reads the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}
