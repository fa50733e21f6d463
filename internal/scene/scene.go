// Package scene holds the entities the viewer draws.
//
// An entity is an ID plus any subset of components. Queries select entities
// by component mask and visit them in spawn order, so draw order is stable
// between frames. A Registry is not safe for concurrent use; the viewer
// mutates it only from the render thread.
package scene

import (
	"github.com/Faultbox/objscene/internal/engine/model"
	"github.com/Faultbox/objscene/pkg/math"
)

// Entity identifies a scene object. The zero value is never issued.
type Entity uint32

// Component is a bit in an entity's component mask.
type Component uint32

const (
	CompName Component = 1 << iota
	CompModel
	CompTransform
	CompMaterial
	CompLight
	CompTexture
)

// String returns a short name for a single component bit.
func (c Component) String() string {
	switch c {
	case CompName:
		return "name"
	case CompModel:
		return "model"
	case CompTransform:
		return "transform"
	case CompMaterial:
		return "material"
	case CompLight:
		return "light"
	case CompTexture:
		return "texture"
	default:
		return "mask"
	}
}

// Model references expanded mesh data by its source path.
type Model struct {
	Path   string
	Buffer *model.VertexBuffer
}

// Material holds Phong reflection coefficients.
type Material struct {
	Ambient   [3]float32
	Diffuse   [3]float32
	Specular  [3]float32
	Shininess float32
}

// Light is a point light. Its position comes from the Transform component.
type Light struct {
	Color [3]float32
}

// View is a snapshot of one entity's components.
// Fields whose bit is not set in Mask hold zero values.
type View struct {
	Entity    Entity
	Mask      Component
	Name      string
	Model     Model
	Transform math.Mat4
	Material  Material
	Light     Light
	Texture   uint32 // GPU texture handle
}

// Has reports whether the entity carries every component in mask.
func (v *View) Has(mask Component) bool {
	return v.Mask&mask == mask
}

// Registry owns all entities and their components.
type Registry struct {
	next     Entity
	order    []Entity
	entities map[Entity]*View
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[Entity]*View),
	}
}

// Spawn creates a new entity with no components.
func (r *Registry) Spawn() Entity {
	r.next++
	e := r.next
	r.entities[e] = &View{Entity: e}
	r.order = append(r.order, e)
	return e
}

// Remove deletes an entity. Removing an unknown entity is a no-op.
func (r *Registry) Remove(e Entity) {
	if _, ok := r.entities[e]; !ok {
		return
	}
	delete(r.entities, e)
	for i, id := range r.order {
		if id == e {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	return len(r.order)
}

// Get returns a copy of an entity's components.
func (r *Registry) Get(e Entity) (View, bool) {
	v, ok := r.entities[e]
	if !ok {
		return View{}, false
	}
	return *v, true
}

// SetName attaches a display name. Setters on unknown entities return false.
func (r *Registry) SetName(e Entity, name string) bool {
	return r.set(e, CompName, func(v *View) { v.Name = name })
}

// SetModel attaches mesh data.
func (r *Registry) SetModel(e Entity, m Model) bool {
	return r.set(e, CompModel, func(v *View) { v.Model = m })
}

// SetTransform attaches a model matrix.
func (r *Registry) SetTransform(e Entity, t math.Mat4) bool {
	return r.set(e, CompTransform, func(v *View) { v.Transform = t })
}

// SetMaterial attaches surface coefficients.
func (r *Registry) SetMaterial(e Entity, m Material) bool {
	return r.set(e, CompMaterial, func(v *View) { v.Material = m })
}

// SetLight marks the entity as a point light.
func (r *Registry) SetLight(e Entity, l Light) bool {
	return r.set(e, CompLight, func(v *View) { v.Light = l })
}

// SetTexture attaches a GPU texture handle.
func (r *Registry) SetTexture(e Entity, handle uint32) bool {
	return r.set(e, CompTexture, func(v *View) { v.Texture = handle })
}

func (r *Registry) set(e Entity, c Component, fn func(*View)) bool {
	v, ok := r.entities[e]
	if !ok {
		return false
	}
	fn(v)
	v.Mask |= c
	return true
}

// Query calls fn for each entity that has all components in mask, in spawn
// order. fn receives a copy; use the setters to change components.
// Returning false from fn stops the iteration.
func (r *Registry) Query(mask Component, fn func(v View) bool) {
	// Snapshot so fn may spawn or remove entities
	ids := make([]Entity, len(r.order))
	copy(ids, r.order)

	for _, e := range ids {
		v, ok := r.entities[e]
		if !ok || !v.Has(mask) {
			continue
		}
		if !fn(*v) {
			return
		}
	}
}

// ReplaceModel swaps the mesh data of every entity whose model came from
// path and returns how many entities were updated.
func (r *Registry) ReplaceModel(path string, vb *model.VertexBuffer) int {
	n := 0
	for _, e := range r.order {
		v := r.entities[e]
		if v.Mask&CompModel != 0 && v.Model.Path == path {
			v.Model.Buffer = vb
			n++
		}
	}
	return n
}

// FirstLight returns the world position and color of the earliest spawned
// entity with a light and a transform.
func (r *Registry) FirstLight() (pos math.Vec3, light Light, ok bool) {
	r.Query(CompLight|CompTransform, func(v View) bool {
		pos = v.Transform.TransformPoint(math.Vec3{})
		light = v.Light
		ok = true
		return false
	})
	return pos, light, ok
}
