package scene

import "github.com/26wolff/CS-Raytracer/types"

// Defines a scene material. The integrator only consumes the base color,
// emission, shininess and reflectivity. The remaining fields are carried
// through loaders and compiled scenes unchanged.
type Material struct {
	Name string

	BaseColor     types.Vec3
	SpecularColor types.Vec3
	AmbientColor  types.Vec3
	EmissionColor types.Vec3

	// Higher values produce a tighter, more mirror-like bounce lobe.
	Shininess float32

	// Scales the base color to obtain the per-bounce throughput attenuation.
	Reflectivity float32

	Transparency    float32
	RefractiveIndex float32
}

// Get the default material that is assigned to faces without an explicit material.
func DefaultMaterial() Material {
	return Material{
		Name:            "default",
		BaseColor:       types.Vec3{0.7, 0.25, 0.7},
		SpecularColor:   types.Splat(0.3),
		AmbientColor:    types.Splat(0.1),
		Shininess:       32,
		Reflectivity:    0.2,
		RefractiveIndex: 1,
	}
}

// Radiance emitted by the surface.
func (m *Material) Emission() types.Vec3 {
	return m.EmissionColor
}

// The factor applied to the path throughput after a bounce off this surface.
func (m *Material) Reflectance() types.Vec3 {
	return m.BaseColor.Mul(m.Reflectivity)
}

// Blend weight between a mirror bounce (0) and a cosine-weighted diffuse bounce (1).
func (m *Material) Roughness() float32 {
	return 1 / (m.Shininess + 1)
}

// Returns true if the surface emits light.
func (m *Material) IsEmissive() bool {
	return m.EmissionColor.MaxComponent() > 0
}
