package scene

import (
	"github.com/26wolff/CS-Raytracer/log"
	"github.com/26wolff/CS-Raytracer/types"
)

// Normals whose averaged length falls below this threshold are treated as zero.
const normalEpsilon = 1e-6

// Builder assembles a Scene from indexed face data. Faces are validated as they
// are added: faces referencing missing vertices, non-finite coordinates or
// undefined materials are skipped with a warning so that the resulting scene
// only contains triangles that the tracer can use without further checks.
type Builder struct {
	logger log.Logger

	materials      []Material
	matNameToIndex map[string]uint32

	triangles []Triangle
	camera    *Camera

	skippedFaces     int
	degenerateFaces  int
	unknownMaterials map[string]struct{}
	clampedShininess int
}

// Create a new scene builder.
func NewBuilder() *Builder {
	return &Builder{
		logger:           log.New("scene builder"),
		matNameToIndex:   make(map[string]uint32),
		unknownMaterials: make(map[string]struct{}),
	}
}

// Add a material and return its index. If a material with the same name has
// already been added, it is replaced and its existing index is returned.
func (b *Builder) AddMaterial(mat Material) uint32 {
	if mat.Shininess < 0 {
		b.clampedShininess++
		mat.Shininess = 0
	}

	if index, exists := b.matNameToIndex[mat.Name]; exists && mat.Name != "" {
		b.materials[index] = mat
		return index
	}

	b.materials = append(b.materials, mat)
	index := uint32(len(b.materials) - 1)
	if mat.Name != "" {
		b.matNameToIndex[mat.Name] = index
	}
	return index
}

// Get the index of a previously added material.
func (b *Builder) MaterialIndex(name string) (uint32, bool) {
	index, exists := b.matNameToIndex[name]
	return index, exists
}

// Get a copy of a previously added material.
func (b *Builder) Material(index uint32) (Material, bool) {
	if int(index) >= len(b.materials) {
		return Material{}, false
	}
	return b.materials[index], true
}

// Resolve a material name to an index. Materials added to the builder take
// precedence, followed by the built-in material library. Unknown names
// resolve to the fallback material.
func (b *Builder) ResolveMaterial(name string) uint32 {
	if index, exists := b.matNameToIndex[name]; exists {
		return index
	}

	mat, ok := LookupMaterial(name)
	if !ok {
		if _, warned := b.unknownMaterials[name]; !warned {
			b.logger.Warningf("unknown material %q; using %q instead", name, FallbackMaterialName)
			b.unknownMaterials[name] = struct{}{}
		}
		if index, exists := b.matNameToIndex[mat.Name]; exists {
			return index
		}
	}

	return b.AddMaterial(mat)
}

// Get the index of the default material, adding it if required.
func (b *Builder) DefaultMaterialIndex() uint32 {
	def := DefaultMaterial()
	if index, exists := b.matNameToIndex[def.Name]; exists {
		return index
	}
	return b.AddMaterial(def)
}

// Attach a camera to the scene.
func (b *Builder) SetCamera(camera *Camera) {
	b.camera = camera
}

// Get the camera attached to the scene. The camera is created on demand
// with an unset vertical fov.
func (b *Builder) Camera() *Camera {
	if b.camera == nil {
		b.camera = NewCamera(1)
		b.camera.FOV[1] = 0
	}
	return b.camera
}

// Add a polygon face. Vertex indices refer to the vertices slice and optional
// normal indices (nIdx may be nil or contain negative entries for missing
// normals) refer to the normals slice. Polygons with more than 3 vertices are
// triangulated as a fan around the first vertex.
//
// The method returns the number of triangles that were added.
func (b *Builder) AddFace(vertices, normals []types.Vec3, vIdx, nIdx []int, matIndex uint32) int {
	if len(vIdx) < 3 {
		b.logger.Warningf("skipping face with %d vertices", len(vIdx))
		b.skippedFaces++
		return 0
	}

	added := 0
	for i := 1; i < len(vIdx)-1; i++ {
		corners := [3]int{0, i, i + 1}

		var tri [3]int
		var triNormals [3]int
		for c, corner := range corners {
			tri[c] = vIdx[corner]
			triNormals[c] = -1
			if nIdx != nil && corner < len(nIdx) {
				triNormals[c] = nIdx[corner]
			}
		}

		if b.addIndexedTriangle(vertices, normals, tri, triNormals, matIndex) {
			added++
		}
	}
	return added
}

func (b *Builder) addIndexedTriangle(vertices, normals []types.Vec3, vIdx, nIdx [3]int, matIndex uint32) bool {
	for _, index := range vIdx {
		if index < 0 || index >= len(vertices) {
			b.logger.Warningf("skipping face with invalid vertex indices: %d, %d, %d", vIdx[0], vIdx[1], vIdx[2])
			b.skippedFaces++
			return false
		}
	}

	var vn *[3]types.Vec3
	hasNormals := true
	for _, index := range nIdx {
		if index < 0 || index >= len(normals) {
			hasNormals = false
			break
		}
	}
	if hasNormals {
		vn = &[3]types.Vec3{normals[nIdx[0]], normals[nIdx[1]], normals[nIdx[2]]}
	}

	return b.AddTriangle(vertices[vIdx[0]], vertices[vIdx[1]], vertices[vIdx[2]], vn, matIndex)
}

// Add a triangle. If vertex normals are supplied, the triangle normal is set
// to their normalized average; otherwise the geometric normal is used.
// Returns false if the triangle was rejected.
func (b *Builder) AddTriangle(v0, v1, v2 types.Vec3, vertexNormals *[3]types.Vec3, matIndex uint32) bool {
	if !v0.IsFinite() || !v1.IsFinite() || !v2.IsFinite() {
		b.logger.Warningf("skipping face with non-finite vertices: %v, %v, %v", v0, v1, v2)
		b.skippedFaces++
		return false
	}

	if int(matIndex) >= len(b.materials) {
		b.logger.Warningf("skipping face with undefined material index %d", matIndex)
		b.skippedFaces++
		return false
	}

	if v1.Sub(v0).Cross(v2.Sub(v0)).Len() == 0 {
		b.degenerateFaces++
		return false
	}

	b.triangles = append(b.triangles, Triangle{
		V0:            v0,
		V1:            v1,
		V2:            v2,
		Normal:        FaceNormal(v0, v1, v2, vertexNormals),
		MaterialIndex: matIndex,
	})
	return true
}

// Record a face that was rejected by a loader before reaching the builder.
func (b *Builder) SkipFace(reasonFormat string, args ...interface{}) {
	b.logger.Warningf("skipping face: "+reasonFormat, args...)
	b.skippedFaces++
}

// Number of faces that were rejected so far.
func (b *Builder) Skipped() int {
	return b.skippedFaces
}

// Assemble the scene.
func (b *Builder) Build() (*Scene, error) {
	if b.degenerateFaces > 0 {
		b.logger.Infof("dropped %d zero-area triangles", b.degenerateFaces)
	}
	if b.skippedFaces > 0 {
		b.logger.Warningf("skipped %d invalid faces", b.skippedFaces)
	}
	if b.clampedShininess > 0 {
		b.logger.Warningf("clamped negative shininess to 0 for %d materials", b.clampedShininess)
	}

	sc := &Scene{
		Triangles: b.triangles,
		Materials: b.materials,
		Camera:    b.camera,
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Calculate the shading normal for a triangle. When vertex normals are
// available their average is used (or the zero vector if the average
// vanishes); otherwise the normalized geometric normal is returned.
func FaceNormal(v0, v1, v2 types.Vec3, vertexNormals *[3]types.Vec3) types.Vec3 {
	if vertexNormals != nil {
		avg := vertexNormals[0].Add(vertexNormals[1]).Add(vertexNormals[2]).Mul(1.0 / 3.0)
		if avg.Len() <= normalEpsilon {
			return types.Vec3{}
		}
		return avg.Normalize()
	}

	return GeometricNormal(v0, v1, v2)
}

// Calculate the unit normal of the plane defined by the triangle vertices
// using their winding order. Zero-area triangles yield the zero vector.
func GeometricNormal(v0, v1, v2 types.Vec3) types.Vec3 {
	n := v1.Sub(v0).Cross(v2.Sub(v0))
	l := n.Len()
	if l == 0 {
		return types.Vec3{}
	}
	return n.Mul(1 / l)
}
