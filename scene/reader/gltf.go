package reader

import (
	"fmt"
	"time"

	"github.com/26wolff/CS-Raytracer/asset"
	"github.com/26wolff/CS-Raytracer/log"
	"github.com/26wolff/CS-Raytracer/scene"
	"github.com/26wolff/CS-Raytracer/types"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Upper bound for the shininess derived from a glTF roughness factor.
const maxGLTFShininess = 1e4

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

type gltfSceneReader struct {
	logger log.Logger

	builder *scene.Builder
	doc     *gltf.Document

	// Maps glTF material indices to builder material indices.
	matIndices map[int]uint32
}

// Create a new glTF scene reader.
func newGLTFReader() *gltfSceneReader {
	return &gltfSceneReader{
		logger:     log.New("gltf reader"),
		builder:    scene.NewBuilder(),
		matIndices: make(map[int]uint32),
	}
}

// Read a .gltf or .glb scene. The triangles of every mesh reachable from the
// default scene are flattened into world space.
func (r *gltfSceneReader) Read(res *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing glTF scene from "%s"`, res.Path())
	start := time.Now()

	doc, err := r.decode(res)
	if err != nil {
		return nil, fmt.Errorf("[%s] error: %w", res.Path(), err)
	}
	r.doc = doc

	for _, nodeIndex := range r.rootNodes() {
		if err = r.addNode(nodeIndex, identityTransform(), 0); err != nil {
			return nil, fmt.Errorf("[%s] error: %w", res.Path(), err)
		}
	}

	sc, err := r.builder.Build()
	if err != nil {
		return nil, fmt.Errorf("[%s] error: %w", res.Path(), err)
	}

	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1000000)
	return sc, nil
}

// Decode the glTF document. Local files are opened by path so that external
// buffers can be resolved; other resources must be self-contained.
func (r *gltfSceneReader) decode(res *asset.Resource) (*gltf.Document, error) {
	if localPath, ok := res.LocalPath(); ok {
		return gltf.Open(localPath)
	}

	doc := new(gltf.Document)
	if err := gltf.NewDecoder(res).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Get the root nodes of the default scene. Documents without a default scene
// use every node that is not referenced as a child.
func (r *gltfSceneReader) rootNodes() []int {
	if r.doc.Scene != nil && *r.doc.Scene < len(r.doc.Scenes) {
		return r.doc.Scenes[*r.doc.Scene].Nodes
	}

	hasParent := make([]bool, len(r.doc.Nodes))
	for _, node := range r.doc.Nodes {
		for _, child := range node.Children {
			if child >= 0 && child < len(hasParent) {
				hasParent[child] = true
			}
		}
	}

	var roots []int
	for index := range r.doc.Nodes {
		if !hasParent[index] {
			roots = append(roots, index)
		}
	}
	return roots
}

func (r *gltfSceneReader) addNode(nodeIndex int, parent nodeTransform, depth int) error {
	if nodeIndex < 0 || nodeIndex >= len(r.doc.Nodes) {
		return fmt.Errorf("node index %d out of bounds", nodeIndex)
	}
	if depth > len(r.doc.Nodes) {
		return fmt.Errorf("cycle detected in node hierarchy at node %d", nodeIndex)
	}

	node := r.doc.Nodes[nodeIndex]
	world := parent.mul(localTransform(node))

	if node.Mesh != nil {
		if err := r.addMesh(*node.Mesh, world); err != nil {
			return err
		}
	}

	for _, child := range node.Children {
		if err := r.addNode(child, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (r *gltfSceneReader) addMesh(meshIndex int, xform nodeTransform) error {
	if meshIndex < 0 || meshIndex >= len(r.doc.Meshes) {
		return fmt.Errorf("mesh index %d out of bounds", meshIndex)
	}

	mesh := r.doc.Meshes[meshIndex]
	for primIndex, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			r.logger.Warningf("mesh '%s': skipping primitive %d with unsupported mode %v", mesh.Name, primIndex, prim.Mode)
			continue
		}

		if err := r.addPrimitive(prim, xform); err != nil {
			return fmt.Errorf("mesh '%s' primitive %d: %w", mesh.Name, primIndex, err)
		}
	}
	return nil
}

func (r *gltfSceneReader) addPrimitive(prim *gltf.Primitive, xform nodeTransform) error {
	posIndex, ok := prim.Attributes["POSITION"]
	if !ok {
		r.logger.Warning("skipping primitive without a POSITION attribute")
		return nil
	}

	accessor, err := r.accessor(posIndex)
	if err != nil {
		return err
	}
	positions, err := modeler.ReadPosition(r.doc, accessor, nil)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	vertices := make([]types.Vec3, len(positions))
	for i, p := range positions {
		vertices[i] = xform.point(types.Vec3(p))
	}

	var normals []types.Vec3
	if normIndex, ok := prim.Attributes["NORMAL"]; ok {
		accessor, err = r.accessor(normIndex)
		if err != nil {
			return err
		}
		vertexNormals, err := modeler.ReadNormal(r.doc, accessor, nil)
		if err != nil {
			return fmt.Errorf("normals: %w", err)
		}

		normals = make([]types.Vec3, len(vertexNormals))
		for i, n := range vertexNormals {
			normals[i] = xform.normal(types.Vec3(n))
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		accessor, err = r.accessor(*prim.Indices)
		if err != nil {
			return err
		}
		indices, err = modeler.ReadIndices(r.doc, accessor, nil)
		if err != nil {
			return fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	if len(indices)%3 != 0 {
		r.logger.Warningf("ignoring %d trailing indices of triangle list", len(indices)%3)
	}

	matIndex := r.materialIndex(prim)
	for i := 0; i+2 < len(indices); i += 3 {
		vIdx := []int{int(indices[i]), int(indices[i+1]), int(indices[i+2])}

		var nIdx []int
		if normals != nil {
			nIdx = vIdx
		}
		r.builder.AddFace(vertices, normals, vIdx, nIdx, matIndex)
	}
	return nil
}

func (r *gltfSceneReader) accessor(index int) (*gltf.Accessor, error) {
	if index < 0 || index >= len(r.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of bounds", index)
	}
	return r.doc.Accessors[index], nil
}

// Get the builder index for the primitive material, converting it on first use.
func (r *gltfSceneReader) materialIndex(prim *gltf.Primitive) uint32 {
	if prim.Material == nil || *prim.Material < 0 || *prim.Material >= len(r.doc.Materials) {
		return r.builder.DefaultMaterialIndex()
	}

	if index, exists := r.matIndices[*prim.Material]; exists {
		return index
	}

	// glTF material names are not unique; the builder keys materials by name
	mat := convertMaterial(r.doc.Materials[*prim.Material], *prim.Material)
	if _, exists := r.builder.MaterialIndex(mat.Name); exists {
		mat.Name = fmt.Sprintf("%s#%d", mat.Name, *prim.Material)
	}

	index := r.builder.AddMaterial(mat)
	r.matIndices[*prim.Material] = index
	return index
}

// Approximate a PBR metallic-roughness material. The base color factor is
// used as the albedo so reflectivity is set to 1. Roughness is mapped to the
// shininess value whose bounce spread matches it.
func convertMaterial(gm *gltf.Material, index int) scene.Material {
	mat := scene.DefaultMaterial()
	mat.Name = gm.Name
	if mat.Name == "" {
		mat.Name = fmt.Sprintf("gltf-material-%d", index)
	}
	mat.Reflectivity = 1
	mat.EmissionColor = types.Vec3{
		float32(gm.EmissiveFactor[0]),
		float32(gm.EmissiveFactor[1]),
		float32(gm.EmissiveFactor[2]),
	}

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		mat.BaseColor = types.Vec3{float32(cf[0]), float32(cf[1]), float32(cf[2])}
		mat.Transparency = 1 - float32(cf[3])
		mat.SpecularColor = types.Splat(float32(pbr.MetallicFactorOrDefault()))
		mat.Shininess = roughnessToShininess(float32(pbr.RoughnessFactorOrDefault()))
	}

	return mat
}

// Invert the 1/(shininess+1) roughness term used by the integrator.
func roughnessToShininess(roughness float32) float32 {
	if roughness <= 1/(maxGLTFShininess+1) {
		return maxGLTFShininess
	}
	if roughness >= 1 {
		return 0
	}
	return 1/roughness - 1
}

// An affine transformation stored as the images of the basis vectors and
// the translation.
type nodeTransform struct {
	axes   [3]types.Vec3
	origin types.Vec3
}

func identityTransform() nodeTransform {
	return nodeTransform{
		axes: [3]types.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	}
}

// Get the local transformation of a node. An explicit matrix takes precedence
// over the translation, rotation and scale properties.
func localTransform(node *gltf.Node) nodeTransform {
	if m := node.Matrix; m != identityMatrix && m != ([16]float64{}) {
		return nodeTransform{
			axes: [3]types.Vec3{
				{float32(m[0]), float32(m[1]), float32(m[2])},
				{float32(m[4]), float32(m[5]), float32(m[6])},
				{float32(m[8]), float32(m[9]), float32(m[10])},
			},
			origin: types.Vec3{float32(m[12]), float32(m[13]), float32(m[14])},
		}
	}

	t := node.TranslationOrDefault()
	q := node.RotationOrDefault()
	s := node.ScaleOrDefault()

	rot := types.QuatXYZW(float32(q[0]), float32(q[1]), float32(q[2]), float32(q[3])).Normalize()
	return nodeTransform{
		axes: [3]types.Vec3{
			rot.Rotate(types.Vec3{float32(s[0]), 0, 0}),
			rot.Rotate(types.Vec3{0, float32(s[1]), 0}),
			rot.Rotate(types.Vec3{0, 0, float32(s[2])}),
		},
		origin: types.Vec3{float32(t[0]), float32(t[1]), float32(t[2])},
	}
}

// Apply t after local.
func (t nodeTransform) mul(local nodeTransform) nodeTransform {
	return nodeTransform{
		axes: [3]types.Vec3{
			t.vector(local.axes[0]),
			t.vector(local.axes[1]),
			t.vector(local.axes[2]),
		},
		origin: t.point(local.origin),
	}
}

func (t nodeTransform) vector(v types.Vec3) types.Vec3 {
	return t.axes[0].Mul(v[0]).Add(t.axes[1].Mul(v[1])).Add(t.axes[2].Mul(v[2]))
}

func (t nodeTransform) point(p types.Vec3) types.Vec3 {
	return t.vector(p).Add(t.origin)
}

// Transform a normal with the cofactor matrix, the inverse transpose scaled by
// the determinant. The sign of the determinant is restored so that mirroring
// transforms keep normals pointing outwards.
func (t nodeTransform) normal(n types.Vec3) types.Vec3 {
	a := t.axes
	c0, c1, c2 := a[1].Cross(a[2]), a[2].Cross(a[0]), a[0].Cross(a[1])
	out := c0.Mul(n[0]).Add(c1.Mul(n[1])).Add(c2.Mul(n[2]))
	if a[0].Dot(c0) < 0 {
		out = out.Neg()
	}
	return out.Normalize()
}
