package reader

import (
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/26wolff/CS-Raytracer/scene"
	"github.com/26wolff/CS-Raytracer/types"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Write a glb file with a single triangle mesh instanced by a translated
// parent/scaled child pair and by a rotated node. A line mesh is attached to
// a third node.
func writeTestGLB(t *testing.T) string {
	t.Helper()

	doc := gltf.NewDocument()
	positions := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	normals := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	indices := modeler.WriteIndices(doc, []uint16{0, 1, 2})

	roughness, metallic := 0.5, 0.0
	doc.Materials = []*gltf.Material{{
		Name:           "lamp",
		EmissiveFactor: [3]float64{2, 2, 2},
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{1, 0, 0, 1},
			RoughnessFactor: &roughness,
			MetallicFactor:  &metallic,
		},
	}}
	doc.Meshes = []*gltf.Mesh{
		{
			Name: "tri",
			Primitives: []*gltf.Primitive{{
				Indices:    gltf.Index(indices),
				Material:   gltf.Index(0),
				Attributes: map[string]int{"POSITION": positions, "NORMAL": normals},
			}},
		},
		{
			Name: "wire",
			Primitives: []*gltf.Primitive{{
				Mode:       gltf.PrimitiveLines,
				Attributes: map[string]int{"POSITION": positions},
			}},
		},
	}

	halfAngle := math.Pi / 4
	doc.Nodes = []*gltf.Node{
		{Name: "parent", Translation: [3]float64{0, 0, 5}, Children: []int{1}},
		{Name: "child", Mesh: gltf.Index(0), Scale: [3]float64{2, 2, 2}},
		{Name: "rotated", Mesh: gltf.Index(0), Rotation: [4]float64{0, math.Sin(halfAngle), 0, math.Cos(halfAngle)}},
		{Name: "lines", Mesh: gltf.Index(1)},
	}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0, 2, 3}}}
	doc.Scene = gltf.Index(0)

	target := filepath.Join(t.TempDir(), "scene.glb")
	if err := gltf.SaveBinary(doc, target); err != nil {
		t.Fatal(err)
	}
	return target
}

func checkTestGLBScene(t *testing.T, sc *scene.Scene) {
	t.Helper()

	if len(sc.Triangles) != 2 {
		t.Fatalf("expected 2 triangles; got %d", len(sc.Triangles))
	}

	type spec struct {
		expVertices [3]types.Vec3
		expNormal   types.Vec3
	}
	specs := []spec{
		{[3]types.Vec3{{0, 0, 5}, {2, 0, 5}, {0, 2, 5}}, types.Vec3{0, 0, 1}},
		{[3]types.Vec3{{0, 0, 0}, {0, 0, -1}, {0, 1, 0}}, types.Vec3{1, 0, 0}},
	}
	for idx, s := range specs {
		tri := sc.Triangles[idx]
		for vIdx, v := range [3]types.Vec3{tri.V0, tri.V1, tri.V2} {
			if !types.ApproxEqual(v, s.expVertices[vIdx], 1e-5) {
				t.Fatalf("[spec %d] expected vertex %d to be %v; got %v", idx, vIdx, s.expVertices[vIdx], v)
			}
		}
		if !types.ApproxEqual(tri.Normal, s.expNormal, 1e-5) {
			t.Fatalf("[spec %d] expected normal %v; got %v", idx, s.expNormal, tri.Normal)
		}
	}

	if len(sc.Materials) != 1 {
		t.Fatalf("expected 1 material; got %d", len(sc.Materials))
	}
	mat := sc.Materials[0]
	if mat.Name != "lamp" || mat.BaseColor != (types.Vec3{1, 0, 0}) || mat.EmissionColor != types.Splat(2) {
		t.Fatalf("unexpected material conversion: %+v", mat)
	}
	if mat.Shininess != 1 || mat.Reflectivity != 1 || mat.SpecularColor != types.Splat(0) {
		t.Fatalf("unexpected PBR parameter mapping: %+v", mat)
	}
}

func TestReadGLB(t *testing.T) {
	sc, err := ReadScene(writeTestGLB(t))
	if err != nil {
		t.Fatal(err)
	}
	checkTestGLBScene(t, sc)
}

func TestReadRemoteGLB(t *testing.T) {
	data, err := os.ReadFile(writeTestGLB(t))
	if err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer server.Close()

	sc, err := ReadScene(server.URL + "/models/scene.glb")
	if err != nil {
		t.Fatal(err)
	}
	checkTestGLBScene(t, sc)
}

func TestRoughnessToShininess(t *testing.T) {
	type spec struct {
		roughness    float32
		expShininess float32
	}
	specs := []spec{
		{1, 0},
		{2, 0},
		{0.5, 1},
		{0.2, 4},
		{0, maxGLTFShininess},
	}

	for idx, s := range specs {
		shininess := roughnessToShininess(s.roughness)
		if math.Abs(float64(shininess-s.expShininess)) > 1e-3 {
			t.Fatalf("[spec %d] expected shininess %f; got %f", idx, s.expShininess, shininess)
		}

		mat := scene.Material{Shininess: shininess}
		if s.roughness > 0 && s.roughness <= 1 && math.Abs(float64(mat.Roughness()-s.roughness)) > 1e-4 {
			t.Fatalf("[spec %d] expected round trip roughness %f; got %f", idx, s.roughness, mat.Roughness())
		}
	}
}

func TestNodeMatrixTransform(t *testing.T) {
	// Column-major matrix mirroring the x axis and translating by (1, 2, 3)
	node := &gltf.Node{Matrix: [16]float64{-1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 1, 2, 3, 1}}
	xform := identityTransform().mul(localTransform(node))

	if p := xform.point(types.Vec3{1, 1, 1}); !types.ApproxEqual(p, types.Vec3{0, 3, 4}, 1e-6) {
		t.Fatalf("expected transformed point (0, 3, 4); got %v", p)
	}
	if n := xform.normal(types.Vec3{1, 0, 0}); !types.ApproxEqual(n, types.Vec3{-1, 0, 0}, 1e-6) {
		t.Fatalf("expected mirrored normal (-1, 0, 0); got %v", n)
	}
	if n := xform.normal(types.Vec3{0, 3, 0}); !types.ApproxEqual(n, types.Vec3{0, 1, 0}, 1e-6) {
		t.Fatalf("expected normalized normal (0, 1, 0); got %v", n)
	}
}

func TestReadGLBWithDuplicateMaterialNames(t *testing.T) {
	doc := gltf.NewDocument()
	positions := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})

	doc.Materials = []*gltf.Material{
		{Name: "Material", PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float64{1, 0, 0, 1}}},
		{Name: "Material", PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float64{0, 0, 1, 1}}},
	}
	doc.Meshes = []*gltf.Mesh{{
		Name: "pair",
		Primitives: []*gltf.Primitive{
			{Material: gltf.Index(0), Attributes: map[string]int{"POSITION": positions}},
			{Material: gltf.Index(1), Attributes: map[string]int{"POSITION": positions}},
			{Material: gltf.Index(0), Attributes: map[string]int{"POSITION": positions}},
		},
	}}
	doc.Nodes = []*gltf.Node{{Name: "pair", Mesh: gltf.Index(0)}}

	target := filepath.Join(t.TempDir(), "materials.glb")
	if err := gltf.SaveBinary(doc, target); err != nil {
		t.Fatal(err)
	}

	sc, err := ReadScene(target)
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.Materials) != 2 {
		t.Fatalf("expected 2 materials; got %d", len(sc.Materials))
	}
	if len(sc.Triangles) != 3 {
		t.Fatalf("expected 3 triangles; got %d", len(sc.Triangles))
	}

	expColors := []types.Vec3{{1, 0, 0}, {0, 0, 1}, {1, 0, 0}}
	for idx, expColor := range expColors {
		mat := sc.Materials[sc.Triangles[idx].MaterialIndex]
		if mat.BaseColor != expColor {
			t.Fatalf("[spec %d] expected base color %v; got %v (material %q)", idx, expColor, mat.BaseColor, mat.Name)
		}
	}
	if sc.Triangles[0].MaterialIndex != sc.Triangles[2].MaterialIndex {
		t.Fatal("expected primitives sharing a glTF material to share the scene material")
	}
	if sc.Materials[0].Name == sc.Materials[1].Name {
		t.Fatalf("expected distinct material names; got %q twice", sc.Materials[0].Name)
	}
}
