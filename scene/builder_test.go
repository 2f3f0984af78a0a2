package scene

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/26wolff/CS-Raytracer/types"
)

var quadVertices = []types.Vec3{
	{0, 0, 0},
	{1, 0, 0},
	{1, 1, 0},
	{0, 1, 0},
}

func TestBuilderFanTriangulation(t *testing.T) {
	b := NewBuilder()
	matIndex := b.DefaultMaterialIndex()

	added := b.AddFace(quadVertices, nil, []int{0, 1, 2, 3}, nil, matIndex)
	if added != 2 {
		t.Fatalf("expected quad to be split into 2 triangles; got %d", added)
	}

	sc, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	expTris := [][3]types.Vec3{
		{quadVertices[0], quadVertices[1], quadVertices[2]},
		{quadVertices[0], quadVertices[2], quadVertices[3]},
	}
	for index, exp := range expTris {
		tri := sc.Triangles[index]
		if tri.V0 != exp[0] || tri.V1 != exp[1] || tri.V2 != exp[2] {
			t.Fatalf("[tri %d] expected vertices %v; got %v %v %v", index, exp, tri.V0, tri.V1, tri.V2)
		}
		if !types.ApproxEqual(tri.Normal, types.Vec3{0, 0, 1}, 1e-6) {
			t.Fatalf("[tri %d] expected geometric normal (0, 0, 1); got %v", index, tri.Normal)
		}
		if tri.MaterialIndex != matIndex {
			t.Fatalf("[tri %d] expected material index %d; got %d", index, matIndex, tri.MaterialIndex)
		}
	}
}

func TestBuilderSkipsInvalidFaces(t *testing.T) {
	nan := float32(math.NaN())
	vertices := append([]types.Vec3{}, quadVertices...)
	vertices = append(vertices, types.Vec3{nan, 0, 0})

	type spec struct {
		vIdx     []int
		matIndex uint32
		expAdded int
	}
	specs := []spec{
		{[]int{0, 1, 2}, 0, 1},
		{[]int{0, 1, 9}, 0, 0},
		{[]int{-1, 1, 2}, 0, 0},
		{[]int{0, 1, 4}, 0, 0},
		{[]int{0, 1, 2}, 7, 0},
		{[]int{0, 1}, 0, 0},
		// one of the fan triangles is invalid
		{[]int{0, 1, 2, 12}, 0, 1},
	}

	b := NewBuilder()
	b.DefaultMaterialIndex()
	for index, s := range specs {
		if added := b.AddFace(vertices, nil, s.vIdx, nil, s.matIndex); added != s.expAdded {
			t.Fatalf("[spec %d] expected %d triangles to be added; got %d", index, s.expAdded, added)
		}
	}

	if b.Skipped() != 6 {
		t.Fatalf("expected 6 skipped faces; got %d", b.Skipped())
	}

	sc, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Triangles) != 2 {
		t.Fatalf("expected 2 triangles in built scene; got %d", len(sc.Triangles))
	}
}

func TestBuilderDropsZeroAreaTriangles(t *testing.T) {
	b := NewBuilder()
	matIndex := b.DefaultMaterialIndex()
	collinear := []types.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}
	if b.AddFace(collinear, nil, []int{0, 1, 2}, nil, matIndex) != 0 {
		t.Fatal("expected zero-area triangle to be dropped")
	}
	if b.Skipped() != 0 {
		t.Fatalf("expected zero-area triangles not to count as invalid; got %d", b.Skipped())
	}
}

func TestFaceNormal(t *testing.T) {
	v0, v1, v2 := quadVertices[0], quadVertices[1], quadVertices[2]

	type spec struct {
		normals *[3]types.Vec3
		exp     types.Vec3
	}
	specs := []spec{
		{nil, types.Vec3{0, 0, 1}},
		{&[3]types.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, types.Vec3{1, 1, 1}.Normalize()},
		{&[3]types.Vec3{{0, 2, 0}, {0, 2, 0}, {0, 2, 0}}, types.Vec3{0, 1, 0}},
		// vertex normals cancel out
		{&[3]types.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 0, 0}}, types.Vec3{0, 0, 0}},
	}

	for index, s := range specs {
		out := FaceNormal(v0, v1, v2, s.normals)
		if !types.ApproxEqual(out, s.exp, 1e-6) {
			t.Fatalf("[spec %d] expected normal %v; got %v", index, s.exp, out)
		}
	}
}

func TestBuilderVertexNormals(t *testing.T) {
	normals := []types.Vec3{{0, 0, -1}}
	b := NewBuilder()
	matIndex := b.DefaultMaterialIndex()
	b.AddFace(quadVertices, normals, []int{0, 1, 2}, []int{0, 0, 0}, matIndex)
	// out of range normal indices fall back to the geometric normal
	b.AddFace(quadVertices, normals, []int{0, 2, 3}, []int{0, 5, 0}, matIndex)

	sc, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if exp := (types.Vec3{0, 0, -1}); !types.ApproxEqual(sc.Triangles[0].Normal, exp, 1e-6) {
		t.Fatalf("expected triangle 0 normal to be %v; got %v", exp, sc.Triangles[0].Normal)
	}
	if exp := (types.Vec3{0, 0, 1}); !types.ApproxEqual(sc.Triangles[1].Normal, exp, 1e-6) {
		t.Fatalf("expected triangle 1 normal to be %v; got %v", exp, sc.Triangles[1].Normal)
	}
}

func TestBuilderMaterialResolution(t *testing.T) {
	b := NewBuilder()
	custom := DefaultMaterial()
	custom.Name = "Red"
	custom.Reflectivity = 0.9

	type spec struct {
		name     string
		expIndex uint32
		expName  string
	}

	redIndex := b.AddMaterial(custom)
	specs := []spec{
		// materials added to the builder shadow the library
		{"Red", redIndex, "Red"},
		{"Mirror", 1, "Mirror"},
		{"Mirror", 1, "Mirror"},
		{"no-such-material", 2, FallbackMaterialName},
		{"another-missing-material", 2, FallbackMaterialName},
	}

	for index, s := range specs {
		matIndex := b.ResolveMaterial(s.name)
		if matIndex != s.expIndex {
			t.Fatalf("[spec %d] expected material %q to resolve to index %d; got %d", index, s.name, s.expIndex, matIndex)
		}
		if got := b.materials[matIndex].Name; got != s.expName {
			t.Fatalf("[spec %d] expected material name %q; got %q", index, s.expName, got)
		}
	}

	if b.materials[redIndex].Reflectivity != 0.9 {
		t.Fatal("expected the scene-defined material to be used instead of the library preset")
	}
}

func TestBuilderClampsNegativeShininess(t *testing.T) {
	b := NewBuilder()
	mat := DefaultMaterial()
	mat.Shininess = -4
	index := b.AddMaterial(mat)
	if b.materials[index].Shininess != 0 {
		t.Fatalf("expected shininess to be clamped to 0; got %f", b.materials[index].Shininess)
	}
}

func TestSceneValidate(t *testing.T) {
	sc := &Scene{
		Triangles: []Triangle{{MaterialIndex: 0}},
	}
	if err := sc.Validate(); !errors.Is(err, ErrNoMaterials) {
		t.Fatalf("expected ErrNoMaterials; got %v", err)
	}

	sc.Materials = []Material{DefaultMaterial()}
	sc.Triangles = append(sc.Triangles, Triangle{MaterialIndex: 3})
	err := sc.Validate()
	if !errors.Is(err, ErrInvalidMaterialIndex) || !strings.Contains(err.Error(), "triangle 1") {
		t.Fatalf("expected ErrInvalidMaterialIndex for triangle 1; got %v", err)
	}
}

func TestEnsureCamera(t *testing.T) {
	sc := &Scene{}
	sc.EnsureCamera(2)
	if sc.Camera == nil || sc.Camera.FOV[1] != sc.Camera.FOV[0]/2 {
		t.Fatalf("expected a default camera with aspect-derived fov; got %v", sc.Camera)
	}

	b := NewBuilder()
	b.Camera().Position = types.Vec3{1, 1, 1}
	sc, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	sc.EnsureCamera(4)
	if sc.Camera.Position != (types.Vec3{1, 1, 1}) {
		t.Fatalf("expected scene camera to be retained; got %v", sc.Camera.Position)
	}
	if sc.Camera.FOV[1] != sc.Camera.FOV[0]/4 {
		t.Fatalf("expected unset vertical fov to be derived from the aspect ratio; got %v", sc.Camera.FOV)
	}
}

func TestMaterialLibrary(t *testing.T) {
	mat, ok := LookupMaterial("WhiteLight")
	if !ok || mat.EmissionColor != types.Splat(15) || mat.Reflectivity != 0 {
		t.Fatalf("unexpected WhiteLight preset %+v", mat)
	}

	mat, ok = LookupMaterial("unobtainium")
	if ok || mat.Name != FallbackMaterialName {
		t.Fatalf("expected unknown material to fall back to %q; got %q (ok=%t)", FallbackMaterialName, mat.Name, ok)
	}

	if names := MaterialNames(); len(names) != 9 || names[0] != "Black" {
		t.Fatalf("unexpected material names %v", names)
	}

	if tbl := MaterialLibraryTable(); !strings.Contains(tbl, "WhiteLight") {
		t.Fatalf("expected material table to list WhiteLight; got\n%s", tbl)
	}
}

func TestMaterialTerms(t *testing.T) {
	mat := Material{BaseColor: types.Vec3{1, 0.5, 0.25}, Reflectivity: 0.5, Shininess: 3}
	if out := mat.Reflectance(); out != (types.Vec3{0.5, 0.25, 0.125}) {
		t.Fatalf("unexpected reflectance %v", out)
	}
	if out := mat.Roughness(); out != 0.25 {
		t.Fatalf("expected roughness 0.25; got %f", out)
	}
}
