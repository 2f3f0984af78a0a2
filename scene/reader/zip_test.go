package reader

import (
	"archive/zip"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/26wolff/CS-Raytracer/scene"
	"github.com/26wolff/CS-Raytracer/scene/writer"
	"github.com/26wolff/CS-Raytracer/types"
)

func TestCompiledSceneRoundTrip(t *testing.T) {
	b := scene.NewBuilder()
	lamp := scene.DefaultMaterial()
	lamp.Name = "lamp"
	lamp.EmissionColor = types.Splat(3)
	matIndex := b.AddMaterial(lamp)
	b.AddTriangle(types.Vec3{0, 0, 0}, types.Vec3{1, 0, 0}, types.Vec3{0, 1, 0}, nil, matIndex)
	b.SetCamera(scene.NewCamera(16.0 / 9.0))

	sc, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(t.TempDir(), "scene.zip")
	if err = writer.WriteScene(sc, target); err != nil {
		t.Fatal(err)
	}

	loaded, err := ReadScene(target)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(loaded, sc) {
		t.Fatalf("expected loaded scene to match the compiled one;\nexp: %+v\ngot: %+v", sc, loaded)
	}
}

func TestCompiledSceneWithoutData(t *testing.T) {
	target := filepath.Join(t.TempDir(), "empty.zip")
	f, err := os.Create(target)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("readme.txt")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("not a scene"))
	zw.Close()
	f.Close()

	_, err = ReadScene(target)
	if err == nil || !strings.Contains(err.Error(), "does not contain scene.bin") {
		t.Fatalf("expected missing data file error; got %v", err)
	}
}
