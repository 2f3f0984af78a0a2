package scene

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/26wolff/CS-Raytracer/types"
	"github.com/olekukonko/tablewriter"
)

var (
	ErrNoMaterials          = errors.New("scene: triangles defined without any materials")
	ErrInvalidMaterialIndex = errors.New("scene: triangle references an undefined material")
)

// A triangle with a precomputed shading normal.
type Triangle struct {
	V0, V1, V2 types.Vec3
	Normal     types.Vec3

	// Index into the scene material list.
	MaterialIndex uint32
}

// The scene geometry, materials and camera. A scene is treated as immutable
// while a frame is being rendered.
type Scene struct {
	Triangles []Triangle
	Materials []Material
	Camera    *Camera
}

// Make sure that the scene defines a camera whose vertical fov matches the
// given frame aspect ratio. A vertical fov of 0 is treated as unset.
func (sc *Scene) EnsureCamera(aspect float32) {
	if sc.Camera == nil {
		sc.Camera = NewCamera(aspect)
		return
	}
	if sc.Camera.FOV[1] == 0 {
		sc.Camera.SetAspect(aspect)
	}
}

// Check that every triangle references a defined material.
func (sc *Scene) Validate() error {
	if len(sc.Triangles) != 0 && len(sc.Materials) == 0 {
		return ErrNoMaterials
	}

	matCount := uint32(len(sc.Materials))
	for index, tri := range sc.Triangles {
		if tri.MaterialIndex >= matCount {
			return fmt.Errorf("%w; triangle %d uses material %d; materials defined: %d", ErrInvalidMaterialIndex, index, tri.MaterialIndex, matCount)
		}
	}

	return nil
}

// Count the triangles whose material emits light.
func (sc *Scene) EmissiveTriangles() int {
	count := 0
	for _, tri := range sc.Triangles {
		if int(tri.MaterialIndex) < len(sc.Materials) && sc.Materials[tri.MaterialIndex].IsEmissive() {
			count++
		}
	}
	return count
}

// Get the axis aligned bounding box of the scene geometry.
func (sc *Scene) BBox() [2]types.Vec3 {
	if len(sc.Triangles) == 0 {
		return [2]types.Vec3{}
	}

	min, max := sc.Triangles[0].V0, sc.Triangles[0].V0
	for _, tri := range sc.Triangles {
		for _, v := range [3]types.Vec3{tri.V0, tri.V1, tri.V2} {
			min = types.MinVec3(min, v)
			max = types.MaxVec3(max, v)
		}
	}
	return [2]types.Vec3{min, max}
}

// Generate a table with scene statistics.
func (sc *Scene) Stats() string {
	bbox := sc.BBox()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count", "Size"})
	table.Append([]string{"Geometry", "Triangles", fmt.Sprint(len(sc.Triangles)), fmtSize(sc.Triangles)})
	table.Append([]string{"", "Emissive", fmt.Sprint(sc.EmissiveTriangles()), ""})
	table.Append([]string{"", "BBox min", fmtVec3(bbox[0]), ""})
	table.Append([]string{"", "BBox max", fmtVec3(bbox[1]), ""})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Materials", "---", fmt.Sprint(len(sc.Materials)), fmtSize(sc.Materials)})
	for _, mat := range sc.Materials {
		table.Append([]string{"", mat.Name, "", ""})
	}
	if sc.Camera != nil {
		table.Append([]string{" ", " ", " ", " "})
		table.Append([]string{"Camera", sc.Camera.String(), "", ""})
	}
	table.SetFooter([]string{"Total", " ", " ", strings.TrimLeft(fmtSize(sc.Triangles, sc.Materials), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}

func fmtVec3(v types.Vec3) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v[0], v[1], v[2])
}
