package scene

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/26wolff/CS-Raytracer/types"
	"github.com/olekukonko/tablewriter"
)

// The name of the material returned by LookupMaterial for unknown names.
const FallbackMaterialName = "Debug"

func preset(name string, base, spec, ambient, emission types.Vec3, shininess, reflectivity float32) Material {
	return Material{
		Name:            name,
		BaseColor:       base,
		SpecularColor:   spec,
		AmbientColor:    ambient,
		EmissionColor:   emission,
		Shininess:       shininess,
		Reflectivity:    reflectivity,
		RefractiveIndex: 1,
	}
}

var materialLibrary = map[string]Material{
	"Mirror": preset("Mirror", types.Splat(1), types.Splat(1), types.Splat(0), types.Splat(0), 1, 1),
	"Red":    preset("Red", types.Vec3{1, 0, 0}, types.Splat(0.8), types.Splat(0.1), types.Splat(0), 0.3, 0.2),
	"Blue":   preset("Blue", types.Vec3{0, 0, 1}, types.Splat(0.8), types.Splat(0.1), types.Splat(0), 0.3, 0.2),
	"Green":  preset("Green", types.Vec3{0, 1, 0}, types.Splat(0.8), types.Splat(0.1), types.Splat(0), 0.3, 0.2),
	"Black":  preset("Black", types.Splat(0), types.Splat(0.8), types.Splat(0.1), types.Splat(0), 0.3, 0.2),
	"DGrey":  preset("DGrey", types.Splat(0.4), types.Splat(0.8), types.Splat(0.4), types.Splat(0), 0.3, 0.2),
	"White":  preset("White", types.Splat(1), types.Splat(0.2), types.Splat(0.1), types.Splat(0.01), 0.05, 0.05),
	"Debug": preset("Debug", types.Vec3{0.75, 0, 1}, types.Vec3{0.71, 0, 1}, types.Splat(0.1),
		types.Vec3{0.71, 0, 1}, 0.3, 0.2),
	"WhiteLight": preset("WhiteLight", types.Splat(1), types.Splat(1), types.Splat(1), types.Splat(15), 1, 0),
}

// Look up a built-in material by name. If no material with this name exists,
// the Debug material is returned and ok is set to false.
func LookupMaterial(name string) (mat Material, ok bool) {
	mat, ok = materialLibrary[name]
	if !ok {
		mat = materialLibrary[FallbackMaterialName]
	}
	return mat, ok
}

// Get the sorted list of built-in material names.
func MaterialNames() []string {
	names := make([]string, 0, len(materialLibrary))
	for name := range materialLibrary {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render the built-in material library as a table.
func MaterialLibraryTable() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Name", "Base", "Emission", "Shininess", "Reflectivity"})
	for _, name := range MaterialNames() {
		mat := materialLibrary[name]
		table.Append([]string{
			name,
			fmtVec3(mat.BaseColor),
			fmtVec3(mat.EmissionColor),
			fmt.Sprintf("%.2f", mat.Shininess),
			fmt.Sprintf("%.2f", mat.Reflectivity),
		})
	}
	table.Render()
	return buf.String()
}
