package reader

import (
	"fmt"

	"github.com/26wolff/CS-Raytracer/asset"
	"github.com/26wolff/CS-Raytracer/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// The scene file extensions recognized by Read.
var SupportedFormats = []string{".obj", ".txt", ".gltf", ".glb", ".zip"}

// Read scene from a local file or a http/https URL.
func ReadScene(pathToScene string) (*scene.Scene, error) {
	res, err := asset.NewResource(pathToScene, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return Read(res)
}

// Read scene from a resource. The reader is selected based on the resource
// file extension.
func Read(res *asset.Resource) (*scene.Scene, error) {
	var reader Reader
	switch res.Ext() {
	case ".obj":
		reader = newWavefrontReader()
	case ".txt":
		reader = newListReader()
	case ".gltf", ".glb":
		reader = newGLTFReader()
	case ".zip":
		reader = newZipSceneReader()
	default:
		return nil, fmt.Errorf("readScene: unsupported file format '%s'", res.Ext())
	}
	return reader.Read(res)
}
