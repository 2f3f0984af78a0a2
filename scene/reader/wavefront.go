package reader

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/26wolff/CS-Raytracer/asset"
	"github.com/26wolff/CS-Raytracer/log"
	"github.com/26wolff/CS-Raytracer/scene"
	"github.com/26wolff/CS-Raytracer/types"
)

var errIndexOutOfBounds = errors.New("index out of bounds")

type wavefrontSceneReader struct {
	logger log.Logger

	builder *scene.Builder

	// Currently selected material index. A negative value selects the
	// default material.
	curMaterial int64

	// Name of the object that is currently being parsed.
	objectName string

	// List of vertices and normals. Texture coordinates are validated
	// but not stored.
	vertexList []types.Vec3
	normalList []types.Vec3

	// Resolved paths of the material libraries parsed so far.
	loadedLibs map[string]struct{}

	// An error stack that provides additional error information when
	// scene files include other files (models, mat libs e.t.c)
	errStack []string
}

// Create a new wavefront scene reader.
func newWavefrontReader() *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger:      log.New("wavefront reader"),
		builder:     scene.NewBuilder(),
		curMaterial: -1,
		vertexList:  make([]types.Vec3, 0),
		normalList:  make([]types.Vec3, 0),
		loadedLibs:  make(map[string]struct{}),
		errStack:    make([]string, 0),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	err := r.parse(sceneRes)
	if err != nil {
		return nil, err
	}

	sc, err := r.builder.Build()
	if err != nil {
		return nil, fmt.Errorf("[%s] error: %w", sceneRes.Path(), err)
	}

	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1000000)
	return sc, nil
}

// Clear the vertex and normal lists and the material selection. Face indices
// in files parsed after a reset refer to their own coordinates only.
func (r *wavefrontSceneReader) resetGeometry() {
	r.vertexList = r.vertexList[:0]
	r.normalList = r.normalList[:0]
	r.curMaterial = -1
	r.objectName = ""
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = strings.Trim(
			fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	} else {
		errMsg = strings.Trim(
			fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	}

	return errors.New(errMsg)
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Get the material for the next face, selecting the default material if no
// usemtl statement has been encountered.
func (r *wavefrontSceneReader) faceMaterial() uint32 {
	if r.curMaterial < 0 {
		r.curMaterial = int64(r.builder.DefaultMaterialIndex())
	}
	return uint32(r.curMaterial)
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call", "mtllib":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for '%s'; expected 1 argument; got %d", lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}

			switch lineTokens[0] {
			case "call":
				err = r.parse(incRes)
			case "mtllib":
				if _, loaded := r.loadedLibs[incRes.Path()]; loaded {
					break
				}
				r.loadedLibs[incRes.Path()] = struct{}{}
				err = r.parseMaterials(incRes)
			}

			incRes.Close()
			if err != nil {
				return err
			}
			r.popFrame()
		case "usemtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for 'usemtl'; expected 1 argument; got %d", len(lineTokens)-1)
			}

			r.curMaterial = int64(r.builder.ResolveMaterial(lineTokens[1]))
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.normalList = append(r.normalList, v)
		case "vt":
			if _, err := parseVec2(lineTokens); err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for '%s'; expected 1 argument for object name; got %d", lineTokens[0], len(lineTokens)-1)
			}
			r.objectName = lineTokens[1]
		case "f":
			if err = r.parseFace(lineTokens); err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		case "camera_pos":
			cam := r.builder.Camera()
			cam.Position, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		case "camera_rot":
			angles, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.builder.Camera().Rotation = types.Vec3{
				types.Radians(angles[0]),
				types.Radians(angles[1]),
				types.Radians(angles[2]),
			}
		case "camera_fov":
			fov, err := parseFov(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.builder.Camera().FOV = fov
		default:
			r.logger.Debugf("%s:%d: ignoring unsupported statement '%s'", res.Path(), lineNum, lineTokens[0])
		}
	}

	if err = scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}

	return nil
}

// Parse face definition. Each vertex argument is comprised of 1, 2 or 3
// indices separated by a slash character. The following formats are
// supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate an offset off the end
// of the vertex/normal list. Faces with more than 3 vertices are split into a
// triangle fan. Faces that reference undefined coordinates are skipped.
func (r *wavefrontSceneReader) parseFace(lineTokens []string) error {
	if len(lineTokens) < 4 {
		return fmt.Errorf("unsupported syntax for 'f'; expected at least 3 arguments; got %d", len(lineTokens)-1)
	}

	argCount := len(lineTokens) - 1
	vIdx := make([]int, argCount)
	var nIdx []int
	for arg := 0; arg < argCount; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")
		if len(vTokens) > 3 {
			return fmt.Errorf("face argument %d contains %d indices; expected at most 3", arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList))
		if err == errIndexOutOfBounds {
			r.builder.SkipFace("vertex index %s of object '%s' is out of bounds", vTokens[0], r.objectName)
			return nil
		} else if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vIdx[arg] = vOffset

		if len(vTokens) < 3 || vTokens[2] == "" {
			continue
		}

		vOffset, err = selectFaceCoordIndex(vTokens[2], len(r.normalList))
		if err == errIndexOutOfBounds {
			r.builder.SkipFace("normal index %s of object '%s' is out of bounds", vTokens[2], r.objectName)
			return nil
		} else if err != nil {
			return fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
		}

		if nIdx == nil {
			nIdx = make([]int, argCount)
			for i := range nIdx {
				nIdx[i] = -1
			}
		}
		nIdx[arg] = vOffset
	}

	r.builder.AddFace(r.vertexList, r.normalList, vIdx, nIdx, r.faceMaterial())
	return nil
}

// Parse a wavefront material library. Unspecified material parameters
// retain the values of the default material.
func (r *wavefrontSceneReader) parseMaterials(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	scanner := bufio.NewScanner(res)

	var curMaterial *scene.Material = nil
	defined := make(map[string]struct{})
	flush := func() {
		if curMaterial != nil {
			r.builder.AddMaterial(*curMaterial)
		}
	}

	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "newmtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for 'newmtl'; expected 1 argument; got %d", len(lineTokens)-1)
			}

			matName := lineTokens[1]
			if _, exists := defined[matName]; exists {
				return r.emitError(res.Path(), lineNum, "material '%s' already defined", matName)
			}
			defined[matName] = struct{}{}

			flush()
			mat := scene.DefaultMaterial()
			mat.Name = matName
			curMaterial = &mat
		default:
			if curMaterial == nil {
				return r.emitError(res.Path(), lineNum, "got '%s' without a 'newmtl'", lineTokens[0])
			}

			switch lineTokens[0] {
			case "Kd", "Ks", "Ka", "Ke":
				var target *types.Vec3
				switch lineTokens[0] {
				case "Kd":
					target = &curMaterial.BaseColor
				case "Ks":
					target = &curMaterial.SpecularColor
				case "Ka":
					target = &curMaterial.AmbientColor
				case "Ke":
					target = &curMaterial.EmissionColor
				}

				*target, err = parseVec3(lineTokens)
			case "Ns", "Ni", "Tr", "refl":
				var target *float32
				switch lineTokens[0] {
				case "Ns":
					target = &curMaterial.Shininess
				case "Ni":
					target = &curMaterial.RefractiveIndex
				case "Tr":
					target = &curMaterial.Transparency
				case "refl":
					target = &curMaterial.Reflectivity
				}

				*target, err = parseFloat32(lineTokens)
			case "d":
				var dissolve float32
				dissolve, err = parseFloat32(lineTokens)
				curMaterial.Transparency = 1 - dissolve
			case "include":
				err = r.includeMaterial(curMaterial, lineTokens)
			}

			// Report any errors
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		}
	}

	if err = scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}

	flush()
	return nil
}

// Overwrite the parameters of mat with the ones of a previously defined or
// built-in material. The name of mat is retained.
func (r *wavefrontSceneReader) includeMaterial(mat *scene.Material, lineTokens []string) error {
	if len(lineTokens) != 2 {
		return fmt.Errorf("unsupported syntax for 'include'; expected 1 argument; got %d", len(lineTokens)-1)
	}

	var src scene.Material
	if index, exists := r.builder.MaterialIndex(lineTokens[1]); exists {
		src, _ = r.builder.Material(index)
	} else if preset, ok := scene.LookupMaterial(lineTokens[1]); ok {
		src = preset
	} else {
		return fmt.Errorf("undefined material '%s'", lineTokens[1])
	}

	src.Name = mat.Name
	*mat = src
	return nil
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = int(index - 1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, errIndexOutOfBounds
	}
	return vOffset, nil
}

// Parse a float scalar value.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf("unsupported syntax for '%s'; expected 1 argument; got %d", lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf("unsupported syntax for '%s'; expected 3 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf("unsupported syntax for '%s'; expected 2 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a camera fov statement with the horizontal and an optional vertical
// fov in degrees. An omitted vertical fov is derived from the frame aspect
// ratio at render time.
func parseFov(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 2 || len(lineTokens) > 3 {
		return types.Vec2{}, fmt.Errorf("unsupported syntax for '%s'; expected 1 or 2 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	fov := types.Vec2{}
	for tokIdx := 1; tokIdx < len(lineTokens); tokIdx++ {
		deg, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return fov, err
		}
		fov[tokIdx-1] = types.Radians(float32(deg))
	}
	return fov, nil
}
