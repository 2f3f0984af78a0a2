package reader

import (
	"bufio"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/26wolff/CS-Raytracer/asset"
	"github.com/26wolff/CS-Raytracer/log"
	"github.com/26wolff/CS-Raytracer/scene"
)

// An entry in a scene list file.
type listEntry struct {
	path string
	line int
}

// The list reader merges the wavefront objects referenced by a plain text
// scene list. Each line holds the path of an .obj file relative to the list.
// Blank lines, lines starting with '#' and entries without an .obj extension
// are skipped. Face indices are local to each listed object.
type listSceneReader struct {
	logger    log.Logger
	objReader *wavefrontSceneReader
}

// Create a new scene list reader.
func newListReader() *listSceneReader {
	return &listSceneReader{
		logger:    log.New("list reader"),
		objReader: newWavefrontReader(),
	}
}

// Read and merge all objects referenced by the list.
func (r *listSceneReader) Read(listRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene list from "%s"`, listRes.Path())
	start := time.Now()

	entries, err := r.parseList(listRes)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("[%s] error: scene list does not reference any .obj files", listRes.Path())
	}

	for _, entry := range entries {
		objRes, err := asset.NewResource(entry.path, listRes)
		if err != nil {
			return nil, fmt.Errorf("[%s: %d] error: %s", listRes.Path(), entry.line, err.Error())
		}

		r.objReader.resetGeometry()
		r.objReader.pushFrame(fmt.Sprintf("referenced from %s:%d", listRes.Path(), entry.line))
		err = r.objReader.parse(objRes)
		objRes.Close()
		if err != nil {
			return nil, err
		}
		r.objReader.popFrame()
	}

	sc, err := r.objReader.builder.Build()
	if err != nil {
		return nil, fmt.Errorf("[%s] error: %w", listRes.Path(), err)
	}

	r.logger.Noticef("merged %d objects in %d ms", len(entries), time.Since(start).Nanoseconds()/1000000)
	return sc, nil
}

// Collect the .obj entries of a scene list.
func (r *listSceneReader) parseList(listRes *asset.Resource) ([]listEntry, error) {
	var entries []listEntry
	var lineNum int = 0

	scanner := bufio.NewScanner(listRes)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.ToLower(path.Ext(line)) != ".obj" {
			r.logger.Warningf("%s:%d: skipping non-obj entry '%s'", listRes.Path(), lineNum, line)
			continue
		}

		entries = append(entries, listEntry{path: line, line: lineNum})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("[%s: %d] error: %s", listRes.Path(), lineNum, err.Error())
	}

	return entries, nil
}
