package cmd

import (
	"errors"
	"path"
	"path/filepath"
	"strings"

	"github.com/26wolff/CS-Raytracer/scene/reader"
	"github.com/26wolff/CS-Raytracer/scene/writer"
	"github.com/urfave/cli"
)

// Compile scene to binary format.
func CompileScene(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() == 0 {
		return errors.New("missing scene file argument")
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)
		ext := strings.ToLower(filepath.Ext(sceneFile))
		if ext == ".zip" || !isSupportedFormat(ext) {
			logger.Warningf("skipping unsupported file %s", sceneFile)
			continue
		}

		logger.Noticef("parsing and compiling scene: %s", sceneFile)
		sc, err := reader.ReadScene(sceneFile)
		if err != nil {
			return err
		}

		// Display compiled scene info
		logger.Noticef("scene information:\n%s", sc.Stats())

		// Remote scenes are compiled into the current directory
		zipFile := sceneFile
		if strings.Contains(sceneFile, "://") {
			zipFile = path.Base(sceneFile)
		}
		zipFile = strings.TrimSuffix(zipFile, filepath.Ext(zipFile)) + ".zip"
		err = writer.WriteScene(sc, zipFile)
		if err != nil {
			return err
		}
	}

	return nil
}

// Display scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	logger.Noticef("scene information:\n%s", sc.Stats())
	return nil
}

func isSupportedFormat(ext string) bool {
	for _, supported := range reader.SupportedFormats {
		if ext == supported {
			return true
		}
	}
	return false
}
