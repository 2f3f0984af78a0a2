package cmd

import (
	"github.com/26wolff/CS-Raytracer/scene"
	"github.com/urfave/cli"
)

// List the built-in materials that can be referenced by usemtl statements.
func ListMaterials(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	logger.Noticef("built-in material library:\n%s", scene.MaterialLibraryTable())
	return nil
}
