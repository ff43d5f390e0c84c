package texture

import (
	"bytes"
	"fmt"
	"image"

	"github.com/gobuffalo/packr"

	"github.com/devblok/depot/resource"
)

// Built-in texture names, usable with resource.NewEmbedded after
// RegisterBuiltIns has run.
const (
	BuiltInWhite   = "textures/white"
	BuiltInChecker = "textures/checker"
)

var builtInBox = packr.NewBox("./builtin")

var builtInFiles = map[string]string{
	BuiltInWhite:   "white.png",
	BuiltInChecker: "checker.png",
}

// RegisterBuiltIns decodes the textures shipped inside the binary and
// registers them as built-in resources. The checker texture is the
// usual stand-in for textures that failed to load.
func RegisterBuiltIns(m *resource.Manager) error {
	for name, file := range builtInFiles {
		data, err := builtInBox.MustBytes(file)
		if err != nil {
			return fmt.Errorf("built-in texture %s: %w", name, err)
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("built-in texture %s: %w", name, err)
		}
		tex, err := FromImage(img, 0)
		if err != nil {
			return fmt.Errorf("built-in texture %s: %w", name, err)
		}
		m.RegisterBuiltIn(name, tex)
	}
	return nil
}
