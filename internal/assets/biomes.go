package assets

import (
	"blockcolors/internal/assets/jsonwalk"
	"blockcolors/internal/colorspace"
	"blockcolors/internal/corpus"
	"context"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const (
	defaultGrassColor   = 0x91BD59
	defaultFoliageColor = 0x77AB2F
)

var grassModifiers = map[string]int64{
	"dark_forest": 0x507A32,
	"swamp":       0x6A7039,
}

// parseBiomes reads worldgen/biome/**.json under the data folder. Biome
// colors are stored linear, like the texture buffers they tint. A biome file
// that cannot be parsed is skipped.
func parseBiomes(ctx context.Context, ns *Namespace, log logrus.FieldLogger) error {
	dir := filepath.Join(ns.DataFolder, "worldgen", "biome")
	if !isDir(dir) {
		return nil
	}
	ns.BiomesAvailable = true

	return walkFiles(ctx, dir, isJSON, func(path string) error {
		name, err := relativeKey(dir, path)
		if err != nil {
			return err
		}
		doc, err := readJSON(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("skipping unreadable biome")
			return nil
		}
		ns.Biomes[name] = biomeColor(doc, log.WithField("biome", name))
		return nil
	})
}

func biomeColor(doc any, log logrus.FieldLogger) corpus.BiomeColor {
	grass := int64(defaultGrassColor)
	foliage := int64(defaultFoliageColor)

	if value, ok := packedColor(doc, "grass_color"); ok {
		grass = value
	} else if modifier, ok := jsonwalk.First(doc, "grass_color_modifier"); ok {
		name, _ := modifier.(string)
		if override, known := grassModifiers[name]; known {
			grass = override
		} else if name != "none" {
			log.WithField("modifier", modifier).Warn("unknown grass color modifier")
		}
	}
	if value, ok := packedColor(doc, "foliage_color"); ok {
		foliage = value
	}

	return corpus.BiomeColor{
		Grass:   colorspace.SRGBToLinear(colorspace.FromPacked(grass)),
		Foliage: colorspace.SRGBToLinear(colorspace.FromPacked(foliage)),
	}
}

func packedColor(doc any, key string) (int64, bool) {
	value, ok := jsonwalk.First(doc, key)
	if !ok {
		return 0, false
	}
	number, ok := value.(float64)
	if !ok {
		return 0, false
	}
	return int64(number), true
}
