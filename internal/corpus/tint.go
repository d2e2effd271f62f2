package corpus

import "blockcolors/internal/colorspace"

// TintTargets lists the textures recolored by a biome, as qualified names.
type TintTargets struct {
	Grass   []string
	Foliage []string
}

var DefaultTintTargets = TintTargets{
	Grass: []string{
		"minecraft:block/grass_block_top",
		"minecraft:block/grass_block_side_overlay",
		"minecraft:block/short_grass",
		"minecraft:block/grass",
		"minecraft:block/tall_grass_top",
		"minecraft:block/tall_grass_bottom",
		"minecraft:block/fern",
		"minecraft:block/large_fern_top",
		"minecraft:block/large_fern_bottom",
	},
	Foliage: []string{
		"minecraft:block/oak_leaves",
		"minecraft:block/jungle_leaves",
		"minecraft:block/acacia_leaves",
		"minecraft:block/dark_oak_leaves",
		"minecraft:block/mangrove_leaves",
		"minecraft:block/vine",
	},
}

// TintImage returns a copy of img with every RGB channel multiplied by tint.
// Alpha is unchanged.
func TintImage(img Image, tint colorspace.Vec3) Image {
	out := img.Clone()
	for i := 0; i+3 < len(out.Pix); i += 4 {
		out.Pix[i] *= float32(tint[0])
		out.Pix[i+1] *= float32(tint[1])
		out.Pix[i+2] *= float32(tint[2])
	}
	return out
}

// WithBiome returns a new corpus generation whose grass and foliage textures
// are tinted with the biome's colors. Untouched images share storage with c,
// and c itself is not modified.
func (c *Corpus) WithBiome(biome string, targets TintTargets) (*Corpus, error) {
	color, err := c.Biome(biome)
	if err != nil {
		return nil, err
	}
	return c.WithTint(color, targets), nil
}

// WithTint applies an explicit biome color.
func (c *Corpus) WithTint(color BiomeColor, targets TintTargets) *Corpus {
	images := make([]Image, len(c.images))
	copy(images, c.images)

	apply := func(names []string, tint colorspace.Vec3) {
		for _, name := range names {
			entry, ok := c.Lookup(name)
			if !ok {
				continue
			}
			images[entry.Ref.Index] = TintImage(c.images[entry.Ref.Index], tint)
		}
	}
	apply(targets.Grass, color.Grass)
	apply(targets.Foliage, color.Foliage)

	next := &Corpus{
		generation: generationCounter.Add(1),
		images:     images,
		namespaces: c.namespaces,
		entries:    make([]Entry, len(c.entries)),
	}
	for i, entry := range c.entries {
		entry.Ref.Generation = next.generation
		next.entries[i] = entry
	}
	return next
}
