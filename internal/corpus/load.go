package corpus

import (
	"blockcolors/internal/colorspace"
	"context"
	"database/sql"
	"fmt"
)

// Load reads an asset database into a new corpus generation.
func Load(ctx context.Context, database *sql.DB) (*Corpus, error) {
	builder := NewBuilder()

	if err := loadTextures(ctx, database, builder, "solid_textures", true); err != nil {
		return nil, err
	}
	if err := loadTextures(ctx, database, builder, "non_solid_textures", false); err != nil {
		return nil, err
	}
	if err := loadTags(ctx, database, builder); err != nil {
		return nil, err
	}
	if err := loadBlockTextures(ctx, database, builder); err != nil {
		return nil, err
	}
	if err := loadBiomes(ctx, database, builder); err != nil {
		return nil, err
	}

	return builder.Build(), nil
}

func loadTextures(ctx context.Context, database *sql.DB, builder *Builder, table string, solid bool) error {
	rows, err := database.QueryContext(
		ctx,
		"SELECT namespace, name, width, height, pixel_format, pixel_data FROM "+table+" ORDER BY namespace, name",
	)
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			namespace string
			name      string
			width     int
			height    int
			format    string
			data      []byte
		)
		if err := rows.Scan(&namespace, &name, &width, &height, &format, &data); err != nil {
			return fmt.Errorf("scan %s row: %w", table, err)
		}

		img, err := DecodePixels(width, height, format, data)
		if err != nil {
			return fmt.Errorf("decode %s: %w", Qualify(namespace, name), err)
		}
		if err := builder.AddTexture(namespace, name, solid, img); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s rows: %w", table, err)
	}
	return nil
}

func loadTags(ctx context.Context, database *sql.DB, builder *Builder) error {
	rows, err := database.QueryContext(ctx, "SELECT namespace, tag, block FROM tags")
	if err != nil {
		return fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var namespace, tag, block string
		if err := rows.Scan(&namespace, &tag, &block); err != nil {
			return fmt.Errorf("scan tag row: %w", err)
		}
		builder.AddTag(namespace, tag, block)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate tag rows: %w", err)
	}
	return nil
}

// loadBlockTextures resolves block → model → texture through the two
// association tables.
func loadBlockTextures(ctx context.Context, database *sql.DB, builder *Builder) error {
	rows, err := database.QueryContext(ctx, `
		SELECT b.namespace, b.block_name, m.texture_namespace, m.texture
		FROM block_names b
		JOIN models m ON m.namespace = b.model_namespace AND m.model = b.model
	`)
	if err != nil {
		return fmt.Errorf("query block textures: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var namespace, block, textureNamespace, texture string
		if err := rows.Scan(&namespace, &block, &textureNamespace, &texture); err != nil {
			return fmt.Errorf("scan block texture row: %w", err)
		}
		builder.AddBlockTexture(namespace, block, Qualify(textureNamespace, texture))
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate block texture rows: %w", err)
	}
	return nil
}

func loadBiomes(ctx context.Context, database *sql.DB, builder *Builder) error {
	rows, err := database.QueryContext(ctx, `
		SELECT namespace, biome, grass_r, grass_g, grass_b, leaves_r, leaves_g, leaves_b
		FROM biome_color
	`)
	if err != nil {
		return fmt.Errorf("query biome colors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var namespace, biome string
		var grass, foliage colorspace.Vec3
		if err := rows.Scan(
			&namespace, &biome,
			&grass[0], &grass[1], &grass[2],
			&foliage[0], &foliage[1], &foliage[2],
		); err != nil {
			return fmt.Errorf("scan biome color row: %w", err)
		}
		builder.AddBiome(namespace, biome, BiomeColor{Grass: grass, Foliage: foliage})
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate biome color rows: %w", err)
	}
	return nil
}
