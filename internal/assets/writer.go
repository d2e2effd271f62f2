package assets

import (
	"blockcolors/internal/db"
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

// WriteTotals counts what one PersistTextures call wrote.
type WriteTotals struct {
	Namespaces       int `json:"namespaces"`
	SolidTextures    int `json:"solidTextures"`
	NonSolidTextures int `json:"nonSolidTextures"`
	Skipped          int `json:"skipped"`
	Models           int `json:"models"`
	Tags             int `json:"tags"`
	Blocks           int `json:"blocks"`
	Biomes           int `json:"biomes"`
}

type Writer struct {
	log logrus.FieldLogger
}

func NewWriter(log logrus.FieldLogger) *Writer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Writer{log: log}
}

type textureRow struct {
	namespace string
	name      string
	solid     bool
	texture   DecodedTexture
}

// PersistTextures replaces every namespace the loader knows about with its
// current contents. Textures that cannot be decoded, or whose namespace was
// never loaded, are skipped.
func (w *Writer) PersistTextures(ctx context.Context, database *sql.DB, loader *Loader, mode DecodeMode) (WriteTotals, error) {
	totals := WriteTotals{}

	rows, skipped, err := w.decodeTextures(ctx, loader, mode)
	if err != nil {
		return totals, err
	}
	totals.Skipped = skipped

	namespaces := loader.Namespaces()
	totals.Namespaces = len(namespaces)

	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		for _, name := range namespaces {
			if err := clearNamespace(ctx, tx, name); err != nil {
				return err
			}
		}

		for _, row := range rows {
			table := "non_solid_textures"
			if row.solid {
				table = "solid_textures"
			}
			if _, err := tx.ExecContext(
				ctx,
				"INSERT INTO "+table+"(namespace, name, width, height, pixel_format, pixel_data) VALUES (?, ?, ?, ?, ?, ?)",
				row.namespace, row.name, row.texture.Width, row.texture.Height, row.texture.Format, row.texture.Data,
			); err != nil {
				return fmt.Errorf("insert texture %s:%s: %w", row.namespace, row.name, err)
			}
			if row.solid {
				totals.SolidTextures++
			} else {
				totals.NonSolidTextures++
			}
		}

		for _, name := range namespaces {
			ns, _ := loader.Namespace(name)
			counts, err := writeNamespace(ctx, tx, ns)
			if err != nil {
				return err
			}
			totals.Models += counts.Models
			totals.Tags += counts.Tags
			totals.Blocks += counts.Blocks
			totals.Biomes += counts.Biomes
		}
		return nil
	})
	if err != nil {
		return WriteTotals{}, fmt.Errorf("persist textures: %w", err)
	}

	w.log.WithFields(logrus.Fields{
		"solid":    totals.SolidTextures,
		"nonSolid": totals.NonSolidTextures,
		"skipped":  totals.Skipped,
	}).Info("textures persisted")
	return totals, nil
}

func (w *Writer) decodeTextures(ctx context.Context, loader *Loader, mode DecodeMode) ([]textureRow, int, error) {
	rows := make([]textureRow, 0)
	skipped := 0

	collect := func(namespace string, names []string, solid bool) error {
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, ok := loader.TexturePath(NamespacedKey{Namespace: namespace, Key: name})
			if !ok {
				w.log.WithField("texture", namespace+":"+name).Debug("texture file not found, skipping")
				skipped++
				continue
			}
			texture, err := DecodeTexture(path, mode)
			if err != nil {
				w.log.WithError(err).WithField("texture", namespace+":"+name).Warn("skipping texture")
				skipped++
				continue
			}
			rows = append(rows, textureRow{namespace: namespace, name: name, solid: solid, texture: texture})
		}
		return nil
	}

	for _, namespace := range loader.TextureNamespaces() {
		if err := collect(namespace, loader.SolidTextures(namespace), true); err != nil {
			return nil, 0, err
		}
		if err := collect(namespace, loader.NonSolidTextures(namespace), false); err != nil {
			return nil, 0, err
		}
	}
	return rows, skipped, nil
}

func clearNamespace(ctx context.Context, tx *sql.Tx, namespace string) error {
	for _, table := range []string{"solid_textures", "non_solid_textures", "models", "tags", "block_names", "biome_color"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE namespace = ?", namespace); err != nil {
			return fmt.Errorf("clear %s for %s: %w", table, namespace, err)
		}
	}
	return nil
}

func writeNamespace(ctx context.Context, tx *sql.Tx, ns *Namespace) (WriteTotals, error) {
	counts := WriteTotals{}

	for _, model := range sortedKeys(ns.Models) {
		for _, texture := range ns.Models[model].Textures {
			if _, err := tx.ExecContext(
				ctx,
				"INSERT OR IGNORE INTO models(namespace, model, texture_namespace, texture) VALUES (?, ?, ?, ?)",
				ns.Name, model, texture.Namespace, texture.Key,
			); err != nil {
				return counts, fmt.Errorf("insert model %s:%s: %w", ns.Name, model, err)
			}
		}
		counts.Models++
	}

	for _, tag := range sortedKeys(ns.Tags) {
		for _, block := range ns.Tags[tag] {
			if _, err := tx.ExecContext(
				ctx,
				"INSERT OR IGNORE INTO tags(namespace, tag, block) VALUES (?, ?, ?)",
				ns.Name, tag, block,
			); err != nil {
				return counts, fmt.Errorf("insert tag %s:%s: %w", ns.Name, tag, err)
			}
		}
		counts.Tags++
	}

	for _, block := range sortedKeys(ns.BlockStates) {
		for _, model := range ns.BlockStates[block] {
			if _, err := tx.ExecContext(
				ctx,
				"INSERT OR IGNORE INTO block_names(namespace, block_name, model_namespace, model) VALUES (?, ?, ?, ?)",
				ns.Name, block, model.Namespace, model.Key,
			); err != nil {
				return counts, fmt.Errorf("insert block %s:%s: %w", ns.Name, block, err)
			}
		}
		counts.Blocks++
	}

	for _, biome := range sortedKeys(ns.Biomes) {
		color := ns.Biomes[biome]
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO biome_color(namespace, biome, grass_r, grass_g, grass_b, leaves_r, leaves_g, leaves_b)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ns.Name, biome,
			color.Grass[0], color.Grass[1], color.Grass[2],
			color.Foliage[0], color.Foliage[1], color.Foliage[2],
		); err != nil {
			return counts, fmt.Errorf("insert biome %s:%s: %w", ns.Name, biome, err)
		}
		counts.Biomes++
	}
	return counts, nil
}
