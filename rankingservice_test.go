package main

import (
	"blockcolors/internal/colorspace"
	"blockcolors/internal/corpus"
	"blockcolors/internal/db"
	"blockcolors/internal/ranking"
	"blockcolors/internal/settings"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func flatImage(color colorspace.Vec3) corpus.Image {
	img := corpus.NewImage(2, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color, 1)
		}
	}
	return img
}

func newTestRankingService(t *testing.T) (*RankingService, *corpus.Store) {
	t.Helper()

	database, err := db.Bootstrap(filepath.Join(t.TempDir(), "assets.db"))
	if err != nil {
		t.Fatalf("bootstrap db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	b := corpus.NewBuilder()
	for name, color := range map[string]colorspace.Vec3{
		"block/red_wool":        {0.6, 0.02, 0.02},
		"block/redstone_block":  {0.7, 0.01, 0.0},
		"block/lapis_block":     {0.02, 0.05, 0.5},
		"block/grass_block_top": {0.5, 0.5, 0.5},
	} {
		if err := b.AddTexture("minecraft", name, true, flatImage(color)); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	b.AddBiome("minecraft", "plains", corpus.BiomeColor{Grass: colorspace.Vec3{0.1, 1, 0.1}, Foliage: colorspace.Vec3{0.1, 1, 0.1}})
	b.AddBiome("minecraft", "swamp", corpus.BiomeColor{Grass: colorspace.Vec3{0.2, 0.4, 0.6}, Foliage: colorspace.Vec3{0.2, 0.4, 0.6}})
	store := corpus.NewStore(b.Build())

	log := logrus.New()
	ingest := NewIngestService(database, store, log)
	return NewRankingService(ranking.NewEngine(store), settings.NewRepository(database), ingest), store
}

func TestMakeOrderingByColor(t *testing.T) {
	t.Parallel()

	service, _ := newTestRankingService(t)
	response, err := service.MakeOrdering(RankRequest{Reference: "#b00000", Limit: 2})
	if err != nil {
		t.Fatalf("make ordering: %v", err)
	}
	if response.Total != 4 || len(response.Entries) != 2 {
		t.Fatalf("unexpected response size: total %d, visible %d", response.Total, len(response.Entries))
	}
	first := response.Entries[0].Entry.Name
	if first != "minecraft:block/redstone_block" && first != "minecraft:block/red_wool" {
		t.Fatalf("expected a red block first, got %s", first)
	}
}

func TestMakeOrderingByTextureHidesSelection(t *testing.T) {
	t.Parallel()

	service, _ := newTestRankingService(t)
	response, err := service.MakeOrdering(RankRequest{Reference: "minecraft:block/red_wool"})
	if err != nil {
		t.Fatalf("make ordering: %v", err)
	}
	for _, item := range response.Entries {
		if item.Entry.Name == "minecraft:block/red_wool" {
			t.Fatal("expected the reference texture to be hidden")
		}
	}
	if response.Entries[0].Entry.Name != "minecraft:block/redstone_block" {
		t.Fatalf("expected redstone next to red wool, got %s", response.Entries[0].Entry.Name)
	}

	if _, err := service.MakeOrdering(RankRequest{Reference: "minecraft:block/missing"}); !errors.Is(err, ranking.ErrUnknownTexture) {
		t.Fatalf("expected unknown texture, got %v", err)
	}
}

func TestMakeOrderingSkipsDismissedPositions(t *testing.T) {
	t.Parallel()

	service, _ := newTestRankingService(t)
	full, err := service.MakeOrdering(RankRequest{Reference: "#b00000"})
	if err != nil {
		t.Fatalf("make ordering: %v", err)
	}

	skipped, err := service.MakeOrdering(RankRequest{Reference: "#b00000", Skip: []int{0}})
	if err != nil {
		t.Fatalf("make ordering with skip: %v", err)
	}
	if len(skipped.Entries) != len(full.Entries)-1 {
		t.Fatalf("expected one entry hidden, got %d of %d", len(skipped.Entries), len(full.Entries))
	}
	if skipped.Entries[0].Index != 1 || skipped.Entries[0].Entry.Name != full.Entries[1].Entry.Name {
		t.Fatalf("expected the second entry first, got %+v", skipped.Entries[0])
	}
}

func grassPixel(t *testing.T, store *corpus.Store) colorspace.Vec3 {
	t.Helper()
	c := store.Current()
	entry, ok := c.Lookup("minecraft:block/grass_block_top")
	if !ok {
		t.Fatal("missing grass_block_top")
	}
	img, err := c.Image(entry.Ref)
	if err != nil {
		t.Fatalf("resolve grass_block_top: %v", err)
	}
	color, _ := img.At(0, 0)
	return color
}

func TestMakeOrderingAppliesBiomeTint(t *testing.T) {
	t.Parallel()

	service, store := newTestRankingService(t)
	before := store.Current().Generation()

	expectGrass := func(want colorspace.Vec3) {
		t.Helper()
		got := grassPixel(t, store)
		for i := range got {
			if math.Abs(got[i]-want[i]) > 1e-6 {
				t.Fatalf("expected grass %v, got %v", want, got)
			}
		}
	}

	for i := 0; i < 2; i++ {
		if _, err := service.MakeOrdering(RankRequest{Reference: "#00ff00", Biome: "minecraft:plains"}); err != nil {
			t.Fatalf("make ordering: %v", err)
		}
		expectGrass(colorspace.Vec3{0.05, 0.5, 0.05})
	}
	if store.Current().Generation() == before {
		t.Fatal("expected the tint to publish a new generation")
	}

	if _, err := service.MakeOrdering(RankRequest{Reference: "#00ff00", Biome: "minecraft:swamp"}); err != nil {
		t.Fatalf("make ordering: %v", err)
	}
	expectGrass(colorspace.Vec3{0.1, 0.2, 0.3})

	if _, err := service.MakeOrdering(RankRequest{Reference: "#00ff00", Biome: "minecraft:nowhere"}); !errors.Is(err, corpus.ErrUnknownBiome) {
		t.Fatalf("expected unknown biome, got %v", err)
	}
	expectGrass(colorspace.Vec3{0.1, 0.2, 0.3})
}

func TestRankHarmony(t *testing.T) {
	t.Parallel()

	service, _ := newTestRankingService(t)
	response, err := service.RankHarmony(HarmonyRequest{Color: "#b00000", Relationship: "complementary", Limit: 1})
	if err != nil {
		t.Fatalf("rank harmony: %v", err)
	}
	if len(response.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(response.Members))
	}
	if response.Members[0].Color != "#b00000" {
		t.Fatalf("expected the anchor to keep its color, got %s", response.Members[0].Color)
	}
	if len(response.Members[1].Entries) != 1 {
		t.Fatalf("expected one entry per member, got %d", len(response.Members[1].Entries))
	}

	if _, err := service.RankHarmony(HarmonyRequest{Color: "#b00000", Relationship: "nonsense"}); err == nil {
		t.Fatal("expected unknown relationship to fail")
	}
}
