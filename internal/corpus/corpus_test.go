package corpus

import (
	"blockcolors/internal/colorspace"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func solidColor(value float64) Image {
	img := NewImage(2, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, colorspace.Vec3{value, value, value}, 1)
		}
	}
	return img
}

func mustAdd(t *testing.T, b *Builder, namespace string, name string, solid bool, img Image) {
	t.Helper()
	if err := b.AddTexture(namespace, name, solid, img); err != nil {
		t.Fatalf("add texture %s: %v", name, err)
	}
}

func TestBuildOrdersEntries(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	mustAdd(t, b, "zeta", "block/a", true, solidColor(0.1))
	mustAdd(t, b, "minecraft", "block/torch", false, solidColor(0.2))
	mustAdd(t, b, "minecraft", "block/stone", true, solidColor(0.3))
	mustAdd(t, b, "minecraft", "block/dirt", true, solidColor(0.4))
	c := b.Build()

	names := make([]string, 0, c.Len())
	for _, entry := range c.Entries() {
		names = append(names, entry.QualifiedName())
	}
	want := []string{"minecraft:block/dirt", "minecraft:block/stone", "zeta:block/a", "minecraft:block/torch"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("unexpected iteration order (-want +got):\n%s", diff)
	}

	for _, entry := range c.Entries() {
		img, err := c.Image(entry.Ref)
		if err != nil {
			t.Fatalf("resolve %s: %v", entry.QualifiedName(), err)
		}
		if entry.Name == "block/stone" {
			if color, _ := img.At(0, 0); color[0] < 0.29 || color[0] > 0.31 {
				t.Fatalf("stone resolved to the wrong image: %v", color)
			}
		}
	}
}

func TestStaleImageRef(t *testing.T) {
	t.Parallel()

	first := NewBuilder()
	mustAdd(t, first, "minecraft", "block/stone", true, solidColor(0.5))
	old := first.Build()

	second := NewBuilder()
	mustAdd(t, second, "minecraft", "block/stone", true, solidColor(0.5))
	current := second.Build()

	if old.Generation() == current.Generation() {
		t.Fatal("expected distinct generations")
	}
	if _, err := current.Image(old.Entries()[0].Ref); !errors.Is(err, ErrStaleImageRef) {
		t.Fatalf("expected ErrStaleImageRef, got %v", err)
	}
}

func TestLookupAndBiomes(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	mustAdd(t, b, "minecraft", "block/glass", false, solidColor(0.9))
	b.AddBiome("minecraft", "plains", BiomeColor{Grass: colorspace.Vec3{1, 0, 0}})
	b.AddBiome("minecraft", "desert", BiomeColor{})
	b.AddBiome("alpha", "zone", BiomeColor{})
	c := b.Build()

	entry, ok := c.Lookup("block/glass")
	if !ok || entry.Solid {
		t.Fatalf("expected non-solid glass in the default namespace, got %+v (found %v)", entry, ok)
	}
	if _, ok := c.Lookup("other:block/glass"); ok {
		t.Fatal("expected lookup in an unknown namespace to fail")
	}

	want := []string{"alpha:zone", "minecraft:desert", "minecraft:plains"}
	if diff := cmp.Diff(want, c.Biomes()); diff != "" {
		t.Fatalf("unexpected biome list (-want +got):\n%s", diff)
	}
	if _, err := c.Biome("minecraft:ocean"); !errors.Is(err, ErrUnknownBiome) {
		t.Fatalf("expected ErrUnknownBiome, got %v", err)
	}
}

func TestAddTextureRejectsBadBuffer(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	err := b.AddTexture("minecraft", "block/broken", true, Image{Width: 2, Height: 2, Pix: make([]float32, 3)})
	if !errors.Is(err, ErrPixelBufferSize) {
		t.Fatalf("expected ErrPixelBufferSize, got %v", err)
	}
}

func TestStoreSwap(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)
	if store.Loaded() {
		t.Fatal("expected empty store")
	}
	if store.Current().Len() != 0 {
		t.Fatal("expected empty corpus before the first swap")
	}

	b := NewBuilder()
	mustAdd(t, b, "minecraft", "block/stone", true, solidColor(0.5))
	next := b.Build()
	if previous := store.Swap(next); previous != nil {
		t.Fatalf("expected no previous corpus, got generation %d", previous.Generation())
	}
	if store.Current() != next {
		t.Fatal("expected swapped corpus to be current")
	}
}

func TestDecodePixelsFormats(t *testing.T) {
	t.Parallel()

	img := solidColor(0.25)
	decoded, err := DecodePixels(2, 2, PixelFormatFloat32, EncodeFloat32(img))
	if err != nil {
		t.Fatalf("decode float blob: %v", err)
	}
	if diff := cmp.Diff(img, decoded); diff != "" {
		t.Fatalf("float blob changed (-want +got):\n%s", diff)
	}

	bytes := []byte{255, 0, 0, 255}
	decoded, err = DecodePixels(1, 1, PixelFormatUint8, bytes)
	if err != nil {
		t.Fatalf("decode byte blob: %v", err)
	}
	if color, alpha := decoded.At(0, 0); color != (colorspace.Vec3{1, 0, 0}) || alpha != 1 {
		t.Fatalf("unexpected byte pixel %v alpha %f", color, alpha)
	}

	if _, err := DecodePixels(2, 2, PixelFormatUint8, bytes); !errors.Is(err, ErrPixelBufferSize) {
		t.Fatalf("expected ErrPixelBufferSize, got %v", err)
	}
}
