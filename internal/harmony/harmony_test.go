package harmony

import (
	"blockcolors/internal/colorspace"
	"blockcolors/internal/corpus"
	"blockcolors/internal/ranking"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-6)

func TestRotateFullTurn(t *testing.T) {
	t.Parallel()

	color := colorspace.Vec3{0.6, 0.3, 0.1}
	for _, mode := range []Mode{ModeOkLch, ModeHSV} {
		if diff := cmp.Diff(color, Rotate(color, 360, mode), approx); diff != "" {
			t.Fatalf("%v: full turn changed color (-want +got):\n%s", mode, diff)
		}
	}
}

func TestRotateHSVPrimaries(t *testing.T) {
	t.Parallel()

	red := colorspace.Vec3{1, 0, 0}
	if diff := cmp.Diff(colorspace.Vec3{0, 1, 0}, Rotate(red, 120, ModeHSV), approx); diff != "" {
		t.Fatalf("unexpected rotation (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(colorspace.Vec3{0, 0, 1}, Rotate(red, -120, ModeHSV), approx); diff != "" {
		t.Fatalf("unexpected rotation (-want +got):\n%s", diff)
	}
}

func TestRotateOkLchKeepsLightnessAndChroma(t *testing.T) {
	t.Parallel()

	color := colorspace.Vec3{0.3, 0.2, 0.1}
	before := colorspace.OkLabToOkLch(colorspace.LinearToOkLab(color))
	after := colorspace.OkLabToOkLch(colorspace.LinearToOkLab(Rotate(color, 45, ModeOkLch)))

	if diff := cmp.Diff(before[:2], after[:2], approx); diff != "" {
		t.Fatalf("lightness or chroma changed (-want +got):\n%s", diff)
	}
	if got := colorspace.HueDelta(before[2], after[2]); got < 44.99 || got > 45.01 {
		t.Fatalf("expected 45 degree turn, got %f", got)
	}
}

func TestUpdateRecomputesFromEditedMember(t *testing.T) {
	t.Parallel()

	rel, err := Lookup("triadic")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if err := rel.Update(1, colorspace.Vec3{1, 0, 0}, ModeHSV); err != nil {
		t.Fatalf("update: %v", err)
	}

	want := []colorspace.Vec3{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}}
	got := make([]colorspace.Vec3, len(rel.Members))
	for i, member := range rel.Members {
		got[i] = member.Color
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Fatalf("unexpected member colors (-want +got):\n%s", diff)
	}

	if err := rel.Update(3, colorspace.Vec3{}, ModeHSV); err == nil {
		t.Fatal("expected error for out of range member")
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	rel, err := Lookup("split complementary")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if rel.Name != "Split-Complementary" || len(rel.Members) != 3 {
		t.Fatalf("unexpected relationship %+v", rel)
	}
	if _, err := Lookup("octadic"); !errors.Is(err, ErrUnknownRelationship) {
		t.Fatalf("expected ErrUnknownRelationship, got %v", err)
	}

	custom, err := Lookup("Custom")
	if err != nil {
		t.Fatalf("lookup custom: %v", err)
	}
	if err := custom.Update(0, colorspace.Vec3{1, 1, 1}, ModeOkLch); err != nil {
		t.Fatalf("updating an empty relationship should be a no-op: %v", err)
	}

	first := Relationships()
	first[0].Members[0].Offset = 99
	if Relationships()[0].Members[0].Offset != 0 {
		t.Fatal("Relationships must return fresh copies")
	}
}

func TestRankRelationship(t *testing.T) {
	t.Parallel()

	b := corpus.NewBuilder()
	for name, color := range map[string]colorspace.Vec3{
		"block/red":   {1, 0, 0},
		"block/green": {0, 1, 0},
		"block/blue":  {0, 0, 1},
	} {
		img := corpus.NewImage(2, 2)
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				img.Set(x, y, color, 1)
			}
		}
		if err := b.AddTexture("minecraft", name, true, img); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	engine := ranking.NewEngine(corpus.NewStore(b.Build()))

	rel, err := Lookup("Triadic")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if err := rel.Update(1, colorspace.Vec3{1, 0, 0}, ModeHSV); err != nil {
		t.Fatalf("update: %v", err)
	}

	rankings, err := RankRelationship(engine, rel, ranking.DefaultOptions())
	if err != nil {
		t.Fatalf("rank relationship: %v", err)
	}

	got := make([]string, len(rankings))
	for i, r := range rankings {
		got[i] = r.Result.Entries[0].Name
	}
	want := []string{"minecraft:block/blue", "minecraft:block/red", "minecraft:block/green"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected best matches (-want +got):\n%s", diff)
	}
}
