// Package corpus holds the in-memory texture set that rankings run against.
//
// Images live in a single arena owned by the Corpus. Everything else refers
// to them through ImageRef values that carry the generation of the corpus
// they came from, so a reference taken before a swap cannot silently read a
// different corpus.
package corpus

import (
	"blockcolors/internal/colorspace"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

const DefaultNamespace = "minecraft"

var (
	ErrStaleImageRef = errors.New("image reference belongs to another corpus generation")
	ErrUnknownBiome  = errors.New("unknown biome")
)

var generationCounter atomic.Uint64

type ImageRef struct {
	Generation uint64
	Index      int
}

type Entry struct {
	Namespace string
	Name      string
	Solid     bool
	Ref       ImageRef
}

// QualifiedName is "namespace:name".
func (e Entry) QualifiedName() string {
	return Qualify(e.Namespace, e.Name)
}

func Qualify(namespace string, name string) string {
	return namespace + ":" + name
}

// SplitQualified splits "ns:name". A bare name gets the default namespace.
func SplitQualified(value string) (string, string) {
	namespace, name, found := strings.Cut(value, ":")
	if !found {
		return DefaultNamespace, value
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return namespace, name
}

type BiomeColor struct {
	Grass   colorspace.Vec3 `json:"grass"`
	Foliage colorspace.Vec3 `json:"foliage"`
}

type set = map[string]struct{}

// NamespaceCorpus indexes one namespace. Texture maps point into the arena.
type NamespaceCorpus struct {
	Solid    map[string]int
	NonSolid map[string]int
	// Tags maps "block/<tag>" to its members: qualified block names or
	// "#ns:tag" references to other tags.
	Tags map[string]set
	// BlockTextures maps a block name to the qualified textures its models use.
	BlockTextures map[string]set
	Biomes        map[string]BiomeColor
}

func newNamespaceCorpus() *NamespaceCorpus {
	return &NamespaceCorpus{
		Solid:         map[string]int{},
		NonSolid:      map[string]int{},
		Tags:          map[string]set{},
		BlockTextures: map[string]set{},
		Biomes:        map[string]BiomeColor{},
	}
}

type Corpus struct {
	generation uint64
	images     []Image
	entries    []Entry
	namespaces map[string]*NamespaceCorpus
}

func (c *Corpus) Generation() uint64 {
	return c.generation
}

// Entries returns every texture in iteration order: solid before non-solid,
// then by namespace and name. Callers must not modify the slice.
func (c *Corpus) Entries() []Entry {
	return c.entries
}

func (c *Corpus) Len() int {
	return len(c.entries)
}

func (c *Corpus) Image(ref ImageRef) (*Image, error) {
	if ref.Generation != c.generation {
		return nil, fmt.Errorf("resolve image %d: %w", ref.Index, ErrStaleImageRef)
	}
	if ref.Index < 0 || ref.Index >= len(c.images) {
		return nil, fmt.Errorf("resolve image %d: index out of range", ref.Index)
	}
	return &c.images[ref.Index], nil
}

// Lookup finds a texture by qualified name, checking solid textures first.
func (c *Corpus) Lookup(qualified string) (Entry, bool) {
	namespace, name := SplitQualified(qualified)
	ns, ok := c.namespaces[namespace]
	if !ok {
		return Entry{}, false
	}
	if index, ok := ns.Solid[name]; ok {
		return Entry{Namespace: namespace, Name: name, Solid: true, Ref: c.ref(index)}, true
	}
	if index, ok := ns.NonSolid[name]; ok {
		return Entry{Namespace: namespace, Name: name, Ref: c.ref(index)}, true
	}
	return Entry{}, false
}

func (c *Corpus) ref(index int) ImageRef {
	return ImageRef{Generation: c.generation, Index: index}
}

func (c *Corpus) Namespace(name string) (*NamespaceCorpus, bool) {
	ns, ok := c.namespaces[name]
	return ns, ok
}

func (c *Corpus) Namespaces() []string {
	names := make([]string, 0, len(c.namespaces))
	for name := range c.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Biomes lists every biome as "namespace:biome", sorted.
func (c *Corpus) Biomes() []string {
	biomes := make([]string, 0)
	for namespace, ns := range c.namespaces {
		for biome := range ns.Biomes {
			biomes = append(biomes, Qualify(namespace, biome))
		}
	}
	sort.Strings(biomes)
	return biomes
}

func (c *Corpus) Biome(qualified string) (BiomeColor, error) {
	namespace, name := SplitQualified(qualified)
	if ns, ok := c.namespaces[namespace]; ok {
		if color, ok := ns.Biomes[name]; ok {
			return color, nil
		}
	}
	return BiomeColor{}, fmt.Errorf("biome %q: %w", qualified, ErrUnknownBiome)
}

// Builder assembles a Corpus. It is not safe for concurrent use.
type Builder struct {
	images     []Image
	entries    []Entry
	namespaces map[string]*NamespaceCorpus
}

func NewBuilder() *Builder {
	return &Builder{namespaces: map[string]*NamespaceCorpus{}}
}

func (b *Builder) namespace(name string) *NamespaceCorpus {
	ns, ok := b.namespaces[name]
	if !ok {
		ns = newNamespaceCorpus()
		b.namespaces[name] = ns
	}
	return ns
}

// AddTexture stores img in the arena. A name already present in the same
// subset is replaced.
func (b *Builder) AddTexture(namespace string, name string, solid bool, img Image) error {
	if !img.Valid() {
		return fmt.Errorf("add texture %s: %w", Qualify(namespace, name), ErrPixelBufferSize)
	}

	ns := b.namespace(namespace)
	target := ns.NonSolid
	if solid {
		target = ns.Solid
	}
	if index, ok := target[name]; ok {
		b.images[index] = img
		return nil
	}

	target[name] = len(b.images)
	b.images = append(b.images, img)
	b.entries = append(b.entries, Entry{Namespace: namespace, Name: name, Solid: solid})
	return nil
}

func (b *Builder) AddTag(namespace string, tag string, member string) {
	ns := b.namespace(namespace)
	members, ok := ns.Tags[tag]
	if !ok {
		members = set{}
		ns.Tags[tag] = members
	}
	members[member] = struct{}{}
}

func (b *Builder) AddBlockTexture(namespace string, block string, texture string) {
	ns := b.namespace(namespace)
	textures, ok := ns.BlockTextures[block]
	if !ok {
		textures = set{}
		ns.BlockTextures[block] = textures
	}
	textures[texture] = struct{}{}
}

func (b *Builder) AddBiome(namespace string, biome string, color BiomeColor) {
	b.namespace(namespace).Biomes[biome] = color
}

// Build sorts entries and stamps a fresh generation. The builder must not be
// used afterwards.
func (b *Builder) Build() *Corpus {
	c := &Corpus{
		generation: generationCounter.Add(1),
		images:     b.images,
		namespaces: b.namespaces,
	}

	entries := make([]Entry, len(b.entries))
	copy(entries, b.entries)
	for i := range entries {
		ns := b.namespaces[entries[i].Namespace]
		index := ns.NonSolid[entries[i].Name]
		if entries[i].Solid {
			index = ns.Solid[entries[i].Name]
		}
		entries[i].Ref = c.ref(index)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entryLess(entries[i], entries[j])
	})
	c.entries = entries

	b.images = nil
	b.entries = nil
	b.namespaces = nil
	return c
}

func entryLess(a Entry, b Entry) bool {
	if a.Solid != b.Solid {
		return a.Solid
	}
	if a.Namespace != b.Namespace {
		return a.Namespace < b.Namespace
	}
	return a.Name < b.Name
}
