// Package assets ingests resource pack folders: it finds models, textures,
// tags, blockstates and biomes, decides which textures belong to solid
// blocks, and writes the result to an asset database.
package assets

import (
	"blockcolors/internal/corpus"
	"context"
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// NamespacedKey is a (namespace, key) pair such as minecraft:block/stone.
type NamespacedKey struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
}

func (k NamespacedKey) String() string {
	return corpus.Qualify(k.Namespace, k.Key)
}

// ParseKey splits "ns:key". A bare key takes defaultNamespace.
func ParseKey(value string, defaultNamespace string) NamespacedKey {
	namespace, key, found := strings.Cut(value, ":")
	if !found {
		return NamespacedKey{Namespace: defaultNamespace, Key: value}
	}
	return NamespacedKey{Namespace: namespace, Key: key}
}

type Model struct {
	Parent   *NamespacedKey  `json:"parent,omitempty"`
	Textures []NamespacedKey `json:"textures,omitempty"`
}

// Namespace is everything one successful LoadAssets call found.
type Namespace struct {
	Name            string
	AssetFolder     string
	ModelFolder     string
	TextureFolder   string
	TagFolder       string
	DataFolder      string
	BlockstateDir   string
	Models          map[string]Model
	Textures        map[string]string
	Tags            map[string][]string
	BlockStates     map[string][]NamespacedKey
	Biomes          map[string]corpus.BiomeColor
	BiomesAvailable bool
}

func newNamespace(name string) *Namespace {
	return &Namespace{
		Name:        name,
		Models:      map[string]Model{},
		Textures:    map[string]string{},
		Tags:        map[string][]string{},
		BlockStates: map[string][]NamespacedKey{},
		Biomes:      map[string]corpus.BiomeColor{},
	}
}

var textureExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".bmp":  {},
	".webp": {},
	".avif": {},
}

type textureSet = map[string]map[string]struct{}

// Loader accumulates namespaces over several LoadAssets calls. It is not
// safe for concurrent use.
type Loader struct {
	log        logrus.FieldLogger
	namespaces map[string]*Namespace
	solid      textureSet
	nonSolid   textureSet
}

func NewLoader(log logrus.FieldLogger) *Loader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{
		log:        log,
		namespaces: map[string]*Namespace{},
		solid:      textureSet{},
		nonSolid:   textureSet{},
	}
}

// LoadAssets ingests one namespace. dataRoot may be empty. On failure the
// loader is left exactly as it was before the call.
func (l *Loader) LoadAssets(ctx context.Context, assetRoot string, dataRoot string) error {
	info, err := os.Stat(assetRoot)
	if err != nil || !info.IsDir() {
		return failure(AssetFolderNotFound, assetRoot, err)
	}

	modelFolder, textureFolder, err := findAssetFolders(ctx, assetRoot)
	if err != nil {
		return err
	}

	name := filepath.Base(filepath.Dir(modelFolder))
	if filepath.Base(filepath.Dir(textureFolder)) != name {
		return failure(IncorrectNamespace, textureFolder, nil)
	}

	ns := newNamespace(name)
	ns.AssetFolder = filepath.Dir(modelFolder)
	ns.ModelFolder = modelFolder
	ns.TextureFolder = textureFolder

	log := l.log.WithFields(logrus.Fields{"namespace": name, "assetRoot": assetRoot})
	log.Info("loading assets")

	if dataRoot != "" {
		if err := locateDataFolders(ctx, ns, dataRoot); err != nil {
			return err
		}
		if err := parseTags(ctx, ns); err != nil {
			return err
		}
	} else if dir := filepath.Join(ns.AssetFolder, "blockstates"); isDir(dir) {
		ns.BlockstateDir = dir
	}

	if ns.BlockstateDir != "" {
		if err := parseBlockstates(ctx, ns); err != nil {
			return err
		}
	}

	if err := parseModels(ctx, ns); err != nil {
		return err
	}
	log.WithField("models", len(ns.Models)).Info("found models")

	if err := indexTextures(ctx, ns, log); err != nil {
		return err
	}
	log.WithField("textures", len(ns.Textures)).Info("found textures")

	if ns.DataFolder != "" {
		if err := parseBiomes(ctx, ns, log); err != nil {
			return err
		}
	}

	namespaces := maps.Clone(l.namespaces)
	namespaces[name] = ns
	solid, nonSolid := classify(namespaces)

	l.namespaces = namespaces
	l.solid = solid
	l.nonSolid = nonSolid

	log.WithFields(logrus.Fields{
		"solid":    len(solid[name]),
		"nonSolid": len(nonSolid[name]),
		"tags":     len(ns.Tags),
		"blocks":   len(ns.BlockStates),
		"biomes":   len(ns.Biomes),
	}).Info("namespace loaded")
	return nil
}

// findAssetFolders walks assetRoot for the first models and textures
// directories that have a block child.
func findAssetFolders(ctx context.Context, assetRoot string) (string, string, error) {
	var models, textures []string
	err := filepath.WalkDir(assetRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !entry.IsDir() {
			return nil
		}
		switch entry.Name() {
		case "models":
			models = append(models, path)
		case "textures":
			textures = append(textures, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", "", err
		}
		return "", "", failure(AssetFolderNotFound, assetRoot, err)
	}

	if len(models) == 0 {
		return "", "", failure(ModelFolderNotFound, assetRoot, nil)
	}
	if len(textures) == 0 {
		return "", "", failure(TextureFolderNotFound, assetRoot, nil)
	}

	modelFolder, ok := firstWithBlockChild(models)
	if !ok {
		return "", "", failure(ModelFolderNotFound, models[0], nil)
	}
	textureFolder, ok := firstWithBlockChild(textures)
	if !ok {
		return "", "", failure(TextureFolderNotFound, textures[0], nil)
	}
	return modelFolder, textureFolder, nil
}

func firstWithBlockChild(candidates []string) (string, bool) {
	for _, candidate := range candidates {
		if isDir(filepath.Join(candidate, "block")) {
			return candidate, true
		}
	}
	return "", false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func locateDataFolders(ctx context.Context, ns *Namespace, dataRoot string) error {
	if !isDir(dataRoot) {
		return failure(TagsFolderNotFound, dataRoot, nil)
	}

	// Prefer the tags folder of the matching data namespace.
	var candidates []string
	err := filepath.WalkDir(dataRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if entry.IsDir() && entry.Name() == "tags" && isDir(filepath.Join(path, "block")) {
			candidates = append(candidates, path)
			return fs.SkipDir
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return failure(TagsFolderNotFound, dataRoot, nil)
	}
	tags := candidates[0]
	for _, candidate := range candidates {
		if filepath.Base(filepath.Dir(candidate)) == ns.Name {
			tags = candidate
			break
		}
	}
	ns.TagFolder = tags
	ns.DataFolder = filepath.Dir(tags)

	for _, candidate := range []string{
		filepath.Join(ns.AssetFolder, "blockstates"),
		filepath.Join(dataRoot, "blockstates"),
		filepath.Join(ns.DataFolder, "blockstates"),
	} {
		if isDir(candidate) {
			ns.BlockstateDir = candidate
			return nil
		}
	}
	return failure(TagsBlockstatesNotFound, ns.AssetFolder, nil)
}

// relativeKey turns root/block/foo/bar.json into block/foo/bar.
func relativeKey(root string, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.ToSlash(rel), nil
}

// walkFiles calls fn for every regular file under dir whose extension is
// accepted, in lexical order.
func walkFiles(ctx context.Context, dir string, accept func(ext string) bool, fn func(path string) error) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		if !accept(strings.ToLower(filepath.Ext(path))) {
			return nil
		}
		return fn(path)
	})
}

func isJSON(ext string) bool {
	return ext == ".json"
}

func indexTextures(ctx context.Context, ns *Namespace, log logrus.FieldLogger) error {
	return walkFiles(ctx, filepath.Join(ns.TextureFolder, "block"), func(ext string) bool {
		_, ok := textureExtensions[ext]
		return ok
	}, func(path string) error {
		key, err := relativeKey(ns.TextureFolder, path)
		if err != nil {
			return err
		}
		if existing, ok := ns.Textures[key]; ok {
			log.WithFields(logrus.Fields{"texture": key, "kept": existing, "ignored": path}).Debug("duplicate texture")
			return nil
		}
		ns.Textures[key] = path
		return nil
	})
}

func (l *Loader) Namespaces() []string {
	names := make([]string, 0, len(l.namespaces))
	for name := range l.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Loader) Namespace(name string) (*Namespace, bool) {
	ns, ok := l.namespaces[name]
	return ns, ok
}

func (l *Loader) Model(key NamespacedKey) (Model, bool) {
	return lookupModel(l.namespaces, key)
}

// TextureNamespaces lists every namespace that owns at least one classified
// texture, sorted.
func (l *Loader) TextureNamespaces() []string {
	seen := map[string]struct{}{}
	for name := range l.solid {
		seen[name] = struct{}{}
	}
	for name := range l.nonSolid {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Loader) SolidTextures(namespace string) []string {
	return sortedKeys(l.solid[namespace])
}

func (l *Loader) NonSolidTextures(namespace string) []string {
	return sortedKeys(l.nonSolid[namespace])
}

// TexturePath finds the file for a texture in the namespace that owns it.
func (l *Loader) TexturePath(key NamespacedKey) (string, bool) {
	ns, ok := l.namespaces[key.Namespace]
	if !ok {
		return "", false
	}
	path, ok := ns.Textures[key.Key]
	return path, ok
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
