package assets

import "blockcolors/internal/corpus"

// Parent shapes that render as a full opaque cube.
var solidParents = map[NamespacedKey]struct{}{
	{Namespace: corpus.DefaultNamespace, Key: "block/cube"}:                   {},
	{Namespace: corpus.DefaultNamespace, Key: "block/cube_all"}:               {},
	{Namespace: corpus.DefaultNamespace, Key: "block/cube_column"}:            {},
	{Namespace: corpus.DefaultNamespace, Key: "block/cube_column_horizontal"}: {},
	{Namespace: corpus.DefaultNamespace, Key: "block/cube_bottom_top"}:        {},
	{Namespace: corpus.DefaultNamespace, Key: "block/leaves"}:                 {},
	{Namespace: corpus.DefaultNamespace, Key: "block/cube_mirrored_all"}:      {},
	{Namespace: corpus.DefaultNamespace, Key: "block/cube_directional"}:       {},
}

// Models that are solid even though their shape is not a cube.
var solidExceptions = map[NamespacedKey]struct{}{
	{Namespace: corpus.DefaultNamespace, Key: "block/honey_block"}: {},
	{Namespace: corpus.DefaultNamespace, Key: "block/slime_block"}: {},
}

func lookupModel(namespaces map[string]*Namespace, key NamespacedKey) (Model, bool) {
	ns, ok := namespaces[key.Namespace]
	if !ok {
		return Model{}, false
	}
	model, ok := ns.Models[key.Key]
	return model, ok
}

// ResolveParents returns the loaded parent chain of key, nearest first. The
// walk stops at the first parent that is not loaded.
func (l *Loader) ResolveParents(key NamespacedKey) []NamespacedKey {
	return resolveParents(l.namespaces, key)
}

func resolveParents(namespaces map[string]*Namespace, key NamespacedKey) []NamespacedKey {
	chain := make([]NamespacedKey, 0)
	visited := map[NamespacedKey]struct{}{key: {}}
	current := key
	for {
		model, ok := lookupModel(namespaces, current)
		if !ok || model.Parent == nil {
			return chain
		}
		parent := *model.Parent
		if _, seen := visited[parent]; seen {
			return chain
		}
		if _, loaded := lookupModel(namespaces, parent); !loaded {
			return chain
		}
		visited[parent] = struct{}{}
		chain = append(chain, parent)
		current = parent
	}
}

// IsSolid reports whether the model or any of its parents is a solid shape.
func (l *Loader) IsSolid(key NamespacedKey) bool {
	return isSolid(l.namespaces, key)
}

func isSolid(namespaces map[string]*Namespace, key NamespacedKey) bool {
	if _, ok := solidExceptions[key]; ok {
		return true
	}
	if _, ok := solidParents[key]; ok {
		return true
	}
	for _, parent := range resolveParents(namespaces, key) {
		if _, ok := solidParents[parent]; ok {
			return true
		}
	}
	return false
}

// classify sorts every texture referenced by a loaded model into solid and
// non-solid sets keyed by the texture's namespace. Solid wins ties.
func classify(namespaces map[string]*Namespace) (textureSet, textureSet) {
	solid := textureSet{}
	nonSolid := textureSet{}

	add := func(target textureSet, texture NamespacedKey) {
		names, ok := target[texture.Namespace]
		if !ok {
			names = map[string]struct{}{}
			target[texture.Namespace] = names
		}
		names[texture.Key] = struct{}{}
	}

	for name, ns := range namespaces {
		for key, model := range ns.Models {
			target := nonSolid
			if isSolid(namespaces, NamespacedKey{Namespace: name, Key: key}) {
				target = solid
			}
			for _, texture := range model.Textures {
				add(target, texture)
			}
		}
	}

	for namespace, names := range nonSolid {
		for texture := range solid[namespace] {
			delete(names, texture)
		}
		if len(names) == 0 {
			delete(nonSolid, namespace)
		}
	}
	return solid, nonSolid
}
