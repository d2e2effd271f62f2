package assets

import (
	"blockcolors/internal/assets/jsonwalk"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func readJSON(path string) (any, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// parseTags reads tags/block/**.json. Members are stored qualified; nested
// tag references keep their leading '#'.
func parseTags(ctx context.Context, ns *Namespace) error {
	return walkFiles(ctx, filepath.Join(ns.TagFolder, "block"), isJSON, func(path string) error {
		key, err := relativeKey(ns.TagFolder, path)
		if err != nil {
			return failure(IncorrectTagFile, path, err)
		}

		doc, err := readJSON(path)
		if err != nil {
			return failure(IncorrectTagFile, path, err)
		}
		object, ok := doc.(map[string]any)
		if !ok {
			return failure(IncorrectTagFile, path, errors.New("tag file is not an object"))
		}
		values, ok := object["values"].([]any)
		if !ok {
			return failure(IncorrectTagFile, path, errors.New(`missing "values" array`))
		}

		members := make(map[string]struct{}, len(values))
		for _, value := range values {
			member, ok := tagMember(value)
			if !ok {
				return failure(IncorrectTagFile, path, fmt.Errorf("unsupported tag value %v", value))
			}
			members[qualifyTagMember(member, ns.Name)] = struct{}{}
		}
		ns.Tags[key] = sortedKeys(members)
		return nil
	})
}

// tagMember accepts "ns:block" and {"id": "ns:block", "required": false}.
func tagMember(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, typed != ""
	case map[string]any:
		id, ok := typed["id"].(string)
		return id, ok && id != ""
	default:
		return "", false
	}
}

func qualifyTagMember(member string, namespace string) string {
	if strings.HasPrefix(member, "#") {
		return "#" + ParseKey(member[1:], namespace).String()
	}
	return ParseKey(member, namespace).String()
}

// parseBlockstates maps every block to the models any of its variants use.
func parseBlockstates(ctx context.Context, ns *Namespace) error {
	return walkFiles(ctx, ns.BlockstateDir, isJSON, func(path string) error {
		block, err := relativeKey(ns.BlockstateDir, path)
		if err != nil {
			return failure(InvalidBlockstateFormat, path, err)
		}

		doc, err := readJSON(path)
		if err != nil {
			return failure(InvalidBlockstateFormat, path, err)
		}

		seen := map[NamespacedKey]struct{}{}
		models := make([]NamespacedKey, 0)
		for value := range jsonwalk.Find(doc, "model") {
			name, ok := value.(string)
			if !ok {
				return failure(InvalidBlockstateFormat, path, fmt.Errorf("model is %T, not a string", value))
			}
			key := ParseKey(name, ns.Name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			models = append(models, key)
		}
		sort.Slice(models, func(i, j int) bool {
			return models[i].String() < models[j].String()
		})
		ns.BlockStates[block] = models
		return nil
	})
}

// parseModels reads models/block/**.json. An unreadable model aborts the
// namespace.
func parseModels(ctx context.Context, ns *Namespace) error {
	return walkFiles(ctx, filepath.Join(ns.ModelFolder, "block"), isJSON, func(path string) error {
		key, err := relativeKey(ns.ModelFolder, path)
		if err != nil {
			return failure(InvalidModelFile, path, err)
		}

		doc, err := readJSON(path)
		if err != nil {
			return failure(InvalidModelFile, path, err)
		}
		object, ok := doc.(map[string]any)
		if !ok {
			return failure(InvalidModelFile, path, errors.New("model file is not an object"))
		}

		ns.Models[key] = decodeModel(object, ns.Name)
		return nil
	})
}

func decodeModel(object map[string]any, namespace string) Model {
	var model Model
	if parent, ok := object["parent"].(string); ok && parent != "" {
		key := ParseKey(parent, namespace)
		model.Parent = &key
	}

	var references []string
	switch textures := object["textures"].(type) {
	case map[string]any:
		slots := make([]string, 0, len(textures))
		for slot := range textures {
			slots = append(slots, slot)
		}
		sort.Strings(slots)
		for _, slot := range slots {
			if reference, ok := textures[slot].(string); ok {
				references = append(references, reference)
			}
		}
	case []any:
		for _, value := range textures {
			if reference, ok := value.(string); ok {
				references = append(references, reference)
			}
		}
	}

	seen := map[NamespacedKey]struct{}{}
	for _, reference := range references {
		// #slot entries point at another texture variable, not a file
		if reference == "" || strings.HasPrefix(reference, "#") {
			continue
		}
		key := ParseKey(reference, namespace)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		model.Textures = append(model.Textures, key)
	}
	return model
}
