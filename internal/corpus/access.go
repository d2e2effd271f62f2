package corpus

import "strings"

const DefaultControlList = "#block/leaves,tnt"

// ControlItem is one entry of an access control list: either a block or a
// block tag.
type ControlItem struct {
	Namespace string
	Name      string
	Tag       bool
}

// ParseControlList reads a comma separated list of "#ns:tag" and "ns:block"
// items. A missing namespace means minecraft; tag names are relative to the
// block tag folder, so "#leaves" and "#block/leaves" are the same tag.
func ParseControlList(value string) []ControlItem {
	items := make([]ControlItem, 0)
	for _, raw := range strings.Split(value, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" || raw == "#" {
			continue
		}
		tag := strings.HasPrefix(raw, "#")
		namespace, name := SplitQualified(strings.TrimPrefix(raw, "#"))
		if name == "" {
			continue
		}
		if tag {
			name = BlockTagKey(name)
		}
		items = append(items, ControlItem{Namespace: namespace, Name: name, Tag: tag})
	}
	return items
}

// BlockTagKey maps a tag path to its key under the tags folder.
func BlockTagKey(path string) string {
	if strings.HasPrefix(path, "block/") {
		return path
	}
	return "block/" + path
}

// ControlledTextures expands the list into the qualified texture names used
// by the listed blocks, following nested tag references once each.
func (c *Corpus) ControlledTextures(items []ControlItem) map[string]struct{} {
	textures := map[string]struct{}{}
	seenTags := map[string]struct{}{}

	addBlock := func(namespace string, block string) {
		ns, ok := c.namespaces[namespace]
		if !ok {
			return
		}
		for texture := range ns.BlockTextures[block] {
			textures[texture] = struct{}{}
		}
	}

	var addTag func(namespace string, tag string)
	addTag = func(namespace string, tag string) {
		key := Qualify(namespace, tag)
		if _, ok := seenTags[key]; ok {
			return
		}
		seenTags[key] = struct{}{}

		ns, ok := c.namespaces[namespace]
		if !ok {
			return
		}
		for member := range ns.Tags[tag] {
			if strings.HasPrefix(member, "#") {
				nestedNamespace, nestedTag := SplitQualified(member[1:])
				addTag(nestedNamespace, BlockTagKey(nestedTag))
				continue
			}
			blockNamespace, block := SplitQualified(member)
			addBlock(blockNamespace, block)
		}
	}

	for _, item := range items {
		if item.Tag {
			addTag(item.Namespace, item.Name)
		} else {
			addBlock(item.Namespace, item.Name)
		}
	}
	return textures
}
