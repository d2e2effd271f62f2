package ranking

import "blockcolors/internal/corpus"

// Filter hides entries at display time. It never changes scores or order.
type Filter struct {
	// Skipped holds positions in the ordering the user dismissed.
	Skipped    map[int]struct{}
	Controlled map[string]struct{}
	// Blacklist hides controlled textures; otherwise only they are shown.
	Blacklist     bool
	Selected      string
	EnableCutoffs bool
	ColorCutoff   float64
	KernelCutoff  float64
}

type VisibleEntry struct {
	Index int   `json:"index"`
	Entry Entry `json:"entry"`
}

// NewFilter derives the display filter for opts against c.
func NewFilter(c *corpus.Corpus, opts Options, selected string) Filter {
	opts = opts.Normalized()
	return Filter{
		Skipped:       map[int]struct{}{},
		Controlled:    c.ControlledTextures(corpus.ParseControlList(opts.ControlList)),
		Blacklist:     opts.Blacklist,
		Selected:      selected,
		EnableCutoffs: opts.EnableCutoffs,
		ColorCutoff:   opts.ColorCutoff,
		KernelCutoff:  opts.KernelCutoff,
	}
}

// Skip hides the entry at index in the full ordering. RankRequest.Skip and
// the rank command's --skip flag feed it.
func (f *Filter) Skip(index int) {
	if f.Skipped == nil {
		f.Skipped = map[int]struct{}{}
	}
	f.Skipped[index] = struct{}{}
}

func (f Filter) Allows(index int, entry Entry) bool {
	if f.EnableCutoffs && entry.DistColor > f.ColorCutoff {
		return false
	}
	if f.EnableCutoffs && entry.DistKernel > f.KernelCutoff {
		return false
	}
	if _, skipped := f.Skipped[index]; skipped {
		return false
	}
	_, controlled := f.Controlled[entry.Name]
	if f.Blacklist == controlled {
		return false
	}
	if f.Selected != "" && entry.Name == f.Selected {
		return false
	}
	return true
}

// Visible returns up to limit entries that pass the filter, keeping their
// position in the full ordering. A limit below one means no limit.
func (f Filter) Visible(order []Entry, limit int) []VisibleEntry {
	visible := make([]VisibleEntry, 0)
	for index, entry := range order {
		if limit > 0 && len(visible) >= limit {
			break
		}
		if f.Allows(index, entry) {
			visible = append(visible, VisibleEntry{Index: index, Entry: entry})
		}
	}
	return visible
}
