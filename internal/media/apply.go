package media

import (
	"github.com/dshills/splice/internal/engine/resource"
)

// Change describes what Apply did to one item.
type Change struct {
	Item *resource.Item
	Path string

	// WentOffline and WentOnline report online-state transitions.
	WentOffline bool
	WentOnline  bool

	// ContentChanged is true if a known fingerprint changed.
	ContentChanged bool

	Err error
}

// FileItems returns the registered items backed by files, keyed by path.
// Several items may share a file.
func FileItems(m *resource.Manager) map[string][]*resource.Item {
	out := make(map[string][]*resource.Item)
	for _, item := range m.Items() {
		fb, ok := item.Content().(resource.FileBacked)
		if !ok || fb.Path() == "" {
			continue
		}
		out[fb.Path()] = append(out[fb.Path()], item)
	}
	return out
}

// Paths returns the distinct file paths of FileItems in manager ID order.
func Paths(m *resource.Manager) []string {
	var paths []string
	seen := make(map[string]bool)
	for _, item := range m.Items() {
		fb, ok := item.Content().(resource.FileBacked)
		if !ok || fb.Path() == "" || seen[fb.Path()] {
			continue
		}
		seen[fb.Path()] = true
		paths = append(paths, fb.Path())
	}
	return paths
}

// Apply updates the items of m from probe results. Missing or unreadable
// files take their items offline; present files bring items back online
// unless the user took them offline. Fingerprints are recorded.
//
// Apply mutates the manager and must run on its owning goroutine.
func Apply(m *resource.Manager, results []Result) []Change {
	byPath := FileItems(m)
	var changes []Change
	for _, res := range results {
		for _, item := range byPath[res.Path] {
			if ch, ok := applyOne(item, res); ok {
				changes = append(changes, ch)
			}
		}
	}
	return changes
}

func applyOne(item *resource.Item, res Result) (Change, bool) {
	fb := item.Content().(resource.FileBacked)
	ch := Change{Item: item, Path: res.Path, Err: res.Err}

	if !res.Exists {
		if item.IsOnline() {
			item.Disable(false)
			ch.WentOffline = true
		}
		return ch, ch.WentOffline || ch.Err != nil
	}

	if old := fb.Fingerprint(); old != 0 && old != res.Fingerprint {
		ch.ContentChanged = true
	}
	fb.SetFingerprint(res.Fingerprint)

	if !item.IsOnline() && !item.IsOfflineByUser() {
		item.Enable()
		ch.WentOnline = true
	}
	return ch, ch.WentOnline || ch.ContentChanged
}
