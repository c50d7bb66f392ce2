package resource

import (
	"errors"
	"testing"
)

func names(f *Folder) []string {
	var out []string
	for _, c := range f.Children() {
		out = append(out, c.DisplayName())
	}
	return out
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFolder_InsertErrors(t *testing.T) {
	m := NewManager()
	f := NewFolder("f")
	m.Root().Add(f)
	it := NewItem("a", NewColor(0, 0, 0))

	tests := []struct {
		name  string
		setup func() error
		want  error
	}{
		{"ok", func() error { return f.Add(it) }, nil},
		{"duplicate child", func() error { return f.Add(it) }, ErrDuplicateChild},
		{"has parent", func() error { return m.Root().Add(it) }, ErrHasParent},
		{"cycle", func() error {
			inner := NewFolder("inner")
			f.Add(inner)
			m.Root().Remove(f)
			return inner.Add(f)
		}, ErrFolderCycle},
		{"out of range", func() error { return f.Insert(99, NewFolder("x")) }, ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.setup(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFolder_InsertPropagatesManager(t *testing.T) {
	m := NewManager()
	outer := NewFolder("outer")
	inner := NewFolder("inner")
	it := NewItem("a", NewColor(0, 0, 0))
	outer.Add(inner)
	inner.Add(it)

	if it.Manager() != nil {
		t.Fatal("detached item has a manager")
	}
	m.Root().Add(outer)
	if outer.Manager() != m || inner.Manager() != m || it.Manager() != m {
		t.Error("manager not propagated to subtree")
	}

	m.Root().Remove(outer)
	if it.Manager() != nil || outer.Parent() != nil {
		t.Error("manager not cleared on removal")
	}
	if it.Parent() != inner {
		t.Error("removal changed nested parent")
	}
}

func TestFolder_MoveTo(t *testing.T) {
	m := NewManager()
	root := m.Root()
	a := addColor(t, m, root, "a")
	addColor(t, m, root, "b")
	addColor(t, m, root, "c")
	sub := NewFolder("sub")
	root.Add(sub)

	if err := root.MoveTo(0, root, 2); err != nil {
		t.Fatal(err)
	}
	if got := names(root); !equalNames(got, []string{"b", "c", "a", "sub"}) {
		t.Errorf("after reorder = %v", got)
	}

	if err := root.MoveTo(2, sub, 0); err != nil {
		t.Fatal(err)
	}
	if a.Parent() != sub || a.ID() != 1 || !a.IsRegistered() {
		t.Error("moved item lost parent or registration")
	}
	checkIndexMatchesTree(t, m)

	if err := root.MoveTo(root.IndexOf(sub), sub, 0); !errors.Is(err, ErrFolderCycle) {
		t.Errorf("MoveTo(into self) error = %v", err)
	}
	if err := root.MoveTo(0, sub, 5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("MoveTo(bad dst) error = %v", err)
	}
	if got := names(root); !equalNames(got, []string{"b", "c", "sub"}) {
		t.Errorf("failed moves changed the tree: %v", got)
	}

	other := NewManager()
	if err := root.MoveTo(0, other.Root(), 0); !errors.Is(err, ErrCrossManager) {
		t.Errorf("MoveTo(other manager) error = %v", err)
	}
}

func TestFolder_RemoveAtCorruptionPanics(t *testing.T) {
	m := NewManager()
	it := addColor(t, m, m.Root(), "a")
	it.manager = NewManager()

	defer func() {
		r := recover()
		if _, ok := r.(*TreeCorruptionError); !ok {
			t.Errorf("recover() = %v, want *TreeCorruptionError", r)
		}
	}()
	m.Root().RemoveAt(0)
}

func TestFolder_Clone(t *testing.T) {
	m := NewManager()
	f := NewFolder("f")
	m.Root().Add(f)
	src := addColor(t, m, f, "a")

	c := f.Clone()
	if c.Parent() != nil || c.Manager() != nil || c.Len() != 1 {
		t.Fatal("clone is not detached")
	}
	cit := c.At(0).(*Item)
	if cit.ID() != 0 || cit == src || cit.Parent() != c {
		t.Error("cloned item shares identity")
	}
	cit.Content().(*Color).R = 0.5
	if src.Content().(*Color).R != 1 {
		t.Error("clone shares content")
	}
}
