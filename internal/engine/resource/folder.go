package resource

import "slices"

// Folder is a container of items and folders.
type Folder struct {
	nodeBase
	children []Node
}

// NewFolder creates an empty, detached folder.
func NewFolder(name string) *Folder {
	return &Folder{nodeBase: nodeBase{name: name}}
}

// Len returns the number of direct children.
func (f *Folder) Len() int {
	return len(f.children)
}

// At returns the child at index i.
func (f *Folder) At(i int) Node {
	return f.children[i]
}

// Children returns a copy of the direct children.
func (f *Folder) Children() []Node {
	return slices.Clone(f.children)
}

// IndexOf returns the index of a direct child, or -1.
func (f *Folder) IndexOf(n Node) int {
	return slices.Index(f.children, n)
}

// Contains returns true if n is a direct child.
func (f *Folder) Contains(n Node) bool {
	return f.IndexOf(n) >= 0
}

// IsAncestorOf returns true if n is f or lies below f.
func (f *Folder) IsAncestorOf(n Node) bool {
	for p := n; p != nil; {
		if p == Node(f) {
			return true
		}
		parent := p.Parent()
		if parent == nil {
			return false
		}
		p = parent
	}
	return false
}

// Add appends a child. See Insert.
func (f *Folder) Add(child Node) error {
	return f.Insert(len(f.children), child)
}

// Insert places child at index i, sets its parent to f and propagates f's
// manager to it and, for folders, to everything below it.
func (f *Folder) Insert(i int, child Node) error {
	if err := f.checkInsert(i, child); err != nil {
		return err
	}
	f.children = slices.Insert(f.children, i, child)
	child.setParent(f)
	child.setManager(f.manager)
	return nil
}

func (f *Folder) checkInsert(i int, child Node) error {
	if child == nil {
		return ErrNilContent
	}
	if child.Parent() == f || f.Contains(child) {
		return ErrDuplicateChild
	}
	if child.Parent() != nil {
		return ErrHasParent
	}
	if cf, ok := child.(*Folder); ok && cf.IsAncestorOf(f) {
		return ErrFolderCycle
	}
	if i < 0 || i > len(f.children) {
		return ErrIndexOutOfRange
	}
	return nil
}

// RemoveAt detaches and returns the child at index i. It does not touch
// the manager's index. RemoveAt panics with *TreeCorruptionError if the
// child's back-links disagree with f.
func (f *Folder) RemoveAt(i int) Node {
	child := f.children[i]
	if child.Parent() != f {
		panic(&TreeCorruptionError{Op: "RemoveAt", Reason: "child parent does not match folder"})
	}
	if child.Manager() != f.manager {
		panic(&TreeCorruptionError{Op: "RemoveAt", Reason: "child manager does not match folder"})
	}
	f.children = slices.Delete(f.children, i, i+1)
	child.setParent(nil)
	child.setManager(nil)
	return child
}

// Remove detaches child if it is a direct child of f.
func (f *Folder) Remove(child Node) bool {
	i := f.IndexOf(child)
	if i < 0 {
		return false
	}
	f.RemoveAt(i)
	return true
}

// DeleteAt removes the child at index i from the tree and unregisters
// every item in its subtree from the folder's manager.
func (f *Folder) DeleteAt(i int) Node {
	child := f.children[i]
	if m := f.manager; m != nil {
		UnregisterHierarchy(m, child)
	}
	return f.RemoveAt(i)
}

// MoveTo relocates the child at src into target at index dst. When target
// is f, dst is an index into the list after removal. Items keep their IDs.
// The move is validated before anything changes.
func (f *Folder) MoveTo(src int, target *Folder, dst int) error {
	if src < 0 || src >= len(f.children) || target == nil {
		return ErrIndexOutOfRange
	}
	if target.manager != f.manager {
		return ErrCrossManager
	}
	child := f.children[src]

	limit := len(target.children)
	if target == f {
		limit--
	}
	if dst < 0 || dst > limit {
		return ErrIndexOutOfRange
	}
	if cf, ok := child.(*Folder); ok && cf.IsAncestorOf(target) {
		return ErrFolderCycle
	}

	f.children = slices.Delete(f.children, src, src+1)
	target.children = slices.Insert(target.children, dst, child)
	child.setParent(target)
	return nil
}

func (f *Folder) setManager(m *Manager) {
	f.manager = m
	for _, c := range f.children {
		c.setManager(m)
	}
}

// Clone returns a detached deep copy of the folder with unregistered items.
func (f *Folder) Clone() *Folder {
	c := NewFolder(f.name)
	for _, child := range f.children {
		cc := child.cloneNode()
		cc.setParent(c)
		c.children = append(c.children, cc)
	}
	return c
}

func (f *Folder) cloneNode() Node {
	return f.Clone()
}

// Items returns every item below f in tree order.
func (f *Folder) Items() []*Item {
	return ItemsOf(f)
}
