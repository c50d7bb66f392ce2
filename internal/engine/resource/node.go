package resource

// Node is a member of the resource tree: either *Item or *Folder.
// The set of implementations is closed; use a type switch to dispatch.
type Node interface {
	// DisplayName returns the user-visible name.
	DisplayName() string

	// SetDisplayName changes the user-visible name.
	SetDisplayName(name string)

	// Parent returns the containing folder, or nil when detached.
	Parent() *Folder

	// Manager returns the manager of the tree the node belongs to.
	Manager() *Manager

	setParent(f *Folder)
	setManager(m *Manager)
	cloneNode() Node
}

// nodeBase holds the fields shared by items and folders. The parent and
// manager fields are non-owning back-links maintained by Folder.
type nodeBase struct {
	name    string
	parent  *Folder
	manager *Manager
}

func (n *nodeBase) DisplayName() string        { return n.name }
func (n *nodeBase) SetDisplayName(name string) { n.name = name }
func (n *nodeBase) Parent() *Folder            { return n.parent }
func (n *nodeBase) Manager() *Manager          { return n.manager }
func (n *nodeBase) setParent(f *Folder)        { n.parent = f }

// Walk calls fn for n and every node below it, depth first, parents
// before children. Returning false from fn skips a folder's children.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	if f, ok := n.(*Folder); ok {
		for _, c := range f.children {
			Walk(c, fn)
		}
	}
}

// ItemsOf returns every item at or below n, in tree order.
func ItemsOf(n Node) []*Item {
	var items []*Item
	Walk(n, func(c Node) bool {
		if it, ok := c.(*Item); ok {
			items = append(items, it)
		}
		return true
	})
	return items
}

// Clone deep-copies a node. Cloned items are unregistered (ID 0) and the
// copy is detached from any folder or manager.
func Clone(n Node) Node {
	return n.cloneNode()
}
