package resource

import (
	"fmt"

	"github.com/dshills/splice/internal/rbe"
)

// Persisted keys.
const (
	keyRootFolder    = "RootFolder"
	keyCurrID        = "CurrId"
	keyFactoryID     = "FactoryId"
	keyData          = "Data"
	keyItems         = "Items"
	keyDisplayName   = "DisplayName"
	keyUniqueID      = "UniqueId"
	keyIsOnline      = "IsOnline"
	keyOfflineByUser = "IsOfflineByUser"
)

// WriteRBE stores the tree and the ID counter into d.
func (m *Manager) WriteRBE(d *rbe.Dict) error {
	if err := writeFolder(d.CreateDict(keyRootFolder), m.root); err != nil {
		return err
	}
	d.SetULong(keyCurrID, m.currID)
	return nil
}

// ReadRBE loads a tree written by WriteRBE into an empty manager. Items
// are registered under their persisted IDs; items persisted without an ID
// get fresh ones. On error the manager is left empty.
func (m *Manager) ReadRBE(d *rbe.Dict, factory *Factory) error {
	if len(m.items) > 0 || m.root.Len() > 0 {
		return ErrManagerNotEmpty
	}

	rootData, err := d.GetDict(keyRootFolder)
	if err != nil {
		return fmt.Errorf("read resources: %w", err)
	}
	root, err := readFolder(rootData, factory)
	if err != nil {
		return fmt.Errorf("read resources: %w", err)
	}

	// Validate before anything is installed.
	seen := make(map[uint64]bool)
	for _, it := range root.Items() {
		if it.id == 0 {
			continue
		}
		if seen[it.id] {
			return &CorruptProjectError{ID: it.id, Reason: "id used by more than one resource"}
		}
		seen[it.id] = true
	}

	m.currID = d.GetULongOr(keyCurrID, 0)
	if root.name != "" {
		m.root.name = root.name
	}
	children := root.children
	root.children = nil
	for _, c := range children {
		c.setParent(m.root)
		m.root.children = append(m.root.children, c)
	}
	m.root.setManager(m)

	var fresh []*Item
	for _, it := range m.root.Items() {
		if it.id == 0 {
			fresh = append(fresh, it)
			continue
		}
		m.items[it.id] = it
	}
	for _, it := range fresh {
		id := m.NextID()
		it.id = id
		m.items[id] = it
	}
	for _, it := range m.Items() {
		publish(m, TopicAdded, ItemAdded{Manager: m, ID: it.id, Item: it})
	}
	return nil
}

func writeNode(list *rbe.List, n Node) error {
	entry := list.AddDict()
	data := entry.CreateDict(keyData)
	switch n := n.(type) {
	case *Folder:
		entry.SetString(keyFactoryID, FactoryFolder)
		return writeFolder(data, n)
	case *Item:
		entry.SetString(keyFactoryID, n.FactoryID())
		return writeItem(data, n)
	default:
		return fmt.Errorf("write %T: %w", n, ErrUnknownFactoryID)
	}
}

func writeFolder(d *rbe.Dict, f *Folder) error {
	if f.name != "" {
		d.SetString(keyDisplayName, f.name)
	}
	items := d.CreateList(keyItems)
	for _, c := range f.children {
		if err := writeNode(items, c); err != nil {
			return err
		}
	}
	return nil
}

func writeItem(d *rbe.Dict, it *Item) error {
	if it.name != "" {
		d.SetString(keyDisplayName, it.name)
	}
	if it.id != 0 {
		d.SetULong(keyUniqueID, it.id)
	}
	if !it.online {
		d.SetBool(keyIsOnline, false)
		if it.offlineByUser {
			d.SetBool(keyOfflineByUser, true)
		}
	}
	return it.content.WriteRBE(d)
}

func readNode(entry *rbe.Dict, factory *Factory) (Node, error) {
	fid, err := entry.GetString(keyFactoryID)
	if err != nil {
		return nil, err
	}
	data, err := entry.GetDict(keyData)
	if err != nil {
		return nil, err
	}
	if fid == FactoryFolder {
		return readFolder(data, factory)
	}

	content, err := factory.New(fid)
	if err != nil {
		return nil, err
	}
	if err := content.ReadRBE(data); err != nil {
		return nil, fmt.Errorf("read %s: %w", fid, err)
	}
	it := NewItem(data.GetStringOr(keyDisplayName, ""), content)
	it.id = data.GetULongOr(keyUniqueID, 0)
	it.online = data.GetBoolOr(keyIsOnline, true)
	it.offlineByUser = !it.online && data.GetBoolOr(keyOfflineByUser, false)
	return it, nil
}

func readFolder(d *rbe.Dict, factory *Factory) (*Folder, error) {
	f := NewFolder(d.GetStringOr(keyDisplayName, ""))
	list, ok := d.TryGetList(keyItems)
	if !ok {
		return f, nil
	}
	for i := range list.Len() {
		entry, err := list.DictAt(i)
		if err != nil {
			return nil, err
		}
		child, err := readNode(entry, factory)
		if err != nil {
			return nil, err
		}
		child.setParent(f)
		f.children = append(f.children, child)
	}
	return f, nil
}

// WriteNode serializes a detached subtree, for clipboard copies.
func WriteNode(n Node) (*rbe.Dict, error) {
	d := rbe.NewDict()
	list := d.CreateList(keyItems)
	if err := writeNode(list, n); err != nil {
		return nil, err
	}
	return d, nil
}

// ReadNode deserializes a subtree written by WriteNode. Item IDs are
// cleared so the result can be registered with RegisterHierarchy.
func ReadNode(d *rbe.Dict, factory *Factory) (Node, error) {
	list, err := d.GetList(keyItems)
	if err != nil {
		return nil, err
	}
	entry, err := list.DictAt(0)
	if err != nil {
		return nil, err
	}
	n, err := readNode(entry, factory)
	if err != nil {
		return nil, err
	}
	for _, it := range ItemsOf(n) {
		it.id = 0
	}
	return n, nil
}
