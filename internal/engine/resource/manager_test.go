package resource

import (
	"errors"
	"math"
	"testing"

	"github.com/dshills/splice/internal/event"
	"github.com/dshills/splice/internal/rbe"
)

func addColor(t *testing.T, m *Manager, f *Folder, name string) *Item {
	t.Helper()
	it := NewItem(name, NewColor(1, 0, 0))
	if _, err := m.AddItem(f, it); err != nil {
		t.Fatalf("AddItem(%q) error: %v", name, err)
	}
	return it
}

// checkIndexMatchesTree fails if the index and the tree disagree.
func checkIndexMatchesTree(t *testing.T, m *Manager) {
	t.Helper()
	inTree := make(map[uint64]*Item)
	for _, it := range m.Root().Items() {
		if it.ID() == 0 {
			t.Errorf("item %q in tree has no id", it.DisplayName())
			continue
		}
		inTree[it.ID()] = it
		if it.Manager() != m {
			t.Errorf("item %q manager mismatch", it.DisplayName())
		}
	}
	if len(inTree) != m.Len() {
		t.Fatalf("tree has %d items, index has %d", len(inTree), m.Len())
	}
	for id, it := range inTree {
		got, ok := m.TryGet(id)
		if !ok || got != it {
			t.Errorf("index[%d] = %v, want %q", id, got, it.DisplayName())
		}
	}
}

func TestManager_RegisterAssignsIDs(t *testing.T) {
	m := NewManager()
	a := addColor(t, m, m.Root(), "a")
	b := addColor(t, m, m.Root(), "b")

	if a.ID() != 1 || b.ID() != 2 {
		t.Errorf("ids = %d, %d, want 1, 2", a.ID(), b.ID())
	}
	if m.CurrentID() != 2 {
		t.Errorf("CurrentID() = %d, want 2", m.CurrentID())
	}
	checkIndexMatchesTree(t, m)
}

func TestManager_RegisterExplicitID(t *testing.T) {
	m := NewManager()
	it := NewItem("x", NewColor(0, 0, 0))
	if err := m.Root().Add(it); err != nil {
		t.Fatal(err)
	}
	id, err := m.RegisterAs(it, 42)
	if err != nil || id != 42 {
		t.Fatalf("RegisterAs() = %d, %v", id, err)
	}

	dup := NewItem("y", NewColor(0, 0, 0))
	m.Root().Add(dup)
	_, err = m.RegisterAs(dup, 42)
	var dupErr *DuplicateIDError
	if !errors.As(err, &dupErr) || dupErr.ID != 42 {
		t.Fatalf("RegisterAs(42) error = %v, want DuplicateIDError", err)
	}
	if !errors.Is(err, ErrDuplicateID) {
		t.Error("error does not match ErrDuplicateID")
	}
}

func TestManager_RegisterCrossManager(t *testing.T) {
	m1 := NewManager()
	m2 := NewManager()
	it := addColor(t, m1, m1.Root(), "a")

	_, err := m2.Register(it)
	if !errors.Is(err, ErrCrossManager) {
		t.Fatalf("Register() error = %v, want ErrCrossManager", err)
	}
	if m2.Len() != 0 {
		t.Error("m2 indexed a foreign item")
	}
}

func TestManager_NextIDSkipsOccupied(t *testing.T) {
	m := NewManager()
	for _, id := range []uint64{1, 2, 4} {
		it := NewItem("x", NewColor(0, 0, 0))
		m.Root().Add(it)
		if _, err := m.RegisterAs(it, id); err != nil {
			t.Fatal(err)
		}
	}
	if got := m.NextID(); got != 3 {
		t.Errorf("NextID() = %d, want 3", got)
	}
	if got := m.NextID(); got != 5 {
		t.Errorf("NextID() = %d, want 5", got)
	}
}

func TestManager_NextIDWrapsWithoutZero(t *testing.T) {
	m := NewManager()
	m.currID = math.MaxUint64 - 1
	it := NewItem("x", NewColor(0, 0, 0))
	m.Root().Add(it)
	m.RegisterAs(it, 1)

	got := []uint64{m.NextID(), m.NextID()}
	want := []uint64{math.MaxUint64, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NextID() #%d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestManager_UnregisterPublishesID(t *testing.T) {
	m := NewManager()
	it := addColor(t, m, m.Root(), "a")

	var removed ItemRemoved
	m.Bus().Subscribe(TopicRemoved, event.AsHandler(func(e event.Event[ItemRemoved]) {
		removed = e.Payload
	}))

	got, ok := m.Unregister(1)
	if !ok || got != it {
		t.Fatalf("Unregister(1) = %v, %v", got, ok)
	}
	if removed.ID != 1 || removed.Item != it {
		t.Errorf("removed event = %+v", removed)
	}
	if it.ID() != 0 {
		t.Errorf("ID() after unregister = %d, want 0", it.ID())
	}
	if _, ok := m.Unregister(1); ok {
		t.Error("second Unregister() succeeded")
	}
}

func TestManager_IndexTracksTree(t *testing.T) {
	m := NewManager()
	sub := NewFolder("sub")
	if err := m.Root().Add(sub); err != nil {
		t.Fatal(err)
	}
	addColor(t, m, m.Root(), "a")
	b := addColor(t, m, sub, "b")
	addColor(t, m, sub, "c")
	checkIndexMatchesTree(t, m)

	m.Root().DeleteAt(m.Root().IndexOf(sub))
	checkIndexMatchesTree(t, m)
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
	if b.Manager() != nil || b.Parent() != sub {
		t.Error("deleted subtree items kept manager or lost parent")
	}

	clone := sub.Clone()
	if err := m.Root().Add(clone); err != nil {
		t.Fatal(err)
	}
	if err := RegisterHierarchy(m, clone); err != nil {
		t.Fatal(err)
	}
	checkIndexMatchesTree(t, m)
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
}

func TestManager_ReplaceItem(t *testing.T) {
	m := NewManager()
	old := addColor(t, m, m.Root(), "old")
	addColor(t, m, m.Root(), "other")
	repl := NewItem("new", NewImage("a.png"))

	var got ItemReplaced
	m.Bus().Subscribe(TopicReplaced, event.AsHandler(func(e event.Event[ItemReplaced]) {
		got = e.Payload
	}))

	if err := m.ReplaceItem(old, repl); err != nil {
		t.Fatalf("ReplaceItem() error: %v", err)
	}
	if repl.ID() != 1 || old.ID() != 0 {
		t.Errorf("ids = old %d, new %d", old.ID(), repl.ID())
	}
	if m.Root().At(0) != repl || repl.Parent() != m.Root() || old.Parent() != nil {
		t.Error("replacement did not take the tree slot")
	}
	if got.Old != old || got.New != repl || got.ID != 1 {
		t.Errorf("replaced event = %+v", got)
	}
	checkIndexMatchesTree(t, m)

	if err := m.ReplaceItem(old, NewItem("x", NewColor(0, 0, 0))); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("ReplaceItem(unregistered) error = %v", err)
	}
	if err := m.ReplaceItem(repl, m.Root().At(1).(*Item)); !errors.Is(err, ErrItemAttached) {
		t.Errorf("ReplaceItem(attached) error = %v", err)
	}
}

func TestManager_ReplaceDetachedItem(t *testing.T) {
	m := NewManager()
	old := NewItem("loose", NewColor(0, 0, 0))
	id, err := m.Register(old)
	if err != nil {
		t.Fatal(err)
	}
	repl := NewItem("new", NewColor(1, 1, 1))
	if err := m.ReplaceItem(old, repl); err != nil {
		t.Fatalf("ReplaceItem() error: %v", err)
	}
	if repl.ID() != id || repl.Manager() != m || !repl.IsRegistered() {
		t.Fatalf("replacement id %d manager %p registered %v", repl.ID(), repl.Manager(), repl.IsRegistered())
	}
	if repl.Parent() != nil || old.Manager() != nil {
		t.Error("detached replacement changed the tree")
	}

	var events []OnlineStateChanged
	m.Bus().Subscribe(TopicOnlineChanged, event.AsHandler(func(e event.Event[OnlineStateChanged]) {
		events = append(events, e.Payload)
	}))
	repl.Disable(true)
	repl.Enable()
	if len(events) != 2 {
		t.Errorf("online events = %d, want 2", len(events))
	}
}

func TestManager_RBERoundTrip(t *testing.T) {
	m := NewManager()
	sub := NewFolder("clips")
	m.Root().Add(sub)
	addColor(t, m, m.Root(), "red")
	img := NewItem("still", NewImage("/tmp/a.png"))
	m.AddItem(sub, img)
	img.Disable(true)
	media := NewItem("take", NewMedia("/tmp/a.mov"))
	m.AddItem(sub, media)
	media.Disable(false)
	m.NextID()

	d := rbe.NewDict()
	if err := m.WriteRBE(d); err != nil {
		t.Fatalf("WriteRBE() error: %v", err)
	}
	data, err := rbe.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	back, err := rbe.UnmarshalDict(data)
	if err != nil {
		t.Fatal(err)
	}

	m2 := NewManager()
	var added int
	m2.Bus().SubscribeFunc(TopicAdded, func(any) { added++ })
	if err := m2.ReadRBE(back, DefaultFactory()); err != nil {
		t.Fatalf("ReadRBE() error: %v", err)
	}

	if m2.CurrentID() != m.CurrentID() {
		t.Errorf("CurrentID() = %d, want %d", m2.CurrentID(), m.CurrentID())
	}
	if added != 3 {
		t.Errorf("added events = %d, want 3", added)
	}
	want := m.Items()
	got := m2.Items()
	if len(got) != len(want) {
		t.Fatalf("Len() = %d, want %d", len(got), len(want))
	}
	for i := range want {
		w, g := want[i], got[i]
		if g.ID() != w.ID() || g.FactoryID() != w.FactoryID() || g.DisplayName() != w.DisplayName() ||
			g.IsOnline() != w.IsOnline() || g.IsOfflineByUser() != w.IsOfflineByUser() {
			t.Errorf("item %d = (%d %s %q %v %v), want (%d %s %q %v %v)", i,
				g.ID(), g.FactoryID(), g.DisplayName(), g.IsOnline(), g.IsOfflineByUser(),
				w.ID(), w.FactoryID(), w.DisplayName(), w.IsOnline(), w.IsOfflineByUser())
		}
	}
	checkIndexMatchesTree(t, m2)
	if m2.Root().Len() != 2 || m2.Root().At(0).DisplayName() != "clips" {
		t.Error("folder structure not restored")
	}
}

func TestManager_ReadRBERejectsNonEmpty(t *testing.T) {
	m := NewManager()
	addColor(t, m, m.Root(), "a")
	d := rbe.NewDict()
	m.WriteRBE(d)

	if err := m.ReadRBE(d, DefaultFactory()); !errors.Is(err, ErrManagerNotEmpty) {
		t.Errorf("ReadRBE() error = %v, want ErrManagerNotEmpty", err)
	}
}

func TestManager_ReadRBEDuplicateIDs(t *testing.T) {
	m := NewManager()
	a := addColor(t, m, m.Root(), "a")
	addColor(t, m, m.Root(), "b")
	d := rbe.NewDict()
	m.WriteRBE(d)

	// Rewrite the second item's id to collide with the first.
	items, _ := d.GetDict(keyRootFolder)
	list, _ := items.GetList(keyItems)
	second, _ := list.DictAt(1)
	data, _ := second.GetDict(keyData)
	data.SetULong(keyUniqueID, a.ID())

	m2 := NewManager()
	err := m2.ReadRBE(d, DefaultFactory())
	var corrupt *CorruptProjectError
	if !errors.As(err, &corrupt) || corrupt.ID != a.ID() {
		t.Fatalf("ReadRBE() error = %v, want CorruptProjectError", err)
	}
	if m2.Len() != 0 || m2.Root().Len() != 0 {
		t.Error("manager not left empty after corrupt read")
	}
}

func TestManager_ReadRBEAssignsMissingIDs(t *testing.T) {
	src := NewManager()
	it := NewItem("loose", NewColor(0, 1, 0))
	src.Root().Add(it)
	d := rbe.NewDict()
	src.WriteRBE(d)

	m := NewManager()
	if err := m.ReadRBE(d, DefaultFactory()); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 1 || m.Items()[0].ID() == 0 {
		t.Errorf("item without id was not registered")
	}
}

func TestManager_Clear(t *testing.T) {
	m := NewManager()
	addColor(t, m, m.Root(), "a")
	addColor(t, m, m.Root(), "b")
	m.Clear()
	if m.Len() != 0 || m.Root().Len() != 0 || m.CurrentID() != 0 {
		t.Errorf("Clear() left Len=%d children=%d curr=%d", m.Len(), m.Root().Len(), m.CurrentID())
	}
}

func TestItem_OnlineEvents(t *testing.T) {
	m := NewManager()
	it := addColor(t, m, m.Root(), "a")

	var events []OnlineStateChanged
	m.Bus().Subscribe(TopicOnlineChanged, event.AsHandler(func(e event.Event[OnlineStateChanged]) {
		events = append(events, e.Payload)
	}))

	it.Disable(true)
	it.Disable(false)
	it.Enable()
	it.Enable()

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Online || !events[0].ByUser || !events[1].Online {
		t.Errorf("events = %+v", events)
	}
}
