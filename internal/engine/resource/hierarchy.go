package resource

// RegisterHierarchy registers every item at or below n with m. If any
// registration fails, the items registered by this call are unregistered
// again and the error is returned.
func RegisterHierarchy(m *Manager, n Node) error {
	var done []uint64
	var err error
	Walk(n, func(c Node) bool {
		if err != nil {
			return false
		}
		if it, ok := c.(*Item); ok {
			var id uint64
			id, err = m.Register(it)
			if err == nil {
				done = append(done, id)
			}
		}
		return true
	})
	if err != nil {
		for _, id := range done {
			m.Unregister(id)
		}
	}
	return err
}

// UnregisterHierarchy unregisters every item at or below n that m has
// indexed. The tree is not touched.
func UnregisterHierarchy(m *Manager, n Node) {
	for _, it := range ItemsOf(n) {
		if it.id != 0 && m.items[it.id] == it {
			m.Unregister(it.id)
		}
	}
}
