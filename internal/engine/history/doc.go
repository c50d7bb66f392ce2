// Package history provides undo/redo for project edits.
//
// Edits are Commands with Execute and Undo. History keeps bounded undo
// and redo stacks:
//
//	h := history.NewHistory(500)
//	h.Execute(cmd)
//	h.Undo()
//	h.Redo()
//
// Several commands can be combined into one undo unit:
//
//	h.BeginGroup("Cut clips")
//	// ... several Execute calls ...
//	h.EndGroup()
//
// Transaction does the same for a function and rolls the group back when
// the function fails.
package history
