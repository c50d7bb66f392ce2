// Package project ties a resource manager and a root timeline into an
// editable, persistable project.
//
// # File format
//
// A project file is an envelope around an RBE document:
//
//	"SPLC" | version (u32 LE) | RBE body | xxh3-64 of body (u64 LE)
//
// The body is a dictionary with the keys Settings, ResourceManager and
// Timeline.
//
// # Saving and loading
//
// Snapshot encodes the project on the goroutine that owns it. The bytes
// can then be written by WriteSnapshot on any goroutine:
//
//	data, err := proj.Snapshot()
//	go func() { err := project.WriteSnapshot(fsys, path, data) }()
//
// Load reads and decodes a file into a fresh project. A failed load never
// leaves a partially populated manager behind.
//
// # Editing
//
// Edits that should be undoable go through Execute with one of the
// command constructors in this package. The project tracks whether it has
// been modified since the last save.
package project
