// Package resource implements the resource registry of a project.
//
// Resources are reusable assets (colors, images, media files,
// compositions) that clips reference indirectly by a 64-bit ID. The
// registry has two views that must always agree on membership:
//
//   - the tree: a Folder hierarchy rooted at Manager.Root, which owns
//     items and folders and assigns parent/manager back-links
//   - the index: Manager's id → *Item map, which owns ID allocation and
//     publishes added/removed/replaced events
//
// Tree mutation (Folder.Insert, RemoveAt, MoveTo) never touches the
// index and index mutation (Manager.Register, Unregister) never touches
// the tree; helpers such as Folder.DeleteAt and RegisterHierarchy keep
// both in step for the common operations.
//
// Consumers hold a Path[T]: a lazily resolved, cached reference to an
// item by ID that follows the manager's events, so a reference survives
// save/load, deletion followed by undo, and wholesale replacement.
//
// Nothing in this package is safe for concurrent use. A project is
// mutated by a single goroutine.
package resource
