// Package timeline implements the editable timeline of a project:
// ordered tracks of clips that reference resources by ID.
//
// A Timeline owns its tracks and a Track owns its clips. Clips and tracks
// keep non-owning back-links to their owner, maintained by InsertClip,
// RemoveAt and the timeline's track operations. A clip references its
// resource through a resource.Path bound to the timeline's manager, so a
// clip never holds a resource directly.
//
// Compositions are resources that own a nested Timeline. They are created
// from a clip selection with CreateComposition and referenced by
// composition clips.
package timeline
