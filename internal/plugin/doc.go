// Package plugin runs Lua scripts against a project.
//
// A Runner gives each script a fresh sandboxed state with the splice
// module installed (see package api). The edits a script makes are
// grouped into one undo entry; if the script fails, they are undone and
// the project is left as it was.
package plugin
