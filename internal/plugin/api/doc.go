// Package api binds a project to Lua as the global table "splice".
//
// Every edit goes through the project's history, so a script's changes
// can be undone like any other edit. Clips are userdata values with
// read-only accessor methods; tracks are 1-based indexes into the root
// timeline.
//
//	local id = splice.add_color("bg", "#202020")
//	local c = splice.add_clip(1, id, 0, 120)
//	local right = splice.cut(c, 60)
//	splice.trim(right, "right", -10)
//	print(c:name(), c:begin(), c:duration())
package api
