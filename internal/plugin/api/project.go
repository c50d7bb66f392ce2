package api

import (
	"fmt"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/splice/internal/engine/frame"
	"github.com/dshills/splice/internal/engine/resource"
	"github.com/dshills/splice/internal/engine/timeline"
	plua "github.com/dshills/splice/internal/plugin/lua"
	"github.com/dshills/splice/internal/project"
)

// ModuleName is the Lua global the project module is installed as.
const ModuleName = "splice"

const clipTypeName = "splice.clip"

// ProjectModule exposes a project to scripts.
type ProjectModule struct {
	project *project.Project
	sandbox *plua.Sandbox
	edits   int
}

// NewProjectModule creates a module editing p.
func NewProjectModule(p *project.Project) *ProjectModule {
	return &ProjectModule{project: p}
}

// Register installs the clip type and the module table into state.
func (m *ProjectModule) Register(state *plua.State) {
	m.sandbox = state.Sandbox()

	L := state.LuaState()
	mt := L.NewTypeMetatable(clipTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"name":     m.clipName,
		"kind":     m.clipKind,
		"begin":    m.clipBegin,
		"duration": m.clipDuration,
		"end":      m.clipEnd,
		"resource": m.clipResource,
		"track":    m.clipTrack,
	}))
	L.SetField(mt, "__tostring", L.NewFunction(m.clipString))

	state.RegisterModule(ModuleName, m.functions())
}

func (m *ProjectModule) functions() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"settings":  m.settings,
		"tracks":    m.tracks,
		"clips":     m.clips,
		"resource":  m.resource,
		"add_track": m.addTrack,
		"add_color": m.addColor,
		"add_media": m.addMedia,
		"add_image": m.addImage,
		"add_clip":  m.addClip,
		"remove":    m.remove,
		"cut":       m.cut,
		"trim":      m.trim,
		"move":      m.move,
		"compose":   m.compose,
	}
}

func (m *ProjectModule) charge(L *lua.LState) {
	if m.sandbox != nil {
		m.sandbox.Charge(L)
	}
}

func (m *ProjectModule) execute(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
	m.edits++
}

// Edits returns the number of edits made through the module.
func (m *ProjectModule) Edits() int {
	return m.edits
}

func (m *ProjectModule) settings(L *lua.LState) int {
	m.charge(L)
	s := m.project.Settings()
	t := L.NewTable()
	t.RawSetString("width", lua.LNumber(s.Width))
	t.RawSetString("height", lua.LNumber(s.Height))
	t.RawSetString("frame_rate", lua.LNumber(s.FrameRate))
	L.Push(t)
	return 1
}

func (m *ProjectModule) tracks(L *lua.LState) int {
	m.charge(L)
	out := L.NewTable()
	for i, tr := range m.project.Timeline().Tracks() {
		t := L.NewTable()
		t.RawSetString("index", lua.LNumber(i+1))
		t.RawSetString("name", lua.LString(tr.DisplayName()))
		t.RawSetString("kind", lua.LString(tr.Kind().String()))
		t.RawSetString("clips", lua.LNumber(tr.Len()))
		out.Append(t)
	}
	L.Push(out)
	return 1
}

// clips returns the clips of a track in time order.
func (m *ProjectModule) clips(L *lua.LState) int {
	m.charge(L)
	tr := m.checkTrack(L, 1)
	out := L.NewTable()
	for _, c := range tr.ClipsInOrder() {
		out.Append(m.pushClip(L, c))
	}
	L.Push(out)
	return 1
}

// resource describes the item with an ID, or returns nil.
func (m *ProjectModule) resource(L *lua.LState) int {
	m.charge(L)
	id := uint64(L.CheckInt64(1))
	item, ok := m.project.Manager().TryGet(id)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	t := L.NewTable()
	t.RawSetString("id", lua.LNumber(item.ID()))
	t.RawSetString("name", lua.LString(item.DisplayName()))
	t.RawSetString("kind", lua.LString(item.FactoryID()))
	t.RawSetString("online", lua.LBool(item.IsOnline()))
	if fb, ok := item.Content().(resource.FileBacked); ok {
		t.RawSetString("path", lua.LString(fb.Path()))
	}
	L.Push(t)
	return 1
}

func (m *ProjectModule) addTrack(L *lua.LState) int {
	m.charge(L)
	kind := timeline.TrackVideo
	switch k := L.CheckString(1); k {
	case "video":
	case "audio":
		kind = timeline.TrackAudio
	default:
		L.ArgError(1, fmt.Sprintf("unknown track kind %q", k))
	}
	tl := m.project.Timeline()
	name := L.OptString(2, fmt.Sprintf("%s %d", kindTitle(kind), tl.Len()+1))
	tr := timeline.NewTrack(kind, name)
	m.execute(L, m.project.Execute(m.project.AddTrack(tr)))
	L.Push(lua.LNumber(tl.IndexOf(tr) + 1))
	return 1
}

func kindTitle(k timeline.TrackKind) string {
	if k == timeline.TrackAudio {
		return "Audio"
	}
	return "Video"
}

func (m *ProjectModule) addItem(L *lua.LState, name string, content resource.Content) int {
	item := resource.NewItem(name, content)
	root := m.project.Manager().Root()
	m.execute(L, m.project.Execute(m.project.AddResource(root, item)))
	L.Push(lua.LNumber(item.ID()))
	return 1
}

func (m *ProjectModule) addColor(L *lua.LState) int {
	m.charge(L)
	name := L.CheckString(1)
	c, err := resource.ParseColor(L.CheckString(2))
	if err != nil {
		L.ArgError(2, err.Error())
	}
	return m.addItem(L, name, c)
}

func (m *ProjectModule) addMedia(L *lua.LState) int {
	m.charge(L)
	path := L.CheckString(1)
	return m.addItem(L, L.OptString(2, filepath.Base(path)), resource.NewMedia(path))
}

func (m *ProjectModule) addImage(L *lua.LState) int {
	m.charge(L)
	path := L.CheckString(1)
	return m.addItem(L, L.OptString(2, filepath.Base(path)), resource.NewImage(path))
}

// addClip places a clip of the kind the track and resource call for.
func (m *ProjectModule) addClip(L *lua.LState) int {
	m.charge(L)
	tr := m.checkTrack(L, 1)
	id := uint64(L.CheckInt64(2))
	begin := checkFrame(L, 3)
	duration := checkFrame(L, 4)

	item, ok := m.project.Manager().TryGet(id)
	if !ok {
		L.ArgError(2, fmt.Sprintf("no resource with id %d", id))
	}
	kind := timeline.KindVideo
	switch {
	case tr.Kind() == timeline.TrackAudio:
		kind = timeline.KindAudio
	case item.FactoryID() == timeline.FactoryComposition:
		kind = timeline.KindComposition
	}

	clip := timeline.NewClip(kind, L.OptString(5, item.DisplayName()), id, frame.New(begin, duration))
	m.execute(L, m.project.Execute(m.project.AddClip(tr, clip)))
	L.Push(m.pushClip(L, clip))
	return 1
}

func (m *ProjectModule) remove(L *lua.LState) int {
	m.charge(L)
	clip := m.checkClip(L, 1)
	m.execute(L, m.project.Execute(m.project.RemoveClip(clip)))
	return 0
}

// cut returns the right half, or nil when the frame is not strictly
// inside the clip.
func (m *ProjectModule) cut(L *lua.LState) int {
	m.charge(L)
	clip := m.checkClip(L, 1)
	f := checkFrame(L, 2)
	if !clip.Span().ContainsExclusive(f) || clip.Track() == nil {
		L.Push(lua.LNil)
		return 1
	}
	m.execute(L, m.project.Execute(m.project.CutClip(clip, f)))
	tr := clip.Track()
	L.Push(m.pushClip(L, tr.At(tr.IndexOf(clip)+1)))
	return 1
}

// trim moves an edge and returns the new duration.
func (m *ProjectModule) trim(L *lua.LState) int {
	m.charge(L)
	clip := m.checkClip(L, 1)
	var left bool
	switch edge := L.CheckString(2); edge {
	case "left":
		left = true
	case "right":
	default:
		L.ArgError(2, fmt.Sprintf("edge must be left or right, got %q", edge))
	}
	offset := L.CheckInt64(3)
	m.execute(L, m.project.Execute(m.project.TrimClip(clip, left, offset)))
	L.Push(lua.LNumber(clip.Duration()))
	return 1
}

// move shifts a clip by delta frames, optionally onto another track.
func (m *ProjectModule) move(L *lua.LState) int {
	m.charge(L)
	clip := m.checkClip(L, 1)
	delta := L.CheckInt64(2)
	var dst *timeline.Track
	if L.GetTop() >= 3 && L.Get(3) != lua.LNil {
		dst = m.checkTrack(L, 3)
	}
	m.execute(L, m.project.Execute(m.project.MoveClip(clip, dst, delta)))
	return 0
}

// compose nests a list of clips into a new composition.
func (m *ProjectModule) compose(L *lua.LState) int {
	m.charge(L)
	name := L.CheckString(1)
	list := L.CheckTable(2)
	var clips []*timeline.Clip
	for i := 1; i <= list.Len(); i++ {
		ud, ok := list.RawGetInt(i).(*lua.LUserData)
		if !ok {
			L.ArgError(2, fmt.Sprintf("element %d is not a clip", i))
		}
		c, ok := ud.Value.(*timeline.Clip)
		if !ok {
			L.ArgError(2, fmt.Sprintf("element %d is not a clip", i))
		}
		clips = append(clips, c)
	}
	cmd := m.project.CreateComposition(clips, m.project.Manager().Root(), name)
	m.execute(L, m.project.Execute(cmd))
	L.Push(m.pushClip(L, cmd.Clip()))
	return 1
}

func (m *ProjectModule) checkTrack(L *lua.LState, n int) *timeline.Track {
	tl := m.project.Timeline()
	i := L.CheckInt(n)
	if i < 1 || i > tl.Len() {
		L.ArgError(n, fmt.Sprintf("track %d out of range [1, %d]", i, tl.Len()))
	}
	return tl.Track(i - 1)
}

func checkFrame(L *lua.LState, n int) uint64 {
	v := L.CheckInt64(n)
	if v < 0 {
		L.ArgError(n, "frame must not be negative")
	}
	return uint64(v)
}

func (m *ProjectModule) pushClip(L *lua.LState, c *timeline.Clip) lua.LValue {
	ud := L.NewUserData()
	ud.Value = c
	L.SetMetatable(ud, L.GetTypeMetatable(clipTypeName))
	return ud
}

func (m *ProjectModule) checkClip(L *lua.LState, n int) *timeline.Clip {
	ud := L.CheckUserData(n)
	c, ok := ud.Value.(*timeline.Clip)
	if !ok {
		L.ArgError(n, "clip expected")
	}
	return c
}

func (m *ProjectModule) clipName(L *lua.LState) int {
	L.Push(lua.LString(m.checkClip(L, 1).DisplayName()))
	return 1
}

func (m *ProjectModule) clipKind(L *lua.LState) int {
	L.Push(lua.LString(m.checkClip(L, 1).Kind().String()))
	return 1
}

func (m *ProjectModule) clipBegin(L *lua.LState) int {
	L.Push(lua.LNumber(m.checkClip(L, 1).Begin()))
	return 1
}

func (m *ProjectModule) clipDuration(L *lua.LState) int {
	L.Push(lua.LNumber(m.checkClip(L, 1).Duration()))
	return 1
}

func (m *ProjectModule) clipEnd(L *lua.LState) int {
	L.Push(lua.LNumber(m.checkClip(L, 1).End()))
	return 1
}

func (m *ProjectModule) clipResource(L *lua.LState) int {
	L.Push(lua.LNumber(m.checkClip(L, 1).ResourceID()))
	return 1
}

// clipTrack returns the 1-based index of the clip's root timeline track,
// or nil.
func (m *ProjectModule) clipTrack(L *lua.LState) int {
	c := m.checkClip(L, 1)
	i := -1
	if tr := c.Track(); tr != nil {
		i = m.project.Timeline().IndexOf(tr)
	}
	if i < 0 {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(i + 1))
	return 1
}

func (m *ProjectModule) clipString(L *lua.LState) int {
	c := m.checkClip(L, 1)
	L.Push(lua.LString(fmt.Sprintf("clip(%s %q %s)", c.Kind(), c.DisplayName(), c.Span())))
	return 1
}
