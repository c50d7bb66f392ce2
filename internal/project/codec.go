package project

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"github.com/dshills/splice/internal/engine/resource"
	"github.com/dshills/splice/internal/engine/timeline"
	"github.com/dshills/splice/internal/rbe"
)

// Envelope constants.
const (
	Magic         = "SPLC"
	FormatVersion = 1

	headerSize  = len(Magic) + 4
	trailerSize = 8
)

// Body keys.
const (
	keySettings        = "Settings"
	keyResourceManager = "ResourceManager"
	keyTimeline        = "Timeline"
	keyProjectID       = "ProjectId"
)

// Encode serializes the project into the file envelope.
func Encode(p *Project) ([]byte, error) {
	body := rbe.NewDict()
	body.SetString(keyProjectID, p.id.String())
	p.settings.writeRBE(body.CreateDict(keySettings))
	if err := p.manager.WriteRBE(body.CreateDict(keyResourceManager)); err != nil {
		return nil, fmt.Errorf("encode resources: %w", err)
	}
	if err := p.timeline.WriteRBE(body.CreateDict(keyTimeline)); err != nil {
		return nil, fmt.Errorf("encode timeline: %w", err)
	}

	data, err := rbe.Marshal(body)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(headerSize + len(data) + trailerSize)
	buf.WriteString(Magic)
	buf.Write(binary.LittleEndian.AppendUint32(nil, FormatVersion))
	buf.Write(data)
	buf.Write(binary.LittleEndian.AppendUint64(nil, xxh3.Hash(data)))
	return buf.Bytes(), nil
}

// Decode builds a project from file bytes. The envelope is verified
// before any resource is registered.
func Decode(data []byte, reg *Registry, opts ...Option) (*Project, error) {
	body, err := openEnvelope(data)
	if err != nil {
		return nil, err
	}
	root, err := rbe.UnmarshalDict(body)
	if err != nil {
		return nil, &FormatError{Section: "body", Err: err}
	}

	o := buildOptions(opts)
	if sd, ok := root.TryGetDict(keySettings); ok {
		o.settings = readSettings(sd)
	}

	md, err := root.GetDict(keyResourceManager)
	if err != nil {
		return nil, &FormatError{Section: keyResourceManager, Err: err}
	}
	m := resource.NewManager(managerOptions(o)...)
	if err := m.ReadRBE(md, reg.Resources); err != nil {
		return nil, &FormatError{Section: keyResourceManager, Err: err}
	}

	td, err := root.GetDict(keyTimeline)
	if err != nil {
		m.Clear()
		return nil, &FormatError{Section: keyTimeline, Err: err}
	}
	tl, err := timeline.ReadTimeline(td)
	if err != nil {
		m.Clear()
		return nil, &FormatError{Section: keyTimeline, Err: err}
	}

	p := newProject(o, m, tl)
	if s, ok := root.TryGetString(keyProjectID); ok {
		if id, err := uuid.Parse(s); err == nil {
			p.id = id
		}
	}
	return p, nil
}

func openEnvelope(data []byte) ([]byte, error) {
	if len(data) < headerSize+trailerSize {
		if len(data) >= len(Magic) && string(data[:len(Magic)]) != Magic {
			return nil, &FormatError{Section: "header", Err: ErrBadMagic}
		}
		return nil, &FormatError{Section: "header", Err: ErrTruncated}
	}
	if string(data[:len(Magic)]) != Magic {
		return nil, &FormatError{Section: "header", Err: ErrBadMagic}
	}
	if v := binary.LittleEndian.Uint32(data[len(Magic):headerSize]); v == 0 || v > FormatVersion {
		return nil, &FormatError{Section: "header", Err: fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)}
	}
	body := data[headerSize : len(data)-trailerSize]
	sum := binary.LittleEndian.Uint64(data[len(data)-trailerSize:])
	if xxh3.Hash(body) != sum {
		return nil, &FormatError{Section: "checksum", Err: ErrChecksumMismatch}
	}
	return body, nil
}
