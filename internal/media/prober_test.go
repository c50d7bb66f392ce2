package media

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/dshills/splice/internal/project/vfs"
)

func newFS(t *testing.T, files map[string]string) *vfs.MemFS {
	t.Helper()
	fsys := vfs.NewMemFS()
	for p, content := range files {
		if err := fsys.AddFile(p, []byte(content)); err != nil {
			t.Fatalf("AddFile(%s): %v", p, err)
		}
	}
	return fsys
}

func TestFingerprintMatchesOneShotHash(t *testing.T) {
	data := bytes.Repeat([]byte("frame"), chunkSize/3)
	fp, n, err := Fingerprint(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len(data)) {
		t.Errorf("n = %d, want %d", n, len(data))
	}
	if want := xxh3.Hash(data); fp != want {
		t.Errorf("fingerprint = %x, want %x", fp, want)
	}
}

func TestFingerprintCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Fingerprint(ctx, bytes.NewReader([]byte("x"))); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestProbe(t *testing.T) {
	fsys := newFS(t, map[string]string{"/media/a.mov": "aaaa"})
	fsys.MkdirAll("/media/dir", 0o755)
	p := NewProber(fsys)
	ctx := context.Background()

	tests := []struct {
		name    string
		path    string
		exists  bool
		wantErr bool
	}{
		{"present", "/media/a.mov", true, false},
		{"missing", "/media/b.mov", false, false},
		{"directory", "/media/dir", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Probe(ctx, tt.path)
			if res.Exists != tt.exists {
				t.Errorf("Exists = %v, want %v", res.Exists, tt.exists)
			}
			if (res.Err != nil) != tt.wantErr {
				t.Errorf("Err = %v, wantErr %v", res.Err, tt.wantErr)
			}
			if tt.exists && res.Fingerprint != xxh3.HashString("aaaa") {
				t.Errorf("Fingerprint = %x", res.Fingerprint)
			}
		})
	}
}

func TestProbeCachesBySizeAndModTime(t *testing.T) {
	fsys := newFS(t, map[string]string{"/a.mov": "one"})
	mod := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fsys.SetModTime("/a.mov", mod)
	p := NewProber(fsys, WithCacheTTL(time.Minute))
	ctx := context.Background()

	first := p.Probe(ctx, "/a.mov")
	if first.Cached {
		t.Fatal("first probe should hash the file")
	}
	second := p.Probe(ctx, "/a.mov")
	if !second.Cached || second.Fingerprint != first.Fingerprint {
		t.Fatalf("second probe = %+v, want cached hit", second)
	}

	fsys.WriteFile("/a.mov", []byte("two!"), 0o644)
	third := p.Probe(ctx, "/a.mov")
	if third.Cached {
		t.Error("modified file should be rehashed")
	}
	if third.Fingerprint == first.Fingerprint {
		t.Error("fingerprint should change with content")
	}

	stats := p.Stats()
	if stats.Probes != 3 || stats.CacheHits != 1 || stats.BytesHashed != 7 {
		t.Errorf("stats = %+v", stats)
	}

	p.Invalidate()
	if p.Probe(ctx, "/a.mov").Cached {
		t.Error("Invalidate should drop cached fingerprints")
	}
}

func TestProbeAllKeepsOrder(t *testing.T) {
	files := map[string]string{}
	var paths []string
	for _, name := range []string{"/m/a", "/m/b", "/m/c", "/m/d", "/m/e"} {
		files[name] = name
		paths = append(paths, name)
	}
	paths = append(paths, "/m/missing")
	p := NewProber(newFS(t, files), WithWorkers(3))

	results := p.ProbeAll(context.Background(), paths)
	if len(results) != len(paths) {
		t.Fatalf("len = %d", len(results))
	}
	for i, res := range results {
		if res.Path != paths[i] {
			t.Errorf("results[%d].Path = %q, want %q", i, res.Path, paths[i])
		}
		if want := paths[i] != "/m/missing"; res.Exists != want {
			t.Errorf("%s: Exists = %v", res.Path, res.Exists)
		}
	}
}

func TestProbeAllCancelled(t *testing.T) {
	p := NewProber(newFS(t, map[string]string{"/a": "a"}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := p.ProbeAll(ctx, []string{"/a", "/a", "/a"})
	for _, res := range results {
		if res.Exists && res.Err != nil {
			t.Errorf("result has both content and error: %+v", res)
		}
	}
	if len(p.ProbeAll(context.Background(), nil)) != 0 {
		t.Error("empty input should give empty output")
	}
}
