package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/zeebo/xxh3"

	"github.com/dshills/splice/internal/project/vfs"
)

// Defaults for NewProber.
const (
	DefaultWorkers  = 4
	DefaultCacheTTL = 5 * time.Minute
)

// ErrNotRegular is reported for paths that exist but are not regular files.
var ErrNotRegular = errors.New("not a regular file")

// Result is the outcome of probing one file.
type Result struct {
	Path string

	// Exists is true if the path is a readable regular file.
	Exists bool

	Size    int64
	ModTime time.Time

	// Fingerprint is the xxh3 hash of the content, 0 when Exists is false.
	Fingerprint uint64

	// Cached is true if the fingerprint came from the cache.
	Cached bool

	// Err is the failure for a file that could not be read. Missing files
	// are not errors.
	Err error
}

// Stats counts prober activity.
type Stats struct {
	Probes      int64
	CacheHits   int64
	BytesHashed int64
}

// Prober stats and fingerprints files. It is safe for concurrent use.
type Prober struct {
	fs      vfs.Reader
	cache   *cache.Cache
	workers int

	probes      atomic.Int64
	cacheHits   atomic.Int64
	bytesHashed atomic.Int64
}

// Option configures a Prober.
type Option func(*Prober)

// WithWorkers sets the number of concurrent probes in ProbeAll.
func WithWorkers(n int) Option {
	return func(p *Prober) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithCacheTTL sets how long fingerprints stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Prober) {
		if ttl > 0 {
			p.cache = cache.New(ttl, 2*ttl)
		}
	}
}

// NewProber creates a prober reading from fsys.
func NewProber(fsys vfs.Reader, opts ...Option) *Prober {
	p := &Prober{
		fs:      fsys,
		cache:   cache.New(DefaultCacheTTL, 2*DefaultCacheTTL),
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe checks a single file.
func (p *Prober) Probe(ctx context.Context, path string) Result {
	p.probes.Add(1)
	res := Result{Path: path}

	info, err := p.fs.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			res.Err = err
		}
		return res
	}
	if info.IsDir() {
		res.Err = fmt.Errorf("%s: %w", path, ErrNotRegular)
		return res
	}
	res.Size = info.Size()
	res.ModTime = info.ModTime()

	key := cacheKey(path, res.Size, res.ModTime)
	if fp, ok := p.cache.Get(key); ok {
		p.cacheHits.Add(1)
		res.Exists = true
		res.Fingerprint = fp.(uint64)
		res.Cached = true
		return res
	}

	fp, n, err := p.hashFile(ctx, path)
	p.bytesHashed.Add(n)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			res.Err = err
		}
		return res
	}
	p.cache.Set(key, fp, cache.DefaultExpiration)
	res.Exists = true
	res.Fingerprint = fp
	return res
}

// ProbeAll checks paths on the worker pool. Results are in the order of
// paths. A cancelled context stops the remaining probes; their results
// carry the context error.
func (p *Prober) ProbeAll(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range min(p.workers, max(len(paths), 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.Probe(ctx, paths[i])
			}
		}()
	}

	next := 0
feed:
	for ; next < len(paths); next++ {
		select {
		case jobs <- next:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(paths); i++ {
		results[i] = Result{Path: paths[i], Err: ctx.Err()}
	}
	return results
}

// Invalidate drops cached fingerprints. Entries are keyed by size and
// modification time, so this is only needed when those can lie.
func (p *Prober) Invalidate() {
	p.cache.Flush()
}

// Stats returns prober counters.
func (p *Prober) Stats() Stats {
	return Stats{
		Probes:      p.probes.Load(),
		CacheHits:   p.cacheHits.Load(),
		BytesHashed: p.bytesHashed.Load(),
	}
}

func (p *Prober) hashFile(ctx context.Context, path string) (uint64, int64, error) {
	f, err := p.fs.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	return Fingerprint(ctx, f)
}

const chunkSize = 64 * 1024

// Fingerprint hashes r with xxh3, checking ctx between chunks. It returns
// the hash and the number of bytes read.
func Fingerprint(ctx context.Context, r io.Reader) (uint64, int64, error) {
	h := xxh3.New()
	buf := make([]byte, chunkSize)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return 0, total, err
		}
		n, err := r.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n])
			total += int64(n)
		}
		if err == io.EOF {
			return h.Sum64(), total, nil
		}
		if err != nil {
			return 0, total, err
		}
	}
}

func cacheKey(path string, size int64, mod time.Time) string {
	return fmt.Sprintf("%s|%d|%d", path, size, mod.UnixNano())
}
