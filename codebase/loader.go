package codebase

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ahrtr/gocontainer/set"
	"github.com/edwingeng/deque"
	"github.com/segmentio/fasthash/fnv1a"
	"github.com/zeebo/blake3"

	"github.com/pgavlin/weave/codec"
	"github.com/pgavlin/weave/term"
)

const shardCount = 16

func digest(b []byte) string {
	h := blake3.New()
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil))
}

type entry struct {
	term   term.ABT
	digest string
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// Option configures a Loader.
type Option func(*Loader)

func WithLogger(l *slog.Logger) Option {
	return func(ld *Loader) { ld.log = l }
}

// Loader decodes definitions from a Source and memoizes the results. It is
// safe for concurrent use.
type Loader struct {
	source Source
	log    *slog.Logger
	shards [shardCount]shard

	hits, misses atomic.Int64
}

// Stats reports the effectiveness of a Loader's cache.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
}

func NewLoader(source Source, opts ...Option) *Loader {
	l := &Loader{source: source, log: slog.Default()}
	for i := range l.shards {
		l.shards[i].entries = map[string]*entry{}
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Loader) shard(hash string) *shard {
	return &l.shards[fnv1a.HashString64(hash)%shardCount]
}

func (l *Loader) cached(hash string) (*entry, bool) {
	s := l.shard(hash)
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[hash]
	return e, ok
}

func (l *Loader) store(hash string, e *entry) {
	s := l.shard(hash)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[hash] = e
}

func (l *Loader) decode(hash string) (*entry, error) {
	compiled, err := l.source.Fetch(hash)
	if err != nil {
		return nil, err
	}
	a, err := codec.DecodeTerm(compiled, codec.WithLogger(l.log))
	if err != nil {
		return nil, fmt.Errorf("decoding #%s: %w", hash, err)
	}
	return &entry{term: a, digest: digest(compiled)}, nil
}

// Load returns the decoded definition of hash.
func (l *Loader) Load(hash string) (term.ABT, error) {
	if e, ok := l.cached(hash); ok {
		l.hits.Add(1)
		return e.term, nil
	}
	l.misses.Add(1)

	e, err := l.decode(hash)
	if err != nil {
		return nil, err
	}
	l.log.Debug("loaded", slog.String("hash", hash), slog.String("digest", e.digest))
	l.store(hash, e)
	return e.term, nil
}

// Invalidate drops the cached definition of hash, if any.
func (l *Loader) Invalidate(hash string) {
	s := l.shard(hash)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, hash)
}

// Refresh re-reads hash from the source. The cached tree is kept if the
// bytes are unchanged; changed reports whether it was replaced.
func (l *Loader) Refresh(hash string) (changed bool, err error) {
	compiled, err := l.source.Fetch(hash)
	if err != nil {
		l.Invalidate(hash)
		return false, err
	}
	d := digest(compiled)
	if e, ok := l.cached(hash); ok && e.digest == d {
		return false, nil
	}

	a, err := codec.DecodeTerm(compiled, codec.WithLogger(l.log))
	if err != nil {
		l.Invalidate(hash)
		return false, fmt.Errorf("decoding #%s: %w", hash, err)
	}
	l.store(hash, &entry{term: a, digest: d})
	return true, nil
}

func (l *Loader) Stats() Stats {
	entries := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.RLock()
		entries += len(s.entries)
		s.mu.RUnlock()
	}
	return Stats{Hits: l.hits.Load(), Misses: l.misses.Load(), Entries: entries}
}

// Prefetch loads hash and every definition it transitively depends on,
// breadth first. It returns the hashes in the order they were visited,
// starting with hash itself.
func (l *Loader) Prefetch(hash string) ([]string, error) {
	visited := set.New()
	visited.Add(hash)

	queue := deque.NewDeque()
	queue.PushBack(hash)

	var order []string
	for !queue.Empty() {
		h := queue.PopFront().(string)
		order = append(order, h)

		a, err := l.Load(h)
		if err != nil {
			return order, err
		}
		for _, dep := range term.Dependencies(a) {
			d := dep.Hash.String()
			if visited.Contains(d) {
				continue
			}
			visited.Add(d)
			queue.PushBack(d)
		}
	}
	return order, nil
}
