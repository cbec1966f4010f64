// Package cache is the tagged read-through cache in front of public reads.
// Entries are stored under "<tag>|<key>" so a whole tag can be evicted at once.
package cache

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Tags used by the content services. TagSite covers the rendered public root.
const (
	TagSite         = "site"
	TagProfile      = "profile"
	TagProjects     = "projects"
	TagExperiences  = "experiences"
	TagCertificates = "certificates"
	TagSkills       = "skills"
	TagSections     = "sections"
)

const sep = "|"

type Config struct {
	TTL                time.Duration
	CleanupInterval    time.Duration
	RevalidationURL    string
	RevalidationSecret string
}

// ConfigFromEnv reads CACHE_TTL and the optional revalidation webhook.
func ConfigFromEnv() Config {
	ttl := 5 * time.Minute
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		}
	}
	return Config{
		TTL:                ttl,
		CleanupInterval:    2 * ttl,
		RevalidationURL:    os.Getenv("REVALIDATION_URL"),
		RevalidationSecret: os.Getenv("REVALIDATION_SECRET"),
	}
}

// Broadcaster forwards an invalidation beyond this process.
type Broadcaster interface {
	Publish(ctx context.Context, tags []string) error
}

// Store wraps go-cache with tag eviction. A per-tag generation counter stops
// a fetch that raced with an invalidation from caching stale data.
type Store struct {
	c      *gocache.Cache
	logger *zap.SugaredLogger

	mu           sync.Mutex
	generations  map[string]uint64
	broadcasters []Broadcaster
}

func New(cfg Config, logger *zap.SugaredLogger) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 2 * cfg.TTL
	}
	return &Store{
		c:           gocache.New(cfg.TTL, cfg.CleanupInterval),
		logger:      logger,
		generations: map[string]uint64{},
	}
}

// AddBroadcaster registers b for future invalidations.
func (s *Store) AddBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcasters = append(s.broadcasters, b)
}

func (s *Store) generation(tag string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[tag]
}

// setIfCurrent stores v only when tag has not been evicted since gen was read.
// It holds mu so an Evict cannot slip in between the check and the write.
func (s *Store) setIfCurrent(tag, k string, v any, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[tag] == gen {
		s.c.Set(k, v, gocache.DefaultExpiration)
	}
}

// Remember returns the cached value for tag/key or computes and stores it.
func Remember[T any](s *Store, tag, key string, fetch func() (T, error)) (T, error) {
	k := tag + sep + key
	if data, found := s.c.Get(k); found {
		if v, ok := data.(T); ok {
			return v, nil
		}
	}

	gen := s.generation(tag)
	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}
	s.setIfCurrent(tag, k, v, gen)
	return v, nil
}

// Evict drops every local entry under the given tags and returns how many went.
func (s *Store) Evict(tags ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tags {
		s.generations[t]++
	}

	n := 0
	for k := range s.c.Items() {
		for _, t := range tags {
			if strings.HasPrefix(k, t+sep) {
				s.c.Delete(k)
				n++
				break
			}
		}
	}
	return n
}

// Flush drops everything, used when invalidations may have been missed.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for t := range s.generations {
		s.generations[t]++
	}
	s.c.Flush()
}

// Invalidate evicts tags locally and forwards them to every broadcaster.
// Broadcast failures are logged and never returned.
func (s *Store) Invalidate(ctx context.Context, tags ...string) {
	if len(tags) == 0 {
		return
	}
	n := s.Evict(tags...)
	s.logger.Debugw("cache invalidated", "tags", tags, "evicted", n)

	s.mu.Lock()
	bs := append([]Broadcaster(nil), s.broadcasters...)
	s.mu.Unlock()
	for _, b := range bs {
		if err := b.Publish(ctx, tags); err != nil {
			s.logger.Warnw("cache broadcast failed", "tags", tags, "err", err)
		}
	}
}
