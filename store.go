package assetcache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Backend is the pluggable byte-oriented persistence seam a Store is built
// on: Get/Set/Delete(ctx, key) plus Keys, so Store can rebuild its
// in-memory LRU/expiry index when it opens an existing backend.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys enumerates every stored key. A backend that cannot enumerate
	// efficiently (e.g. freestore) may return ErrEnumerationUnsupported;
	// OpenStore then starts with an empty index, so entries already in the
	// backend are invisible to Prune and are left to whatever eviction the
	// backend itself performs. Entries Put through the Store are still
	// indexed and pruned.
	Keys(ctx context.Context) ([]string, error)
}

// indexMeta is the in-memory bookkeeping Store keeps per key so Prune can
// enforce size/count bounds without asking the Backend to sort by access
// time, something most backend implementations cannot do natively.
type indexMeta struct {
	expiry       time.Time
	lastAccessed time.Time
	size         int64
}

// Store is a key -> CacheEntry map backed by a pluggable Backend, bounded
// by MaxBytes/MaxEntries and pruned of expired and then least-recently-used
// entries. A single mutex guards the index; a global lock is an acceptable
// implementation at this scale.
type Store struct {
	mu      sync.Mutex
	backend Backend
	index   map[string]*indexMeta
	totalB  int64

	maxBytes    int64
	maxEntries  int
	maxBodySize int64
	security    *securityConfig
	metrics     MetricsRecorder
}

// StoreOption configures a Store at construction.
type StoreOption func(*Store)

// WithMaxBytes bounds the store's total tracked size. 0 means unbounded.
func WithMaxBytes(n int64) StoreOption { return func(s *Store) { s.maxBytes = n } }

// WithMaxEntries bounds the store's entry count. 0 means unbounded.
func WithMaxEntries(n int) StoreOption { return func(s *Store) { s.maxEntries = n } }

// WithMaxBodySize rejects Put for any entry whose response body exceeds n
// bytes, returning ErrBodyTooLarge instead of writing it. 0 means unbounded.
func WithMaxBodySize(n int64) StoreOption { return func(s *Store) { s.maxBodySize = n } }

// WithStoreSecurity enables SHA-256 key hashing and, if a passphrase is
// set, AES-256-GCM encryption of stored bytes (security.go).
func WithStoreSecurity(sec *securityConfig) StoreOption { return func(s *Store) { s.security = sec } }

// WithStoreMetrics attaches a MetricsRecorder (metrics.go) observing store
// operations.
func WithStoreMetrics(m MetricsRecorder) StoreOption { return func(s *Store) { s.metrics = m } }

// OpenStore builds a Store over backend, scanning its existing keys to
// rebuild the in-memory index. Corrupt records (undecodable envelopes) are
// skipped and opportunistically deleted; Open never fails because of
// in-band corruption.
func OpenStore(ctx context.Context, backend Backend, opts ...StoreOption) (*Store, error) {
	s := &Store{
		backend: backend,
		index:   make(map[string]*indexMeta),
	}
	for _, o := range opts {
		o(s)
	}

	keys, err := backend.Keys(ctx)
	if err != nil {
		if err == ErrEnumerationUnsupported {
			return s, nil
		}
		return nil, &StorageError{Err: err}
	}
	for _, key := range keys {
		raw, found, err := backend.Get(ctx, s.backendKey(key))
		if err != nil || !found {
			continue
		}
		entry, err := s.decode(raw)
		if err != nil {
			GetLogger().Warn("skipping corrupt cache entry", "key", key, "error", err)
			_ = backend.Delete(ctx, s.backendKey(key))
			continue
		}
		s.index[key] = &indexMeta{expiry: entry.ExpiryTime, lastAccessed: entry.LastAccessed, size: entry.Size()}
		s.totalB += entry.Size()
	}
	return s, nil
}

// Get returns the entry stored under key. A Backend error or a corrupt
// record is treated as a miss and logged, never surfaced to the caller.
func (s *Store) Get(ctx context.Context, key string) (*CacheEntry, bool, error) {
	raw, found, err := s.backend.Get(ctx, s.backendKey(key))
	if err != nil {
		GetLogger().Warn("cache backend get failed", "key", key, "error", err)
		s.recordOp("get", false)
		return nil, false, nil
	}
	if !found {
		s.recordOp("get", false)
		return nil, false, nil
	}
	entry, err := s.decode(raw)
	if err != nil {
		GetLogger().Warn("skipping corrupt cache entry", "key", key, "error", err)
		_ = s.backend.Delete(ctx, s.backendKey(key))
		s.recordOp("get", false)
		return nil, false, nil
	}

	s.mu.Lock()
	entry.LastAccessed = time.Now()
	if meta, ok := s.index[key]; ok {
		meta.lastAccessed = entry.LastAccessed
	}
	s.mu.Unlock()

	s.recordOp("get", true)
	return entry, true, nil
}

// Put writes entry under key, updating the index and growing totalB. A
// Backend write failure returns a *StorageError wrapping ErrStorage; the
// caller (CachingTransport) logs and ignores it rather than failing the
// in-flight request. An entry whose response body exceeds MaxBodySize is
// rejected with ErrBodyTooLarge before anything is written.
func (s *Store) Put(ctx context.Context, key string, entry *CacheEntry) error {
	if s.maxBodySize > 0 && int64(len(entry.Response.Body)) > s.maxBodySize {
		s.recordOp("put", false)
		return ErrBodyTooLarge
	}

	raw, err := s.encode(entry)
	if err != nil {
		return &StorageError{Key: key, Err: err}
	}
	if err := s.backend.Set(ctx, s.backendKey(key), raw); err != nil {
		s.recordOp("put", false)
		return &StorageError{Key: key, Err: err}
	}

	size := entry.Size()
	s.mu.Lock()
	if old, ok := s.index[key]; ok {
		s.totalB -= old.size
	}
	s.index[key] = &indexMeta{expiry: entry.ExpiryTime, lastAccessed: entry.LastAccessed, size: size}
	s.totalB += size
	s.mu.Unlock()

	s.recordOp("put", true)
	return nil
}

// Prune removes every expired entry, then (if still over a configured
// bound) the least-recently-used entries until both MaxBytes and
// MaxEntries are satisfied: expired-first, then size/count LRU.
func (s *Store) Prune(ctx context.Context) error {
	now := time.Now()

	s.mu.Lock()
	var expired []string
	for key, meta := range s.index {
		if now.After(meta.expiry) {
			expired = append(expired, key)
		}
	}
	s.mu.Unlock()

	for _, key := range expired {
		if err := s.Delete(ctx, key); err != nil {
			GetLogger().Warn("prune: failed to delete expired entry", "key", key, "error", err)
		}
	}

	for {
		s.mu.Lock()
		overBytes := s.maxBytes > 0 && s.totalB > s.maxBytes
		overCount := s.maxEntries > 0 && len(s.index) > s.maxEntries
		if !overBytes && !overCount {
			bytes, entries := s.totalB, len(s.index)
			s.mu.Unlock()
			if s.metrics != nil {
				s.metrics.ObserveStoreSize(bytes, entries)
			}
			return nil
		}
		victim := s.oldestLocked()
		s.mu.Unlock()
		if victim == "" {
			return nil
		}
		if err := s.Delete(ctx, victim); err != nil {
			GetLogger().Warn("prune: failed to evict LRU entry", "key", victim, "error", err)
			return err
		}
	}
}

// oldestLocked returns the least-recently-accessed key. Caller holds s.mu.
func (s *Store) oldestLocked() string {
	var oldestKey string
	var oldestAt time.Time
	for key, meta := range s.index {
		if oldestKey == "" || meta.lastAccessed.Before(oldestAt) {
			oldestKey, oldestAt = key, meta.lastAccessed
		}
	}
	return oldestKey
}

// Delete removes key from both the backend and the index.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, s.backendKey(key)); err != nil {
		return &StorageError{Key: key, Err: err}
	}
	s.mu.Lock()
	if meta, ok := s.index[key]; ok {
		s.totalB -= meta.size
		delete(s.index, key)
	}
	s.mu.Unlock()
	return nil
}

// Clear removes every entry the Store knows about.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	keys := make([]string, 0, len(s.index))
	for key := range s.index {
		keys = append(keys, key)
	}
	s.mu.Unlock()

	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) recordOp(op string, hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveCacheOp(op, hit)
	}
}

func (s *Store) backendKey(key string) string {
	if s.security != nil {
		return s.security.hashKey(key)
	}
	return key
}

// encode serializes entry as JSON for the Backend, encrypting it when
// security is configured.
func (s *Store) encode(entry *CacheEntry) ([]byte, error) {
	raw, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	if s.security != nil {
		return s.security.encrypt(raw)
	}
	return raw, nil
}

func (s *Store) decode(raw []byte) (*CacheEntry, error) {
	if s.security != nil {
		plain, err := s.security.decrypt(raw)
		if err != nil {
			return nil, err
		}
		raw = plain
	}
	var entry CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
