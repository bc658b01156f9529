// Package save persists playback position and variables.
//
// A Slot stores one Record under one key of a KV backend. Saving replaces
// the record wholesale; loading a missing record is not an error, and a
// record that fails to decode is treated as missing.
package save

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/novella/internal/vars"
)

// DefaultKey is the well-known key the save record lives under.
const DefaultKey = "adv_game_save_data"

// Record is the durable snapshot of a playthrough.
type Record struct {
	SceneID    string   `json:"sceneId"`
	EventIndex int      `json:"eventIndex"`
	Variables  vars.Map `json:"variables"`
}

// KV is a string key/value store. store.Store and MemoryKV implement it.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// MemoryKV is an in-process KV.
//
// Thread-safety: safe for concurrent use via internal mutex.
type MemoryKV struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

func (kv *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.m[key]
	return v, ok, nil
}

func (kv *MemoryKV) Set(_ context.Context, key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.m[key] = value
	return nil
}

func (kv *MemoryKV) Remove(_ context.Context, key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.m, key)
	return nil
}

// Slot reads and writes the save record under a single key.
type Slot struct {
	kv     KV
	key    string
	logger *slog.Logger
}

// SlotOption configures a Slot.
type SlotOption func(*Slot)

// WithKey overrides DefaultKey.
func WithKey(key string) SlotOption {
	return func(s *Slot) {
		s.key = key
	}
}

// WithLogger sets the logger used for corrupt-record diagnostics.
func WithLogger(l *slog.Logger) SlotOption {
	return func(s *Slot) {
		s.logger = l
	}
}

// NewSlot creates a Slot over kv.
func NewSlot(kv KV, opts ...SlotOption) *Slot {
	s := &Slot{
		kv:     kv,
		key:    DefaultKey,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the key the record is stored under.
func (s *Slot) Key() string {
	return s.key
}

// Save overwrites the stored record.
func (s *Slot) Save(ctx context.Context, rec Record) error {
	if rec.Variables == nil {
		rec.Variables = vars.Map{}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode save record: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("write save record: %w", err)
	}
	s.logger.Debug("save record written", "key", s.key, "scene", rec.SceneID, "index", rec.EventIndex)
	return nil
}

// Load returns the stored record.
//
// ok is false when no record exists or the stored record cannot be decoded;
// the latter is logged. err is reserved for backend failures.
func (s *Slot) Load(ctx context.Context) (rec Record, ok bool, err error) {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return Record{}, false, fmt.Errorf("read save record: %w", err)
	}
	if !found {
		return Record{}, false, nil
	}

	rec, err = Decode([]byte(raw))
	if err != nil {
		s.logger.Warn("save record corrupt, treating as absent", "key", s.key, "error", err)
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Has reports whether a record is stored, without decoding it.
func (s *Slot) Has(ctx context.Context) (bool, error) {
	_, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return false, fmt.Errorf("read save record: %w", err)
	}
	return found, nil
}

// Clear removes the stored record.
func (s *Slot) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("remove save record: %w", err)
	}
	return nil
}

// Decode parses a serialized record.
func Decode(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, err
	}
	if rec.SceneID == "" {
		return Record{}, fmt.Errorf("save record has no sceneId")
	}
	if rec.EventIndex < 0 {
		return Record{}, fmt.Errorf("save record has negative eventIndex %d", rec.EventIndex)
	}
	if rec.Variables == nil {
		rec.Variables = vars.Map{}
	}
	return rec, nil
}
