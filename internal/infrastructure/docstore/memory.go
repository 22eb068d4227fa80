package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and local development.
// Documents are kept in insertion order per collection so unordered listings
// stay deterministic.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	docs  map[string]Document
	order []string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

func (s *MemoryStore) collection(name string) *memCollection {
	col, ok := s.collections[name]
	if !ok {
		col = &memCollection{docs: make(map[string]Document)}
		s.collections[name] = col
	}
	return col
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[collection]
	if !ok {
		return nil, ErrNotFound
	}
	doc, ok := col.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (s *MemoryStore) Set(_ context.Context, collection, id string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(collection, id, doc)
	return nil
}

func (s *MemoryStore) set(collection, id string, doc Document) {
	col := s.collection(collection)
	if _, exists := col.docs[id]; !exists {
		col.order = append(col.order, id)
	}
	col.docs[id] = cloneDoc(doc)
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, fields Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(collection, id, fields)
}

func (s *MemoryStore) update(collection, id string, fields Document) error {
	col, ok := s.collections[collection]
	if !ok {
		return ErrNotFound
	}
	doc, ok := col.docs[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delete(collection, id)
	return nil
}

func (s *MemoryStore) delete(collection, id string) {
	col, ok := s.collections[collection]
	if !ok {
		return
	}
	if _, exists := col.docs[id]; !exists {
		return
	}
	delete(col.docs, id)
	for i, key := range col.order {
		if key == id {
			col.order = append(col.order[:i], col.order[i+1:]...)
			break
		}
	}
}

func (s *MemoryStore) List(_ context.Context, collection string, q Query) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil, nil
	}

	var matched []Document
	for _, id := range col.order {
		doc := col.docs[id]
		if matchesFilters(doc, q.Filters) {
			matched = append(matched, cloneDoc(doc))
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			cmp := compareValues(matched[i][q.OrderBy], matched[j][q.OrderBy])
			if q.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (s *MemoryStore) Count(_ context.Context, collection string, filters []Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return 0, nil
	}
	if len(filters) == 0 {
		return len(col.docs), nil
	}
	count := 0
	for _, doc := range col.docs {
		if matchesFilters(doc, filters) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) RunBatch(_ context.Context, writes []Write) error {
	if len(writes) > MaxBatchWrites {
		return fmt.Errorf("batch of %d writes exceeds transaction limit of %d", len(writes), MaxBatchWrites)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate updates up front so the batch applies all-or-nothing.
	for _, w := range writes {
		if w.Op == OpUpdate {
			col, ok := s.collections[w.Collection]
			if !ok {
				return ErrNotFound
			}
			if _, ok := col.docs[w.ID]; !ok {
				return ErrNotFound
			}
		}
	}

	for _, w := range writes {
		switch w.Op {
		case OpSet:
			s.set(w.Collection, w.ID, w.Doc)
		case OpUpdate:
			if err := s.update(w.Collection, w.ID, w.Doc); err != nil {
				return err
			}
		case OpDelete:
			s.delete(w.Collection, w.ID)
		}
	}
	return nil
}

func (s *MemoryStore) DeleteCollection(_ context.Context, collection string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		return 0, nil
	}
	count := len(col.docs)
	delete(s.collections, collection)
	return count, nil
}

func cloneDoc(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func matchesFilters(doc Document, filters []Filter) bool {
	for _, f := range filters {
		if compareValues(doc[f.Field], f.Value) != 0 {
			return false
		}
	}
	return true
}

// compareValues orders two document values. Numbers compare numerically,
// strings lexically (case-insensitive), booleans false<true; nil sorts first.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}

	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case !ab && bb:
				return -1
			case ab && !bb:
				return 1
			}
			return 0
		}
	}

	return strings.Compare(
		strings.ToLower(fmt.Sprintf("%v", a)),
		strings.ToLower(fmt.Sprintf("%v", b)),
	)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
