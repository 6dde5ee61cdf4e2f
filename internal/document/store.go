package document

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Store is the registry of open documents.
type Store struct {
	mu      sync.RWMutex
	docs    map[string]*Buffer
	active  string
	onClose []func(id string)
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*Buffer)}
}

// Open registers a new document with a fresh id and makes it active.
func (s *Store) Open(text string, opts ...Option) *Buffer {
	b := NewBuffer(uuid.NewString(), text, opts...)
	s.mu.Lock()
	s.docs[b.id] = b
	s.active = b.id
	s.mu.Unlock()
	return b
}

// OpenFile opens the file at path as a new document.
func (s *Store) OpenFile(path string, opts ...Option) (*Buffer, error) {
	b := NewBuffer(uuid.NewString(), "", opts...)
	if err := b.Load(path); err != nil {
		return nil, err
	}
	b.revision = 0

	s.mu.Lock()
	s.docs[b.id] = b
	s.active = b.id
	s.mu.Unlock()
	return b, nil
}

// Get returns an open document.
func (s *Store) Get(id string) (*Buffer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.docs[id]
	return b, ok
}

// LineCount returns the line count of an open document.
func (s *Store) LineCount(id string) (int, bool) {
	b, ok := s.Get(id)
	if !ok {
		return 0, false
	}
	return b.LineCount(), true
}

// Len returns the number of open documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Active returns the active document.
func (s *Store) Active() (*Buffer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.docs[s.active]
	return b, ok
}

// SetActive makes an open document active.
func (s *Store) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("activate %s: %w", id, ErrNotFound)
	}
	s.active = id
	return nil
}

// OnClose registers a callback run after a document is closed.
func (s *Store) OnClose(fn func(id string)) {
	s.mu.Lock()
	s.onClose = append(s.onClose, fn)
	s.mu.Unlock()
}

// Close removes a document from the store.
func (s *Store) Close(id string) error {
	s.mu.Lock()
	if _, ok := s.docs[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("close %s: %w", id, ErrNotFound)
	}
	delete(s.docs, id)
	if s.active == id {
		s.active = ""
	}
	callbacks := s.onClose
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(id)
	}
	return nil
}
