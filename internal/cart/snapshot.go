package cart

import "clubstore/internal/domain"

// Snapshot is the serialisable state of a Store.
type Snapshot struct {
	Lines  []domain.CartLine `json:"lines"`
	IsOpen bool              `json:"isOpen"`
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]domain.CartLine, len(s.lines))
	copy(lines, s.lines)
	return Snapshot{Lines: lines, IsOpen: s.isOpen}
}

// Restore replaces the store contents with snap. Lines with a non-positive
// quantity and duplicate products are dropped so the store invariants hold
// regardless of what was persisted.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(snap.Lines))
	lines := make([]domain.CartLine, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		if l.Quantity <= 0 || l.ProductID == "" {
			continue
		}
		if _, dup := seen[l.ProductID]; dup {
			continue
		}
		seen[l.ProductID] = struct{}{}
		lines = append(lines, l)
	}
	s.lines = lines
	s.isOpen = snap.IsOpen
	s.version++
}
