package reviews

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Review is one user-submitted rating record.
type Review struct {
	Rating    int    `json:"rating"`
	Feedback  string `json:"feedback"`
	User      string `json:"user"`
	Timestamp int64  `json:"timestamp"`
}

// Store is a flat-file append log of reviews. The whole collection lives in
// one JSON array file; appends are read-modify-write under the store mutex.
// A missing or unreadable file reads as an empty collection.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Append adds a review to the end of the log. Feedback defaults to "" and
// user to "Anonymous"; the timestamp is recorded in Unix milliseconds.
func (s *Store) Append(rating int, feedback, user string) (Review, error) {
	if user == "" {
		user = "Anonymous"
	}
	review := Review{
		Rating:    rating,
		Feedback:  feedback,
		User:      user,
		Timestamp: time.Now().UnixMilli(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.readLocked()
	all = append(all, review)

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return Review{}, fmt.Errorf("failed to encode reviews: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return Review{}, fmt.Errorf("failed to write reviews file: %w", err)
	}
	return review, nil
}

// All returns the full ordered collection.
func (s *Store) All() []Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// Count returns the number of stored reviews.
func (s *Store) Count() int {
	return len(s.All())
}

func (s *Store) readLocked() []Review {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return []Review{}
	}
	var all []Review
	if err := json.Unmarshal(data, &all); err != nil {
		return []Review{}
	}
	return all
}
