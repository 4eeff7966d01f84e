package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

var ErrNotFound = errors.New("not found")

// Issue is one mock tracker record.
type Issue struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Status   string   `json:"status"`
	Priority string   `json:"priority"`
	Tags     []string `json:"tags,omitempty"`
}

// Store keeps the issue list in a single JSON file behind a mutex.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Init writes the seed issues when the file does not exist yet.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}

	return s.save([]Issue{
		{
			ID:       "ISSUE-1",
			Title:    "Investigate shipping delays for ORD-2038",
			Status:   "open",
			Priority: "high",
			Tags:     []string{"shipping", "sla"},
		},
		{
			ID:       "ISSUE-2",
			Title:    "Inventory discrepancy for BRAC-301",
			Status:   "in_progress",
			Priority: "medium",
			Tags:     []string{"inventory"},
		},
	})
}

func (s *Store) Get(id string) (Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issues, err := s.load()
	if err != nil {
		return Issue{}, err
	}
	for _, issue := range issues {
		if issue.ID == id {
			return issue, nil
		}
	}
	return Issue{}, fmt.Errorf("issue %s: %w", id, ErrNotFound)
}

// List returns issues in stored order, optionally filtered by status.
func (s *Store) List(status string, limit int) ([]Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issues, err := s.load()
	if err != nil {
		return nil, err
	}

	filtered := issues[:0]
	for _, issue := range issues {
		if status == "" || issue.Status == status {
			filtered = append(filtered, issue)
		}
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// Create appends a new open issue and persists it.
func (s *Store) Create(title, priority string) (Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issues, err := s.load()
	if err != nil {
		return Issue{}, err
	}

	issue := Issue{
		ID:       fmt.Sprintf("ISSUE-%d", len(issues)+1),
		Title:    title,
		Status:   "open",
		Priority: priority,
	}
	if err := s.save(append(issues, issue)); err != nil {
		return Issue{}, err
	}
	return issue, nil
}

func (s *Store) load() ([]Issue, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	var issues []Issue
	if err := json.Unmarshal(raw, &issues); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return issues, nil
}

func (s *Store) save(issues []Issue) error {
	raw, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		return fmt.Errorf("encode issues: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
