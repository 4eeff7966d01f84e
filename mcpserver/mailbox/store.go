package mailbox

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Email is one mock mailbox record. Direction is "in" for received mail
// and "out" for sent mail.
type Email struct {
	ID        string `json:"id"`
	Direction string `json:"direction"`
	From      string `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

// Store keeps the mailbox in a single JSON file. Access is serialized so
// concurrent tool calls cannot interleave read-modify-write cycles.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Init writes the seed mailbox when the file does not exist yet.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}

	seeded := "2025-02-01T13:00:00Z"
	return s.save([]Email{
		{
			ID:        "EMAIL-1",
			Direction: "in",
			From:      "lisa.park@example.com",
			To:        "support@jewelryops.test",
			Subject:   "Re: Order ORD-2038 still not delivered",
			Body:      "Hi, my order ORD-2038 is still late. Can you check what happened?",
			CreatedAt: seeded,
		},
		{
			ID:        "EMAIL-2",
			Direction: "out",
			From:      "support@jewelryops.test",
			To:        "ops-team@jewelryops.test",
			Subject:   "Inventory discrepancy BRAC-301",
			Body:      "We saw a discrepancy for BRAC-301. Please confirm latest physical count.",
			CreatedAt: seeded,
		},
	})
}

// List returns emails newest first, optionally filtered by direction.
func (s *Store) List(direction string, limit int) ([]Email, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emails, err := s.load()
	if err != nil {
		return nil, err
	}

	filtered := emails[:0]
	for _, e := range emails {
		if direction == "" || e.Direction == direction {
			filtered = append(filtered, e)
		}
	}
	return newestFirst(filtered, limit), nil
}

// Search matches the query against subject and body, case-insensitive.
func (s *Store) Search(query string, limit int) ([]Email, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emails, err := s.load()
	if err != nil {
		return nil, err
	}

	matches := emails[:0]
	for _, e := range emails {
		if containsFold(e.Subject, query) || containsFold(e.Body, query) {
			matches = append(matches, e)
		}
	}
	return newestFirst(matches, limit), nil
}

// Send appends an outgoing email record and persists it.
func (s *Store) Send(sender, to, subject, body string) (Email, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emails, err := s.load()
	if err != nil {
		return Email{}, err
	}

	email := Email{
		ID:        fmt.Sprintf("EMAIL-%d", len(emails)+1),
		Direction: "out",
		From:      sender,
		To:        to,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.save(append(emails, email)); err != nil {
		return Email{}, err
	}
	return email, nil
}

func (s *Store) load() ([]Email, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	var emails []Email
	if err := json.Unmarshal(raw, &emails); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return emails, nil
}

func (s *Store) save(emails []Email) error {
	raw, err := json.MarshalIndent(emails, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mailbox: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func newestFirst(emails []Email, limit int) []Email {
	sorted := append([]Email(nil), emails...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt > sorted[j].CreatedAt
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
