package rules

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExportVersion is stamped into every exported rule document.
const ExportVersion = "1.0"

// Store is an in-memory rule collection with CRUD and export. Rules live
// independently of entity uploads.
type Store struct {
	mu     sync.RWMutex
	rules  map[string]*Rule
	seq    map[string]int // insertion order, breaks priority ties
	nextSeq int
	logger *zap.Logger
}

// NewStore creates an empty rule store
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		rules:  make(map[string]*Rule),
		seq:    make(map[string]int),
		logger: logger,
	}
}

// Create validates and stores a new rule. Parameter shape mismatches reject
// the creation.
func (s *Store) Create(rule Rule) (*Rule, error) {
	if rule.Name == "" {
		return nil, fmt.Errorf("rule name is required")
	}
	if rule.Parameters == nil {
		return nil, fmt.Errorf("rule parameters are required")
	}
	if rule.Type == "" {
		rule.Type = rule.Parameters.Kind()
	}
	if rule.Type != rule.Parameters.Kind() {
		return nil, fmt.Errorf("rule type %q does not match parameters for %q", rule.Type, rule.Parameters.Kind())
	}
	if err := rule.Parameters.Validate(); err != nil {
		return nil, err
	}

	rule.ID = uuid.New().String()
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	s.mu.Lock()
	s.rules[rule.ID] = &rule
	s.seq[rule.ID] = s.nextSeq
	s.nextSeq++
	s.mu.Unlock()

	s.logger.Info("Rule created",
		zap.String("rule_id", rule.ID),
		zap.String("type", string(rule.Type)),
		zap.String("name", rule.Name))
	return &rule, nil
}

// Update replaces the mutable parts of an existing rule.
func (s *Store) Update(id string, update Rule) (*Rule, error) {
	if update.Parameters != nil {
		if err := update.Parameters.Validate(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rules[id]
	if !ok {
		return nil, fmt.Errorf("rule %q not found", id)
	}
	if update.Parameters != nil && update.Parameters.Kind() != existing.Type {
		return nil, fmt.Errorf("cannot change rule type from %q to %q", existing.Type, update.Parameters.Kind())
	}

	if update.Name != "" {
		existing.Name = update.Name
	}
	existing.Description = update.Description
	existing.Priority = update.Priority
	existing.IsActive = update.IsActive
	if update.Parameters != nil {
		existing.Parameters = update.Parameters
	}
	existing.UpdatedAt = time.Now()

	copied := *existing
	return &copied, nil
}

// Get returns a rule by id.
func (s *Store) Get(id string) (*Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rule, ok := s.rules[id]
	if !ok {
		return nil, false
	}
	copied := *rule
	return &copied, true
}

// Delete removes a rule by id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[id]; !ok {
		return fmt.Errorf("rule %q not found", id)
	}
	delete(s.rules, id)
	delete(s.seq, id)
	s.logger.Info("Rule deleted", zap.String("rule_id", id))
	return nil
}

// List returns all rules sorted by priority ascending (lower number wins),
// ties broken by insertion order.
func (s *Store) List() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Rule, 0, len(s.rules))
	for _, rule := range s.rules {
		out = append(out, *rule)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out
}

// ExportDocument is the exported rule collection shape.
type ExportDocument struct {
	Rules      []Rule    `json:"rules"`
	ExportedAt time.Time `json:"exportedAt"`
	Version    string    `json:"version"`
}

// Export renders the whole collection as a JSON document.
func (s *Store) Export() ([]byte, error) {
	doc := ExportDocument{
		Rules:      s.List(),
		ExportedAt: time.Now().UTC(),
		Version:    ExportVersion,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to export rules: %w", err)
	}
	return data, nil
}
