// Package store provides the Mapping Store: the persisted table of
// description→classification rules plus the user-curated reference
// lists. The store is an explicitly passed handle, loaded once per
// pipeline run as an immutable snapshot; all writes go through a
// serialized path so concurrent writers cannot lose updates to the
// same key.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/username/moneydash/backend/src/logger"
	"github.com/username/moneydash/backend/src/models"
	"github.com/username/moneydash/backend/src/utils"
)

type MappingStore struct {
	db      *sql.DB
	writeMu sync.Mutex // single writer at a time
}

func New(db *sql.DB) *MappingStore {
	return &MappingStore{db: db}
}

// Snapshot is a consistent, immutable view of the store taken at the
// start of an orchestrator run. Rules are in insertion order, which is
// the tie-break order for the partial and fuzzy matching tiers.
type Snapshot struct {
	Rules []models.MappingRule
	Lists map[string][]string
}

func (s *MappingStore) Snapshot() (*Snapshot, error) {
	rules, err := s.ListRules()
	if err != nil {
		return nil, err
	}
	lists, err := s.GetLists()
	if err != nil {
		return nil, err
	}
	return &Snapshot{Rules: rules, Lists: lists}, nil
}

// ListRules returns every mapping rule in insertion order.
func (s *MappingStore) ListRules() ([]models.MappingRule, error) {
	rows, err := s.db.Query(`
		SELECT id, key, account_type, category1, category2, category3, tags, payer, payee, created_at, updated_at
		FROM mapping_rules
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error querying mapping rules: %w", err)
	}
	defer rows.Close()

	var rules []models.MappingRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning mapping rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mapping rules: %w", err)
	}
	return rules, nil
}

// GetRule fetches one rule by its (normalized) key.
func (s *MappingStore) GetRule(key string) (*models.MappingRule, error) {
	key = utils.NormalizeDescription(key)
	row := s.db.QueryRow(`
		SELECT id, key, account_type, category1, category2, category3, tags, payer, payee, created_at, updated_at
		FROM mapping_rules WHERE key = ?`, key)
	rule, err := scanRule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching mapping rule %q: %w", key, err)
	}
	return &rule, nil
}

// UpsertRule creates or replaces the rule for a description key. Keys
// are normalized before storage so the classification tiers and the
// store agree on identity. Replacing an existing key with a different
// tuple is last-write-wins, but the conflict is recorded in the
// mapping_conflicts audit table and logged.
func (s *MappingStore) UpsertRule(key string, c models.Classification) (models.MappingRule, error) {
	normKey := utils.NormalizeDescription(key)
	if normKey == "" {
		return models.MappingRule{}, fmt.Errorf("mapping rule key must not be empty")
	}
	// MappedDescription is derived at classification time, never stored.
	c.MappedDescription = ""

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, err := s.GetRule(normKey)
	if err != nil {
		return models.MappingRule{}, err
	}

	if existing != nil && !sameTuple(existing.Classification, c) {
		oldTuple, newTuple := tupleJSON(existing.Classification), tupleJSON(c)
		if _, err := s.db.Exec(`INSERT INTO mapping_conflicts (key, old_tuple, new_tuple) VALUES (?, ?, ?)`,
			normKey, oldTuple, newTuple); err != nil {
			return models.MappingRule{}, fmt.Errorf("error recording mapping conflict for %q: %w", normKey, err)
		}
		logger.L.Warn("Mapping rule overwritten; last write wins",
			"key", normKey, "oldTuple", oldTuple, "newTuple", newTuple)
	}

	_, err = s.db.Exec(`
		INSERT INTO mapping_rules (key, account_type, category1, category2, category3, tags, payer, payee)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			account_type = excluded.account_type,
			category1 = excluded.category1,
			category2 = excluded.category2,
			category3 = excluded.category3,
			tags = excluded.tags,
			payer = excluded.payer,
			payee = excluded.payee,
			updated_at = CURRENT_TIMESTAMP`,
		normKey, c.MappedAccountType, c.Category1, c.Category2, c.Category3,
		joinTags(c.Tags), c.Payer, c.Payee)
	if err != nil {
		return models.MappingRule{}, fmt.Errorf("error upserting mapping rule %q: %w", normKey, err)
	}

	updated, err := s.GetRule(normKey)
	if err != nil {
		return models.MappingRule{}, err
	}
	return *updated, nil
}

// DeleteRule removes the rule for a key. Deleting a missing key is not
// an error.
func (s *MappingStore) DeleteRule(key string) error {
	normKey := utils.NormalizeDescription(key)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM mapping_rules WHERE key = ?`, normKey); err != nil {
		return fmt.Errorf("error deleting mapping rule %q: %w", normKey, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (models.MappingRule, error) {
	var rule models.MappingRule
	var tags string
	var createdAt, updatedAt sql.NullString
	err := row.Scan(&rule.ID, &rule.Key, &rule.MappedAccountType,
		&rule.Category1, &rule.Category2, &rule.Category3,
		&tags, &rule.Payer, &rule.Payee, &createdAt, &updatedAt)
	if err != nil {
		return models.MappingRule{}, err
	}
	rule.Tags = splitTags(tags)
	rule.CreatedAt = parseTimestamp(createdAt)
	rule.UpdatedAt = parseTimestamp(updatedAt)
	return rule, nil
}

func parseTimestamp(v sql.NullString) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02 15:04:05", v.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

func joinTags(tags []string) string {
	var cleaned []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return strings.Join(cleaned, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func sameTuple(a, b models.Classification) bool {
	return a.MappedAccountType == b.MappedAccountType &&
		a.Category1 == b.Category1 &&
		a.Category2 == b.Category2 &&
		a.Category3 == b.Category3 &&
		joinTags(a.Tags) == joinTags(b.Tags) &&
		a.Payer == b.Payer &&
		a.Payee == b.Payee
}

func tupleJSON(c models.Classification) string {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%+v", c)
	}
	return string(b)
}
