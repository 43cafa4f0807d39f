package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/username/moneydash/backend/src/logger"
	"github.com/username/moneydash/backend/src/models"
)

// Reference lists drive the mapping UI dropdowns. They never constrain
// what the classification engine may attach.

// Default list contents seeded on first boot, matching what the
// dashboard ships with.
var defaultLists = map[string][]string{
	models.ListAccountTypes: {"income", "expense", "transfer", "investment", "loan"},
	models.ListCategories: {
		"Food & Dining", "Transportation", "Entertainment", "Utilities",
		"Healthcare", "Shopping", "Education", "Travel", "Insurance",
		"Taxes", "Investments", "Gifts", "Charity", "Income",
	},
	models.ListTags: {
		"essential", "luxury", "monthly", "annual", "subscription",
		"one-time", "recurring", "business", "personal", "emergency",
	},
	models.ListPayers: {"Self", "Employer", "Bank", "Investment", "Government", "Insurance"},
	models.ListPayees: {
		"Grocery Store", "Gas Station", "Restaurant", "Utility Company",
		"Internet Provider", "Phone Company", "Insurance Company",
		"Healthcare Provider", "Retail Store", "Online Service",
	},
}

// SeedDefaults populates the reference lists on an empty store. Safe to
// call on every start; an already-populated store is left alone.
func (s *MappingStore) SeedDefaults() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM list_items`).Scan(&count); err != nil {
		return fmt.Errorf("error counting list items: %w", err)
	}
	if count > 0 {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	for listName, items := range defaultLists {
		for _, item := range items {
			if _, err := s.db.Exec(`INSERT OR IGNORE INTO list_items (list_name, item) VALUES (?, ?)`, listName, item); err != nil {
				return fmt.Errorf("error seeding list %q: %w", listName, err)
			}
		}
	}
	logger.L.Info("Seeded default reference lists")
	return nil
}

// GetLists returns every reference list, items in insertion order.
func (s *MappingStore) GetLists() (map[string][]string, error) {
	rows, err := s.db.Query(`SELECT list_name, item FROM list_items ORDER BY list_name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error querying list items: %w", err)
	}
	defer rows.Close()

	lists := make(map[string][]string)
	for rows.Next() {
		var listName, item string
		if err := rows.Scan(&listName, &item); err != nil {
			return nil, fmt.Errorf("error scanning list item: %w", err)
		}
		lists[listName] = append(lists[listName], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating list items: %w", err)
	}
	return lists, nil
}

// AddListItem inserts an item into a named list. Re-adding an existing
// item is a no-op, mirroring the UI path.
func (s *MappingStore) AddListItem(listName, item string) error {
	listName, item = strings.TrimSpace(listName), strings.TrimSpace(item)
	if listName == "" || item == "" {
		return fmt.Errorf("list name and item must not be empty")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO list_items (list_name, item) VALUES (?, ?)`, listName, item); err != nil {
		return fmt.Errorf("error adding item %q to list %q: %w", item, listName, err)
	}
	return nil
}

// RemoveListItem removes an item from a named list. Removing a missing
// item is not an error.
func (s *MappingStore) RemoveListItem(listName, item string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM list_items WHERE list_name = ? AND item = ?`,
		strings.TrimSpace(listName), strings.TrimSpace(item)); err != nil {
		return fmt.Errorf("error removing item %q from list %q: %w", item, listName, err)
	}
	return nil
}

// ExportListsCSV writes every list as flat CSV with list_name,item
// columns, the bulk-edit interchange format.
func (s *MappingStore) ExportListsCSV(w io.Writer) error {
	lists, err := s.GetLists()
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"list_name", "item"}); err != nil {
		return fmt.Errorf("error writing list export header: %w", err)
	}
	// Deterministic export order: list name, then insertion order.
	names := make([]string, 0, len(lists))
	for name := range lists {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, item := range lists[name] {
			if err := writer.Write([]string{name, item}); err != nil {
				return fmt.Errorf("error writing list export row: %w", err)
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// ImportListsCSV bulk-inserts list items from flat CSV with list_name
// and item columns (case-insensitive header match, extra columns
// ignored). Returns the number of rows applied. Inserts use the same
// key semantics as the UI path: duplicates are no-ops.
func (s *MappingStore) ImportListsCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("error reading list import CSV: %w", err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("list import CSV is empty")
	}

	nameIdx, itemIdx := -1, -1
	for i, h := range records[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "list_name":
			nameIdx = i
		case "item":
			itemIdx = i
		}
	}
	if nameIdx == -1 || itemIdx == -1 {
		return 0, fmt.Errorf("list import CSV must have columns: list_name, item")
	}

	applied := 0
	for _, record := range records[1:] {
		if nameIdx >= len(record) || itemIdx >= len(record) {
			continue
		}
		if err := s.AddListItem(record[nameIdx], record[itemIdx]); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}
