package processors

import (
	"strings"

	"github.com/username/moneydash/backend/src/models"
	"github.com/username/moneydash/backend/src/utils"
)

// Classifier matches transaction descriptions against a mapping-store
// snapshot using three tiers, stopping at the first that produces a
// match:
//
//  1. exact — normalized description equals a rule key;
//  2. partial — description contains a key as a substring or vice
//     versa; the longest key wins, earliest-inserted rule breaks ties;
//  3. fuzzy — highest Similarity score at or above the threshold,
//     earliest-inserted rule breaks ties.
//
// The snapshot is read once per run; classification never writes to it.
type Classifier struct {
	rules     []models.MappingRule // insertion order
	byKey     map[string]int       // key -> index into rules
	threshold float64
}

// NewClassifier builds a classifier over a rule snapshot. rules must be
// in insertion order; threshold is the fuzzy-tier cutoff in [0,1].
func NewClassifier(rules []models.MappingRule, threshold float64) *Classifier {
	byKey := make(map[string]int, len(rules))
	for i, r := range rules {
		if _, exists := byKey[r.Key]; !exists {
			byKey[r.Key] = i
		}
	}
	return &Classifier{rules: rules, byKey: byKey, threshold: threshold}
}

// Classify attaches the classification fields for one transaction.
// When no tier matches, the transaction is left unmapped: every
// classification field empty, including MappedDescription.
func (c *Classifier) Classify(tx models.Transaction) models.Transaction {
	tx.Classification = models.Classification{}
	desc := utils.NormalizeDescription(tx.Description)
	if desc == "" || len(c.rules) == 0 {
		return tx
	}
	if rule, ok := c.match(desc); ok {
		tx.Classification = rule.Classification
		tx.MappedDescription = rule.Key
	}
	return tx
}

// ClassifyAll classifies a working set in place, returning the same
// slice for chaining.
func (c *Classifier) ClassifyAll(txs []models.Transaction) []models.Transaction {
	for i := range txs {
		txs[i] = c.Classify(txs[i])
	}
	return txs
}

func (c *Classifier) match(desc string) (models.MappingRule, bool) {
	// Tier 1: exact.
	if i, ok := c.byKey[desc]; ok {
		return c.rules[i], true
	}

	// Tier 2: substring either way; most specific (longest) key wins.
	bestLen := -1
	bestIdx := -1
	for i, r := range c.rules {
		if strings.Contains(desc, r.Key) || strings.Contains(r.Key, desc) {
			if len(r.Key) > bestLen {
				bestLen = len(r.Key)
				bestIdx = i
			}
		}
	}
	if bestIdx != -1 {
		return c.rules[bestIdx], true
	}

	// Tier 3: fuzzy, gated by the threshold.
	bestScore := c.threshold
	bestIdx = -1
	for i, r := range c.rules {
		score := Similarity(desc, r.Key)
		if score > bestScore || (bestIdx == -1 && score == bestScore) {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx != -1 {
		return c.rules[bestIdx], true
	}

	return models.MappingRule{}, false
}
