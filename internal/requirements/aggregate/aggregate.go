// internal/requirements/aggregate/aggregate.go
package aggregate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/models"
	"loandoc-workers/internal/requirements/normalize"
)

// statusRequirementPaths are the nested payload locations a staff-backend
// status may carry its requirement list under, in priority order.
var statusRequirementPaths = [][]string{
	{"required_documents"},
	{"requiredDocuments"},
	{"documents", "required"},
	{"application", "required_documents"},
}

// DefaultAlwaysRequired is forced into every synced checklist regardless of
// what the server reports.
var DefaultAlwaysRequired = []string{"bank_statements"}

// Aggregator merges per-product requirement lists into a deduplicated
// checklist and keeps the persisted snapshot in sync with server-reported
// application status.
type Aggregator struct {
	normalizer     *normalize.Normalizer
	store          Store
	alwaysRequired []string
	logger         logger.Logger
}

func New(store Store, log logger.Logger) *Aggregator {
	return NewWithAlwaysRequired(store, DefaultAlwaysRequired, log)
}

// NewWithAlwaysRequired overrides the forced document set, normally sourced
// from the category registry.
func NewWithAlwaysRequired(store Store, alwaysRequired []string, log logger.Logger) *Aggregator {
	return &Aggregator{
		normalizer:     normalize.New(log),
		store:          store,
		alwaysRequired: alwaysRequired,
		logger:         log.WithFields(map[string]interface{}{"component": "requirement-aggregator"}),
	}
}

// AggregateRequiredDocuments resolves the checklist for one selected
// category at the requested amount. Products match on trimmed exact equality
// of category or product name. Entries merge into a map keyed by document
// type, last product wins, so repeated aggregation of identical input is
// idempotent.
func (a *Aggregator) AggregateRequiredDocuments(products []models.LenderProduct, selectedCategory string, amountRequested float64) []models.RequirementEntry {
	selected := strings.TrimSpace(selectedCategory)
	ctx := models.RequirementContext{
		AmountRequested: strconv.FormatFloat(amountRequested, 'f', -1, 64),
		ProductType:     selected,
	}

	merged := newEntrySet()
	for _, p := range products {
		if strings.TrimSpace(p.Category) != selected && strings.TrimSpace(p.ProductName) != selected {
			continue
		}

		norm := a.normalizer.Normalize(p.RequiredDocs, ctx)
		for _, doc := range normalize.RequiredDocuments(norm) {
			merged.put(models.RequirementEntry{DocumentType: doc, Required: true})
		}
		for _, doc := range norm.Optional {
			merged.put(models.RequirementEntry{DocumentType: doc, Required: false})
		}
	}

	return merged.entries()
}

// SaveChecklist persists a resolved checklist as the application's snapshot,
// replacing whatever was cached before.
// Checklist returns the cached aggregate for an application; nil when no
// snapshot exists yet.
func (a *Aggregator) Checklist(ctx context.Context, applicationID string) ([]models.RequirementEntry, error) {
	entries, err := a.store.Load(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load aggregate: %w", err)
	}
	return entries, nil
}

func (a *Aggregator) SaveChecklist(ctx context.Context, applicationID string, entries []models.RequirementEntry) error {
	if err := a.store.Save(ctx, applicationID, entries); err != nil {
		return fmt.Errorf("save aggregate: %w", err)
	}
	return nil
}

// SyncFromStatus extracts the requirement list from a server status payload,
// merges it with the cached aggregate, forces the always-required documents,
// and overwrites the cache. When the payload carries no recognizable
// requirements field the sync is a no-op: nil is returned and the cache is
// untouched.
func (a *Aggregator) SyncFromStatus(ctx context.Context, status models.ApplicationStatus) ([]models.RequirementEntry, error) {
	raw, found := extractRequirements(status.Payload)
	if !found {
		a.logger.Debug("status payload carries no requirements field, skipping sync", map[string]interface{}{
			"applicationId": status.ApplicationID,
			"status":        status.Status,
		})
		return nil, nil
	}

	norm := a.normalizer.Normalize(raw, models.RequirementContext{})

	cached, err := a.store.Load(ctx, status.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("load cached aggregate: %w", err)
	}

	merged := newEntrySet()
	for _, e := range cached {
		merged.put(e)
	}
	for _, doc := range normalize.RequiredDocuments(norm) {
		merged.put(models.RequirementEntry{DocumentType: doc, Required: true})
	}
	for _, doc := range norm.Optional {
		merged.put(models.RequirementEntry{DocumentType: doc, Required: false})
	}

	a.ensureAlwaysRequired(merged)

	entries := merged.entries()
	if err := a.store.Save(ctx, status.ApplicationID, entries); err != nil {
		return nil, fmt.Errorf("save aggregate: %w", err)
	}

	a.logger.Info("document checklist synced", map[string]interface{}{
		"applicationId": status.ApplicationID,
		"entryCount":    len(entries),
	})
	return entries, nil
}

// ensureAlwaysRequired forces the always-required documents into the set and
// upgrades them to required if the server reported them optional.
func (a *Aggregator) ensureAlwaysRequired(set *entrySet) {
	for _, doc := range a.alwaysRequired {
		set.put(models.RequirementEntry{DocumentType: doc, Required: true})
	}
}

func extractRequirements(payload map[string]any) (any, bool) {
	for _, path := range statusRequirementPaths {
		current := any(payload)
		ok := true
		for _, key := range path {
			m, isMap := current.(map[string]any)
			if !isMap {
				ok = false
				break
			}
			current, ok = m[key]
			if !ok {
				break
			}
		}
		if ok && current != nil {
			return current, true
		}
	}
	return nil, false
}

// entrySet is a map keyed by document type that preserves first-insertion
// order, giving the aggregator its last-write-wins merge with stable output.
type entrySet struct {
	byType map[string]models.RequirementEntry
	order  []string
}

func newEntrySet() *entrySet {
	return &entrySet{byType: make(map[string]models.RequirementEntry)}
}

func (s *entrySet) put(e models.RequirementEntry) {
	if e.DocumentType == "" {
		return
	}
	if _, exists := s.byType[e.DocumentType]; !exists {
		s.order = append(s.order, e.DocumentType)
	}
	s.byType[e.DocumentType] = e
}

func (s *entrySet) entries() []models.RequirementEntry {
	out := make([]models.RequirementEntry, 0, len(s.order))
	for _, docType := range s.order {
		out = append(out, s.byType[docType])
	}
	return out
}
