// internal/requirements/normalize/normalize.go
package normalize

import (
	"strconv"
	"strings"

	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/models"
)

// Field lookup orders for the loosely-typed requirement payloads the staff
// backend emits. The first truthy key wins; later keys are fallbacks kept for
// older backend versions.
var (
	requiredKeys    = []string{"required", "requiredDocs", "required_docs"}
	optionalKeys    = []string{"optional", "optionalDocs", "optional_docs"}
	conditionalKeys = []string{"conditional", "conditionalDocs", "conditional_docs"}

	// Per-rule document list lookup, first non-empty wins.
	ruleDocumentKeys = []string{"documents", "docs", "requiredDocs", "document_categories", "documentCategories"}

	minAmountKeys   = []string{"min_amount", "amount_min", "minAmount"}
	maxAmountKeys   = []string{"max_amount", "amount_max", "maxAmount"}
	productTypeKeys = []string{"product_type", "product_types", "productType"}
)

// Normalizer converts heterogeneous raw requirement payloads into the
// uniform NormalizedRequirements shape and evaluates conditional rules
// against an applicant context.
type Normalizer struct {
	logger logger.Logger
}

func New(log logger.Logger) *Normalizer {
	return &Normalizer{logger: log.WithFields(map[string]interface{}{"component": "requirement-normalizer"})}
}

// Normalize resolves a raw requirement payload. Unrecognized shapes degrade
// to empty lists rather than erroring; fallback key hits and dropped entries
// are logged so schema drift stays observable.
func (n *Normalizer) Normalize(raw any, ctx models.RequirementContext) models.NormalizedRequirements {
	out := models.NormalizedRequirements{
		Required:    []string{},
		Optional:    []string{},
		Conditional: []models.ConditionalRequirement{},
	}

	switch v := raw.(type) {
	case nil:
		return out
	case []any:
		// A bare array is the required list itself.
		out.Required = toDocumentList(v)
		return out
	case map[string]any:
		out.Required = toDocumentList(n.pickField(v, requiredKeys, "required"))
		out.Optional = toDocumentList(n.pickField(v, optionalKeys, "optional"))
		out.Conditional = n.normalizeConditionals(n.pickField(v, conditionalKeys, "conditional"), ctx)
		return out
	default:
		n.logger.Warn("unrecognized requirements payload shape, treating as empty", map[string]interface{}{
			"goType": typeName(raw),
		})
		return out
	}
}

// pickField returns the value of the first truthy key in order, logging when
// a non-primary key serves the value.
func (n *Normalizer) pickField(m map[string]any, keys []string, section string) any {
	for i, key := range keys {
		v, ok := m[key]
		if !ok || !truthy(v) {
			continue
		}
		if i > 0 {
			n.logger.Debug("requirements section served by fallback key", map[string]interface{}{
				"section": section,
				"key":     key,
			})
		}
		return v
	}
	return nil
}

func (n *Normalizer) normalizeConditionals(raw any, ctx models.RequirementContext) []models.ConditionalRequirement {
	entries, ok := raw.([]any)
	if !ok {
		if raw != nil {
			// A single rule object is accepted for convenience.
			if m, isMap := raw.(map[string]any); isMap {
				entries = []any{m}
			}
		}
	}

	amount := ParseAmount(ctx.AmountRequested)

	out := []models.ConditionalRequirement{}
	for _, entry := range entries {
		rule, ok := n.normalizeConditionalEntry(entry, amount, ctx.ProductType)
		if !ok {
			n.logger.Debug("dropping malformed conditional requirement entry", map[string]interface{}{
				"goType": typeName(entry),
			})
			continue
		}
		out = append(out, rule)
	}
	return out
}

func (n *Normalizer) normalizeConditionalEntry(entry any, amount float64, productType string) (models.ConditionalRequirement, bool) {
	// Bare strings and string arrays are themselves the document list and
	// carry no conditions, so they always apply.
	switch v := entry.(type) {
	case string:
		docs := toDocumentList(v)
		if len(docs) == 0 {
			return models.ConditionalRequirement{}, false
		}
		return models.ConditionalRequirement{Documents: docs, Applies: true}, true
	case []any:
		docs := toDocumentList(v)
		if len(docs) == 0 {
			return models.ConditionalRequirement{}, false
		}
		return models.ConditionalRequirement{Documents: docs, Applies: true}, true
	case map[string]any:
		var docs []string
		for _, key := range ruleDocumentKeys {
			if d := toDocumentList(v[key]); len(d) > 0 {
				docs = d
				break
			}
		}
		if len(docs) == 0 {
			return models.ConditionalRequirement{}, false
		}

		label, _ := v["label"].(string)
		if label == "" {
			label, _ = v["name"].(string)
		}

		return models.ConditionalRequirement{
			Label:     label,
			Documents: docs,
			Applies:   ruleApplies(v, amount, productType),
		}, true
	default:
		return models.ConditionalRequirement{}, false
	}
}

// ruleApplies evaluates a conditional rule's gates. Every present gate must
// pass; an absent gate auto-passes.
func ruleApplies(rule map[string]any, amount float64, productType string) bool {
	if min, ok := firstNumber(rule, minAmountKeys); ok && amount < min {
		return false
	}
	if max, ok := firstNumber(rule, maxAmountKeys); ok && amount > max {
		return false
	}

	for _, key := range productTypeKeys {
		raw, ok := rule[key]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case string:
			if v == "" {
				continue
			}
			return strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(productType))
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok && strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(productType)) {
					return true
				}
			}
			return false
		}
	}
	return true
}

// RequiredDocuments returns the deduplicated union of unconditionally
// required documents and the documents of every applying conditional rule,
// preserving first-occurrence order.
func RequiredDocuments(norm models.NormalizedRequirements) []string {
	seen := make(map[string]struct{})
	out := []string{}

	add := func(doc string) {
		if _, dup := seen[doc]; dup {
			return
		}
		seen[doc] = struct{}{}
		out = append(out, doc)
	}

	for _, doc := range norm.Required {
		add(doc)
	}
	for _, rule := range norm.Conditional {
		if !rule.Applies {
			continue
		}
		for _, doc := range rule.Documents {
			add(doc)
		}
	}
	return out
}

// ParseAmount parses a currency-formatted amount string ("$50,000.00") by
// stripping everything that is not a digit or a dot. Unparseable input
// yields 0.
func ParseAmount(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

// toDocumentList coerces a raw value into a list of document type strings.
// Non-string members and blank strings are dropped; maps contribute their
// document_type/documentType field when present. The result is never nil so
// section fields stay arrays even when a key is absent.
func toDocumentList(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return []string{}
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
		return []string{}
	case []any:
		out := []string{}
		for _, item := range v {
			switch it := item.(type) {
			case string:
				if s := strings.TrimSpace(it); s != "" {
					out = append(out, s)
				}
			case map[string]any:
				for _, key := range []string{"document_type", "documentType", "type"} {
					if s, ok := it[key].(string); ok && strings.TrimSpace(s) != "" {
						out = append(out, strings.TrimSpace(s))
						break
					}
				}
			}
		}
		return out
	case []string:
		out := []string{}
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

// firstNumber returns the first present numeric value among the given keys.
func firstNumber(m map[string]any, keys []string) (float64, bool) {
	for _, key := range keys {
		raw, ok := m[key]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		case string:
			if v == "" {
				continue
			}
			return ParseAmount(v), true
		}
	}
	return 0, false
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case bool:
		return t
	default:
		return true
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "other"
	}
}
