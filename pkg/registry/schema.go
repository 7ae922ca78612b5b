// pkg/registry/schema.go
package registry

// CategoryRegistry is the document category rule set: per-category upload
// constraints plus global checklist policy.
type CategoryRegistry struct {
	Version             string                  `json:"version"`
	LastUpdated         string                  `json:"lastUpdated"`
	AlwaysRequired      []string                `json:"alwaysRequired"`
	SensitiveCategories []string                `json:"sensitiveCategories"`
	Categories          map[string]CategoryRule `json:"categories"`
	ApplicationTypes    map[string]TypeProfile  `json:"applicationTypes"`
}

// CategoryRule constrains uploads for one document category.
type CategoryRule struct {
	DisplayName       string   `json:"displayName"`
	AllowedExtensions []string `json:"allowedExtensions"`
	MinSizeBytes      int      `json:"minSizeBytes"`
}

// TypeProfile lists the document categories a loan application type needs.
type TypeProfile struct {
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}

// registrySchema validates registry files before they replace the compiled-in
// defaults.
const registrySchema = `{
	"type": "object",
	"required": ["version", "categories"],
	"properties": {
		"version": {"type": "string"},
		"lastUpdated": {"type": "string"},
		"alwaysRequired": {"type": "array", "items": {"type": "string"}},
		"sensitiveCategories": {"type": "array", "items": {"type": "string"}},
		"categories": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"properties": {
					"displayName": {"type": "string"},
					"allowedExtensions": {"type": "array", "items": {"type": "string"}},
					"minSizeBytes": {"type": "integer", "minimum": 0}
				}
			}
		},
		"applicationTypes": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"properties": {
					"required": {"type": "array", "items": {"type": "string"}},
					"optional": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`
