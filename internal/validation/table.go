package validation

import "baseserver/internal/models"

var allowedCategories = map[string]bool{
	"electronics": true,
	"books":       true,
	"clothing":    true,
}

// TableDocument checks a full table document: a non-empty name is
// required, the remaining known fields are optional but typed.
func TableDocument(doc models.Document) error {
	name, ok := doc["name"].(string)
	if !ok || name == "" {
		return models.NewValidationError("name", "is required")
	}
	return typedFields(doc)
}

// TablePatch checks a partial update; every field is optional, but any
// present field must satisfy the same schema as on create.
func TablePatch(patch models.Document) error {
	if raw, ok := patch["name"]; ok {
		name, isString := raw.(string)
		if !isString || name == "" {
			return models.NewValidationError("name", "must be a non-empty string")
		}
	}
	return typedFields(patch)
}

func typedFields(doc models.Document) error {
	if raw, ok := doc["price"]; ok {
		price, isNumber := asFloat(raw)
		if !isNumber {
			return models.NewValidationError("price", "must be a number")
		}
		if price < 0 {
			return models.NewValidationError("price", "must not be negative")
		}
	}

	if raw, ok := doc["category"]; ok {
		category, isString := raw.(string)
		if !isString || !allowedCategories[category] {
			return models.NewValidationError("category", "must be one of electronics, books, clothing")
		}
	}

	if raw, ok := doc["tags"]; ok {
		tags, isArray := raw.([]any)
		if !isArray {
			return models.NewValidationError("tags", "must be an array of strings")
		}
		for _, tag := range tags {
			if _, isString := tag.(string); !isString {
				return models.NewValidationError("tags", "must be an array of strings")
			}
		}
	}

	if raw, ok := doc["metadata"]; ok {
		if _, isObject := raw.(map[string]any); !isObject {
			return models.NewValidationError("metadata", "must be an object")
		}
	}

	if raw, ok := doc["revisions"]; ok {
		revisions, isArray := raw.([]any)
		if !isArray {
			return models.NewValidationError("revisions", "must be an array of numbers")
		}
		for _, rev := range revisions {
			if _, isNumber := asFloat(rev); !isNumber {
				return models.NewValidationError("revisions", "must be an array of numbers")
			}
		}
	}

	return nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
