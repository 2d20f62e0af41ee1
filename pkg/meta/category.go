package meta

import "strings"

// CategoryRule maps a prop name to a category. Match receives the lowercased
// prop name.
type CategoryRule struct {
	Category Category
	Triggers []string
	Match    func(lower string) bool
}

func containsAny(triggers ...string) func(string) bool {
	return func(lower string) bool {
		for _, t := range triggers {
			if strings.Contains(lower, t) {
				return true
			}
		}
		return false
	}
}

// categoryRules is evaluated top to bottom; the first match wins.
// "type" is an appearance trigger so that names like buttonType group with
// variant and size.
var categoryRules = []CategoryRule{
	{
		Category: CategoryAppearance,
		Triggers: []string{"variant", "size", "color", "style", "type"},
		Match:    containsAny("variant", "size", "color", "style", "type"),
	},
	{
		Category: CategoryEvents,
		Triggers: []string{"on*", "callback", "handler"},
		Match: func(lower string) bool {
			return strings.HasPrefix(lower, "on") || containsAny("callback", "handler")(lower)
		},
	},
	{
		Category: CategoryContent,
		Triggers: []string{"children", "content", "text", "label", "title", "description"},
		Match:    containsAny("children", "content", "text", "label", "title", "description"),
	},
	{
		Category: CategoryLayout,
		Triggers: []string{"width", "height", "position", "placement", "align"},
		Match:    containsAny("width", "height", "position", "placement", "align"),
	},
	{
		Category: CategoryState,
		Triggers: []string{"disabled", "loading", "open", "visible", "active"},
		Match:    containsAny("disabled", "loading", "open", "visible", "active"),
	},
	{
		Category: CategoryStyling,
		Triggers: []string{"class", "style"},
		Match:    containsAny("class", "style"),
	},
}

// CategoryRules returns a copy of the ordered classification table.
// CategoryGeneral is the implicit fallback and has no rule.
func CategoryRules() []CategoryRule {
	out := make([]CategoryRule, len(categoryRules))
	copy(out, categoryRules)
	return out
}

// Classify returns the display category for a prop name.
func Classify(propName string) Category {
	lower := strings.ToLower(propName)
	for _, rule := range categoryRules {
		if rule.Match(lower) {
			return rule.Category
		}
	}
	return CategoryGeneral
}
