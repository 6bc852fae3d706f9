package matching

import (
	"sort"

	"github.com/jsenecal/netbox-notices/internal/model"
)

// MergedConfig is the field-by-field combination of matching templates.
type MergedConfig struct {
	SubjectTemplate   string            `json:"subject_template"`
	BodyTemplate      string            `json:"body_template"`
	BodyFormat        model.BodyFormat  `json:"body_format"`
	HeadersTemplate   map[string]string `json:"headers_template"`
	CSSTemplate       string            `json:"css_template"`
	ICalTemplate      string            `json:"ical_template"`
	IncludeICal       bool              `json:"include_ical"`
	ContactRoles      []string          `json:"contact_roles"`
	ContactPriorities []string          `json:"contact_priorities"`
	Extends           string            `json:"extends"`
}

// Merge combines templates ordered highest score first. For scalar content
// fields the first non-empty value wins; header maps merge key-wise with the
// first writer winning per key; include_ical is an OR across all inputs;
// role and priority sets are unions; extends takes the first non-empty value.
func Merge(templates []*model.NotificationTemplate) *MergedConfig {
	if len(templates) == 0 {
		return nil
	}

	cfg := &MergedConfig{
		HeadersTemplate: make(map[string]string),
	}
	roles := make(map[string]struct{})
	priorities := make(map[string]struct{})

	for _, tpl := range templates {
		if cfg.SubjectTemplate == "" && tpl.SubjectTemplate != "" {
			cfg.SubjectTemplate = tpl.SubjectTemplate
		}

		// Body format travels with the body that won
		if cfg.BodyTemplate == "" && tpl.BodyTemplate != "" {
			cfg.BodyTemplate = tpl.BodyTemplate
			cfg.BodyFormat = tpl.BodyFormat
		}

		for key, value := range tpl.HeadersTemplate {
			if _, exists := cfg.HeadersTemplate[key]; !exists {
				cfg.HeadersTemplate[key] = value
			}
		}

		if cfg.CSSTemplate == "" && tpl.CSSTemplate != "" {
			cfg.CSSTemplate = tpl.CSSTemplate
		}

		if cfg.ICalTemplate == "" && tpl.ICalTemplate != "" {
			cfg.ICalTemplate = tpl.ICalTemplate
		}

		if tpl.IncludeICal {
			cfg.IncludeICal = true
		}

		for _, role := range tpl.ContactRoles {
			roles[role] = struct{}{}
		}
		for _, priority := range tpl.ContactPriorities {
			priorities[priority] = struct{}{}
		}

		if cfg.Extends == "" && tpl.Extends != "" {
			cfg.Extends = tpl.Extends
		}
	}

	cfg.ContactRoles = sortedKeys(roles)
	cfg.ContactPriorities = sortedKeys(priorities)
	return cfg
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
