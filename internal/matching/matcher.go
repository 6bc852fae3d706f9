// Package matching selects and merges notification templates by weighted
// scope matching against an event and its context anchors.
package matching

import (
	"sort"

	"github.com/jsenecal/netbox-notices/internal/model"
)

// Context carries the anchors a matching request is evaluated against.
// All fields are optional.
type Context struct {
	Event    *model.Event
	Tenant   *model.Tenant
	Provider *model.Provider

	// Anchors resolves additional anchor kinds (site, region, tenant
	// group, ...) to object IDs for scope matching.
	Anchors map[string]int64
}

// eventType classifies the request's event kind.
func (c Context) eventType() model.EventType {
	if c.Event == nil {
		return model.EventTypeNone
	}
	switch c.Event.Kind {
	case model.EventTypeMaintenance, model.EventTypeOutage:
		return c.Event.Kind
	}
	return model.EventTypeNone
}

// eventStatus returns the event's status, or "" without an event.
func (c Context) eventStatus() string {
	if c.Event == nil {
		return ""
	}
	return c.Event.Status
}

// resolveAnchor returns the object ID the given anchor kind resolves to in
// this context. Tenant and provider come from the request parameters, the
// provider falling back to the event's provider; other kinds consult the
// caller-supplied anchor table.
func (c Context) resolveAnchor(kind string) (int64, bool) {
	switch kind {
	case model.KindTenant:
		if c.Tenant != nil {
			return c.Tenant.ID, true
		}
	case model.KindProvider:
		if c.Provider != nil {
			return c.Provider.ID, true
		}
		if c.Event != nil && c.Event.Provider != nil {
			return c.Event.Provider.ID, true
		}
	default:
		if id, ok := c.Anchors[kind]; ok {
			return id, true
		}
	}
	return 0, false
}

// Match pairs a template with its computed score.
type Match struct {
	Template *model.NotificationTemplate
	Score    int
}

// Matcher scores templates against a request context.
type Matcher struct {
	templates []*model.NotificationTemplate
}

// NewMatcher returns a Matcher over the given template set.
func NewMatcher(templates []*model.NotificationTemplate) *Matcher {
	return &Matcher{templates: templates}
}

// FindTemplates returns all matching templates with their scores, sorted by
// score descending. Ties are broken by template ID ascending. An empty
// result is a normal return, never an error.
func (m *Matcher) FindTemplates(ctx Context) []Match {
	eventType := ctx.eventType()

	var matches []Match
	for _, tpl := range m.templates {
		if !isCandidate(tpl, eventType) {
			continue
		}
		score, ok := scoreTemplate(tpl, ctx, eventType)
		if !ok {
			continue
		}
		matches = append(matches, Match{Template: tpl, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Template.ID < matches[j].Template.ID
	})
	return matches
}

// BestTemplate returns the highest-scoring matching template, or nil when
// nothing matches.
func (m *Matcher) BestTemplate(ctx Context) *model.NotificationTemplate {
	matches := m.FindTemplates(ctx)
	if len(matches) == 0 {
		return nil
	}
	return matches[0].Template
}

// MergedConfig merges all matching templates into one effective
// configuration, or nil when nothing matches.
func (m *Matcher) MergedConfig(ctx Context) *MergedConfig {
	matches := m.FindTemplates(ctx)
	if len(matches) == 0 {
		return nil
	}
	templates := make([]*model.NotificationTemplate, len(matches))
	for i, match := range matches {
		templates[i] = match.Template
	}
	return Merge(templates)
}

// isCandidate filters templates by event type. Base templates are never
// selected for generation, only extended.
func isCandidate(tpl *model.NotificationTemplate, eventType model.EventType) bool {
	if tpl.IsBaseTemplate {
		return false
	}
	switch eventType {
	case model.EventTypeMaintenance, model.EventTypeOutage:
		return tpl.EventType == eventType || tpl.EventType == model.EventTypeBoth
	}
	return tpl.EventType == model.EventTypeNone
}

// scoreTemplate computes the template's score. A template with no scopes is
// a global default and always matches at its base weight. A scoped template
// with no matching scope is excluded.
func scoreTemplate(tpl *model.NotificationTemplate, ctx Context, eventType model.EventType) (int, bool) {
	score := tpl.EffectiveWeight()
	if len(tpl.Scopes) == 0 {
		return score, true
	}

	matched := false
	for _, scope := range tpl.Scopes {
		if scopeMatches(scope, ctx, eventType) {
			score += scope.EffectiveWeight()
			matched = true
		}
	}
	return score, matched
}

// scopeMatches checks one scope against the request context.
func scopeMatches(scope *model.TemplateScope, ctx Context, eventType model.EventType) bool {
	if scope.EventType != "" {
		if scope.EventType == model.EventTypeBoth {
			if eventType != model.EventTypeMaintenance && eventType != model.EventTypeOutage {
				return false
			}
		} else if scope.EventType != eventType {
			return false
		}
	}

	if scope.EventStatus != "" && ctx.eventStatus() != "" && scope.EventStatus != ctx.eventStatus() {
		return false
	}

	targetID, ok := ctx.resolveAnchor(scope.Anchor.Kind)
	if !ok {
		// No context object of this kind; only a wildcard scope matches.
		return scope.Anchor.Wildcard()
	}
	if scope.Anchor.Wildcard() {
		return true
	}
	return scope.Anchor.ID == targetID
}

// FindTemplates is a convenience wrapper over a one-shot Matcher.
func FindTemplates(templates []*model.NotificationTemplate, ctx Context) []Match {
	return NewMatcher(templates).FindTemplates(ctx)
}
