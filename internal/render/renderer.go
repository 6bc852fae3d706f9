// Package render renders notification templates. Templates use Go template
// syntax for expressions plus a block-inheritance layer ({% extends %},
// {% block %}, {% super %}) that is flattened away before parsing, so block
// semantics do not depend on the host engine. Two domain functions are
// registered: ical_datetime and markdown.
package render

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/jsenecal/netbox-notices/internal/metrics"
	"github.com/jsenecal/netbox-notices/internal/model"
)

// Renderer renders template strings against a context map. A Renderer is
// stateless apart from its named-template table and is safe for concurrent
// use.
type Renderer struct {
	templates map[string]string
}

// NewRenderer returns a Renderer. The templates map provides named sources
// that children can reference with {% extends "name" %}; nil is valid for
// templates without inheritance.
func NewRenderer(templates map[string]string) *Renderer {
	if templates == nil {
		templates = map[string]string{}
	}
	return &Renderer{templates: templates}
}

// Render flattens and renders src with the given context. Failures are
// reported as ErrSyntax or ErrUndefined, never as raw engine errors.
func (r *Renderer) Render(src string, context map[string]any) (string, error) {
	tmpl, err := r.parse(src)
	if err != nil {
		metrics.RenderFailed()
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, context); err != nil {
		metrics.RenderFailed()
		return "", fmt.Errorf("%w: %v", classifyExecError(err), err)
	}
	metrics.Rendered()
	return buf.String(), nil
}

// Validate checks template syntax, including inheritance resolution,
// without rendering.
func (r *Renderer) Validate(src string) error {
	_, err := r.parse(src)
	return err
}

func (r *Renderer) parse(src string) (*template.Template, error) {
	flat, err := r.flatten(src)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("notice").
		Funcs(funcMap()).
		Option("missingkey=error").
		Parse(flat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return tmpl, nil
}

// ContextInput collects the ingredients of a render context.
type ContextInput struct {
	BaseURL string
	Now     time.Time
	Event   *model.Event
	Tenant  *model.Tenant
	Impacts []*model.Impact

	// TenantOf resolves an impact target's owning tenant for the
	// tenant_impacts filter. When nil, Impacts must already be scoped to
	// the tenant; tenant_impacts then passes them through unfiltered.
	TenantOf func(target model.ObjectRef) *model.Tenant

	// Extra entries override or extend the built context.
	Extra map[string]any
}

// BuildContext assembles the render context. It always exposes now,
// base_url, tenant and impacts. With an event present the event is exposed
// under its kind name ("maintenance" or "outage") and the context gains
// tenant_impacts (impacts owned by the supplied tenant, or all impacts
// without one) and highest_impact (worst severity, NO-IMPACT when empty).
func BuildContext(in ContextInput) map[string]any {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	impacts := in.Impacts
	if impacts == nil {
		impacts = []*model.Impact{}
	}

	context := map[string]any{
		"now":      now,
		"base_url": in.BaseURL,
		"tenant":   in.Tenant,
		"impacts":  impacts,
	}

	if in.Event != nil {
		context[string(in.Event.Kind)] = in.Event

		tenantImpacts := impacts
		if in.Tenant != nil && in.TenantOf != nil {
			tenantImpacts = []*model.Impact{}
			for _, impact := range impacts {
				owner := in.TenantOf(impact.Target)
				if owner != nil && owner.ID == in.Tenant.ID {
					tenantImpacts = append(tenantImpacts, impact)
				}
			}
		}
		context["tenant_impacts"] = tenantImpacts
		context["highest_impact"] = string(model.HighestSeverity(impacts))
	}

	for k, v := range in.Extra {
		context[k] = v
	}
	return context
}
