package render

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jsenecal/netbox-notices/internal/model"
)

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer(nil)

	tests := []struct {
		name    string
		src     string
		context map[string]any
		want    string
		wantErr error
	}{
		{
			name:    "plain text",
			src:     "scheduled maintenance",
			context: map[string]any{},
			want:    "scheduled maintenance",
		},
		{
			name:    "variable substitution",
			src:     "Maintenance {{ .name }}",
			context: map[string]any{"name": "MAINT-1"},
			want:    "Maintenance MAINT-1",
		},
		{
			name:    "syntax error",
			src:     "{{ .name",
			context: map[string]any{"name": "x"},
			wantErr: ErrSyntax,
		},
		{
			name:    "unknown function",
			src:     "{{ frobnicate .name }}",
			context: map[string]any{"name": "x"},
			wantErr: ErrSyntax,
		},
		{
			name:    "missing key",
			src:     "{{ .missing }}",
			context: map[string]any{"name": "x"},
			wantErr: ErrUndefined,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render(tt.src, tt.context)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Render() error = %v, want %v", err, tt.wantErr)
				}
				if !IsRenderError(err) {
					t.Errorf("IsRenderError() = false for %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestICalDatetime(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	ts := time.Date(2026, 3, 15, 9, 30, 0, 0, loc)

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"time value converted to utc", ts, "20260315T143000Z"},
		{"pointer value", &ts, "20260315T143000Z"},
		{"nil pointer", (*time.Time)(nil), ""},
		{"zero time", time.Time{}, ""},
		{"non-time value", "2026-03-15", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ICalDatetime(tt.value); got != tt.want {
				t.Errorf("ICalDatetime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkdownFunc(t *testing.T) {
	got, err := Markdown("# Maintenance\n\n**window** confirmed")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "<h1>Maintenance</h1>") {
		t.Errorf("missing heading in %q", got)
	}
	if !strings.Contains(got, "<strong>window</strong>") {
		t.Errorf("missing bold text in %q", got)
	}

	got, err = Markdown("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("Markdown(\"\") = %q, want empty", got)
	}
}

func TestRenderer_DomainFunctions(t *testing.T) {
	r := NewRenderer(nil)
	start := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

	got, err := r.Render("DTSTART:{{ .start | ical_datetime }}", map[string]any{"start": start})
	if err != nil {
		t.Fatal(err)
	}
	if got != "DTSTART:20260315T143000Z" {
		t.Errorf("Render() = %q", got)
	}

	got, err = r.Render("{{ markdown .body }}", map[string]any{"body": "*emphasis*"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "<em>emphasis</em>") {
		t.Errorf("markdown output = %q", got)
	}
}

func TestBuildContext(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	acme := &model.Tenant{ID: 1, Name: "Acme", Slug: "acme"}
	globex := &model.Tenant{ID: 2, Name: "Globex", Slug: "globex"}
	event := &model.Event{Kind: model.EventTypeMaintenance, ID: 1, Name: "MAINT-1", Status: model.MaintenanceStatusConfirmed}

	impacts := []*model.Impact{
		{ID: 1, Target: model.ObjectRef{Kind: "circuit", ID: 10}, Severity: model.SeverityNoImpact},
		{ID: 2, Target: model.ObjectRef{Kind: "circuit", ID: 11}, Severity: model.SeverityDegraded},
		{ID: 3, Target: model.ObjectRef{Kind: "circuit", ID: 20}, Severity: model.SeverityReducedRedundancy},
	}
	owners := map[int64]*model.Tenant{10: acme, 11: globex, 20: acme}

	context := BuildContext(ContextInput{
		BaseURL: "https://netbox.example.com",
		Now:     now,
		Event:   event,
		Tenant:  acme,
		Impacts: impacts,
		TenantOf: func(target model.ObjectRef) *model.Tenant {
			return owners[target.ID]
		},
	})

	if context["base_url"] != "https://netbox.example.com" {
		t.Errorf("base_url = %v", context["base_url"])
	}
	if context["maintenance"] != event {
		t.Errorf("event not exposed under its kind name")
	}
	if context["highest_impact"] != string(model.SeverityDegraded) {
		t.Errorf("highest_impact = %v, want DEGRADED", context["highest_impact"])
	}

	tenantImpacts, ok := context["tenant_impacts"].([]*model.Impact)
	if !ok {
		t.Fatalf("tenant_impacts has type %T", context["tenant_impacts"])
	}
	if len(tenantImpacts) != 2 {
		t.Fatalf("tenant_impacts has %d entries, want 2 for acme", len(tenantImpacts))
	}
	for _, imp := range tenantImpacts {
		if owners[imp.Target.ID] != acme {
			t.Errorf("impact %d does not belong to acme", imp.ID)
		}
	}
}

func TestBuildContext_NilResolverPassesImpactsThrough(t *testing.T) {
	// Without a resolver the caller owns the scoping: impacts are assumed
	// pre-filtered and tenant_impacts carries all of them
	event := &model.Event{Kind: model.EventTypeMaintenance, ID: 1, Status: model.MaintenanceStatusConfirmed}
	impacts := []*model.Impact{
		{ID: 1, Target: model.ObjectRef{Kind: "circuit", ID: 10}, Severity: model.SeverityOutage},
		{ID: 2, Target: model.ObjectRef{Kind: "circuit", ID: 11}, Severity: model.SeverityDegraded},
	}

	context := BuildContext(ContextInput{
		Now:     time.Now(),
		Event:   event,
		Tenant:  &model.Tenant{ID: 1, Slug: "acme"},
		Impacts: impacts,
	})

	tenantImpacts, ok := context["tenant_impacts"].([]*model.Impact)
	if !ok {
		t.Fatalf("tenant_impacts has type %T", context["tenant_impacts"])
	}
	if len(tenantImpacts) != len(impacts) {
		t.Errorf("tenant_impacts has %d entries, want all %d", len(tenantImpacts), len(impacts))
	}
}

func TestBuildContext_NoEvent(t *testing.T) {
	context := BuildContext(ContextInput{Now: time.Now()})

	if _, ok := context["maintenance"]; ok {
		t.Error("maintenance key present without event")
	}
	if _, ok := context["highest_impact"]; ok {
		t.Error("highest_impact present without event")
	}
	if context["tenant"] != (*model.Tenant)(nil) {
		t.Errorf("tenant = %v, want nil", context["tenant"])
	}
}

func TestBuildContext_EmptyImpacts(t *testing.T) {
	event := &model.Event{Kind: model.EventTypeOutage, ID: 1, Status: model.OutageStatusInvestigating}
	context := BuildContext(ContextInput{Now: time.Now(), Event: event})

	if context["outage"] != event {
		t.Error("outage not exposed under its kind name")
	}
	if context["highest_impact"] != string(model.SeverityNoImpact) {
		t.Errorf("highest_impact = %v, want NO-IMPACT", context["highest_impact"])
	}
}

func TestBuildContext_ExtraOverrides(t *testing.T) {
	context := BuildContext(ContextInput{
		Now:     time.Now(),
		BaseURL: "https://a.example.com",
		Extra:   map[string]any{"base_url": "https://b.example.com", "custom": 7},
	})
	if context["base_url"] != "https://b.example.com" {
		t.Errorf("extra did not override base_url: %v", context["base_url"])
	}
	if context["custom"] != 7 {
		t.Errorf("custom = %v", context["custom"])
	}
}
