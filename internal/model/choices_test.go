package model

import "testing"

func TestHighestSeverity(t *testing.T) {
	tests := []struct {
		name    string
		impacts []*Impact
		want    Severity
	}{
		{"empty", nil, SeverityNoImpact},
		{
			"single",
			[]*Impact{{Severity: SeverityDegraded}},
			SeverityDegraded,
		},
		{
			"worst wins",
			[]*Impact{
				{Severity: SeverityNoImpact},
				{Severity: SeverityDegraded},
				{Severity: SeverityReducedRedundancy},
			},
			SeverityDegraded,
		},
		{
			"outage beats everything",
			[]*Impact{
				{Severity: SeverityDegraded},
				{Severity: SeverityOutage},
			},
			SeverityOutage,
		},
		{
			"unrecognized values ignored",
			[]*Impact{
				{Severity: Severity("CATASTROPHIC")},
				{Severity: SeverityReducedRedundancy},
			},
			SeverityReducedRedundancy,
		},
		{
			"only unrecognized values",
			[]*Impact{{Severity: Severity("weird")}},
			SeverityNoImpact,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HighestSeverity(tt.impacts); got != tt.want {
				t.Errorf("HighestSeverity() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWorseSeverity(t *testing.T) {
	if !WorseSeverity(SeverityOutage, SeverityDegraded) {
		t.Error("OUTAGE should be worse than DEGRADED")
	}
	if !WorseSeverity(SeverityDegraded, SeverityReducedRedundancy) {
		t.Error("DEGRADED should be worse than REDUCED-REDUNDANCY")
	}
	if WorseSeverity(SeverityNoImpact, SeverityOutage) {
		t.Error("NO-IMPACT should not be worse than OUTAGE")
	}
	if WorseSeverity(SeverityOutage, SeverityOutage) {
		t.Error("a severity is not worse than itself")
	}
}

func TestEffectiveWeight(t *testing.T) {
	tpl := &NotificationTemplate{}
	if got := tpl.EffectiveWeight(); got != DefaultWeight {
		t.Errorf("EffectiveWeight() = %d, want %d", got, DefaultWeight)
	}
	tpl.Weight = 500
	if got := tpl.EffectiveWeight(); got != 500 {
		t.Errorf("EffectiveWeight() = %d, want 500", got)
	}

	scope := &TemplateScope{}
	if got := scope.EffectiveWeight(); got != DefaultWeight {
		t.Errorf("scope EffectiveWeight() = %d, want %d", got, DefaultWeight)
	}
}

func TestStatusColor(t *testing.T) {
	maint := &Event{Kind: EventTypeMaintenance, Status: MaintenanceStatusConfirmed}
	if got := maint.StatusColor(); got != "green" {
		t.Errorf("maintenance StatusColor() = %q, want green", got)
	}
	outage := &Event{Kind: EventTypeOutage, Status: OutageStatusReported}
	if got := outage.StatusColor(); got != "red" {
		t.Errorf("outage StatusColor() = %q, want red", got)
	}
}

func TestObjectRefWildcard(t *testing.T) {
	if !(ObjectRef{Kind: KindTenant}).Wildcard() {
		t.Error("zero ID should be a wildcard")
	}
	if (ObjectRef{Kind: KindTenant, ID: 3}).Wildcard() {
		t.Error("non-zero ID should not be a wildcard")
	}
}
