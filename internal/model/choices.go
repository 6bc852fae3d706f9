package model

// EventType targets a template or scope at a class of events
type EventType string

const (
	EventTypeMaintenance EventType = "maintenance"
	EventTypeOutage      EventType = "outage"
	EventTypeBoth        EventType = "both"
	EventTypeNone        EventType = "none"
)

// Granularity controls how many notification records one event produces
type Granularity string

const (
	GranularityPerEvent  Granularity = "per_event"
	GranularityPerTenant Granularity = "per_tenant"
	GranularityPerImpact Granularity = "per_impact"
)

// BodyFormat is the format of a template body
type BodyFormat string

const (
	BodyFormatMarkdown BodyFormat = "markdown"
	BodyFormatHTML     BodyFormat = "html"
	BodyFormatText     BodyFormat = "text"
)

// Severity is the impact level of an event on a single asset (BCOP standard)
type Severity string

const (
	SeverityNoImpact          Severity = "NO-IMPACT"
	SeverityReducedRedundancy Severity = "REDUCED-REDUNDANCY"
	SeverityDegraded          Severity = "DEGRADED"
	SeverityOutage            Severity = "OUTAGE"
)

// severityOrder ranks severities worst-first. Unknown values rank below
// NO-IMPACT so they never win a rollup.
var severityOrder = []Severity{
	SeverityOutage,
	SeverityDegraded,
	SeverityReducedRedundancy,
	SeverityNoImpact,
}

// severityRank returns the position of s in severityOrder, or len(severityOrder)
// for unrecognized values.
func severityRank(s Severity) int {
	for i, v := range severityOrder {
		if v == s {
			return i
		}
	}
	return len(severityOrder)
}

// WorseSeverity reports whether a is strictly worse than b.
func WorseSeverity(a, b Severity) bool {
	return severityRank(a) < severityRank(b)
}

// HighestSeverity returns the worst severity among the given impacts.
// Empty input or only unrecognized values yield NO-IMPACT.
func HighestSeverity(impacts []*Impact) Severity {
	highest := SeverityNoImpact
	for _, imp := range impacts {
		if imp == nil {
			continue
		}
		if severityRank(imp.Severity) < len(severityOrder) && WorseSeverity(imp.Severity, highest) {
			highest = imp.Severity
		}
	}
	return highest
}

// SeverityColor maps severities to display colors (BCOP choice tables)
var SeverityColor = map[Severity]string{
	SeverityNoImpact:          "green",
	SeverityReducedRedundancy: "yellow",
	SeverityDegraded:          "orange",
	SeverityOutage:            "red",
}

// Maintenance status values from the BCOP Maintnote standard
const (
	MaintenanceStatusTentative   = "TENTATIVE"
	MaintenanceStatusConfirmed   = "CONFIRMED"
	MaintenanceStatusCancelled   = "CANCELLED"
	MaintenanceStatusInProcess   = "IN-PROCESS"
	MaintenanceStatusCompleted   = "COMPLETED"
	MaintenanceStatusRescheduled = "RE-SCHEDULED"
	MaintenanceStatusUnknown     = "UNKNOWN"
)

// MaintenanceStatusColor maps maintenance statuses to display colors
var MaintenanceStatusColor = map[string]string{
	MaintenanceStatusTentative:   "yellow",
	MaintenanceStatusConfirmed:   "green",
	MaintenanceStatusCancelled:   "gray",
	MaintenanceStatusInProcess:   "orange",
	MaintenanceStatusCompleted:   "indigo",
	MaintenanceStatusRescheduled: "teal",
	MaintenanceStatusUnknown:     "blue",
}

// Outage status values
const (
	OutageStatusReported      = "REPORTED"
	OutageStatusInvestigating = "INVESTIGATING"
	OutageStatusIdentified    = "IDENTIFIED"
	OutageStatusMonitoring    = "MONITORING"
	OutageStatusResolved      = "RESOLVED"
)

// OutageStatusColor maps outage statuses to display colors
var OutageStatusColor = map[string]string{
	OutageStatusReported:      "red",
	OutageStatusInvestigating: "orange",
	OutageStatusIdentified:    "yellow",
	OutageStatusMonitoring:    "blue",
	OutageStatusResolved:      "green",
}

// Contact priority values. PriorityInactive is never delivered to, regardless
// of template filters.
const (
	PriorityPrimary   = "primary"
	PrioritySecondary = "secondary"
	PriorityTertiary  = "tertiary"
	PriorityInactive  = "inactive"
)
