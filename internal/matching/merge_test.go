package matching

import (
	"reflect"
	"testing"

	"github.com/jsenecal/netbox-notices/internal/model"
)

func TestMerge_FirstNonEmptyWins(t *testing.T) {
	high := &model.NotificationTemplate{
		ID:              1,
		SubjectTemplate: "high subject",
		CSSTemplate:     "body { color: red }",
	}
	low := &model.NotificationTemplate{
		ID:              2,
		SubjectTemplate: "low subject",
		BodyTemplate:    "low body",
		BodyFormat:      model.BodyFormatMarkdown,
		CSSTemplate:     "body { color: blue }",
		ICalTemplate:    "BEGIN:VCALENDAR",
	}

	cfg := Merge([]*model.NotificationTemplate{high, low})

	if cfg.SubjectTemplate != "high subject" {
		t.Errorf("SubjectTemplate = %q, want %q", cfg.SubjectTemplate, "high subject")
	}
	// Body comes from the lower template because the higher one has none,
	// and the format travels with it
	if cfg.BodyTemplate != "low body" {
		t.Errorf("BodyTemplate = %q, want %q", cfg.BodyTemplate, "low body")
	}
	if cfg.BodyFormat != model.BodyFormatMarkdown {
		t.Errorf("BodyFormat = %q, want %q", cfg.BodyFormat, model.BodyFormatMarkdown)
	}
	if cfg.CSSTemplate != "body { color: red }" {
		t.Errorf("CSSTemplate = %q, want the higher template's css", cfg.CSSTemplate)
	}
	if cfg.ICalTemplate != "BEGIN:VCALENDAR" {
		t.Errorf("ICalTemplate = %q, want the lower template's", cfg.ICalTemplate)
	}
}

func TestMerge_HeadersKeyWise(t *testing.T) {
	high := &model.NotificationTemplate{
		ID:              1,
		HeadersTemplate: map[string]string{"X-Priority": "1", "Reply-To": "noc@example.com"},
	}
	low := &model.NotificationTemplate{
		ID:              2,
		HeadersTemplate: map[string]string{"X-Priority": "5", "X-Mailer": "notices"},
	}

	cfg := Merge([]*model.NotificationTemplate{high, low})

	want := map[string]string{
		"X-Priority": "1",
		"Reply-To":   "noc@example.com",
		"X-Mailer":   "notices",
	}
	if !reflect.DeepEqual(cfg.HeadersTemplate, want) {
		t.Errorf("HeadersTemplate = %v, want %v", cfg.HeadersTemplate, want)
	}
}

func TestMerge_IncludeICalIsOR(t *testing.T) {
	tests := []struct {
		name  string
		flags []bool
		want  bool
	}{
		{"none set", []bool{false, false}, false},
		{"first set", []bool{true, false}, true},
		{"last set", []bool{false, true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var templates []*model.NotificationTemplate
			for i, flag := range tt.flags {
				templates = append(templates, &model.NotificationTemplate{ID: int64(i + 1), IncludeICal: flag})
			}
			if got := Merge(templates).IncludeICal; got != tt.want {
				t.Errorf("IncludeICal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMerge_RoleAndPriorityUnions(t *testing.T) {
	a := &model.NotificationTemplate{
		ID:                1,
		ContactRoles:      []string{"noc", "billing"},
		ContactPriorities: []string{"primary"},
	}
	b := &model.NotificationTemplate{
		ID:                2,
		ContactRoles:      []string{"noc", "admin"},
		ContactPriorities: []string{"secondary", "primary"},
	}

	cfg := Merge([]*model.NotificationTemplate{a, b})

	wantRoles := []string{"admin", "billing", "noc"}
	if !reflect.DeepEqual(cfg.ContactRoles, wantRoles) {
		t.Errorf("ContactRoles = %v, want %v", cfg.ContactRoles, wantRoles)
	}
	wantPriorities := []string{"primary", "secondary"}
	if !reflect.DeepEqual(cfg.ContactPriorities, wantPriorities) {
		t.Errorf("ContactPriorities = %v, want %v", cfg.ContactPriorities, wantPriorities)
	}
}

func TestMerge_Empty(t *testing.T) {
	if cfg := Merge(nil); cfg != nil {
		t.Errorf("Merge(nil) = %v, want nil", cfg)
	}
}
