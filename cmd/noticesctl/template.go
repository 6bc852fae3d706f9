package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsenecal/netbox-notices/internal/matching"
	"github.com/jsenecal/netbox-notices/internal/model"
	"github.com/jsenecal/netbox-notices/internal/render"
)

var (
	previewContextFile string
	previewEventType   string

	matchEventType   string
	matchEventStatus string
	matchTenantID    int64
	matchProviderID  int64
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Template commands",
}

var templateValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate template syntax, including inheritance",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateValidate,
}

var templatePreviewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Render a template with sample data",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatePreview,
}

var templateMatchCmd = &cobra.Command{
	Use:   "match <templates.json>",
	Short: "Show which templates match an event context and their merged configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateMatch,
}

func init() {
	templatePreviewCmd.Flags().StringVar(&previewContextFile, "context", "", "JSON file with extra context values")
	templatePreviewCmd.Flags().StringVar(&previewEventType, "event-type", "maintenance", "Sample event type (maintenance, outage)")

	templateMatchCmd.Flags().StringVar(&matchEventType, "event-type", "maintenance", "Event type (maintenance, outage, none)")
	templateMatchCmd.Flags().StringVar(&matchEventStatus, "event-status", "", "Event status")
	templateMatchCmd.Flags().Int64Var(&matchTenantID, "tenant-id", 0, "Tenant ID anchor")
	templateMatchCmd.Flags().Int64Var(&matchProviderID, "provider-id", 0, "Provider ID anchor")

	templateCmd.AddCommand(templateValidateCmd, templatePreviewCmd, templateMatchCmd)
	rootCmd.AddCommand(templateCmd)
}

func runTemplateValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	renderer, err := loadRenderer(cfg)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	if err := renderer.Validate(string(src)); err != nil {
		return fmt.Errorf("template is invalid: %w", err)
	}

	fmt.Println("Template is valid")
	return nil
}

func runTemplatePreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	renderer, err := loadRenderer(cfg)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	extra := map[string]any{
		"message_sequence": 0,
	}
	if previewContextFile != "" {
		data, err := os.ReadFile(previewContextFile)
		if err != nil {
			return fmt.Errorf("failed to read context file: %w", err)
		}
		if err := json.Unmarshal(data, &extra); err != nil {
			return fmt.Errorf("failed to parse context file: %w", err)
		}
	}

	event, tenant, impacts := sampleData(previewEventType)
	context := render.BuildContext(render.ContextInput{
		BaseURL: cfg.Server.BaseURL,
		Now:     time.Now().UTC(),
		Event:   event,
		Tenant:  tenant,
		Impacts: impacts,
		Extra:   extra,
	})

	out, err := renderer.Render(string(src), context)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	fmt.Print(out)
	return nil
}

func runTemplateMatch(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read templates file: %w", err)
	}
	var templates []*model.NotificationTemplate
	if err := json.Unmarshal(data, &templates); err != nil {
		return fmt.Errorf("failed to parse templates file: %w", err)
	}

	ctx := matching.Context{}
	if matchEventType != string(model.EventTypeNone) {
		ctx.Event = &model.Event{
			Kind:   model.EventType(matchEventType),
			ID:     1,
			Status: matchEventStatus,
		}
	}
	if matchTenantID != 0 {
		ctx.Tenant = &model.Tenant{ID: matchTenantID}
	}
	if matchProviderID != 0 {
		ctx.Provider = &model.Provider{ID: matchProviderID}
	}

	matcher := matching.NewMatcher(templates)
	matches := matcher.FindTemplates(ctx)
	if len(matches) == 0 {
		fmt.Println("No templates match")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tID\tSLUG\tGRANULARITY")
	for _, match := range matches {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n",
			match.Score, match.Template.ID, match.Template.Slug, match.Template.Granularity)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	merged, err := json.MarshalIndent(matcher.MergedConfig(ctx), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal merged config: %w", err)
	}
	fmt.Println("\nMerged configuration:")
	fmt.Println(string(merged))
	return nil
}

// sampleData builds a representative event for previews
func sampleData(eventType string) (*model.Event, *model.Tenant, []*model.Impact) {
	provider := &model.Provider{ID: 1, Name: "Example Carrier", Slug: "example-carrier"}
	tenant := &model.Tenant{ID: 1, Name: "Example Tenant", Slug: "example-tenant"}

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	end := start.Add(4 * time.Hour)

	event := &model.Event{
		Kind:           model.EventTypeMaintenance,
		ID:             42,
		Name:           "MAINT-2026-0042",
		Summary:        "Fiber splice work on backbone segment",
		Status:         model.MaintenanceStatusConfirmed,
		Provider:       provider,
		Start:          start,
		End:            &end,
		InternalTicket: "TICKET-1234",
	}
	if eventType == string(model.EventTypeOutage) {
		event.Kind = model.EventTypeOutage
		event.Status = model.OutageStatusInvestigating
		event.InternalTicket = ""
		event.End = nil
	}

	impacts := []*model.Impact{
		{
			ID:         1,
			EventID:    event.ID,
			Target:     model.ObjectRef{Kind: "circuit", ID: 7},
			Severity:   model.SeverityOutage,
			TargetName: "CID-000123",
		},
		{
			ID:         2,
			EventID:    event.ID,
			Target:     model.ObjectRef{Kind: "circuit", ID: 9},
			Severity:   model.SeverityDegraded,
			TargetName: "CID-000456",
		},
	}
	return event, tenant, impacts
}
