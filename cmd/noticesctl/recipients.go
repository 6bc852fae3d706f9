package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jsenecal/netbox-notices/internal/model"
	"github.com/jsenecal/netbox-notices/internal/recipients"
)

var recipientsGranularity string

var recipientsCmd = &cobra.Command{
	Use:   "recipients <dataset.json>",
	Short: "Resolve who would receive notifications for an event",
	Long: `Resolve recipients from a JSON dataset describing the template, the event,
its impacts, asset ownership and contact assignments. Useful for dry-running
a template's role/priority filters before approving anything.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecipients,
}

func init() {
	recipientsCmd.Flags().StringVar(&recipientsGranularity, "granularity", "", "Override granularity (per_event, per_tenant, per_impact)")
	rootCmd.AddCommand(recipientsCmd)
}

// recipientDataset is the file format consumed by the recipients command.
// Owners map impact targets to tenants; assignments are keyed by tenant ID.
type recipientDataset struct {
	Template *model.NotificationTemplate `json:"template"`
	Event    *model.Event                `json:"event"`
	Impacts  []*model.Impact             `json:"impacts"`
	Owners   []struct {
		Target model.ObjectRef `json:"target"`
		Tenant *model.Tenant   `json:"tenant"`
	} `json:"owners"`
	Assignments []struct {
		TenantID int64         `json:"tenant_id"`
		Contact  model.Contact `json:"contact"`
		Role     string        `json:"role"`
		Priority string        `json:"priority"`
	} `json:"assignments"`
}

// datasetDirectory serves all three discovery interfaces from a dataset file
type datasetDirectory struct {
	owners      map[model.ObjectRef]*model.Tenant
	assignments map[int64][]model.ContactAssignment
	impacts     []*model.Impact
}

func newDatasetDirectory(ds *recipientDataset) *datasetDirectory {
	dir := &datasetDirectory{
		owners:      make(map[model.ObjectRef]*model.Tenant),
		assignments: make(map[int64][]model.ContactAssignment),
		impacts:     ds.Impacts,
	}
	for _, owner := range ds.Owners {
		dir.owners[owner.Target] = owner.Tenant
	}
	for _, a := range ds.Assignments {
		dir.assignments[a.TenantID] = append(dir.assignments[a.TenantID], model.ContactAssignment{
			Contact:  a.Contact,
			Role:     a.Role,
			Priority: a.Priority,
		})
	}
	return dir
}

func (d *datasetDirectory) TenantOf(target model.ObjectRef) (*model.Tenant, error) {
	return d.owners[target], nil
}

func (d *datasetDirectory) AssignmentsFor(anchor model.ObjectRef) ([]model.ContactAssignment, error) {
	return d.assignments[anchor.ID], nil
}

func (d *datasetDirectory) ImpactsOf(event *model.Event) ([]*model.Impact, error) {
	return d.impacts, nil
}

func runRecipients(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}
	var ds recipientDataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return fmt.Errorf("failed to parse dataset: %w", err)
	}
	if ds.Template == nil {
		return fmt.Errorf("dataset has no template")
	}
	if ds.Event == nil {
		return fmt.Errorf("dataset has no event")
	}

	dir := newDatasetDirectory(&ds)
	discovery := recipients.NewDiscovery(ds.Template, dir, dir, dir)

	result, err := discovery.DiscoverForEvent(ds.Event, model.Granularity(recipientsGranularity))
	if err != nil {
		return fmt.Errorf("failed to discover recipients: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	defer w.Flush()

	switch result.Granularity {
	case model.GranularityPerTenant:
		fmt.Fprintln(w, "TENANT\tCONTACT\tEMAIL")
		for _, tc := range result.ByTenant {
			if len(tc.Contacts) == 0 {
				fmt.Fprintf(w, "%s\t-\t-\n", tc.Tenant.Slug)
				continue
			}
			for _, c := range tc.Contacts {
				fmt.Fprintf(w, "%s\t%s\t%s\n", tc.Tenant.Slug, c.Name, c.Email)
			}
		}
	case model.GranularityPerImpact:
		fmt.Fprintln(w, "IMPACT\tSEVERITY\tCONTACT\tEMAIL")
		for _, ic := range result.ByImpact {
			target := ic.Impact.TargetName
			if target == "" {
				target = fmt.Sprintf("%s/%d", ic.Impact.Target.Kind, ic.Impact.Target.ID)
			}
			if len(ic.Contacts) == 0 {
				fmt.Fprintf(w, "%s\t%s\t-\t-\n", target, ic.Impact.Severity)
				continue
			}
			for _, c := range ic.Contacts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", target, ic.Impact.Severity, c.Name, c.Email)
			}
		}
	default:
		if len(result.Contacts) == 0 {
			fmt.Fprintln(w, "No recipients")
			return nil
		}
		fmt.Fprintln(w, "CONTACT\tEMAIL")
		for _, c := range result.Contacts {
			fmt.Fprintf(w, "%s\t%s\n", c.Name, c.Email)
		}
	}
	return nil
}
