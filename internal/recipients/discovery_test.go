package recipients

import (
	"testing"

	"github.com/jsenecal/netbox-notices/internal/model"
)

// fakeDirectory implements all three directory interfaces over fixed maps
type fakeDirectory struct {
	tenants     map[model.ObjectRef]*model.Tenant
	assignments map[int64][]model.ContactAssignment
	impacts     []*model.Impact
}

func (f *fakeDirectory) TenantOf(target model.ObjectRef) (*model.Tenant, error) {
	return f.tenants[target], nil
}

func (f *fakeDirectory) AssignmentsFor(anchor model.ObjectRef) ([]model.ContactAssignment, error) {
	return f.assignments[anchor.ID], nil
}

func (f *fakeDirectory) ImpactsOf(event *model.Event) ([]*model.Impact, error) {
	return f.impacts, nil
}

func testEvent() *model.Event {
	return &model.Event{Kind: model.EventTypeMaintenance, ID: 1, Name: "MAINT-1"}
}

// fixtures: two circuits owned by tenant 1, one by tenant 2, one unowned
func testDirectory() *fakeDirectory {
	acme := &model.Tenant{ID: 1, Name: "Acme", Slug: "acme"}
	globex := &model.Tenant{ID: 2, Name: "Globex", Slug: "globex"}

	return &fakeDirectory{
		tenants: map[model.ObjectRef]*model.Tenant{
			{Kind: "circuit", ID: 10}: acme,
			{Kind: "circuit", ID: 11}: acme,
			{Kind: "circuit", ID: 20}: globex,
		},
		assignments: map[int64][]model.ContactAssignment{
			1: {
				{Contact: model.Contact{ID: 100, Name: "Alice", Email: "alice@acme.test"}, Role: "noc", Priority: model.PriorityPrimary},
				{Contact: model.Contact{ID: 100, Name: "Alice", Email: "alice@acme.test"}, Role: "noc", Priority: model.PriorityTertiary},
				{Contact: model.Contact{ID: 101, Name: "Bob", Email: "bob@acme.test"}, Role: "billing", Priority: model.PrioritySecondary},
				{Contact: model.Contact{ID: 102, Name: "Carol", Email: "carol@acme.test"}, Role: "noc", Priority: model.PriorityInactive},
			},
			2: {
				{Contact: model.Contact{ID: 200, Name: "Dave", Email: "dave@globex.test"}, Role: "noc", Priority: model.PriorityPrimary},
				{Contact: model.Contact{ID: 100, Name: "Alice", Email: "alice@acme.test"}, Role: "noc", Priority: model.PriorityPrimary},
			},
		},
		impacts: []*model.Impact{
			{ID: 1, EventID: 1, Target: model.ObjectRef{Kind: "circuit", ID: 10}, Severity: model.SeverityOutage},
			{ID: 2, EventID: 1, Target: model.ObjectRef{Kind: "circuit", ID: 11}, Severity: model.SeverityDegraded},
			{ID: 3, EventID: 1, Target: model.ObjectRef{Kind: "circuit", ID: 20}, Severity: model.SeverityDegraded},
			{ID: 4, EventID: 1, Target: model.ObjectRef{Kind: "circuit", ID: 30}, Severity: model.SeverityNoImpact},
		},
	}
}

func newTestDiscovery(tpl *model.NotificationTemplate) *Discovery {
	dir := testDirectory()
	return NewDiscovery(tpl, dir, dir, dir)
}

func TestDiscoverPerEvent(t *testing.T) {
	d := newTestDiscovery(&model.NotificationTemplate{Granularity: model.GranularityPerEvent})

	result, err := d.DiscoverForEvent(testEvent(), "")
	if err != nil {
		t.Fatal(err)
	}

	if result.Granularity != model.GranularityPerEvent {
		t.Errorf("Granularity = %q, want per_event", result.Granularity)
	}
	// Alice is assigned to both tenants and must appear once; Carol is
	// inactive and excluded entirely
	want := map[int64]bool{100: true, 101: true, 200: true}
	if len(result.Contacts) != len(want) {
		t.Fatalf("got %d contacts, want %d", len(result.Contacts), len(want))
	}
	for _, c := range result.Contacts {
		if !want[c.ID] {
			t.Errorf("unexpected contact %d", c.ID)
		}
	}
}

func TestDiscoverPerTenant(t *testing.T) {
	d := newTestDiscovery(&model.NotificationTemplate{Granularity: model.GranularityPerTenant})

	result, err := d.DiscoverForEvent(testEvent(), "")
	if err != nil {
		t.Fatal(err)
	}

	// Two distinct tenants; the unowned circuit contributes nothing
	if len(result.ByTenant) != 2 {
		t.Fatalf("got %d tenant groups, want 2", len(result.ByTenant))
	}
	if result.ByTenant[0].Tenant.Slug != "acme" {
		t.Errorf("first tenant = %q, want acme", result.ByTenant[0].Tenant.Slug)
	}
	if len(result.ByTenant[0].Contacts) != 2 {
		t.Errorf("acme contacts = %d, want 2", len(result.ByTenant[0].Contacts))
	}
	if len(result.ByTenant[1].Contacts) != 2 {
		t.Errorf("globex contacts = %d, want 2", len(result.ByTenant[1].Contacts))
	}
}

func TestDiscoverPerImpact(t *testing.T) {
	d := newTestDiscovery(&model.NotificationTemplate{Granularity: model.GranularityPerImpact})

	result, err := d.DiscoverForEvent(testEvent(), "")
	if err != nil {
		t.Fatal(err)
	}

	// One entry per impact, including the unowned one
	if len(result.ByImpact) != 4 {
		t.Fatalf("got %d impact entries, want 4", len(result.ByImpact))
	}
	unowned := result.ByImpact[3]
	if unowned.Impact.ID != 4 {
		t.Fatalf("last entry impact = %d, want 4", unowned.Impact.ID)
	}
	if len(unowned.Contacts) != 0 {
		t.Errorf("unowned impact has %d contacts, want 0", len(unowned.Contacts))
	}
}

func TestDiscoverGranularityOverride(t *testing.T) {
	d := newTestDiscovery(&model.NotificationTemplate{Granularity: model.GranularityPerEvent})

	result, err := d.DiscoverForEvent(testEvent(), model.GranularityPerTenant)
	if err != nil {
		t.Fatal(err)
	}
	if result.Granularity != model.GranularityPerTenant {
		t.Errorf("Granularity = %q, want per_tenant override", result.Granularity)
	}
}

func TestContactFilters(t *testing.T) {
	tests := []struct {
		name       string
		roles      []string
		priorities []string
		want       []int64
	}{
		{"unfiltered", nil, nil, []int64{100, 101}},
		{"role filter", []string{"noc"}, nil, []int64{100}},
		{"priority filter", nil, []string{model.PrioritySecondary}, []int64{101}},
		{"both filters, no overlap", []string{"noc"}, []string{model.PrioritySecondary}, []int64{}},
		{"inactive requested explicitly still excluded", []string{"noc"}, []string{model.PriorityInactive}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDiscovery(&model.NotificationTemplate{
				ContactRoles:      tt.roles,
				ContactPriorities: tt.priorities,
			})

			contacts, err := d.DiscoverForTenant(&model.Tenant{ID: 1, Slug: "acme"})
			if err != nil {
				t.Fatal(err)
			}
			if len(contacts) != len(tt.want) {
				t.Fatalf("got %d contacts, want %d", len(contacts), len(tt.want))
			}
			for i, id := range tt.want {
				if contacts[i].ID != id {
					t.Errorf("contact[%d] = %d, want %d", i, contacts[i].ID, id)
				}
			}
		})
	}
}

func TestDiscoverForTenantDeduplicates(t *testing.T) {
	// Alice holds two assignments to the same tenant (primary and tertiary)
	// and must still appear once
	d := newTestDiscovery(&model.NotificationTemplate{})

	contacts, err := d.DiscoverForTenant(&model.Tenant{ID: 1, Slug: "acme"})
	if err != nil {
		t.Fatal(err)
	}

	count := 0
	for _, c := range contacts {
		if c.ID == 100 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("contact with two same-tenant assignments appears %d times, want 1", count)
	}
	if len(contacts) != 2 {
		t.Errorf("got %d contacts, want 2", len(contacts))
	}
}

func TestDiscoverEntryPoint(t *testing.T) {
	d := newTestDiscovery(&model.NotificationTemplate{Granularity: model.GranularityPerEvent})

	// Tenant-only discovery
	result, err := Discover(d, nil, &model.Tenant{ID: 2, Slug: "globex"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Contacts) != 2 {
		t.Errorf("tenant-only discovery returned %d contacts, want 2", len(result.Contacts))
	}

	// Neither event nor tenant is an empty result, not an error
	result, err = Discover(d, nil, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Contacts) != 0 {
		t.Errorf("empty discovery returned %d contacts, want 0", len(result.Contacts))
	}
}
