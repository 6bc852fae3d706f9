// Package recipients resolves which contacts should receive a notification,
// walking event impacts to their owning tenants and filtering the contact
// assignment directory by the template's role and priority sets.
package recipients

import (
	"fmt"

	"github.com/jsenecal/netbox-notices/internal/metrics"
	"github.com/jsenecal/netbox-notices/internal/model"
)

// TenantContacts groups the contacts discovered for one tenant.
type TenantContacts struct {
	Tenant   *model.Tenant
	Contacts []model.Contact
}

// ImpactContacts groups the contacts discovered for one impact. Impacts
// whose target resolves to no tenant keep their entry with an empty list.
type ImpactContacts struct {
	Impact   *model.Impact
	Contacts []model.Contact
}

// Result is the shape-tagged outcome of discovery. Exactly one of the three
// collections is populated, selected by Granularity.
type Result struct {
	Granularity model.Granularity

	Contacts []model.Contact  // per_event: flat deduped union
	ByTenant []TenantContacts // per_tenant: one entry per distinct tenant
	ByImpact []ImpactContacts // per_impact: one entry per impact
}

// contactCount totals the contacts across whichever collection is populated.
func (r *Result) contactCount() int {
	count := len(r.Contacts)
	for _, tc := range r.ByTenant {
		count += len(tc.Contacts)
	}
	for _, ic := range r.ByImpact {
		count += len(ic.Contacts)
	}
	return count
}

// Discovery finds recipients for a template's notifications.
type Discovery struct {
	template    *model.NotificationTemplate
	tenants     TenantDirectory
	assignments AssignmentDirectory
	impacts     ImpactSource
}

// NewDiscovery returns a Discovery for the given template and directories.
func NewDiscovery(template *model.NotificationTemplate, tenants TenantDirectory, assignments AssignmentDirectory, impacts ImpactSource) *Discovery {
	return &Discovery{
		template:    template,
		tenants:     tenants,
		assignments: assignments,
		impacts:     impacts,
	}
}

// DiscoverForEvent discovers recipients for an event. An empty granularity
// falls back to the template's own; unknown values behave as per_event.
// Empty results are normal returns, never errors.
func (d *Discovery) DiscoverForEvent(event *model.Event, granularity model.Granularity) (*Result, error) {
	if granularity == "" {
		granularity = d.template.Granularity
	}

	impacts, err := d.impacts.ImpactsOf(event)
	if err != nil {
		return nil, fmt.Errorf("failed to load impacts: %w", err)
	}

	var result *Result
	switch granularity {
	case model.GranularityPerTenant:
		result, err = d.discoverPerTenant(impacts)
	case model.GranularityPerImpact:
		result, err = d.discoverPerImpact(impacts)
	default:
		result, err = d.discoverPerEvent(impacts)
	}
	if err != nil {
		return nil, err
	}

	metrics.RecipientsDiscovered(result.contactCount())
	return result, nil
}

// DiscoverForTenant returns the deduped contacts assigned to one tenant,
// filtered by the template's role and priority sets.
func (d *Discovery) DiscoverForTenant(tenant *model.Tenant) ([]model.Contact, error) {
	return d.contactsForTenant(tenant)
}

func (d *Discovery) discoverPerEvent(impacts []*model.Impact) (*Result, error) {
	result := &Result{Granularity: model.GranularityPerEvent, Contacts: []model.Contact{}}

	seenTenants := make(map[int64]struct{})
	seenContacts := make(map[int64]struct{})
	for _, impact := range impacts {
		tenant, err := d.tenants.TenantOf(impact.Target)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tenant for %s/%d: %w", impact.Target.Kind, impact.Target.ID, err)
		}
		if tenant == nil {
			continue
		}
		if _, ok := seenTenants[tenant.ID]; ok {
			continue
		}
		seenTenants[tenant.ID] = struct{}{}

		contacts, err := d.contactsForTenant(tenant)
		if err != nil {
			return nil, err
		}
		for _, c := range contacts {
			if _, ok := seenContacts[c.ID]; ok {
				continue
			}
			seenContacts[c.ID] = struct{}{}
			result.Contacts = append(result.Contacts, c)
		}
	}
	return result, nil
}

func (d *Discovery) discoverPerTenant(impacts []*model.Impact) (*Result, error) {
	result := &Result{Granularity: model.GranularityPerTenant}

	seenTenants := make(map[int64]struct{})
	for _, impact := range impacts {
		tenant, err := d.tenants.TenantOf(impact.Target)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tenant for %s/%d: %w", impact.Target.Kind, impact.Target.ID, err)
		}
		if tenant == nil {
			continue
		}
		if _, ok := seenTenants[tenant.ID]; ok {
			continue
		}
		seenTenants[tenant.ID] = struct{}{}

		contacts, err := d.contactsForTenant(tenant)
		if err != nil {
			return nil, err
		}
		result.ByTenant = append(result.ByTenant, TenantContacts{Tenant: tenant, Contacts: contacts})
	}
	return result, nil
}

func (d *Discovery) discoverPerImpact(impacts []*model.Impact) (*Result, error) {
	result := &Result{Granularity: model.GranularityPerImpact}

	for _, impact := range impacts {
		tenant, err := d.tenants.TenantOf(impact.Target)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tenant for %s/%d: %w", impact.Target.Kind, impact.Target.ID, err)
		}

		// Impacts without a tenant keep their entry with no contacts.
		entry := ImpactContacts{Impact: impact, Contacts: []model.Contact{}}
		if tenant != nil {
			contacts, err := d.contactsForTenant(tenant)
			if err != nil {
				return nil, err
			}
			entry.Contacts = contacts
		}
		result.ByImpact = append(result.ByImpact, entry)
	}
	return result, nil
}

// contactsForTenant queries the assignment directory and applies the
// template's role and priority filters. Contacts with only inactive
// assignments are always excluded. Results are deduped by contact ID.
func (d *Discovery) contactsForTenant(tenant *model.Tenant) ([]model.Contact, error) {
	if tenant == nil {
		return []model.Contact{}, nil
	}

	assignments, err := d.assignments.AssignmentsFor(tenant.Ref())
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments for tenant %q: %w", tenant.Slug, err)
	}

	roles := toSet(d.template.ContactRoles)
	priorities := toSet(d.template.ContactPriorities)

	contacts := []model.Contact{}
	seen := make(map[int64]struct{})
	for _, a := range assignments {
		if a.Priority == model.PriorityInactive {
			continue
		}
		if len(roles) > 0 {
			if _, ok := roles[a.Role]; !ok {
				continue
			}
		}
		if len(priorities) > 0 {
			if _, ok := priorities[a.Priority]; !ok {
				continue
			}
		}
		if _, ok := seen[a.Contact.ID]; ok {
			continue
		}
		seen[a.Contact.ID] = struct{}{}
		contacts = append(contacts, a.Contact)
	}
	return contacts, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Discover is the convenience entry point. With an event it discovers per
// the template's (or overridden) granularity; with only a tenant it returns
// that tenant's contacts as a per_event-shaped result; with neither it
// returns an empty result.
func Discover(d *Discovery, event *model.Event, tenant *model.Tenant, granularity model.Granularity) (*Result, error) {
	if event != nil {
		return d.DiscoverForEvent(event, granularity)
	}
	if tenant != nil {
		contacts, err := d.DiscoverForTenant(tenant)
		if err != nil {
			return nil, err
		}
		return &Result{Granularity: model.GranularityPerEvent, Contacts: contacts}, nil
	}
	return &Result{Granularity: model.GranularityPerEvent, Contacts: []model.Contact{}}, nil
}
