package recipients

import "github.com/jsenecal/netbox-notices/internal/model"

// TenantDirectory resolves which tenant owns an asset. A nil tenant with a
// nil error means the asset has no tenant.
type TenantDirectory interface {
	TenantOf(target model.ObjectRef) (*model.Tenant, error)
}

// AssignmentDirectory lists contact assignments anchored to an object.
type AssignmentDirectory interface {
	AssignmentsFor(anchor model.ObjectRef) ([]model.ContactAssignment, error)
}

// ImpactSource lists the impact records of an event. Events without impacts
// return an empty slice.
type ImpactSource interface {
	ImpactsOf(event *model.Event) ([]*model.Impact, error)
}
