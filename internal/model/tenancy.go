package model

// Tenant is a customer or internal organization that owns assets.
type Tenant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Ref returns the tenant's tagged reference.
func (t *Tenant) Ref() ObjectRef {
	return ObjectRef{Kind: KindTenant, ID: t.ID}
}

// Provider is the upstream carrier or vendor originating an event.
type Provider struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Ref returns the provider's tagged reference.
func (p *Provider) Ref() ObjectRef {
	return ObjectRef{Kind: KindProvider, ID: p.ID}
}

// Contact is a person or mailbox notifications can be delivered to.
type Contact struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ContactAssignment binds a contact to some object with a role and priority.
type ContactAssignment struct {
	Contact  Contact `json:"contact"`
	Role     string  `json:"role"`
	Priority string  `json:"priority"`
}
