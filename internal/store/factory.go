package store

import (
	"alertdesk.app/intake/core/db"
)

type Stores struct {
	q db.DBTX
}

// NewStores binds all stores to q, which is either the pool or a transaction.
func NewStores(q db.DBTX) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Integrations() IntegrationStore {
	return newIntegrationStore(s.q)
}

func (s *Stores) FilterRules() FilterRuleStore {
	return newFilterRuleStore(s.q)
}

func (s *Stores) FieldMappings() FieldMappingStore {
	return newFieldMappingStore(s.q)
}

func (s *Stores) Tickets() TicketStore {
	return newTicketStore(s.q)
}

func (s *Stores) Users() UserStore {
	return newUserStore(s.q)
}
