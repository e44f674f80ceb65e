package service

import (
	"log/slog"

	"alertdesk.app/intake/core/config"
	"alertdesk.app/intake/internal/dedup"
	"alertdesk.app/intake/internal/metrics"
	"alertdesk.app/intake/internal/queue"
	"alertdesk.app/intake/internal/store"
)

type ServicesConfig struct {
	Stores     *store.Stores
	TxRunner   TxRunner
	SystemUser config.SystemUserConfig
	Events     queue.Producer
	Dedup      dedup.Guard
	Metrics    metrics.Recorder
}

type Services struct {
	cfg ServicesConfig
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{cfg: cfg}
}

func (s *Services) AlertIngest() AlertIngestService {
	return NewAlertIngestService(AlertIngestDeps{
		Integrations:  s.cfg.Stores.Integrations(),
		FilterRules:   s.cfg.Stores.FilterRules(),
		FieldMappings: s.cfg.Stores.FieldMappings(),
		Tickets:       s.cfg.Stores.Tickets(),
		Identity:      s.SystemIdentity(),
		Events:        s.cfg.Events,
		Dedup:         s.cfg.Dedup,
		Metrics:       s.cfg.Metrics,
		Logger:        slog.Default(),
	})
}

func (s *Services) Integrations() IntegrationService {
	return NewIntegrationService(
		s.cfg.Stores.Integrations(),
		s.cfg.Stores.FilterRules(),
		s.cfg.Stores.FieldMappings(),
		s.cfg.TxRunner,
	)
}

func (s *Services) SystemIdentity() SystemIdentity {
	return NewSystemIdentity(s.cfg.Stores.Users(), s.cfg.SystemUser.Email, s.cfg.SystemUser.Name)
}
