package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"alertdesk.app/intake/common/id"
	"alertdesk.app/intake/common/logger"
	"alertdesk.app/intake/core/config"
	"alertdesk.app/intake/core/db"
	"alertdesk.app/intake/internal/definition"
	"alertdesk.app/intake/internal/service"
	"alertdesk.app/intake/internal/store"
)

type importResult struct {
	IntegrationID int64  `json:"integrationId,string"`
	WebhookID     string `json:"webhookId"`
	WebhookURL    string `json:"webhookUrl"`
	APIKey        string `json:"apiKey"`
	FilterRules   int    `json:"filterRules"`
	FieldMappings int    `json:"fieldMappings"`
}

func runImport(ctx context.Context, args []string, out io.Writer) error {
	var definitionPath string
	if err := parseFlags("import", args, func(fs *pflag.FlagSet) {
		fs.StringVarP(&definitionPath, "definition", "d", "", "integration definition (YAML)")
	}); err != nil {
		return err
	}
	if definitionPath == "" {
		return errors.New("--definition is required")
	}

	def, err := definition.Load(definitionPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg)
	if err := id.Init(cfg.NodeID); err != nil {
		return fmt.Errorf("initializing id generator: %w", err)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	stores := store.NewStores(database.Conn())
	integrations := service.NewIntegrationService(stores.Integrations(), stores.FilterRules(), stores.FieldMappings(), service.NewTxRunner(database))

	result, err := importDefinition(ctx, integrations, def)
	if err != nil {
		return err
	}
	result.WebhookURL = cfg.PublicBaseURL + "/webhooks/alerts/" + result.WebhookID
	return writeJSON(out, result)
}

// importDefinition creates the integration, then its rules and mappings. A
// failure part way removes the integration again.
func importDefinition(ctx context.Context, integrations service.IntegrationService, def *definition.Definition) (*importResult, error) {
	base := def.Integration()
	integration, err := integrations.Create(ctx, service.CreateIntegrationParams{
		Name:             base.Name,
		Description:      base.Description,
		Enabled:          &base.Enabled,
		SourceSystem:     base.SourceSystem,
		DefaultPriority:  base.DefaultPriority,
		DefaultCategory:  base.DefaultCategory,
		AutoAssignTeamID: base.AutoAssignTeamID,
	})
	if err != nil {
		return nil, fmt.Errorf("creating integration: %w", err)
	}

	rollback := func(cause error) error {
		if err := integrations.Delete(ctx, integration.ID); err != nil {
			slog.ErrorContext(ctx, "failed to remove partially imported integration", "error", err, "integration_id", integration.ID)
		}
		return cause
	}

	for _, r := range def.Rules() {
		enabled := r.Enabled
		if _, err := integrations.AddFilterRule(ctx, integration.ID, service.CreateFilterRuleParams{
			Name:        r.Name,
			Description: r.Description,
			Enabled:     &enabled,
			FilterType:  r.FilterType,
			FieldPath:   r.FieldPath,
			Operator:    r.Operator,
			Value:       r.Value,
			Priority:    r.Priority,
		}); err != nil {
			return nil, rollback(fmt.Errorf("filter rule %q: %w", r.Name, err))
		}
	}

	for _, m := range def.Mappings() {
		if _, err := integrations.AddFieldMapping(ctx, integration.ID, service.CreateFieldMappingParams{
			TicketField:    m.TicketField,
			AlertFieldPath: m.AlertFieldPath,
			Transform:      m.Transform,
		}); err != nil {
			return nil, rollback(fmt.Errorf("field mapping %s: %w", m.TicketField, err))
		}
	}

	return &importResult{
		IntegrationID: integration.ID,
		WebhookID:     integration.WebhookID,
		APIKey:        integration.APIKey,
		FilterRules:   len(def.FilterRules),
		FieldMappings: len(def.FieldMappings),
	}, nil
}
