package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"alertdesk.app/intake/core/db"
	"alertdesk.app/intake/internal/model"
)

const integrationColumns = `id, name, description, enabled, webhook_id, api_key, source_system,
	default_priority, default_category, auto_assign_team_id, created_at, updated_at`

type integrationStore struct {
	q db.DBTX
}

func newIntegrationStore(q db.DBTX) IntegrationStore {
	return &integrationStore{q: q}
}

func (s *integrationStore) GetByID(ctx context.Context, id int64) (*model.Integration, error) {
	row := s.q.QueryRow(ctx, `SELECT `+integrationColumns+` FROM alert_integrations WHERE id = $1`, id)
	return scanIntegration(row)
}

func (s *integrationStore) GetByWebhookID(ctx context.Context, webhookID string) (*model.Integration, error) {
	row := s.q.QueryRow(ctx, `SELECT `+integrationColumns+` FROM alert_integrations WHERE webhook_id = $1`, webhookID)
	return scanIntegration(row)
}

func (s *integrationStore) List(ctx context.Context) ([]model.Integration, error) {
	rows, err := s.q.Query(ctx, `SELECT `+integrationColumns+` FROM alert_integrations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Integration, error) {
		i, err := scanIntegration(row)
		if err != nil {
			return model.Integration{}, err
		}
		return *i, nil
	})
}

func (s *integrationStore) Create(ctx context.Context, integration *model.Integration) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO alert_integrations (id, name, description, enabled, webhook_id, api_key, source_system,
			default_priority, default_category, auto_assign_team_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+integrationColumns,
		integration.ID,
		integration.Name,
		integration.Description,
		integration.Enabled,
		integration.WebhookID,
		integration.APIKey,
		integration.SourceSystem,
		string(integration.DefaultPriority),
		integration.DefaultCategory,
		integration.AutoAssignTeamID,
	)
	created, err := scanIntegration(row)
	if err != nil {
		return err
	}
	*integration = *created
	return nil
}

// Update writes the mutable fields. The webhook id and API key are not
// touched here.
func (s *integrationStore) Update(ctx context.Context, integration *model.Integration) error {
	row := s.q.QueryRow(ctx, `
		UPDATE alert_integrations
		SET name = $2, description = $3, enabled = $4, source_system = $5,
			default_priority = $6, default_category = $7, auto_assign_team_id = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+integrationColumns,
		integration.ID,
		integration.Name,
		integration.Description,
		integration.Enabled,
		integration.SourceSystem,
		string(integration.DefaultPriority),
		integration.DefaultCategory,
		integration.AutoAssignTeamID,
	)
	updated, err := scanIntegration(row)
	if err != nil {
		return err
	}
	*integration = *updated
	return nil
}

func (s *integrationStore) UpdateAPIKey(ctx context.Context, id int64, apiKey string) error {
	tag, err := s.q.Exec(ctx, `UPDATE alert_integrations SET api_key = $2, updated_at = now() WHERE id = $1`, id, apiKey)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *integrationStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM alert_integrations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanIntegration(row pgx.Row) (*model.Integration, error) {
	var (
		i        model.Integration
		priority string
	)
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Enabled,
		&i.WebhookID,
		&i.APIKey,
		&i.SourceSystem,
		&priority,
		&i.DefaultCategory,
		&i.AutoAssignTeamID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	i.DefaultPriority = model.Priority(priority)
	return &i, nil
}
