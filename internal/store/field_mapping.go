package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"alertdesk.app/intake/core/db"
	"alertdesk.app/intake/internal/model"
)

const fieldMappingColumns = `id, integration_id, ticket_field, alert_field_path, transform, created_at`

type fieldMappingStore struct {
	q db.DBTX
}

func newFieldMappingStore(q db.DBTX) FieldMappingStore {
	return &fieldMappingStore{q: q}
}

func (s *fieldMappingStore) ListByIntegration(ctx context.Context, integrationID int64) ([]model.FieldMapping, error) {
	rows, err := s.q.Query(ctx, `SELECT `+fieldMappingColumns+` FROM alert_field_mappings WHERE integration_id = $1 ORDER BY id`, integrationID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.FieldMapping, error) {
		m, err := scanFieldMapping(row)
		if err != nil {
			return model.FieldMapping{}, err
		}
		return *m, nil
	})
}

func (s *fieldMappingStore) Create(ctx context.Context, mapping *model.FieldMapping) error {
	var transform *string
	if mapping.Transform != "" {
		transform = &mapping.Transform
	}
	row := s.q.QueryRow(ctx, `
		INSERT INTO alert_field_mappings (id, integration_id, ticket_field, alert_field_path, transform)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+fieldMappingColumns,
		mapping.ID,
		mapping.IntegrationID,
		string(mapping.TicketField),
		mapping.AlertFieldPath,
		transform,
	)
	created, err := scanFieldMapping(row)
	if err != nil {
		return err
	}
	*mapping = *created
	return nil
}

func (s *fieldMappingStore) Delete(ctx context.Context, integrationID, id int64) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM alert_field_mappings WHERE integration_id = $1 AND id = $2`, integrationID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanFieldMapping(row pgx.Row) (*model.FieldMapping, error) {
	var (
		m         model.FieldMapping
		field     string
		transform *string
	)
	err := row.Scan(&m.ID, &m.IntegrationID, &field, &m.AlertFieldPath, &transform, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	m.TicketField = model.TicketField(field)
	if transform != nil {
		m.Transform = *transform
	}
	return &m, nil
}
