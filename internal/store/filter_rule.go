package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"alertdesk.app/intake/core/db"
	"alertdesk.app/intake/internal/model"
)

const filterRuleColumns = `id, integration_id, name, description, enabled, filter_type, field_path,
	operator, value, priority, created_at`

type filterRuleStore struct {
	q db.DBTX
}

func newFilterRuleStore(q db.DBTX) FilterRuleStore {
	return &filterRuleStore{q: q}
}

// ListByIntegration orders by id; snowflake ids make that insertion order.
func (s *filterRuleStore) ListByIntegration(ctx context.Context, integrationID int64) ([]model.FilterRule, error) {
	rows, err := s.q.Query(ctx, `SELECT `+filterRuleColumns+` FROM alert_filter_rules WHERE integration_id = $1 ORDER BY id`, integrationID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.FilterRule, error) {
		r, err := scanFilterRule(row)
		if err != nil {
			return model.FilterRule{}, err
		}
		return *r, nil
	})
}

func (s *filterRuleStore) Create(ctx context.Context, rule *model.FilterRule) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO alert_filter_rules (id, integration_id, name, description, enabled, filter_type, field_path,
			operator, value, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+filterRuleColumns,
		rule.ID,
		rule.IntegrationID,
		rule.Name,
		rule.Description,
		rule.Enabled,
		string(rule.FilterType),
		rule.FieldPath,
		string(rule.Operator),
		rule.Value,
		rule.Priority,
	)
	created, err := scanFilterRule(row)
	if err != nil {
		return err
	}
	*rule = *created
	return nil
}

func (s *filterRuleStore) Delete(ctx context.Context, integrationID, id int64) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM alert_filter_rules WHERE integration_id = $1 AND id = $2`, integrationID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanFilterRule(row pgx.Row) (*model.FilterRule, error) {
	var (
		r          model.FilterRule
		filterType string
		operator   string
	)
	err := row.Scan(
		&r.ID,
		&r.IntegrationID,
		&r.Name,
		&r.Description,
		&r.Enabled,
		&filterType,
		&r.FieldPath,
		&operator,
		&r.Value,
		&r.Priority,
		&r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	r.FilterType = model.FilterType(filterType)
	r.Operator = model.Operator(operator)
	return &r, nil
}
