package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"alertdesk.app/intake/common/id"
	"alertdesk.app/intake/core/db"
	"alertdesk.app/intake/internal/model"
)

const ticketColumns = `id, ticket_number, title, description, priority, category, status, impact, urgency,
	tags, assigned_team_id, integration_id, source, created_by, created_at`

type ticketStore struct {
	q db.DBTX
}

func newTicketStore(q db.DBTX) TicketStore {
	return &ticketStore{q: q}
}

// Create inserts the draft and allocates the next ALT-###### number from
// ticket_number_seq.
func (s *ticketStore) Create(ctx context.Context, draft model.TicketDraft, actorID int64) (*model.Ticket, error) {
	var integrationID *int64
	if draft.IntegrationID != 0 {
		integrationID = &draft.IntegrationID
	}
	tags := draft.Tags
	if tags == nil {
		tags = []string{}
	}

	row := s.q.QueryRow(ctx, `
		INSERT INTO tickets (id, ticket_number, title, description, priority, category, status, impact, urgency,
			tags, assigned_team_id, integration_id, source, created_by)
		VALUES ($1, 'ALT-' || lpad(nextval('ticket_number_seq')::text, 6, '0'), $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13)
		RETURNING `+ticketColumns,
		id.New(),
		draft.Title,
		draft.Description,
		string(draft.Priority),
		draft.Category,
		draft.Status,
		nullIfEmpty(draft.Impact),
		nullIfEmpty(draft.Urgency),
		tags,
		draft.AssignedTeamID,
		integrationID,
		draft.Source,
		actorID,
	)
	return scanTicket(row)
}

func (s *ticketStore) GetByID(ctx context.Context, ticketID int64) (*model.Ticket, error) {
	row := s.q.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, ticketID)
	return scanTicket(row)
}

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var (
		t        model.Ticket
		priority string
	)
	err := row.Scan(
		&t.ID,
		&t.TicketNumber,
		&t.Title,
		&t.Description,
		&priority,
		&t.Category,
		&t.Status,
		&t.Impact,
		&t.Urgency,
		&t.Tags,
		&t.AssignedTeamID,
		&t.IntegrationID,
		&t.Source,
		&t.CreatedBy,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.Priority = model.Priority(priority)
	return &t, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
