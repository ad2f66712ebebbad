package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm_backoffice/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
)

var leadColumnNames = []string{
	"id", "name", "company", "email", "phone", "source", "source_detail", "line_of_business",
	"expected_value_cents", "notes", "lost_reason", "stage", "address_to_use", "has_domain", "domain",
	"whatsapp_enabled", "business_description", "service_outcome", "admin_ease_notes", "payment_handling",
	"has_logo", "logo_url", "converted_client_id", "won_at", "created_by", "created_at", "updated_at",
}

func leadRows(id uuid.UUID, stage string, convertedClientID *uuid.UUID) *pgxmock.Rows {
	now := time.Now()
	company := "Bakery Bros"
	payment := "card"
	var convertedArg any
	if convertedClientID != nil {
		convertedArg = convertedClientID
	}
	return pgxmock.NewRows(leadColumnNames).AddRow(
		id, "Ann", &company, nil, nil, "website", nil, nil,
		nil, "", nil, stage, nil, false, nil,
		false, nil, nil, nil, &payment,
		false, nil, convertedArg, nil, uuid.New(), now, now,
	)
}

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create mock: %v", err)
	}
	t.Cleanup(mock.Close)
	return New(mock), mock
}

func TestUpdateStageGuardsWonLeads(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	clientID := uuid.New()

	mock.ExpectQuery(`UPDATE leads SET stage = \$2, lost_reason = \$3, updated_at = now\(\)\s+WHERE id = \$1 AND stage <> 'won'`).
		WithArgs(id, "qualified", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(leadColumnNames))
	mock.ExpectQuery(`(?s)SELECT .+ FROM leads WHERE id = \$1$`).
		WithArgs(id).
		WillReturnRows(leadRows(id, "won", &clientID))

	lead, err := repo.UpdateStage(context.Background(), id, domain.StageQualified, nil)
	if !errors.Is(err, ErrLeadWon) {
		t.Fatalf("expected ErrLeadWon, got %v", err)
	}
	if lead.Stage != domain.StageWon {
		t.Fatalf("expected current won lead to be returned, got %q", lead.Stage)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateStageMissingLead(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(`UPDATE leads SET stage`).
		WithArgs(id, "lost", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(leadColumnNames))
	mock.ExpectQuery(`(?s)SELECT .+ FROM leads WHERE id = \$1$`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(leadColumnNames))

	if _, err := repo.UpdateStage(context.Background(), id, domain.StageLost, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStageScansEnums(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(`UPDATE leads SET stage`).
		WithArgs(id, "proposal", pgxmock.AnyArg()).
		WillReturnRows(leadRows(id, "proposal", nil))

	lead, err := repo.UpdateStage(context.Background(), id, domain.StageProposal, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Stage != domain.StageProposal || lead.Source != domain.SourceWebsite {
		t.Fatalf("unexpected lead %+v", lead)
	}
	if lead.PaymentHandling == nil || *lead.PaymentHandling != domain.PaymentCard {
		t.Fatalf("expected card payment handling, got %v", lead.PaymentHandling)
	}
	if lead.LineOfBusiness != nil {
		t.Fatalf("expected unset line of business")
	}
}

func TestUpdateIntakeOnlyWritesProvidedColumns(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	phone := "+31612345678"

	mock.ExpectQuery(`UPDATE leads SET phone = \$1, payment_handling = \$2, has_logo = \$3, updated_at = now\(\) WHERE id = \$4`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), true, id).
		WillReturnRows(leadRows(id, "negotiation", nil))

	yes := true
	_, err := repo.UpdateIntake(context.Background(), id, UpdateIntakeParams{
		Phone:           SetTo(&phone),
		PaymentHandling: SetTo[domain.PaymentHandling](nil),
		HasLogo:         SetTo(&yes),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateIntakeWithoutFieldsReadsLead(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(`(?s)SELECT .+ FROM leads WHERE id = \$1$`).
		WithArgs(id).
		WillReturnRows(leadRows(id, "new", nil))

	if _, err := repo.UpdateIntake(context.Background(), id, UpdateIntakeParams{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRunInTxRollsBackOnUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)
	leadID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM leads WHERE id = \$1 FOR UPDATE`).
		WithArgs(leadID).
		WillReturnRows(leadRows(leadID, "negotiation", nil))
	mock.ExpectQuery(`INSERT INTO clients`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "clients_lead_id_key"})
	mock.ExpectRollback()

	err := repo.RunInTx(context.Background(), func(ctx context.Context, tx ConversionTx) error {
		lead, err := tx.LockLead(ctx, leadID)
		if err != nil {
			return err
		}
		_, err = tx.CreateClient(ctx, domain.Client{ID: uuid.New(), LeadID: &lead.ID, Name: "Bakery Bros", Email: "x@example.com"})
		return err
	})
	if !errors.Is(err, ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRunInTxCommits(t *testing.T) {
	repo, mock := newMockRepo(t)
	clientID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM development_projects WHERE client_id = \$1`).
		WithArgs(clientID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	err := repo.RunInTx(context.Background(), func(ctx context.Context, tx ConversionTx) error {
		_, err := tx.FindProjectByClientID(ctx, clientID)
		if errors.Is(err, ErrProjectNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
