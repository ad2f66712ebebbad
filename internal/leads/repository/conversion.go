package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm_backoffice/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrProjectNotFound is returned when a client has no development project yet.
var ErrProjectNotFound = errors.New("development project not found")

const clientColumns = `id, lead_id, name, email, phone, address_to_use, line_of_business,
	payment_handling, tax_id, national_id, created_at, updated_at`

const projectColumns = `id, client_id, name, stage, intake_company, intake_phone, intake_address_to_use,
	intake_has_domain, intake_domain, intake_whatsapp_enabled, intake_business_description,
	intake_service_outcome, intake_admin_ease_notes, intake_payment_handling, intake_line_of_business,
	intake_has_logo, intake_logo_url, created_at, updated_at`

// txStore runs conversion writes on a single pgx transaction.
type txStore struct {
	q Querier
}

// RunInTx executes fn inside one transaction. The transaction commits only
// when fn returns nil; any error rolls everything back.
func (r *Repository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx ConversionTx) error) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(ctx, &txStore{q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// LockLead reads the lead and holds its row lock until the transaction ends.
func (s *txStore) LockLead(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	return getLead(ctx, s.q, id, true)
}

func (s *txStore) CreateClient(ctx context.Context, client domain.Client) (domain.Client, error) {
	row := s.q.QueryRow(ctx, `
		INSERT INTO clients (id, lead_id, name, email, phone, address_to_use, line_of_business,
			payment_handling, tax_id, national_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+clientColumns,
		client.ID, client.LeadID, client.Name, client.Email, client.Phone, client.AddressToUse,
		enumArg(client.LineOfBusiness), enumArg(client.PaymentHandling), client.TaxID, client.NationalID,
	)
	created, err := ScanClient(row)
	if err != nil {
		return domain.Client{}, translateWriteError("create client", err)
	}
	return created, nil
}

// MarkLeadWon is the only write that sets stage to won.
func (s *txStore) MarkLeadWon(ctx context.Context, leadID, clientID uuid.UUID, wonAt time.Time) (domain.Lead, error) {
	row := s.q.QueryRow(ctx, `
		UPDATE leads
		SET stage = 'won', won_at = $2, converted_client_id = $3, lost_reason = NULL, updated_at = now()
		WHERE id = $1 AND converted_client_id IS NULL
		RETURNING `+leadColumns,
		leadID, wonAt, clientID,
	)
	lead, err := scanLead(row)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return domain.Lead{}, translateWriteError("mark lead won", err)
	}
	return lead, err
}

func (s *txStore) FindProjectByClientID(ctx context.Context, clientID uuid.UUID) (domain.DevelopmentProject, error) {
	row := s.q.QueryRow(ctx, `SELECT `+projectColumns+` FROM development_projects WHERE client_id = $1`, clientID)
	return ScanProject(row)
}

func (s *txStore) CreateProject(ctx context.Context, project domain.DevelopmentProject) (domain.DevelopmentProject, error) {
	snap := project.Snapshot
	row := s.q.QueryRow(ctx, `
		INSERT INTO development_projects (id, client_id, name, stage, intake_company, intake_phone,
			intake_address_to_use, intake_has_domain, intake_domain, intake_whatsapp_enabled,
			intake_business_description, intake_service_outcome, intake_admin_ease_notes,
			intake_payment_handling, intake_line_of_business, intake_has_logo, intake_logo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING `+projectColumns,
		project.ID, project.ClientID, project.Name, string(project.Stage), snap.Company, snap.Phone,
		snap.AddressToUse, snap.HasDomain, snap.Domain, snap.WhatsAppEnabled,
		snap.BusinessDescription, snap.ServiceOutcome, snap.AdminEaseNotes,
		enumArg(snap.PaymentHandling), enumArg(snap.LineOfBusiness), snap.HasLogo, snap.LogoURL,
	)
	created, err := ScanProject(row)
	if err != nil {
		return domain.DevelopmentProject{}, translateWriteError("create project", err)
	}
	return created, nil
}

// ScanClient reads a row selected with the client column list.
func ScanClient(row pgx.Row) (domain.Client, error) {
	var (
		client          domain.Client
		lineOfBusiness  *string
		paymentHandling *string
	)
	err := row.Scan(
		&client.ID, &client.LeadID, &client.Name, &client.Email, &client.Phone, &client.AddressToUse,
		&lineOfBusiness, &paymentHandling, &client.TaxID, &client.NationalID, &client.CreatedAt, &client.UpdatedAt,
	)
	if err != nil {
		return domain.Client{}, err
	}
	if lineOfBusiness != nil {
		client.LineOfBusiness = domain.ParseLineOfBusiness(*lineOfBusiness)
	}
	if paymentHandling != nil {
		client.PaymentHandling = domain.ParsePaymentHandling(*paymentHandling)
	}
	return client, nil
}

// ScanProject reads a row selected with the project column list.
// A missing row is reported as ErrProjectNotFound.
func ScanProject(row pgx.Row) (domain.DevelopmentProject, error) {
	var (
		project         domain.DevelopmentProject
		stage           string
		paymentHandling *string
		lineOfBusiness  *string
	)
	snap := &project.Snapshot
	err := row.Scan(
		&project.ID, &project.ClientID, &project.Name, &stage, &snap.Company, &snap.Phone, &snap.AddressToUse,
		&snap.HasDomain, &snap.Domain, &snap.WhatsAppEnabled, &snap.BusinessDescription,
		&snap.ServiceOutcome, &snap.AdminEaseNotes, &paymentHandling, &lineOfBusiness,
		&snap.HasLogo, &snap.LogoURL, &project.CreatedAt, &project.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DevelopmentProject{}, ErrProjectNotFound
	}
	if err != nil {
		return domain.DevelopmentProject{}, err
	}
	project.Stage = domain.ProjectStage(stage)
	if paymentHandling != nil {
		snap.PaymentHandling = domain.ParsePaymentHandling(*paymentHandling)
	}
	if lineOfBusiness != nil {
		snap.LineOfBusiness = domain.ParseLineOfBusiness(*lineOfBusiness)
	}
	return project, nil
}

// ClientColumns and ProjectColumns let the clients and projects modules
// select rows that ScanClient and ScanProject understand.
const (
	ClientColumns  = clientColumns
	ProjectColumns = projectColumns
)

func translateWriteError(op string, err error) error {
	if isUniqueViolation(err) {
		var pgErr *pgconn.PgError
		errors.As(err, &pgErr)
		return fmt.Errorf("%s: %w (%s)", op, ErrUniqueViolation, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", op, err)
}
