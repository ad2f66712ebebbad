package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crm_backoffice/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound = errors.New("lead not found")
	// ErrLeadWon is returned by UpdateStage when the lead reached won before the write.
	ErrLeadWon = errors.New("lead is won")
	// ErrUniqueViolation wraps SQLSTATE 23505 from conversion writes.
	ErrUniqueViolation = errors.New("unique constraint violated")
)

const pgUniqueViolation = "23505"

// Querier is the subset of pgx shared by pools and transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is satisfied by *pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repository struct {
	db DB
}

func New(db DB) *Repository {
	return &Repository{db: db}
}

const leadColumns = `id, name, company, email, phone, source, source_detail, line_of_business,
	expected_value_cents, notes, lost_reason, stage, address_to_use, has_domain, domain,
	whatsapp_enabled, business_description, service_outcome, admin_ease_notes, payment_handling,
	has_logo, logo_url, converted_client_id, won_at, created_by, created_at, updated_at`

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		lead            domain.Lead
		source, stage   string
		lineOfBusiness  *string
		paymentHandling *string
	)
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Company, &lead.Email, &lead.Phone, &source, &lead.SourceDetail, &lineOfBusiness,
		&lead.ExpectedValueCents, &lead.Notes, &lead.LostReason, &stage, &lead.AddressToUse, &lead.HasDomain, &lead.Domain,
		&lead.WhatsAppEnabled, &lead.BusinessDescription, &lead.ServiceOutcome, &lead.AdminEaseNotes, &paymentHandling,
		&lead.HasLogo, &lead.LogoURL, &lead.ConvertedClientID, &lead.WonAt, &lead.CreatedBy, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, err
	}

	lead.Source = domain.Source(source)
	lead.Stage = domain.Stage(stage)
	if lineOfBusiness != nil {
		lead.LineOfBusiness = domain.ParseLineOfBusiness(*lineOfBusiness)
	}
	if paymentHandling != nil {
		lead.PaymentHandling = domain.ParsePaymentHandling(*paymentHandling)
	}
	return lead, nil
}

type CreateLeadParams struct {
	Name               string
	Company            *string
	Email              *string
	Phone              *string
	Source             domain.Source
	SourceDetail       *string
	LineOfBusiness     *domain.LineOfBusiness
	ExpectedValueCents *int64
	Notes              string
	CreatedBy          uuid.UUID
}

// Create inserts a lead at stage new.
func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO leads (id, name, company, email, phone, source, source_detail, line_of_business,
			expected_value_cents, notes, stage, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'new', $11)
		RETURNING `+leadColumns,
		uuid.New(), params.Name, params.Company, params.Email, params.Phone, string(params.Source), params.SourceDetail,
		enumArg(params.LineOfBusiness), params.ExpectedValueCents, params.Notes, params.CreatedBy,
	)
	return scanLead(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	return getLead(ctx, r.db, id, false)
}

func getLead(ctx context.Context, q Querier, id uuid.UUID, forUpdate bool) (domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	return scanLead(q.QueryRow(ctx, query, id))
}

// UpdateStage writes a generic stage change. The write is conditional on the
// lead not being won, so a concurrent conversion can never be overwritten.
// When no row matches, the lead is re-read to tell ErrNotFound from ErrLeadWon.
func (r *Repository) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.Stage, lostReason *string) (domain.Lead, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE leads SET stage = $2, lost_reason = $3, updated_at = now()
		WHERE id = $1 AND stage <> 'won'
		RETURNING `+leadColumns,
		id, string(stage), lostReason,
	)
	lead, err := scanLead(row)
	if !errors.Is(err, ErrNotFound) {
		return lead, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}
	if current.Stage == domain.StageWon {
		return current, ErrLeadWon
	}
	return domain.Lead{}, fmt.Errorf("stage update matched no row for lead %s in stage %s", id, current.Stage)
}

// Field is a single column update. Set marks the column as provided;
// a nil Value writes NULL.
type Field[T any] struct {
	Value *T
	Set   bool
}

// SetTo marks a column for update with v (nil clears it).
func SetTo[T any](v *T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

type UpdateIntakeParams struct {
	Company             Field[string]
	Phone               Field[string]
	AddressToUse        Field[string]
	HasDomain           Field[bool]
	Domain              Field[string]
	WhatsAppEnabled     Field[bool]
	BusinessDescription Field[string]
	ServiceOutcome      Field[string]
	AdminEaseNotes      Field[string]
	PaymentHandling     Field[domain.PaymentHandling]
	LineOfBusiness      Field[domain.LineOfBusiness]
	HasLogo             Field[bool]
	LogoURL             Field[string]
}

// UpdateIntake merges the provided intake columns into the lead. With nothing
// provided it returns the current row unchanged.
func (r *Repository) UpdateIntake(ctx context.Context, id uuid.UUID, params UpdateIntakeParams) (domain.Lead, error) {
	setClauses := []string{}
	args := []any{}
	argIdx := 1

	fields := []struct {
		enabled bool
		column  string
		value   any
	}{
		{params.Company.Set, "company", params.Company.Value},
		{params.Phone.Set, "phone", params.Phone.Value},
		{params.AddressToUse.Set, "address_to_use", params.AddressToUse.Value},
		{params.HasDomain.Set, "has_domain", boolArg(params.HasDomain.Value)},
		{params.Domain.Set, "domain", params.Domain.Value},
		{params.WhatsAppEnabled.Set, "whatsapp_enabled", boolArg(params.WhatsAppEnabled.Value)},
		{params.BusinessDescription.Set, "business_description", params.BusinessDescription.Value},
		{params.ServiceOutcome.Set, "service_outcome", params.ServiceOutcome.Value},
		{params.AdminEaseNotes.Set, "admin_ease_notes", params.AdminEaseNotes.Value},
		{params.PaymentHandling.Set, "payment_handling", enumArg(params.PaymentHandling.Value)},
		{params.LineOfBusiness.Set, "line_of_business", enumArg(params.LineOfBusiness.Value)},
		{params.HasLogo.Set, "has_logo", boolArg(params.HasLogo.Value)},
		{params.LogoURL.Set, "logo_url", params.LogoURL.Value},
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, leadColumns)

	return scanLead(r.db.QueryRow(ctx, query, args...))
}

type ListParams struct {
	Stage  *domain.Stage
	Search string
	Limit  int
	Offset int
}

// List returns a page of leads, newest first, and the total match count.
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, int, error) {
	whereClauses := []string{"1 = 1"}
	args := []any{}
	argIdx := 1

	if params.Stage != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("stage = $%d", argIdx))
		args = append(args, string(*params.Stage))
		argIdx++
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(name ILIKE $%d OR company ILIKE $%d OR email ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+search+"%")
		argIdx++
	}
	whereClause := strings.Join(whereClauses, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM leads WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		leadColumns, whereClause, argIdx, argIdx+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

func enumArg[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func boolArg(v *bool) bool {
	return v != nil && *v
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
