package management

import (
	"context"
	"testing"
	"time"

	"crm_backoffice/internal/audit"
	"crm_backoffice/internal/leads/domain"
	"crm_backoffice/internal/leads/repository"
	"crm_backoffice/internal/leads/transport"
	"crm_backoffice/platform/apperr"
	"crm_backoffice/platform/cache"
	"crm_backoffice/platform/events"

	"github.com/google/uuid"
)

type fakeRepo struct {
	leads       map[uuid.UUID]domain.Lead
	stageWrites int
	lastIntake  repository.UpdateIntakeParams
	lastCreate  repository.CreateLeadParams
	wonOnUpdate bool
}

func newFakeRepo(leads ...domain.Lead) *fakeRepo {
	r := &fakeRepo{leads: map[uuid.UUID]domain.Lead{}}
	for _, l := range leads {
		r.leads[l.ID] = l
	}
	return r
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, ok := r.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (r *fakeRepo) List(_ context.Context, _ repository.ListParams) ([]domain.Lead, int, error) {
	out := make([]domain.Lead, 0, len(r.leads))
	for _, l := range r.leads {
		out = append(out, l)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Create(_ context.Context, params repository.CreateLeadParams) (domain.Lead, error) {
	r.lastCreate = params
	lead := domain.Lead{
		ID:           uuid.New(),
		Name:         params.Name,
		Company:      params.Company,
		Email:        params.Email,
		Phone:        params.Phone,
		Source:       params.Source,
		SourceDetail: params.SourceDetail,
		Stage:        domain.StageNew,
		CreatedBy:    params.CreatedBy,
		CreatedAt:    time.Now(),
	}
	r.leads[lead.ID] = lead
	return lead, nil
}

func (r *fakeRepo) UpdateStage(_ context.Context, id uuid.UUID, stage domain.Stage, lostReason *string) (domain.Lead, error) {
	lead, ok := r.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	if r.wonOnUpdate || lead.Stage == domain.StageWon {
		lead.Stage = domain.StageWon
		return lead, repository.ErrLeadWon
	}
	r.stageWrites++
	lead.Stage = stage
	lead.LostReason = lostReason
	r.leads[id] = lead
	return lead, nil
}

func (r *fakeRepo) UpdateIntake(_ context.Context, id uuid.UUID, params repository.UpdateIntakeParams) (domain.Lead, error) {
	lead, ok := r.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	r.lastIntake = params
	if params.Company.Set {
		lead.Company = params.Company.Value
	}
	if params.Phone.Set {
		lead.Phone = params.Phone.Value
	}
	if params.PaymentHandling.Set {
		lead.PaymentHandling = params.PaymentHandling.Value
	}
	if params.LineOfBusiness.Set {
		lead.LineOfBusiness = params.LineOfBusiness.Value
	}
	r.leads[id] = lead
	return lead, nil
}

type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) Record(_ context.Context, entry audit.Entry) {
	f.entries = append(f.entries, entry)
}

type fakeBus struct {
	published []events.Event
}

func (b *fakeBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *fakeBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *fakeBus) Subscribe(string, events.Handler) {}

type mapCache struct {
	values  map[string]transport.LeadResponse
	deletes int
}

func (c *mapCache) Get(_ context.Context, key string, dest any) error {
	v, ok := c.values[key]
	if !ok {
		return cache.ErrMiss
	}
	*dest.(*transport.LeadResponse) = v
	return nil
}

func (c *mapCache) Set(_ context.Context, key string, value any) error {
	c.values[key] = value.(transport.LeadResponse)
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.deletes++
	delete(c.values, key)
	return nil
}

func strPtr(s string) *string { return &s }

func newTestService(repo *fakeRepo, strict bool) (*Service, *fakeRecorder, *fakeBus) {
	rec := &fakeRecorder{}
	bus := &fakeBus{}
	return New(repo, bus, rec, strict, nil), rec, bus
}

func assertCode(t *testing.T, err error, kind apperr.Kind, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	if got := apperr.GetKind(err); got != kind {
		t.Fatalf("expected kind %v, got %v (%v)", kind, got, err)
	}
	if got := apperr.GetCode(err); got != code {
		t.Fatalf("expected code %s, got %s", code, got)
	}
}

func TestUpdateStageRejectsDirectWon(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Stage: domain.StageNegotiation}
	repo := newFakeRepo(lead)
	svc, rec, bus := newTestService(repo, false)

	_, err := svc.UpdateStage(context.Background(), uuid.New(), lead.ID, transport.UpdateStageRequest{Stage: "won"})
	assertCode(t, err, apperr.KindValidation, domain.CodeDirectWon)

	if repo.stageWrites != 0 || len(rec.entries) != 0 || len(bus.published) != 0 {
		t.Fatal("rejected stage change must have no effects")
	}
}

func TestUpdateStageOnWonLeadIsTerminal(t *testing.T) {
	clientID := uuid.New()
	lead := domain.Lead{ID: uuid.New(), Stage: domain.StageWon, ConvertedClientID: &clientID}
	svc, _, _ := newTestService(newFakeRepo(lead), false)

	_, err := svc.UpdateStage(context.Background(), uuid.New(), lead.ID, transport.UpdateStageRequest{Stage: "lost"})
	assertCode(t, err, apperr.KindConflict, domain.CodeTerminalState)

	_, err = svc.UpdateStage(context.Background(), uuid.New(), lead.ID, transport.UpdateStageRequest{Stage: "won"})
	assertCode(t, err, apperr.KindValidation, domain.CodeDirectWon)
}

func TestUpdateStageConcurrentWinIsTerminal(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Stage: domain.StageProposal}
	repo := newFakeRepo(lead)
	repo.wonOnUpdate = true
	svc, rec, _ := newTestService(repo, false)

	_, err := svc.UpdateStage(context.Background(), uuid.New(), lead.ID, transport.UpdateStageRequest{Stage: "lost"})
	assertCode(t, err, apperr.KindConflict, domain.CodeTerminalState)
	if len(rec.entries) != 0 {
		t.Fatal("no audit entry expected")
	}
}

func TestUpdateStageInvalidValue(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Stage: domain.StageNew}
	svc, _, _ := newTestService(newFakeRepo(lead), false)

	_, err := svc.UpdateStage(context.Background(), uuid.New(), lead.ID, transport.UpdateStageRequest{Stage: "archived"})
	assertCode(t, err, apperr.KindValidation, domain.CodeInvalidStage)
}

func TestUpdateStageUnknownLead(t *testing.T) {
	svc, _, _ := newTestService(newFakeRepo(), false)

	_, err := svc.UpdateStage(context.Background(), uuid.New(), uuid.New(), transport.UpdateStageRequest{Stage: "qualified"})
	assertCode(t, err, apperr.KindNotFound, domain.CodeLeadNotFound)
}

func TestUpdateStageRequiresActor(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Stage: domain.StageNew}
	svc, _, _ := newTestService(newFakeRepo(lead), false)

	_, err := svc.UpdateStage(context.Background(), uuid.Nil, lead.ID, transport.UpdateStageRequest{Stage: "qualified"})
	assertCode(t, err, apperr.KindUnauthorized, domain.CodeUnauthorized)
}

func TestUpdateStageRecordsEffects(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Stage: domain.StageQualified}
	repo := newFakeRepo(lead)
	svc, rec, bus := newTestService(repo, false)
	c := &mapCache{values: map[string]transport.LeadResponse{}}
	svc.SetCache(c)
	actor := uuid.New()

	resp, err := svc.UpdateStage(context.Background(), actor, lead.ID, transport.UpdateStageRequest{Stage: "Proposal"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Stage != "proposal" {
		t.Fatalf("expected proposal, got %s", resp.Stage)
	}
	if len(rec.entries) != 1 || rec.entries[0].ActorID != actor || rec.entries[0].Action != audit.ActionUpdate {
		t.Fatalf("unexpected audit entries: %+v", rec.entries)
	}
	if rec.entries[0].Metadata["from"] != "qualified" || rec.entries[0].Metadata["to"] != "proposal" {
		t.Fatalf("unexpected metadata: %+v", rec.entries[0].Metadata)
	}
	if c.deletes != 1 {
		t.Fatalf("expected cache invalidation, got %d deletes", c.deletes)
	}
	if len(bus.published) != 1 || bus.published[0].EventName() != "leads.lead.stage_changed" {
		t.Fatalf("unexpected events: %+v", bus.published)
	}
}

func TestLostReasonPolicies(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Stage: domain.StageProposal}

	strict, _, _ := newTestService(newFakeRepo(lead), true)
	_, err := strict.UpdateStage(context.Background(), uuid.New(), lead.ID, transport.UpdateStageRequest{Stage: "lost", LostReason: strPtr("  ")})
	assertCode(t, err, apperr.KindValidation, domain.CodeLostReasonRequired)

	repo := newFakeRepo(lead)
	lenient, _, _ := newTestService(repo, false)
	resp, err := lenient.UpdateStage(context.Background(), uuid.New(), lead.ID, transport.UpdateStageRequest{Stage: "lost"})
	if err != nil {
		t.Fatalf("lenient policy should accept missing reason: %v", err)
	}
	if resp.Stage != "lost" || resp.LostReason != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}

	resp, err = lenient.UpdateStage(context.Background(), uuid.New(), lead.ID, transport.UpdateStageRequest{Stage: "lost", LostReason: strPtr(" budget ")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.LostReason == nil || *resp.LostReason != "budget" {
		t.Fatalf("expected trimmed reason, got %v", resp.LostReason)
	}

	resp, err = lenient.UpdateStage(context.Background(), uuid.New(), lead.ID, transport.UpdateStageRequest{Stage: "qualified", LostReason: strPtr("ignored")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.LostReason != nil {
		t.Fatal("leaving lost must clear the reason")
	}
}

func TestSaveIntakeCoercesEnumsAndNormalizesPhone(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Stage: domain.StageQualified}
	repo := newFakeRepo(lead)
	svc, rec, bus := newTestService(repo, false)

	req := transport.SaveIntakeRequest{
		Company:         transport.OptionalString{Value: strPtr(" Acme "), Set: true},
		Phone:           transport.OptionalString{Value: strPtr("+1 650-253-0000"), Set: true},
		PaymentHandling: transport.OptionalString{Value: strPtr("barter"), Set: true},
		LineOfBusiness:  transport.OptionalString{Value: strPtr("RETAIL"), Set: true},
	}
	resp, err := svc.SaveIntake(context.Background(), uuid.New(), lead.ID, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Company == nil || *resp.Company != "Acme" {
		t.Fatalf("expected sanitized company, got %v", resp.Company)
	}
	if resp.Phone == nil || *resp.Phone != "+16502530000" {
		t.Fatalf("expected E.164 phone, got %v", resp.Phone)
	}
	if !repo.lastIntake.PaymentHandling.Set || repo.lastIntake.PaymentHandling.Value != nil {
		t.Fatal("unknown payment handling must be stored as unset")
	}
	if resp.LineOfBusiness == nil || *resp.LineOfBusiness != "retail" {
		t.Fatalf("expected retail, got %v", resp.LineOfBusiness)
	}
	if repo.lastIntake.AddressToUse.Set {
		t.Fatal("absent fields must not be written")
	}
	if len(rec.entries) != 1 || len(bus.published) != 1 {
		t.Fatal("expected one audit entry and one event")
	}
}

func TestSaveIntakeNeverChangesStage(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Stage: domain.StageNegotiation}
	repo := newFakeRepo(lead)
	svc, _, _ := newTestService(repo, false)

	resp, err := svc.SaveIntake(context.Background(), uuid.New(), lead.ID, transport.SaveIntakeRequest{
		Company: transport.OptionalString{Value: strPtr("Acme"), Set: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Stage != "negotiation" {
		t.Fatalf("stage changed to %s", resp.Stage)
	}
}

func TestMissingIntake(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Stage: domain.StageNegotiation, Company: strPtr("Acme")}
	svc, _, _ := newTestService(newFakeRepo(lead), false)

	resp, err := svc.MissingIntake(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Eligible {
		t.Fatal("incomplete lead must not be eligible")
	}
	if len(resp.MissingFields) == 0 || resp.MissingFields[0] != domain.FieldAddressToUse {
		t.Fatalf("unexpected missing fields: %v", resp.MissingFields)
	}

	_, err = svc.MissingIntake(context.Background(), uuid.New())
	assertCode(t, err, apperr.KindNotFound, domain.CodeLeadNotFound)
}

func TestCreateDropsDetailForPlainSources(t *testing.T) {
	repo := newFakeRepo()
	svc, rec, bus := newTestService(repo, false)

	_, err := svc.Create(context.Background(), uuid.New(), transport.CreateLeadRequest{
		Name:         "  Jane  ",
		Source:       "website",
		SourceDetail: strPtr("landing page"),
		Email:        strPtr(" Jane@Example.COM "),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastCreate.Name != "Jane" {
		t.Fatalf("expected trimmed name, got %q", repo.lastCreate.Name)
	}
	if repo.lastCreate.SourceDetail != nil {
		t.Fatal("website leads carry no source detail")
	}
	if repo.lastCreate.Email == nil || *repo.lastCreate.Email != "jane@example.com" {
		t.Fatalf("unexpected email %v", repo.lastCreate.Email)
	}
	if len(rec.entries) != 1 || rec.entries[0].Action != audit.ActionCreate || len(bus.published) != 1 {
		t.Fatal("expected create audit entry and event")
	}
}

func TestGetByIDUsesCache(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Name: "Jane", Stage: domain.StageNew}
	repo := newFakeRepo(lead)
	svc, _, _ := newTestService(repo, false)
	c := &mapCache{values: map[string]transport.LeadResponse{}}
	svc.SetCache(c)

	if _, err := svc.GetByID(context.Background(), lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	delete(repo.leads, lead.ID)

	resp, err := svc.GetByID(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("expected cached lead, got %v", err)
	}
	if resp.Name != "Jane" {
		t.Fatalf("unexpected cached lead %+v", resp)
	}

	_, err = svc.GetByID(context.Background(), uuid.New())
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
