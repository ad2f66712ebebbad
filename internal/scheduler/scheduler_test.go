package scheduler

import (
	"context"
	"errors"
	"testing"

	"crm_backoffice/internal/audit"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type schedulerConfig struct {
	redisURL string
}

func (c schedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c schedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c schedulerConfig) GetAsynqQueueName() string { return "audit" }
func (c schedulerConfig) GetAsynqConcurrency() int  { return 1 }

func validEntry() audit.Entry {
	return audit.Entry{
		ActorID:    uuid.New(),
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityLead,
		EntityID:   uuid.New(),
		Metadata:   map[string]any{"to": "won"},
	}
}

func TestClientEnqueuesAuditEntryOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := schedulerConfig{redisURL: "redis://" + mr.Addr()}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	entry := validEntry()
	entry.ID = uuid.New()
	if err := client.Record(context.Background(), entry); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := client.Record(context.Background(), entry); err != nil {
		t.Fatalf("duplicate record must be ignored: %v", err)
	}

	pending, err := mr.List("asynq:{audit}:pending")
	if err != nil {
		t.Fatalf("pending list: %v", err)
	}
	if len(pending) != 1 || pending[0] != entry.ID.String() {
		t.Fatalf("expected one pending task %s, got %v", entry.ID, pending)
	}
}

func TestClientRejectsInvalidEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(schedulerConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	if err := client.Record(context.Background(), audit.Entry{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNewClientRequiresRedis(t *testing.T) {
	if _, err := NewClient(schedulerConfig{}); err == nil {
		t.Fatal("expected error without redis url")
	}
}

func TestHandleAuditRecord(t *testing.T) {
	var got []audit.Entry
	w := &Worker{sink: audit.SinkFunc(func(_ context.Context, e audit.Entry) error {
		got = append(got, e)
		return nil
	})}

	entry := validEntry()
	task, err := NewAuditRecordTask(AuditRecordPayload{Entry: entry})
	if err != nil {
		t.Fatalf("task: %v", err)
	}
	if err := w.handleAuditRecord(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(got) != 1 || got[0].EntityID != entry.EntityID || got[0].Metadata["to"] != "won" {
		t.Fatalf("unexpected entries %+v", got)
	}
}

func TestHandleAuditRecordSkipsRetryOnBadPayload(t *testing.T) {
	w := &Worker{sink: audit.SinkFunc(func(context.Context, audit.Entry) error { return nil })}

	err := w.handleAuditRecord(context.Background(), asynq.NewTask(TaskAuditRecord, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}

	task, _ := NewAuditRecordTask(AuditRecordPayload{Entry: audit.Entry{}})
	if err := w.handleAuditRecord(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for invalid entry, got %v", err)
	}
}
