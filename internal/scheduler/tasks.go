package scheduler

import (
	"encoding/json"

	"crm_backoffice/internal/audit"

	"github.com/hibiken/asynq"
)

const TaskAuditRecord = "audit.record"

// AuditRecordPayload is one audit entry in transit to the database.
type AuditRecordPayload struct {
	Entry audit.Entry `json:"entry"`
}

func NewAuditRecordTask(payload AuditRecordPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditRecord, data), nil
}

func ParseAuditRecordPayload(task *asynq.Task) (AuditRecordPayload, error) {
	var payload AuditRecordPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AuditRecordPayload{}, err
	}
	return payload, nil
}
