// Package notification provides event handlers for sending notifications
// in response to domain events.
// This module subscribes to events and inverts the dependency: domain modules
// no longer need to know about email providers or templates.
package notification

import (
	"context"
	"errors"
	"fmt"

	"crm_backoffice/internal/email"
	"crm_backoffice/internal/events"
	"crm_backoffice/platform/logger"
)

// Module handles domain events and sends the matching notifications.
type Module struct {
	sender     email.Sender
	recipients []string
	log        *logger.Logger
}

// New creates the notification module. recipients receive the won
// notification; with none configured nothing is sent.
func New(sender email.Sender, recipients []string, log *logger.Logger) *Module {
	return &Module{
		sender:     sender,
		recipients: recipients,
		log:        log,
	}
}

// RegisterHandlers subscribes the module to the events it notifies on.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadConverted{}.EventName(), m)
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadConverted:
		return m.handleLeadConverted(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleLeadConverted(ctx context.Context, e events.LeadConverted) error {
	if len(m.recipients) == 0 {
		return nil
	}

	data := email.LeadWon{
		LeadID:        e.LeadID,
		ClientID:      e.ClientID,
		ClientName:    e.ClientName,
		ProjectID:     e.ProjectID,
		ProjectReused: e.ProjectReused,
	}

	var errs []error
	for _, to := range m.recipients {
		if err := m.sender.SendLeadWonEmail(ctx, to, data); err != nil {
			errs = append(errs, fmt.Errorf("send won notification to %s: %w", to, err))
			continue
		}
		m.log.Info("won notification sent", "leadId", e.LeadID, "recipient", to)
	}
	return errors.Join(errs...)
}

var _ events.Handler = (*Module)(nil)
