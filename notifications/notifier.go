package notifications

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"backendprojects/graph/model"
	"backendprojects/store"
)

// Notifier emails a client when a project is opened for them.
type Notifier struct {
	clients store.Collection[model.Client]
	sender  Sender
	log     logrus.FieldLogger
}

func NewNotifier(clients store.Collection[model.Client], sender Sender, log logrus.FieldLogger) *Notifier {
	return &Notifier{clients: clients, sender: sender, log: log}
}

// HandleEvent acts on project.added and ignores every other event.
func (n *Notifier) HandleEvent(ctx context.Context, event model.Event) error {
	if event.Type != model.EventProjectAdded || event.Project == nil {
		return nil
	}
	p := event.Project

	client, err := n.clients.FindByID(ctx, p.ClientID)
	if err != nil {
		return fmt.Errorf("load client %s: %w", p.ClientID, err)
	}
	if client == nil || client.Email == "" {
		n.log.WithFields(logrus.Fields{"project_id": p.ID, "client_id": p.ClientID}).Info("no client email, skipping notification")
		return nil
	}

	subject := fmt.Sprintf("New project: %s", p.Name)
	body := fmt.Sprintf("Hello %s,\n\nA new project has been opened for you.\n\nName: %s\nDescription: %s\nStatus: %s\n",
		client.Name, p.Name, p.Description, p.Status)
	if err := n.sender.SendMail(client.Email, subject, body); err != nil {
		return err
	}

	n.log.WithFields(logrus.Fields{"project_id": p.ID, "to": client.Email}).Info("project notification sent")
	return nil
}
