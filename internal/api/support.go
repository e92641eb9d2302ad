package api

import (
	"context"
	"fmt"
	"strings"

	"broker-backoffice-go/internal/endpoints"
	"broker-backoffice-go/internal/models"

	"go.uber.org/zap"
)

func (s *BackOffice) Notifications(ctx context.Context, page endpoints.Page) ([]models.Notification, error) {
	return endpoints.Run(ctx, s.registry, endpoints.ListNotifications, page)
}

// SendNotification creates a broadcast or targeted notification, with an
// optional attachment
func (s *BackOffice) SendNotification(ctx context.Context, in endpoints.NotificationInput) (models.Notification, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Message) == "" {
		return models.Notification{}, fmt.Errorf("%w: title and message are required", ErrInvalidArgument)
	}
	n, err := endpoints.Execute(ctx, s.registry, endpoints.CreateNotification, in)
	if err != nil {
		return models.Notification{}, err
	}
	zap.L().Info("Notification sent",
		zap.Int64("id", n.Id),
		zap.Int("recipients", len(in.UserIds)),
		zap.Bool("attachment", in.Attachment != nil))
	return n, nil
}

func (s *BackOffice) DeleteNotification(ctx context.Context, id int64) error {
	if err := requireId("notification id", id); err != nil {
		return err
	}
	_, err := endpoints.Execute(ctx, s.registry, endpoints.DeleteNotification, id)
	return err
}

func (s *BackOffice) SupportTickets(ctx context.Context, f endpoints.TicketFilter) ([]models.SupportTicket, error) {
	return endpoints.Run(ctx, s.registry, endpoints.ListSupportTickets, f)
}

func (s *BackOffice) SupportTicket(ctx context.Context, id int64) (models.SupportTicket, error) {
	if err := requireId("ticket id", id); err != nil {
		return models.SupportTicket{}, err
	}
	return endpoints.Run(ctx, s.registry, endpoints.GetSupportTicket, id)
}

func (s *BackOffice) ReplySupportTicket(ctx context.Context, id int64, message string) error {
	if err := requireId("ticket id", id); err != nil {
		return err
	}
	if strings.TrimSpace(message) == "" {
		return ErrEmptyMessage
	}
	_, err := endpoints.Execute(ctx, s.registry, endpoints.ReplySupportTicket, endpoints.TicketReply{TicketId: id, Message: message})
	return err
}

func (s *BackOffice) SetSupportTicketStatus(ctx context.Context, id int64, status models.TicketStatus) error {
	if err := requireId("ticket id", id); err != nil {
		return err
	}
	switch status {
	case models.TicketOpen, models.TicketInProgress, models.TicketClosed:
	default:
		return fmt.Errorf("%w: unknown ticket status %q", ErrInvalidArgument, status)
	}
	_, err := endpoints.Execute(ctx, s.registry, endpoints.SetSupportTicketStatus, endpoints.TicketStatusArgs{TicketId: id, Status: status})
	return err
}

// ClientMessages returns the server-side thread for userId
func (s *BackOffice) ClientMessages(ctx context.Context, userId int64) ([]models.ClientMessage, error) {
	if err := requireId("user id", userId); err != nil {
		return nil, err
	}
	return endpoints.Run(ctx, s.registry, endpoints.ListClientMessages, userId)
}

// SendClientMessage posts a message without local placeholders. Use
// Messenger for an optimistic thread.
func (s *BackOffice) SendClientMessage(ctx context.Context, userId int64, body string) error {
	if err := requireId("user id", userId); err != nil {
		return err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return ErrEmptyMessage
	}
	_, err := endpoints.Execute(ctx, s.registry, endpoints.SendClientMessage, endpoints.ClientMessageInput{UserId: userId, Message: body})
	return err
}
