package normalize

import (
	"strings"
	"time"

	"broker-backoffice-go/internal/coerce"
	"broker-backoffice-go/internal/models"
)

// Notification maps a notification; a notification without target user ids
// is addressed to everyone.
func Notification(dto models.NotificationDTO, now time.Time) models.Notification {
	userIds := make([]int64, 0, len(dto.UserIds))
	for _, raw := range dto.UserIds {
		if id := coerce.Int(raw); id != 0 {
			userIds = append(userIds, id)
		}
	}
	audience := strings.ToLower(strings.TrimSpace(dto.Target))
	if audience == "" {
		audience = "all"
		if len(userIds) > 0 {
			audience = "users"
		}
	}
	return models.Notification{
		Id:            coerce.Int(dto.Id),
		Title:         strings.TrimSpace(dto.Title),
		Message:       dto.Message,
		Audience:      audience,
		UserIds:       userIds,
		AttachmentUrl: strings.TrimSpace(dto.AttachmentUrl),
		CreatedAt:     coerce.TimeOr(dto.CreatedAt, now),
	}
}

// Notifications decodes the notification list.
func Notifications(body []byte, now time.Time) []models.Notification {
	dtos := decodeItems[models.NotificationDTO]("notifications", DecodeList(body, "notifications"))
	out := make([]models.Notification, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, Notification(dto, now))
	}
	return out
}

// NotificationDetail decodes a single notification, such as a create response.
func NotificationDetail(body []byte, now time.Time) models.Notification {
	dto, ok := decodeSingle[models.NotificationDTO]("notification", body, "notification")
	if !ok {
		return models.Notification{UserIds: []int64{}}
	}
	return Notification(dto, now)
}

func ticketMessage(dto models.TicketMessageDTO, now time.Time) models.TicketMessage {
	fromAdmin := coerce.Bool(dto.IsAdmin)
	author := strings.TrimSpace(dto.Sender)
	if author == "" {
		author = "client"
		if fromAdmin {
			author = "admin"
		}
	}
	return models.TicketMessage{
		Id:        coerce.Int(dto.Id),
		Body:      dto.Message,
		Author:    author,
		FromAdmin: fromAdmin,
		CreatedAt: coerce.TimeOr(dto.CreatedAt, now),
	}
}

// SupportTicket maps a ticket and its thread.
func SupportTicket(dto models.SupportTicketDTO, now time.Time) models.SupportTicket {
	id := coerce.Int(dto.Id)
	userId := refUserId(dto.UserId, dto.User)
	name, _ := clientIdentity("", "", dto.User, userId, id)

	messages := make([]models.TicketMessage, 0, len(dto.Messages))
	for _, m := range dto.Messages {
		messages = append(messages, ticketMessage(m, now))
	}

	createdAt := coerce.TimeOr(dto.CreatedAt, now)
	return models.SupportTicket{
		Id:         id,
		UserId:     userId,
		ClientName: name,
		Subject:    strings.TrimSpace(dto.Subject),
		Status:     TicketStatus(dto.Status),
		Priority:   strings.ToLower(strings.TrimSpace(dto.Priority)),
		Messages:   messages,
		CreatedAt:  createdAt,
		UpdatedAt:  coerce.TimeOr(dto.UpdatedAt, createdAt),
	}
}

// SupportTickets decodes the ticket list.
func SupportTickets(body []byte, now time.Time) []models.SupportTicket {
	dtos := decodeItems[models.SupportTicketDTO]("support_tickets", DecodeList(body, "tickets"))
	out := make([]models.SupportTicket, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, SupportTicket(dto, now))
	}
	return out
}

// SupportTicketDetail decodes a single ticket with its thread.
func SupportTicketDetail(body []byte, now time.Time) models.SupportTicket {
	dto, ok := decodeSingle[models.SupportTicketDTO]("support_ticket", body, "ticket")
	if !ok {
		return models.SupportTicket{Messages: []models.TicketMessage{}}
	}
	return SupportTicket(dto, now)
}

// ClientMessages decodes the custom messages sent to a client.
func ClientMessages(body []byte, userId int64, now time.Time) []models.ClientMessage {
	dtos := decodeItems[models.ClientMessageDTO]("client_messages", DecodeList(body, "messages"))
	out := make([]models.ClientMessage, 0, len(dtos))
	for _, dto := range dtos {
		uid := coerce.Int(dto.UserId)
		if uid == 0 {
			uid = userId
		}
		out = append(out, models.ClientMessage{
			Id:        coerce.Int(dto.Id),
			UserId:    uid,
			Body:      dto.Message,
			Author:    firstNonBlank(dto.SentBy, "admin"),
			CreatedAt: coerce.TimeOr(dto.CreatedAt, now),
		})
	}
	return out
}
