package endpoints

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"broker-backoffice-go/internal/cache"
	"broker-backoffice-go/internal/client"
	"broker-backoffice-go/internal/models"
	"broker-backoffice-go/internal/normalize"
)

// NotificationInput creates a notification. With no UserIds it is sent to
// every client.
type NotificationInput struct {
	Title      string
	Message    string
	UserIds    []int64
	Attachment *client.File
}

func (in NotificationInput) form() *client.Multipart {
	target := "all"
	if len(in.UserIds) > 0 {
		target = "users"
	}
	fields := map[string][]string{
		"title":   {strings.TrimSpace(in.Title)},
		"message": {in.Message},
		"target":  {target},
	}
	for _, id := range in.UserIds {
		fields["userIds"] = append(fields["userIds"], strconv.FormatInt(id, 10))
	}

	form := &client.Multipart{Fields: fields}
	if in.Attachment != nil {
		file := *in.Attachment
		if file.Field == "" {
			file.Field = "attachment"
		}
		form.Files = []client.File{file}
	}
	return form
}

// TicketFilter narrows the support ticket list.
type TicketFilter struct {
	Status string `json:"status,omitempty"`
	Page
}

// TicketReply posts an admin reply to a ticket.
type TicketReply struct {
	TicketId int64
	Message  string
}

// TicketStatusArgs moves a ticket through its lifecycle.
type TicketStatusArgs struct {
	TicketId int64
	Status   models.TicketStatus
}

// ClientMessageInput sends a custom message to one client.
type ClientMessageInput struct {
	UserId  int64
	Message string
}

var ListNotifications = Query[Page, []models.Notification]{
	Name: "notifications.list",
	Request: func(p Page) client.Request {
		q := values()
		p.apply(q)
		return client.Get("", "/admin/notifications", q)
	},
	Transform: normalize.Notifications,
	Provides: func(list []models.Notification, _ Page) []cache.Tag {
		return listWithItems(TagNotifications, list, func(n models.Notification) int64 { return n.Id })
	},
}

var CreateNotification = Mutation[NotificationInput, models.Notification]{
	Name: "notifications.create",
	Request: func(in NotificationInput) client.Request {
		return client.Request{Method: http.MethodPost, Path: "/admin/notifications", Form: in.form()}
	},
	Transform: normalize.NotificationDetail,
	Invalidates: func(NotificationInput) []cache.Tag {
		return []cache.Tag{cache.ListTag(TagNotifications)}
	},
}

var DeleteNotification = Mutation[int64, None]{
	Name: "notifications.delete",
	Request: func(id int64) client.Request {
		return client.Delete("", fmt.Sprintf("/admin/notifications/%d", id))
	},
	Transform:   discard,
	Invalidates: invalidatesItem(TagNotifications),
}

var ListSupportTickets = Query[TicketFilter, []models.SupportTicket]{
	Name: "support_tickets.list",
	Request: func(f TicketFilter) client.Request {
		q := values("status", strings.ToUpper(f.Status))
		f.Page.apply(q)
		return client.Get("", "/admin/support/tickets", q)
	},
	Transform: normalize.SupportTickets,
	Provides: func(list []models.SupportTicket, _ TicketFilter) []cache.Tag {
		return listWithItems(TagSupportTickets, list, func(t models.SupportTicket) int64 { return t.Id })
	},
}

var GetSupportTicket = Query[int64, models.SupportTicket]{
	Name: "support_tickets.get",
	Request: func(id int64) client.Request {
		return client.Get("", fmt.Sprintf("/admin/support/tickets/%d", id), nil)
	},
	Transform: normalize.SupportTicketDetail,
	Provides:  providesItem[models.SupportTicket](TagSupportTickets),
}

var ReplySupportTicket = Mutation[TicketReply, None]{
	Name: "support_tickets.reply",
	Request: func(r TicketReply) client.Request {
		return client.Post("", fmt.Sprintf("/admin/support/tickets/%d/reply", r.TicketId),
			map[string]any{"message": r.Message})
	},
	Transform: discard,
	Invalidates: func(r TicketReply) []cache.Tag {
		return cache.ItemAndList(TagSupportTickets, r.TicketId)
	},
}

var SetSupportTicketStatus = Mutation[TicketStatusArgs, None]{
	Name: "support_tickets.set_status",
	Request: func(a TicketStatusArgs) client.Request {
		return client.Patch("", fmt.Sprintf("/admin/support/tickets/%d/status", a.TicketId),
			map[string]any{"status": strings.ToUpper(string(a.Status))})
	},
	Transform: discard,
	Invalidates: func(a TicketStatusArgs) []cache.Tag {
		return cache.ItemAndList(TagSupportTickets, a.TicketId)
	},
}

var ListClientMessages = Query[int64, []models.ClientMessage]{
	Name: "client_messages.list",
	Request: func(userId int64) client.Request {
		return client.Get("", fmt.Sprintf("/admin/users/%d/messages", userId), nil)
	},
	TransformWith: func(userId int64, body []byte, now time.Time) []models.ClientMessage {
		return normalize.ClientMessages(body, userId, now)
	},
	Provides: func(_ []models.ClientMessage, userId int64) []cache.Tag {
		return cache.ItemAndList(TagClientMessages, userId)
	},
}

var SendClientMessage = Mutation[ClientMessageInput, None]{
	Name: "client_messages.send",
	Request: func(in ClientMessageInput) client.Request {
		return client.Post("", fmt.Sprintf("/admin/users/%d/messages", in.UserId),
			map[string]any{"message": in.Message})
	},
	Transform: discard,
	Invalidates: func(in ClientMessageInput) []cache.Tag {
		return cache.ItemAndList(TagClientMessages, in.UserId)
	},
}
