package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"broker-backoffice-go/internal/client"
	"broker-backoffice-go/internal/endpoints"
	"broker-backoffice-go/internal/models"
)

const maxAttachmentBytes = 10 << 20

type ticketReplyRequest struct {
	Message string `json:"message"`
}

type ticketStatusRequest struct {
	Status models.TicketStatus `json:"status"`
}

func (h *Handler) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	notifications, err := h.service.Notifications(r.Context(), page)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, notifications)
}

// CreateNotificationHandler accepts multipart/form-data with title, message,
// optional userIds (repeated or comma separated) and an optional attachment.
func (h *Handler) CreateNotificationHandler(w http.ResponseWriter, r *http.Request) {
	in, err := parseNotificationForm(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := h.service.SendNotification(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, n)
}

func parseNotificationForm(r *http.Request) (endpoints.NotificationInput, error) {
	if err := r.ParseMultipartForm(maxAttachmentBytes); err != nil {
		return endpoints.NotificationInput{}, fmt.Errorf("invalid multipart form: %w", err)
	}

	in := endpoints.NotificationInput{
		Title:   r.FormValue("title"),
		Message: r.FormValue("message"),
	}
	for _, raw := range r.MultipartForm.Value["userIds"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return in, fmt.Errorf("invalid user id %q", part)
			}
			in.UserIds = append(in.UserIds, id)
		}
	}

	file, header, err := r.FormFile("attachment")
	if err == http.ErrMissingFile {
		return in, nil
	}
	if err != nil {
		return in, fmt.Errorf("invalid attachment: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return in, fmt.Errorf("failed to read attachment: %w", err)
	}
	in.Attachment = &client.File{
		Field:       "attachment",
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return in, nil
}

func (h *Handler) DeleteNotificationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.DeleteNotification(r.Context(), id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListTicketsHandler(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.service.SupportTickets(r.Context(), endpoints.TicketFilter{Status: r.URL.Query().Get("status")})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tickets)
}

func (h *Handler) GetTicketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	ticket, err := h.service.SupportTicket(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ticket)
}

func (h *Handler) ReplyTicketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req ticketReplyRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.ReplySupportTicket(r.Context(), id, req.Message); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetTicketStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req ticketStatusRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.SetSupportTicketStatus(r.Context(), id, req.Status); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
