package normalize

import (
	"fmt"
	"strings"
	"time"

	"broker-backoffice-go/internal/coerce"
	"broker-backoffice-go/internal/models"
)

// DisplayName joins first and last names, falling back to "User <id>" so the
// label is never blank.
func DisplayName(first, last string, id int64) string {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name != "" {
		return name
	}
	return fmt.Sprintf("User %d", id)
}

// clientIdentity resolves name and email from the flat fields and the embedded
// user object, preferring explicit values.
func clientIdentity(name, email string, user *models.UserRefDTO, userId, fallbackId int64) (string, string) {
	if user != nil {
		if strings.TrimSpace(name) == "" {
			name = strings.TrimSpace(user.FirstName + " " + user.LastName)
		}
		if email == "" {
			email = user.Email
		}
	}
	if strings.TrimSpace(name) == "" {
		id := userId
		if id == 0 {
			id = fallbackId
		}
		name = DisplayName("", "", id)
	}
	return strings.TrimSpace(name), email
}

func refUserId(userId any, user *models.UserRefDTO) int64 {
	if id := coerce.Int(userId); id != 0 {
		return id
	}
	if user != nil {
		return coerce.Int(user.Id)
	}
	return 0
}

// Client maps a user record.
func Client(dto models.UserDTO, now time.Time) models.ClientSummary {
	id := coerce.Int(dto.Id)
	name := dto.Name
	if strings.TrimSpace(name) == "" {
		name = DisplayName(dto.FirstName, dto.LastName, id)
	}
	return models.ClientSummary{
		Id:        id,
		Name:      strings.TrimSpace(name),
		Email:     dto.Email,
		Phone:     dto.Phone,
		Country:   dto.Country,
		KycStatus: strings.ToLower(strings.TrimSpace(dto.KycStatus)),
		Balance:   coerce.Amount(dto.Balance),
		Blocked:   coerce.Bool(dto.IsBlocked),
		CreatedAt: coerce.TimeOr(dto.CreatedAt, now),
	}
}

// Clients decodes a user list response.
func Clients(body []byte, now time.Time) []models.ClientSummary {
	dtos := decodeItems[models.UserDTO]("users", DecodeList(body, "users"))
	out := make([]models.ClientSummary, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, Client(dto, now))
	}
	return out
}

// ClientDetail decodes a single user response. A missing payload yields the
// zero summary.
func ClientDetail(body []byte, now time.Time) models.ClientSummary {
	dto, ok := decodeSingle[models.UserDTO]("user", body, "user")
	if !ok {
		return models.ClientSummary{}
	}
	return Client(dto, now)
}
