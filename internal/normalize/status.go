package normalize

import (
	"strings"

	"broker-backoffice-go/internal/models"
)

func canonical(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// TransactionStatus maps a raw backend status to one of the three canonical
// states. Unrecognized values are Pending.
func TransactionStatus(raw string) models.TransactionStatus {
	switch canonical(raw) {
	case "PAID", "APPROVED", "COMPLETED":
		return models.StatusCompleted
	case "REJECTED":
		return models.StatusRejected
	default:
		return models.StatusPending
	}
}

// TransactionType maps a raw type; when the type is missing the sign of the
// amount decides.
func TransactionType(raw string, negative bool) models.TransactionType {
	switch canonical(raw) {
	case "DEPOSIT":
		return models.TypeDeposit
	case "WITHDRAWAL", "WITHDRAW":
		return models.TypeWithdrawal
	}
	if negative {
		return models.TypeWithdrawal
	}
	return models.TypeDeposit
}

// DocumentStatus maps a KYC artifact review state.
func DocumentStatus(raw string) models.DocumentStatus {
	switch canonical(raw) {
	case "APPROVED", "VERIFIED":
		return models.DocumentApproved
	case "REJECTED", "DECLINED":
		return models.DocumentRejected
	default:
		return models.DocumentPending
	}
}

// DocumentKind maps the backend document type to a fixed slot; ok is false for
// types this layer does not review.
func DocumentKind(raw string) (models.DocumentKind, bool) {
	switch canonical(raw) {
	case "PASSPORT_FRONT", "ID_FRONT", "FRONT":
		return models.DocPassportFront, true
	case "PASSPORT_BACK", "ID_BACK", "BACK":
		return models.DocPassportBack, true
	case "SELFIE":
		return models.DocSelfie, true
	case "UTILITY_BILL", "PROOF_OF_ADDRESS", "ADDRESS":
		return models.DocUtilityBill, true
	default:
		return "", false
	}
}

// AccountStatus maps a trading account status; anything but ARCHIVE is ACTIVE.
func AccountStatus(raw string) models.AccountStatus {
	switch canonical(raw) {
	case "ARCHIVE", "ARCHIVED":
		return models.AccountArchive
	default:
		return models.AccountActive
	}
}

// TicketStatus maps a support ticket status; unknown values are open.
func TicketStatus(raw string) models.TicketStatus {
	switch canonical(raw) {
	case "IN_PROGRESS", "PROCESSING":
		return models.TicketInProgress
	case "CLOSED", "RESOLVED":
		return models.TicketClosed
	default:
		return models.TicketOpen
	}
}
