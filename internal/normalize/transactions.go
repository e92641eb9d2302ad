package normalize

import (
	"fmt"
	"strings"
	"time"

	"broker-backoffice-go/internal/coerce"
	"broker-backoffice-go/internal/models"

	"github.com/shopspring/decimal"
)

// signed returns the amount negative for withdrawals and positive otherwise.
func signed(amount decimal.Decimal, kind models.TransactionType) decimal.Decimal {
	if kind == models.TypeWithdrawal {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// Transaction maps an ordinary deposit or withdrawal. now is used only when
// the DTO carries no creation time.
func Transaction(dto models.TransactionDTO, now time.Time) models.NormalizedTransaction {
	id := coerce.Int(dto.Id)
	amount := coerce.Amount(dto.Amount)
	kind := TransactionType(dto.Type, amount.IsNegative())
	userId := refUserId(dto.UserId, dto.User)
	name, email := clientIdentity(dto.ClientName, dto.Email, dto.User, userId, id)

	processedAt := coerce.TimePtr(dto.ProcessedAt)
	if processedAt == nil {
		processedAt = coerce.TimePtr(dto.UpdatedAt)
	}

	return models.NormalizedTransaction{
		Id:                    id,
		Type:                  kind,
		Status:                TransactionStatus(dto.Status),
		RawStatus:             canonical(dto.Status),
		Amount:                signed(amount, kind),
		UserId:                userId,
		ClientName:            name,
		Email:                 email,
		PaymentMethod:         firstNonBlank(dto.PaymentMethod, dto.Method),
		CounterpartyReference: firstNonBlank(dto.WalletAddress, dto.Reference),
		AccountIdentifier:     firstNonBlank(dto.Reference, dto.WalletAddress),
		Origin:                models.OriginTransaction,
		CreatedAt:             coerce.TimeOr(dto.CreatedAt, now),
		ProcessedAt:           processedAt,
		RejectionReason:       coerce.StringPtr(dto.RejectionReason),
	}
}

// CommissionWithdrawal maps a commission withdrawal request into the shared
// transaction shape. The COMMISSION: account marker keeps the origin
// recoverable.
func CommissionWithdrawal(dto models.CommissionWithdrawalDTO, now time.Time) models.NormalizedTransaction {
	id := coerce.Int(dto.Id)
	userId := refUserId(dto.UserId, dto.User)
	name, email := clientIdentity("", "", dto.User, userId, id)

	return models.NormalizedTransaction{
		Id:                    id,
		Type:                  models.TypeWithdrawal,
		Status:                TransactionStatus(dto.Status),
		RawStatus:             canonical(dto.Status),
		Amount:                signed(coerce.Amount(dto.Amount), models.TypeWithdrawal),
		UserId:                userId,
		ClientName:            name,
		Email:                 email,
		PaymentMethod:         strings.TrimSpace(dto.Method),
		CounterpartyReference: strings.TrimSpace(dto.WalletAddress),
		AccountIdentifier:     fmt.Sprintf("%s%d", models.CommissionMarker, id),
		Origin:                models.OriginCommission,
		CreatedAt:             coerce.TimeOr(dto.CreatedAt, now),
		ProcessedAt:           coerce.TimePtr(dto.ProcessedAt),
		RejectionReason:       coerce.StringPtr(dto.RejectReason),
	}
}

// Transactions decodes a transaction list response.
func Transactions(body []byte, now time.Time) []models.NormalizedTransaction {
	dtos := decodeItems[models.TransactionDTO]("transactions", DecodeList(body, "transactions"))
	out := make([]models.NormalizedTransaction, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, Transaction(dto, now))
	}
	return out
}

// CommissionWithdrawals decodes a commission withdrawal request list.
func CommissionWithdrawals(body []byte, now time.Time) []models.NormalizedTransaction {
	dtos := decodeItems[models.CommissionWithdrawalDTO]("commission_withdrawals",
		DecodeList(body, "withdrawalRequests", "requests", "withdrawals"))
	out := make([]models.NormalizedTransaction, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, CommissionWithdrawal(dto, now))
	}
	return out
}

// TransactionDetail decodes a single transaction response.
func TransactionDetail(body []byte, now time.Time) models.NormalizedTransaction {
	dto, ok := decodeSingle[models.TransactionDTO]("transaction", body, "transaction")
	if !ok {
		return models.NormalizedTransaction{}
	}
	return Transaction(dto, now)
}
