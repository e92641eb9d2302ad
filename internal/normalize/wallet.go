package normalize

import (
	"strings"
	"time"

	"broker-backoffice-go/internal/coerce"
	"broker-backoffice-go/internal/models"
)

// WalletBalances decodes the admin wallet snapshot. A missing total is the sum
// of the three balances.
func WalletBalances(body []byte) models.WalletBalances {
	dto, _ := decodeSingle[models.WalletBalancesDTO]("wallet_balances", body, "wallet", "balances")

	balances := models.WalletBalances{
		Main:       coerce.Amount(dto.MainBalance),
		Commission: coerce.Amount(dto.CommissionBalance),
		Reserve:    coerce.Amount(dto.ReserveBalance),
		UpdatedAt:  coerce.TimePtr(dto.UpdatedAt),
	}
	if dto.TotalBalance != nil {
		balances.Total = coerce.Amount(dto.TotalBalance)
	} else {
		balances.Total = balances.Main.Add(balances.Commission).Add(balances.Reserve)
	}
	return balances
}

// AccountingSummary decodes ledger totals. A missing net flow is deposits
// minus withdrawals.
func AccountingSummary(body []byte) models.AccountingSummary {
	dto, _ := decodeSingle[models.AccountingSummaryDTO]("accounting_summary", body, "summary")

	summary := models.AccountingSummary{
		TotalDeposits:      coerce.Amount(dto.TotalDeposits),
		TotalWithdrawals:   coerce.Amount(dto.TotalWithdrawals).Abs(),
		TotalCommissions:   coerce.Amount(dto.TotalCommissions),
		PendingDeposits:    coerce.Amount(dto.PendingDeposits),
		PendingWithdrawals: coerce.Amount(dto.PendingWithdrawals).Abs(),
	}
	if dto.NetFlow != nil {
		summary.NetFlow = coerce.Amount(dto.NetFlow)
	} else {
		summary.NetFlow = summary.TotalDeposits.Sub(summary.TotalWithdrawals)
	}
	return summary
}

// LedgerEntries decodes the admin wallet ledger.
func LedgerEntries(body []byte, now time.Time) []models.LedgerEntry {
	dtos := decodeItems[models.LedgerEntryDTO]("wallet_ledger", DecodeList(body, "entries", "ledger"))
	out := make([]models.LedgerEntry, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, models.LedgerEntry{
			Id:           coerce.Int(dto.Id),
			Kind:         strings.ToLower(strings.TrimSpace(dto.Type)),
			Amount:       coerce.Amount(dto.Amount),
			BalanceAfter: coerce.Amount(dto.BalanceAfter),
			Note:         firstNonBlank(dto.Note, dto.Description),
			CreatedAt:    coerce.TimeOr(dto.CreatedAt, now),
		})
	}
	return out
}
