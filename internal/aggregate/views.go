package aggregate

import (
	"broker-backoffice-go/internal/models"
)

func keep(list []models.NormalizedTransaction, pred func(models.NormalizedTransaction) bool) []models.NormalizedTransaction {
	out := make([]models.NormalizedTransaction, 0, len(list))
	for _, tx := range list {
		if pred(tx) {
			out = append(out, tx)
		}
	}
	return out
}

func settled(tx models.NormalizedTransaction) bool {
	return tx.Status == models.StatusCompleted || tx.Status == models.StatusRejected
}

func pendingWithdrawal(tx models.NormalizedTransaction) bool {
	return tx.Type == models.TypeWithdrawal && tx.Status == models.StatusPending
}

// Commission entries are routed on the backend's own status string. Only
// PENDING is actionable; any other status, known or not, is history.
const commissionPending = "PENDING"

func commissionQueued(tx models.NormalizedTransaction) bool {
	return tx.RawStatus == commissionPending
}

func commissionSettled(tx models.NormalizedTransaction) bool {
	return tx.RawStatus != commissionPending
}

// History is the settled view: completed and rejected transactions plus every
// commission entry whose raw status is anything but PENDING, newest first.
// Either input may be nil while its source is still loading.
func History(transactions, commissions []models.NormalizedTransaction) []models.NormalizedTransaction {
	return HistoryWithPolicy(PreferMostRecent, transactions, commissions)
}

// HistoryWithPolicy is History with an explicit merge policy.
func HistoryWithPolicy(policy Policy, transactions, commissions []models.NormalizedTransaction) []models.NormalizedTransaction {
	return SortByRecency(Merge(policy, keep(transactions, settled), keep(commissions, commissionSettled)))
}

// WithdrawalQueue is the actionable view: pending ordinary withdrawals plus
// commission entries the backend still reports as PENDING, newest first.
func WithdrawalQueue(transactions, commissions []models.NormalizedTransaction) []models.NormalizedTransaction {
	return WithdrawalQueueWithPolicy(PreferMostRecent, transactions, commissions)
}

// WithdrawalQueueWithPolicy is WithdrawalQueue with an explicit merge policy.
func WithdrawalQueueWithPolicy(policy Policy, transactions, commissions []models.NormalizedTransaction) []models.NormalizedTransaction {
	return SortByRecency(Merge(policy, keep(transactions, pendingWithdrawal), keep(commissions, commissionQueued)))
}

// DepositQueue lists deposits awaiting approval, newest first.
func DepositQueue(transactions []models.NormalizedTransaction) []models.NormalizedTransaction {
	return SortByRecency(keep(transactions, func(tx models.NormalizedTransaction) bool {
		return tx.Type == models.TypeDeposit && tx.Status == models.StatusPending
	}))
}
