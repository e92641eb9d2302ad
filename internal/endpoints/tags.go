package endpoints

import (
	"broker-backoffice-go/internal/cache"
	"broker-backoffice-go/internal/models"
)

// Tag types.
const (
	TagUsers                 = "Users"
	TagKyc                   = "Kyc"
	TagTradingAccounts       = "TradingAccounts"
	TagTransactions          = "Transactions"
	TagCommissionWithdrawals = "CommissionWithdrawals"
	TagWallet                = "Wallet"
	TagSpreadProfiles        = "SpreadProfiles"
	TagAccountTypes          = "AccountTypes"
	TagNotifications         = "Notifications"
	TagSupportTickets        = "SupportTickets"
	TagClientMessages        = "ClientMessages"
)

// listWithItems is the provides set of a list query: the LIST tag plus one
// tag per item.
func listWithItems[T any](tagType string, items []T, id func(T) int64) []cache.Tag {
	tags := make([]cache.Tag, 0, len(items)+1)
	tags = append(tags, cache.ListTag(tagType))
	for _, item := range items {
		if i := id(item); i != 0 {
			tags = append(tags, cache.ItemTag(tagType, i))
		}
	}
	return tags
}

func transactionTags(tagType string, list []models.NormalizedTransaction) []cache.Tag {
	return listWithItems(tagType, list, func(t models.NormalizedTransaction) int64 { return t.Id })
}

// providesItem is the provides set of a detail query keyed by id.
func providesItem[R any](tagType string) func(R, int64) []cache.Tag {
	return func(_ R, id int64) []cache.Tag {
		return []cache.Tag{cache.ItemTag(tagType, id)}
	}
}

// invalidatesItem is the invalidation set of a mutation keyed by id.
func invalidatesItem(tagType string, extra ...cache.Tag) func(int64) []cache.Tag {
	return func(id int64) []cache.Tag {
		return append(cache.ItemAndList(tagType, id), extra...)
	}
}
