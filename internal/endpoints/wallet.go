package endpoints

import (
	"encoding/json"
	"strings"
	"time"

	"broker-backoffice-go/internal/cache"
	"broker-backoffice-go/internal/client"
	"broker-backoffice-go/internal/models"
	"broker-backoffice-go/internal/normalize"

	"github.com/shopspring/decimal"
)

// Wallet tag ids. Every wallet query also provides the Wallet LIST tag, which
// is what wallet mutations invalidate.
const (
	walletBalancesId = "BALANCES"
	walletSummaryId  = "SUMMARY"
	walletLedgerId   = "LEDGER"
)

// SummaryRange bounds the accounting summary.
type SummaryRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// WalletOperation replenishes or withdraws from the admin wallet.
type WalletOperation struct {
	Amount decimal.Decimal
	Note   string
}

func (op WalletOperation) body() map[string]any {
	body := map[string]any{"amount": json.Number(op.Amount.String())}
	if note := strings.TrimSpace(op.Note); note != "" {
		body["note"] = note
	}
	return body
}

func walletTags(id string) []cache.Tag {
	return []cache.Tag{{Type: TagWallet, Id: id}, cache.ListTag(TagWallet)}
}

var WalletBalances = Query[None, models.WalletBalances]{
	Name: "wallet.balances",
	Request: func(None) client.Request {
		return client.Get("", "/admin/wallet/balances", nil)
	},
	TransformWith: func(_ None, body []byte, _ time.Time) models.WalletBalances {
		return normalize.WalletBalances(body)
	},
	Provides: func(models.WalletBalances, None) []cache.Tag { return walletTags(walletBalancesId) },
}

var AccountingSummary = Query[SummaryRange, models.AccountingSummary]{
	Name: "wallet.summary",
	Request: func(r SummaryRange) client.Request {
		return client.Get("", "/admin/accounting/summary", values("from", dateParam(r.From), "to", dateParam(r.To)))
	},
	TransformWith: func(_ SummaryRange, body []byte, _ time.Time) models.AccountingSummary {
		return normalize.AccountingSummary(body)
	},
	Provides: func(models.AccountingSummary, SummaryRange) []cache.Tag { return walletTags(walletSummaryId) },
}

var WalletLedger = Query[Page, []models.LedgerEntry]{
	Name: "wallet.ledger",
	Request: func(p Page) client.Request {
		q := values()
		p.apply(q)
		return client.Get("", "/admin/wallet/ledger", q)
	},
	Transform: normalize.LedgerEntries,
	Provides:  func([]models.LedgerEntry, Page) []cache.Tag { return walletTags(walletLedgerId) },
}

var ReplenishWallet = Mutation[WalletOperation, models.WalletBalances]{
	Name: "wallet.replenish",
	Request: func(op WalletOperation) client.Request {
		return client.Post("", "/admin/wallet/replenish", op.body())
	},
	Transform: func(body []byte, _ time.Time) models.WalletBalances {
		return normalize.WalletBalances(body)
	},
	Invalidates: func(WalletOperation) []cache.Tag { return []cache.Tag{cache.ListTag(TagWallet)} },
}

var WithdrawWallet = Mutation[WalletOperation, models.WalletBalances]{
	Name: "wallet.withdraw",
	Request: func(op WalletOperation) client.Request {
		return client.Post("", "/admin/wallet/withdraw", op.body())
	},
	Transform: func(body []byte, _ time.Time) models.WalletBalances {
		return normalize.WalletBalances(body)
	},
	Invalidates: func(WalletOperation) []cache.Tag { return []cache.Tag{cache.ListTag(TagWallet)} },
}
