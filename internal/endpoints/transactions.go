package endpoints

import (
	"fmt"
	"strings"
	"time"

	"broker-backoffice-go/internal/cache"
	"broker-backoffice-go/internal/client"
	"broker-backoffice-go/internal/models"
	"broker-backoffice-go/internal/normalize"
)

// TransactionFilter is forwarded to the backend as query parameters.
type TransactionFilter struct {
	Type   string     `json:"type,omitempty"`
	Status string     `json:"status,omitempty"`
	UserId int64      `json:"userId,omitempty"`
	From   *time.Time `json:"from,omitempty"`
	To     *time.Time `json:"to,omitempty"`
	Page
}

// CommissionFilter narrows the commission withdrawal request list.
type CommissionFilter struct {
	Status string `json:"status,omitempty"`
	Page
}

// Rejection rejects one entity with an optional reason.
type Rejection struct {
	Id     int64
	Reason string
}

var ListTransactions = Query[TransactionFilter, []models.NormalizedTransaction]{
	Name: "transactions.list",
	Request: func(f TransactionFilter) client.Request {
		q := values(
			"type", strings.ToUpper(f.Type),
			"status", strings.ToUpper(f.Status),
			"userId", idParam(f.UserId),
			"from", dateParam(f.From),
			"to", dateParam(f.To),
		)
		f.Page.apply(q)
		return client.Get("", "/admin/transactions", q)
	},
	Transform: normalize.Transactions,
	Provides: func(list []models.NormalizedTransaction, _ TransactionFilter) []cache.Tag {
		return transactionTags(TagTransactions, list)
	},
}

var GetTransaction = Query[int64, models.NormalizedTransaction]{
	Name: "transactions.get",
	Request: func(id int64) client.Request {
		return client.Get("", fmt.Sprintf("/admin/transactions/%d", id), nil)
	},
	Transform: normalize.TransactionDetail,
	Provides:  providesItem[models.NormalizedTransaction](TagTransactions),
}

// Approving or rejecting moves money, so wallet views are refreshed too.
var ApproveTransaction = Mutation[int64, None]{
	Name: "transactions.approve",
	Request: func(id int64) client.Request {
		return client.Post("", fmt.Sprintf("/admin/transactions/%d/approve", id), nil)
	},
	Transform:   discard,
	Invalidates: invalidatesItem(TagTransactions, cache.ListTag(TagWallet)),
}

var RejectTransaction = Mutation[Rejection, None]{
	Name: "transactions.reject",
	Request: func(r Rejection) client.Request {
		return client.Post("", fmt.Sprintf("/admin/transactions/%d/reject", r.Id),
			map[string]any{"reason": strings.TrimSpace(r.Reason)})
	},
	Transform: discard,
	Invalidates: func(r Rejection) []cache.Tag {
		return append(cache.ItemAndList(TagTransactions, r.Id), cache.ListTag(TagWallet))
	},
}

var ListCommissionWithdrawals = Query[CommissionFilter, []models.NormalizedTransaction]{
	Name: "commission_withdrawals.list",
	Request: func(f CommissionFilter) client.Request {
		q := values("status", strings.ToUpper(f.Status))
		f.Page.apply(q)
		return client.Get("", "/admin/commission-withdrawals", q)
	},
	Transform: normalize.CommissionWithdrawals,
	Provides: func(list []models.NormalizedTransaction, _ CommissionFilter) []cache.Tag {
		return transactionTags(TagCommissionWithdrawals, list)
	},
}

var ApproveCommissionWithdrawal = Mutation[int64, None]{
	Name: "commission_withdrawals.approve",
	Request: func(id int64) client.Request {
		return client.Patch("", fmt.Sprintf("/admin/commission-withdrawals/%d", id),
			map[string]any{"status": "PAID"})
	},
	Transform:   discard,
	Invalidates: invalidatesItem(TagCommissionWithdrawals, cache.ListTag(TagWallet)),
}

var RejectCommissionWithdrawal = Mutation[Rejection, None]{
	Name: "commission_withdrawals.reject",
	Request: func(r Rejection) client.Request {
		return client.Patch("", fmt.Sprintf("/admin/commission-withdrawals/%d", r.Id),
			map[string]any{"status": "REJECTED", "rejectReason": strings.TrimSpace(r.Reason)})
	},
	Transform: discard,
	Invalidates: func(r Rejection) []cache.Tag {
		return append(cache.ItemAndList(TagCommissionWithdrawals, r.Id), cache.ListTag(TagWallet))
	},
}
