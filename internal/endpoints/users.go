package endpoints

import (
	"fmt"

	"broker-backoffice-go/internal/cache"
	"broker-backoffice-go/internal/client"
	"broker-backoffice-go/internal/models"
	"broker-backoffice-go/internal/normalize"
)

// UserFilter narrows the client list.
type UserFilter struct {
	Search    string `json:"search,omitempty"`
	KycStatus string `json:"kycStatus,omitempty"`
	Page
}

// BlockArgs blocks or unblocks a client.
type BlockArgs struct {
	UserId  int64
	Blocked bool
}

var ListUsers = Query[UserFilter, []models.ClientSummary]{
	Name: "users.list",
	Request: func(f UserFilter) client.Request {
		q := values("search", f.Search, "kycStatus", f.KycStatus)
		f.Page.apply(q)
		return client.Get("", "/admin/users", q)
	},
	Transform: normalize.Clients,
	Provides: func(list []models.ClientSummary, _ UserFilter) []cache.Tag {
		return listWithItems(TagUsers, list, func(c models.ClientSummary) int64 { return c.Id })
	},
}

var GetUser = Query[int64, models.ClientSummary]{
	Name: "users.get",
	Request: func(id int64) client.Request {
		return client.Get("", fmt.Sprintf("/admin/users/%d", id), nil)
	},
	Transform: normalize.ClientDetail,
	Provides:  providesItem[models.ClientSummary](TagUsers),
}

var SetUserBlocked = Mutation[BlockArgs, None]{
	Name: "users.set_blocked",
	Request: func(a BlockArgs) client.Request {
		action := "unblock"
		if a.Blocked {
			action = "block"
		}
		return client.Post("", fmt.Sprintf("/admin/users/%d/%s", a.UserId, action), nil)
	},
	Transform: discard,
	Invalidates: func(a BlockArgs) []cache.Tag {
		return cache.ItemAndList(TagUsers, a.UserId)
	},
}

// UserTransactions lists one client's transactions.
var UserTransactions = Query[int64, []models.NormalizedTransaction]{
	Name: "users.transactions",
	Request: func(userId int64) client.Request {
		return client.Get("", fmt.Sprintf("/admin/users/%d/transactions", userId), nil)
	},
	Transform: normalize.Transactions,
	Provides: func(list []models.NormalizedTransaction, userId int64) []cache.Tag {
		return append(transactionTags(TagTransactions, list), cache.ItemTag(TagUsers, userId))
	},
}
