package endpoints

import (
	"fmt"
	"time"

	"broker-backoffice-go/internal/cache"
	"broker-backoffice-go/internal/client"
	"broker-backoffice-go/internal/models"
	"broker-backoffice-go/internal/normalize"
)

// AccountStatusArgs archives or reactivates a trading account.
type AccountStatusArgs struct {
	AccountId int64
	UserId    int64
	Status    models.AccountStatus
}

// LeverageArgs changes a trading account's leverage.
type LeverageArgs struct {
	AccountId int64
	UserId    int64
	Leverage  int
}

// Trading account tags are keyed by the owning user so every mutation
// refreshes that user's summary.
var UserTradingAccounts = Query[int64, models.TradingAccountSummary]{
	Name: "trading_accounts.user",
	Request: func(userId int64) client.Request {
		return client.Get("", fmt.Sprintf("/admin/users/%d/trading-accounts", userId), nil)
	},
	TransformWith: func(userId int64, body []byte, now time.Time) models.TradingAccountSummary {
		return normalize.TradingAccounts(body, userId, now)
	},
	Provides: func(_ models.TradingAccountSummary, userId int64) []cache.Tag {
		return cache.ItemAndList(TagTradingAccounts, userId)
	},
}

var SetAccountStatus = Mutation[AccountStatusArgs, None]{
	Name: "trading_accounts.set_status",
	Request: func(a AccountStatusArgs) client.Request {
		return client.Patch("", fmt.Sprintf("/admin/trading-accounts/%d/status", a.AccountId),
			map[string]any{"accountStatus": string(a.Status)})
	},
	Transform: discard,
	Invalidates: func(a AccountStatusArgs) []cache.Tag {
		return cache.ItemAndList(TagTradingAccounts, a.UserId)
	},
}

var SetLeverage = Mutation[LeverageArgs, None]{
	Name: "trading_accounts.set_leverage",
	Request: func(a LeverageArgs) client.Request {
		return client.Patch("", fmt.Sprintf("/admin/trading-accounts/%d/leverage", a.AccountId),
			map[string]any{"leverage": a.Leverage})
	},
	Transform: discard,
	Invalidates: func(a LeverageArgs) []cache.Tag {
		return cache.ItemAndList(TagTradingAccounts, a.UserId)
	},
}
