package endpoints

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"broker-backoffice-go/internal/cache"
	"broker-backoffice-go/internal/client"
	"broker-backoffice-go/internal/models"
	"broker-backoffice-go/internal/normalize"

	"github.com/shopspring/decimal"
)

// SpreadProfileInput is the writable part of a spread profile.
type SpreadProfileInput struct {
	Name        string
	Description string
	IsDefault   bool
	Spreads     []models.SymbolSpread
}

func (in SpreadProfileInput) body() map[string]any {
	spreads := make([]map[string]any, 0, len(in.Spreads))
	for _, s := range in.Spreads {
		spreads = append(spreads, map[string]any{
			"symbol": strings.ToUpper(strings.TrimSpace(s.Symbol)),
			"markup": json.Number(s.Markup.String()),
		})
	}
	return map[string]any{
		"name":        strings.TrimSpace(in.Name),
		"description": in.Description,
		"isDefault":   in.IsDefault,
		"spreads":     spreads,
	}
}

// SpreadProfileUpdate replaces an existing spread profile.
type SpreadProfileUpdate struct {
	Id    int64
	Input SpreadProfileInput
}

// AccountTypeInput is the writable part of an account type.
type AccountTypeInput struct {
	Name            string
	MinDeposit      decimal.Decimal
	MaxLeverage     int
	Commission      decimal.Decimal
	SpreadProfileId int64
	Active          bool
}

func (in AccountTypeInput) body() map[string]any {
	body := map[string]any{
		"name":        strings.TrimSpace(in.Name),
		"minDeposit":  json.Number(in.MinDeposit.String()),
		"maxLeverage": in.MaxLeverage,
		"commission":  json.Number(in.Commission.String()),
		"isActive":    in.Active,
	}
	if in.SpreadProfileId != 0 {
		body["spreadProfileId"] = in.SpreadProfileId
	}
	return body
}

// AccountTypeUpdate replaces an existing account type.
type AccountTypeUpdate struct {
	Id    int64
	Input AccountTypeInput
}

var ListSpreadProfiles = Query[None, []models.SpreadProfile]{
	Name: "spread_profiles.list",
	Request: func(None) client.Request {
		return client.Get("", "/admin/spread-profiles", nil)
	},
	TransformWith: func(_ None, body []byte, _ time.Time) []models.SpreadProfile {
		return normalize.SpreadProfiles(body)
	},
	Provides: func(list []models.SpreadProfile, _ None) []cache.Tag {
		return listWithItems(TagSpreadProfiles, list, func(p models.SpreadProfile) int64 { return p.Id })
	},
}

var GetSpreadProfile = Query[int64, models.SpreadProfile]{
	Name: "spread_profiles.get",
	Request: func(id int64) client.Request {
		return client.Get("", fmt.Sprintf("/admin/spread-profiles/%d", id), nil)
	},
	TransformWith: func(_ int64, body []byte, _ time.Time) models.SpreadProfile {
		return normalize.SpreadProfileDetail(body)
	},
	Provides: providesItem[models.SpreadProfile](TagSpreadProfiles),
}

var CreateSpreadProfile = Mutation[SpreadProfileInput, models.SpreadProfile]{
	Name: "spread_profiles.create",
	Request: func(in SpreadProfileInput) client.Request {
		return client.Post("", "/admin/spread-profiles", in.body())
	},
	Transform: func(body []byte, _ time.Time) models.SpreadProfile {
		return normalize.SpreadProfileDetail(body)
	},
	Invalidates: func(SpreadProfileInput) []cache.Tag {
		return []cache.Tag{cache.ListTag(TagSpreadProfiles)}
	},
}

var UpdateSpreadProfile = Mutation[SpreadProfileUpdate, models.SpreadProfile]{
	Name: "spread_profiles.update",
	Request: func(u SpreadProfileUpdate) client.Request {
		return client.Put("", fmt.Sprintf("/admin/spread-profiles/%d", u.Id), u.Input.body())
	},
	Transform: func(body []byte, _ time.Time) models.SpreadProfile {
		return normalize.SpreadProfileDetail(body)
	},
	Invalidates: func(u SpreadProfileUpdate) []cache.Tag {
		return cache.ItemAndList(TagSpreadProfiles, u.Id)
	},
}

// Account types reference spread profiles, so deleting a profile refreshes them.
var DeleteSpreadProfile = Mutation[int64, None]{
	Name: "spread_profiles.delete",
	Request: func(id int64) client.Request {
		return client.Delete("", fmt.Sprintf("/admin/spread-profiles/%d", id))
	},
	Transform:   discard,
	Invalidates: invalidatesItem(TagSpreadProfiles, cache.ListTag(TagAccountTypes)),
}

var ListAccountTypes = Query[None, []models.AccountType]{
	Name: "account_types.list",
	Request: func(None) client.Request {
		return client.Get("", "/admin/account-types", nil)
	},
	TransformWith: func(_ None, body []byte, _ time.Time) []models.AccountType {
		return normalize.AccountTypes(body)
	},
	Provides: func(list []models.AccountType, _ None) []cache.Tag {
		return listWithItems(TagAccountTypes, list, func(t models.AccountType) int64 { return t.Id })
	},
}

var GetAccountType = Query[int64, models.AccountType]{
	Name: "account_types.get",
	Request: func(id int64) client.Request {
		return client.Get("", fmt.Sprintf("/admin/account-types/%d", id), nil)
	},
	TransformWith: func(_ int64, body []byte, _ time.Time) models.AccountType {
		return normalize.AccountTypeDetail(body)
	},
	Provides: providesItem[models.AccountType](TagAccountTypes),
}

var CreateAccountType = Mutation[AccountTypeInput, models.AccountType]{
	Name: "account_types.create",
	Request: func(in AccountTypeInput) client.Request {
		return client.Post("", "/admin/account-types", in.body())
	},
	Transform: func(body []byte, _ time.Time) models.AccountType {
		return normalize.AccountTypeDetail(body)
	},
	Invalidates: func(AccountTypeInput) []cache.Tag {
		return []cache.Tag{cache.ListTag(TagAccountTypes)}
	},
}

var UpdateAccountType = Mutation[AccountTypeUpdate, models.AccountType]{
	Name: "account_types.update",
	Request: func(u AccountTypeUpdate) client.Request {
		return client.Put("", fmt.Sprintf("/admin/account-types/%d", u.Id), u.Input.body())
	},
	Transform: func(body []byte, _ time.Time) models.AccountType {
		return normalize.AccountTypeDetail(body)
	},
	Invalidates: func(u AccountTypeUpdate) []cache.Tag {
		return cache.ItemAndList(TagAccountTypes, u.Id)
	},
}

var DeleteAccountType = Mutation[int64, None]{
	Name: "account_types.delete",
	Request: func(id int64) client.Request {
		return client.Delete("", fmt.Sprintf("/admin/account-types/%d", id))
	},
	Transform:   discard,
	Invalidates: invalidatesItem(TagAccountTypes),
}
