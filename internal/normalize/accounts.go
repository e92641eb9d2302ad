package normalize

import (
	"strings"
	"time"

	"broker-backoffice-go/internal/coerce"
	"broker-backoffice-go/internal/models"
)

func accountKind(dto models.TradingAccountDTO) models.AccountKind {
	switch canonical(dto.Type) {
	case "DEMO":
		return models.AccountDemo
	case "REAL", "LIVE":
		return models.AccountReal
	}
	if coerce.Bool(dto.IsDemo) {
		return models.AccountDemo
	}
	return models.AccountReal
}

// TradingAccount maps a single trading account.
func TradingAccount(dto models.TradingAccountDTO, now time.Time) models.TradingAccount {
	funds := dto.FundsAvailable
	if funds == nil {
		funds = dto.Balance
	}
	return models.TradingAccount{
		Id:             coerce.Int(dto.Id),
		UserId:         coerce.Int(dto.UserId),
		Number:         coerce.String(dto.AccountNumber),
		Kind:           accountKind(dto),
		Leverage:       coerce.Leverage(dto.Leverage),
		FundsAvailable: coerce.Amount(funds),
		AccountStatus:  AccountStatus(dto.AccountStatus),
		AccountType:    strings.TrimSpace(dto.AccountType),
		Currency:       strings.ToUpper(strings.TrimSpace(dto.Currency)),
		CreatedAt:      coerce.TimeOr(dto.CreatedAt, now),
	}
}

// TradingAccounts decodes one user's accounts and splits them into real and
// demo groups, preserving backend order within each group.
func TradingAccounts(body []byte, userId int64, now time.Time) models.TradingAccountSummary {
	dtos := decodeItems[models.TradingAccountDTO]("trading_accounts",
		DecodeList(body, "accounts", "tradingAccounts"))

	summary := models.TradingAccountSummary{
		UserId: userId,
		Real:   []models.TradingAccount{},
		Demo:   []models.TradingAccount{},
	}
	for _, dto := range dtos {
		account := TradingAccount(dto, now)
		if account.UserId == 0 {
			account.UserId = userId
		}
		if account.Kind == models.AccountDemo {
			summary.Demo = append(summary.Demo, account)
		} else {
			summary.Real = append(summary.Real, account)
		}
	}
	return summary
}

// SpreadProfile maps a spread profile.
func SpreadProfile(dto models.SpreadProfileDTO) models.SpreadProfile {
	spreads := make([]models.SymbolSpread, 0, len(dto.Spreads))
	for _, s := range dto.Spreads {
		symbol := strings.ToUpper(strings.TrimSpace(s.Symbol))
		if symbol == "" {
			continue
		}
		spreads = append(spreads, models.SymbolSpread{Symbol: symbol, Markup: coerce.Amount(s.Markup)})
	}
	return models.SpreadProfile{
		Id:          coerce.Int(dto.Id),
		Name:        strings.TrimSpace(dto.Name),
		Description: dto.Description,
		IsDefault:   coerce.Bool(dto.IsDefault),
		Spreads:     spreads,
	}
}

// SpreadProfiles decodes the spread profile list.
func SpreadProfiles(body []byte) []models.SpreadProfile {
	dtos := decodeItems[models.SpreadProfileDTO]("spread_profiles",
		DecodeList(body, "spreadProfiles", "profiles"))
	out := make([]models.SpreadProfile, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, SpreadProfile(dto))
	}
	return out
}

// SpreadProfileDetail decodes a single spread profile.
func SpreadProfileDetail(body []byte) models.SpreadProfile {
	dto, ok := decodeSingle[models.SpreadProfileDTO]("spread_profile", body, "spreadProfile", "profile")
	if !ok {
		return models.SpreadProfile{Spreads: []models.SymbolSpread{}}
	}
	return SpreadProfile(dto)
}

// AccountType maps an account type. Missing isActive means active.
func AccountType(dto models.AccountTypeDTO) models.AccountType {
	active := true
	if dto.IsActive != nil {
		active = coerce.Bool(dto.IsActive)
	}
	return models.AccountType{
		Id:              coerce.Int(dto.Id),
		Name:            strings.TrimSpace(dto.Name),
		MinDeposit:      coerce.Amount(dto.MinDeposit),
		MaxLeverage:     coerce.Leverage(dto.MaxLeverage),
		Commission:      coerce.Amount(dto.Commission),
		SpreadProfileId: coerce.Int(dto.SpreadProfileId),
		Active:          active,
	}
}

// AccountTypes decodes the account type list.
func AccountTypes(body []byte) []models.AccountType {
	dtos := decodeItems[models.AccountTypeDTO]("account_types", DecodeList(body, "accountTypes", "types"))
	out := make([]models.AccountType, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, AccountType(dto))
	}
	return out
}

// AccountTypeDetail decodes a single account type.
func AccountTypeDetail(body []byte) models.AccountType {
	dto, ok := decodeSingle[models.AccountTypeDTO]("account_type", body, "accountType")
	if !ok {
		return models.AccountType{}
	}
	return AccountType(dto)
}
