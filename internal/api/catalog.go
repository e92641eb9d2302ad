package api

import (
	"context"
	"fmt"
	"strings"

	"broker-backoffice-go/internal/endpoints"
	"broker-backoffice-go/internal/models"

	"github.com/shopspring/decimal"
)

func (s *BackOffice) SpreadProfiles(ctx context.Context) ([]models.SpreadProfile, error) {
	return endpoints.Run(ctx, s.registry, endpoints.ListSpreadProfiles, endpoints.None{})
}

func (s *BackOffice) SpreadProfile(ctx context.Context, id int64) (models.SpreadProfile, error) {
	if err := requireId("spread profile id", id); err != nil {
		return models.SpreadProfile{}, err
	}
	return endpoints.Run(ctx, s.registry, endpoints.GetSpreadProfile, id)
}

func (s *BackOffice) CreateSpreadProfile(ctx context.Context, in endpoints.SpreadProfileInput) (models.SpreadProfile, error) {
	if err := validateSpreadProfile(in); err != nil {
		return models.SpreadProfile{}, err
	}
	return endpoints.Execute(ctx, s.registry, endpoints.CreateSpreadProfile, in)
}

func (s *BackOffice) UpdateSpreadProfile(ctx context.Context, id int64, in endpoints.SpreadProfileInput) (models.SpreadProfile, error) {
	if err := requireId("spread profile id", id); err != nil {
		return models.SpreadProfile{}, err
	}
	if err := validateSpreadProfile(in); err != nil {
		return models.SpreadProfile{}, err
	}
	return endpoints.Execute(ctx, s.registry, endpoints.UpdateSpreadProfile, endpoints.SpreadProfileUpdate{Id: id, Input: in})
}

func (s *BackOffice) DeleteSpreadProfile(ctx context.Context, id int64) error {
	if err := requireId("spread profile id", id); err != nil {
		return err
	}
	_, err := endpoints.Execute(ctx, s.registry, endpoints.DeleteSpreadProfile, id)
	return err
}

func validateSpreadProfile(in endpoints.SpreadProfileInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	for _, spread := range in.Spreads {
		if strings.TrimSpace(spread.Symbol) == "" {
			return fmt.Errorf("%w: spread symbol is required", ErrInvalidArgument)
		}
	}
	return nil
}

func (s *BackOffice) AccountTypes(ctx context.Context) ([]models.AccountType, error) {
	return endpoints.Run(ctx, s.registry, endpoints.ListAccountTypes, endpoints.None{})
}

func (s *BackOffice) AccountType(ctx context.Context, id int64) (models.AccountType, error) {
	if err := requireId("account type id", id); err != nil {
		return models.AccountType{}, err
	}
	return endpoints.Run(ctx, s.registry, endpoints.GetAccountType, id)
}

func (s *BackOffice) CreateAccountType(ctx context.Context, in endpoints.AccountTypeInput) (models.AccountType, error) {
	if err := validateAccountType(in); err != nil {
		return models.AccountType{}, err
	}
	return endpoints.Execute(ctx, s.registry, endpoints.CreateAccountType, in)
}

func (s *BackOffice) UpdateAccountType(ctx context.Context, id int64, in endpoints.AccountTypeInput) (models.AccountType, error) {
	if err := requireId("account type id", id); err != nil {
		return models.AccountType{}, err
	}
	if err := validateAccountType(in); err != nil {
		return models.AccountType{}, err
	}
	return endpoints.Execute(ctx, s.registry, endpoints.UpdateAccountType, endpoints.AccountTypeUpdate{Id: id, Input: in})
}

func (s *BackOffice) DeleteAccountType(ctx context.Context, id int64) error {
	if err := requireId("account type id", id); err != nil {
		return err
	}
	_, err := endpoints.Execute(ctx, s.registry, endpoints.DeleteAccountType, id)
	return err
}

func validateAccountType(in endpoints.AccountTypeInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if in.MinDeposit.LessThan(decimal.Zero) || in.Commission.LessThan(decimal.Zero) {
		return fmt.Errorf("%w: amounts cannot be negative", ErrInvalidArgument)
	}
	if in.MaxLeverage < 0 {
		return fmt.Errorf("%w: leverage cannot be negative", ErrInvalidArgument)
	}
	return nil
}
