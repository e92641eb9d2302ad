/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"fmt"

	"broker-backoffice-go/internal/endpoints"
	"broker-backoffice-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WalletOverview is the admin wallet screen
type WalletOverview struct {
	Balances models.WalletBalances   `json:"balances"`
	Summary  models.AccountingSummary `json:"summary"`
}

// Wallet returns the admin wallet balances and the accounting summary for r
func (s *BackOffice) Wallet(ctx context.Context, r endpoints.SummaryRange) (*WalletOverview, error) {
	overview := &WalletOverview{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		balances, err := endpoints.Run(gctx, s.registry, endpoints.WalletBalances, endpoints.None{})
		overview.Balances = balances
		return err
	})
	g.Go(func() error {
		summary, err := endpoints.Run(gctx, s.registry, endpoints.AccountingSummary, r)
		overview.Summary = summary
		return err
	})
	if err := g.Wait(); err != nil {
		zap.L().Error("Failed to get wallet overview", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve wallet: %w", err)
	}
	return overview, nil
}

// WalletLedger returns paginated admin wallet movements
func (s *BackOffice) WalletLedger(ctx context.Context, page endpoints.Page) ([]models.LedgerEntry, error) {
	if page.Limit <= 0 || page.Limit > 100 {
		page.Limit = 20
	}
	if page.Page < 1 {
		page.Page = 1
	}

	entries, err := endpoints.Run(ctx, s.registry, endpoints.WalletLedger, page)
	if err != nil {
		zap.L().Error("Failed to get wallet ledger", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve wallet ledger: %w", err)
	}
	return entries, nil
}

// ReplenishWallet adds funds to the admin wallet and returns the refreshed balances
func (s *BackOffice) ReplenishWallet(ctx context.Context, amount decimal.Decimal, note string) (models.WalletBalances, error) {
	return s.walletOperation(ctx, endpoints.ReplenishWallet, endpoints.WalletOperation{Amount: amount, Note: note})
}

// WithdrawWallet removes funds from the admin wallet and returns the refreshed balances
func (s *BackOffice) WithdrawWallet(ctx context.Context, amount decimal.Decimal, note string) (models.WalletBalances, error) {
	return s.walletOperation(ctx, endpoints.WithdrawWallet, endpoints.WalletOperation{Amount: amount, Note: note})
}

func (s *BackOffice) walletOperation(ctx context.Context, m endpoints.Mutation[endpoints.WalletOperation, models.WalletBalances], op endpoints.WalletOperation) (models.WalletBalances, error) {
	if op.Amount.LessThanOrEqual(decimal.Zero) {
		return models.WalletBalances{}, ErrInvalidAmount
	}

	zap.L().Info("Processing wallet operation",
		zap.String("operation", m.Name),
		zap.String("amount", op.Amount.String()))

	if _, err := endpoints.Execute(ctx, s.registry, m, op); err != nil {
		zap.L().Error("Wallet operation failed",
			zap.String("operation", m.Name),
			zap.String("amount", op.Amount.String()),
			zap.Error(err))
		return models.WalletBalances{}, err
	}

	// The mutation marked every wallet view stale; read the balances back
	// instead of trusting the mutation response.
	balances, err := endpoints.Run(ctx, s.registry, endpoints.WalletBalances, endpoints.None{})
	if err != nil {
		zap.L().Error("Balance lookup failed after wallet operation",
			zap.String("operation", m.Name),
			zap.Error(err))
		return models.WalletBalances{}, fmt.Errorf("balance lookup failed after wallet operation: %w", err)
	}

	zap.L().Info("Wallet operation processed successfully",
		zap.String("operation", m.Name),
		zap.String("amount", op.Amount.String()),
		zap.String("new_total", balances.Total.String()))

	return balances, nil
}
