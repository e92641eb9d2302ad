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
	"strings"

	"broker-backoffice-go/internal/aggregate"
	"broker-backoffice-go/internal/endpoints"
	"broker-backoffice-go/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TransactionQuery selects what is fetched from the backend and how the
// merged result is filtered locally
type TransactionQuery struct {
	Backend endpoints.TransactionFilter
	Filter  aggregate.Criteria
}

func (s *BackOffice) loadTransactionSources(ctx context.Context, f endpoints.TransactionFilter) ([]models.NormalizedTransaction, []models.NormalizedTransaction, error) {
	var transactions, commissions []models.NormalizedTransaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		transactions, err = endpoints.Run(gctx, s.registry, endpoints.ListTransactions, f)
		return err
	})
	g.Go(func() error {
		var err error
		commissions, err = endpoints.Run(gctx, s.registry, endpoints.ListCommissionWithdrawals, endpoints.CommissionFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		zap.L().Error("Failed to load transactions", zap.Error(err))
		return nil, nil, err
	}
	return transactions, commissions, nil
}

// TransactionHistory returns settled transactions and commission withdrawals,
// merged, sorted newest first and filtered
func (s *BackOffice) TransactionHistory(ctx context.Context, q TransactionQuery) ([]models.NormalizedTransaction, error) {
	transactions, commissions, err := s.loadTransactionSources(ctx, q.Backend)
	if err != nil {
		return nil, err
	}
	return aggregate.Filter(aggregate.HistoryWithPolicy(s.policy, transactions, commissions), q.Filter), nil
}

// WithdrawalQueue returns the withdrawals awaiting an admin decision
func (s *BackOffice) WithdrawalQueue(ctx context.Context, q TransactionQuery) ([]models.NormalizedTransaction, error) {
	transactions, commissions, err := s.loadTransactionSources(ctx, q.Backend)
	if err != nil {
		return nil, err
	}
	return aggregate.Filter(aggregate.WithdrawalQueueWithPolicy(s.policy, transactions, commissions), q.Filter), nil
}

// DepositQueue returns the deposits awaiting an admin decision
func (s *BackOffice) DepositQueue(ctx context.Context, q TransactionQuery) ([]models.NormalizedTransaction, error) {
	transactions, err := endpoints.Run(ctx, s.registry, endpoints.ListTransactions, q.Backend)
	if err != nil {
		return nil, err
	}
	return aggregate.Filter(aggregate.DepositQueue(transactions), q.Filter), nil
}

// ApproveTransaction approves a pending record. Commission withdrawals are
// routed to their own resource.
func (s *BackOffice) ApproveTransaction(ctx context.Context, origin models.Origin, id int64) error {
	if err := requireId("transaction id", id); err != nil {
		return err
	}

	var err error
	switch origin {
	case models.OriginCommission:
		_, err = endpoints.Execute(ctx, s.registry, endpoints.ApproveCommissionWithdrawal, id)
	case models.OriginTransaction, "":
		_, err = endpoints.Execute(ctx, s.registry, endpoints.ApproveTransaction, id)
	default:
		return fmt.Errorf("%w: unknown origin %q", ErrInvalidArgument, origin)
	}
	if err != nil {
		zap.L().Error("Failed to approve transaction",
			zap.String("origin", string(origin)),
			zap.Int64("id", id),
			zap.Error(err))
		return err
	}

	zap.L().Info("Transaction approved",
		zap.String("origin", string(origin)),
		zap.Int64("id", id))
	return nil
}

// RejectTransaction rejects a pending record with an optional reason
func (s *BackOffice) RejectTransaction(ctx context.Context, origin models.Origin, id int64, reason string) error {
	if err := requireId("transaction id", id); err != nil {
		return err
	}

	rejection := endpoints.Rejection{Id: id, Reason: strings.TrimSpace(reason)}

	var err error
	switch origin {
	case models.OriginCommission:
		_, err = endpoints.Execute(ctx, s.registry, endpoints.RejectCommissionWithdrawal, rejection)
	case models.OriginTransaction, "":
		_, err = endpoints.Execute(ctx, s.registry, endpoints.RejectTransaction, rejection)
	default:
		return fmt.Errorf("%w: unknown origin %q", ErrInvalidArgument, origin)
	}
	if err != nil {
		zap.L().Error("Failed to reject transaction",
			zap.String("origin", string(origin)),
			zap.Int64("id", id),
			zap.Error(err))
		return err
	}

	zap.L().Info("Transaction rejected",
		zap.String("origin", string(origin)),
		zap.Int64("id", id),
		zap.String("reason", rejection.Reason))
	return nil
}
