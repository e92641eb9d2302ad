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

	"broker-backoffice-go/internal/client"
	"broker-backoffice-go/internal/endpoints"
	"broker-backoffice-go/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ListClients returns one page of clients
func (s *BackOffice) ListClients(ctx context.Context, f endpoints.UserFilter) ([]models.ClientSummary, error) {
	clients, err := endpoints.Run(ctx, s.registry, endpoints.ListUsers, f)
	if err != nil {
		zap.L().Error("Failed to list clients", zap.Error(err))
		return nil, err
	}
	return clients, nil
}

// ClientProfile loads the client, trading accounts, transactions and KYC
// submission in parallel. A client without a KYC submission has a nil Kyc.
func (s *BackOffice) ClientProfile(ctx context.Context, userId int64) (*models.ClientProfile, error) {
	if err := requireId("user id", userId); err != nil {
		return nil, err
	}

	profile := &models.ClientProfile{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := endpoints.Run(gctx, s.registry, endpoints.GetUser, userId)
		if err != nil {
			return fmt.Errorf("client: %w", err)
		}
		profile.Client = c
		return nil
	})
	g.Go(func() error {
		accounts, err := endpoints.Run(gctx, s.registry, endpoints.UserTradingAccounts, userId)
		if err != nil {
			return fmt.Errorf("trading accounts: %w", err)
		}
		profile.Accounts = accounts
		return nil
	})
	g.Go(func() error {
		txs, err := endpoints.Run(gctx, s.registry, endpoints.UserTransactions, userId)
		if err != nil {
			return fmt.Errorf("transactions: %w", err)
		}
		profile.Transactions = txs
		return nil
	})
	g.Go(func() error {
		kyc, err := endpoints.Run(gctx, s.registry, endpoints.UserKyc, userId)
		if err != nil {
			if client.IsNotFound(err) {
				return nil
			}
			return fmt.Errorf("kyc: %w", err)
		}
		profile.Kyc = kyc
		return nil
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("Failed to load client profile",
			zap.Int64("user_id", userId),
			zap.Error(err))
		return nil, err
	}

	if profile.Transactions == nil {
		profile.Transactions = []models.NormalizedTransaction{}
	}
	return profile, nil
}

// SetClientBlocked blocks or unblocks a client
func (s *BackOffice) SetClientBlocked(ctx context.Context, userId int64, blocked bool) error {
	if err := requireId("user id", userId); err != nil {
		return err
	}
	if _, err := endpoints.Execute(ctx, s.registry, endpoints.SetUserBlocked, endpoints.BlockArgs{UserId: userId, Blocked: blocked}); err != nil {
		return err
	}
	zap.L().Info("Client block state changed",
		zap.Int64("user_id", userId),
		zap.Bool("blocked", blocked))
	return nil
}

// SetAccountStatus archives or reactivates a trading account
func (s *BackOffice) SetAccountStatus(ctx context.Context, args endpoints.AccountStatusArgs) error {
	if err := requireId("account id", args.AccountId); err != nil {
		return err
	}
	if args.Status != models.AccountActive && args.Status != models.AccountArchive {
		return fmt.Errorf("%w: unknown account status %q", ErrInvalidArgument, args.Status)
	}
	_, err := endpoints.Execute(ctx, s.registry, endpoints.SetAccountStatus, args)
	return err
}

// SetLeverage changes a trading account's leverage
func (s *BackOffice) SetLeverage(ctx context.Context, args endpoints.LeverageArgs) error {
	if err := requireId("account id", args.AccountId); err != nil {
		return err
	}
	if args.Leverage <= 0 {
		return fmt.Errorf("%w: leverage must be positive", ErrInvalidArgument)
	}
	_, err := endpoints.Execute(ctx, s.registry, endpoints.SetLeverage, args)
	return err
}

// ListKyc returns KYC submissions awaiting or past review
func (s *BackOffice) ListKyc(ctx context.Context, f endpoints.KycFilter) ([]models.KycDocumentSet, error) {
	return endpoints.Run(ctx, s.registry, endpoints.ListKyc, f)
}

// ReviewKycDocument approves or rejects a single KYC document
func (s *BackOffice) ReviewKycDocument(ctx context.Context, review endpoints.KycReview) error {
	if err := requireId("user id", review.UserId); err != nil {
		return err
	}
	if err := requireId("submission id", review.SubmissionId); err != nil {
		return err
	}
	if review.Document == "" {
		return fmt.Errorf("%w: document kind is required", ErrInvalidArgument)
	}
	if _, err := endpoints.Execute(ctx, s.registry, endpoints.ReviewKycDocument, review); err != nil {
		zap.L().Error("KYC review failed",
			zap.Int64("user_id", review.UserId),
			zap.String("document", string(review.Document)),
			zap.Error(err))
		return err
	}
	zap.L().Info("KYC document reviewed",
		zap.Int64("user_id", review.UserId),
		zap.String("document", string(review.Document)),
		zap.Bool("approved", review.Approve))
	return nil
}
