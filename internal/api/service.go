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
	"errors"
	"fmt"

	"broker-backoffice-go/internal/aggregate"
	"broker-backoffice-go/internal/endpoints"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrEmptyMessage    = errors.New("message is empty")
)

// BackOffice is the typed entry point used by the UI layer
type BackOffice struct {
	registry *endpoints.Registry
	policy   aggregate.Policy
}

func NewBackOffice(registry *endpoints.Registry, policy aggregate.Policy) *BackOffice {
	return &BackOffice{
		registry: registry,
		policy:   policy,
	}
}

// Registry exposes the endpoint registry for callers that watch queries directly
func (s *BackOffice) Registry() *endpoints.Registry {
	return s.registry
}

func (s *BackOffice) HealthCheck(ctx context.Context) error {
	_, err := endpoints.Run(ctx, s.registry, endpoints.WalletBalances, endpoints.None{})
	if err != nil {
		return fmt.Errorf("backend health check failed: %w", err)
	}
	return nil
}

func requireId(name string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s is required", ErrInvalidArgument, name)
	}
	return nil
}
