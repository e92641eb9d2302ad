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

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"broker-backoffice-go/internal/aggregate"
	"broker-backoffice-go/internal/api"
	"broker-backoffice-go/internal/common"
	"broker-backoffice-go/internal/config"
	"broker-backoffice-go/internal/models"

	"go.uber.org/zap"
)

type queueRequest struct {
	search  string
	history bool
	origin  models.Origin
	approve []int64
	reject  []int64
	reason  string
}

func parseIds(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseAndValidateFlags() (*queueRequest, error) {
	searchFlag := flag.String("search", "", "Filter by client name, email, id or reference (optional)")
	historyFlag := flag.Bool("history", false, "Show processed history instead of the pending queue")
	originFlag := flag.String("origin", string(models.OriginTransaction), "Record origin for --approve/--reject: transaction or commission")
	approveFlag := flag.String("approve", "", "Comma separated ids to approve")
	rejectFlag := flag.String("reject", "", "Comma separated ids to reject")
	reasonFlag := flag.String("reason", "", "Rejection reason")
	flag.Parse()

	approve, err := parseIds(*approveFlag)
	if err != nil {
		return nil, fmt.Errorf("--approve: %w", err)
	}
	reject, err := parseIds(*rejectFlag)
	if err != nil {
		return nil, fmt.Errorf("--reject: %w", err)
	}

	origin := models.Origin(strings.ToLower(*originFlag))
	if origin != models.OriginTransaction && origin != models.OriginCommission {
		return nil, fmt.Errorf("--origin must be %q or %q", models.OriginTransaction, models.OriginCommission)
	}

	return &queueRequest{
		search:  *searchFlag,
		history: *historyFlag,
		origin:  origin,
		approve: approve,
		reject:  reject,
		reason:  *reasonFlag,
	}, nil
}

// processDecisions applies approvals then rejections, continuing past
// individual failures.
func processDecisions(ctx context.Context, service *api.BackOffice, req *queueRequest) (approved, rejected, failed int) {
	for _, id := range req.approve {
		if err := service.ApproveTransaction(ctx, req.origin, id); err != nil {
			fmt.Printf("Failed to approve %s %d: %v\n", req.origin, id, err)
			failed++
			continue
		}
		fmt.Printf("Approved %s %d\n", req.origin, id)
		approved++
	}
	for _, id := range req.reject {
		if err := service.RejectTransaction(ctx, req.origin, id, req.reason); err != nil {
			fmt.Printf("Failed to reject %s %d: %v\n", req.origin, id, err)
			failed++
			continue
		}
		fmt.Printf("Rejected %s %d\n", req.origin, id)
		rejected++
	}
	return approved, rejected, failed
}

func printTransaction(tx models.NormalizedTransaction, isLast bool) {
	fmt.Printf("%s %-10s %6d  %-16s %-10s %16s  %-24s %s\n",
		common.BoxPrefix(isLast),
		tx.Origin,
		tx.Id,
		common.FormatTime(tx.CreatedAt),
		tx.Status,
		common.FormatAmount(tx.Amount),
		common.Truncate(tx.ClientName, 24),
		common.Truncate(tx.CounterpartyReference, 24))
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, loggerCleanup := common.InitializeLogger(cfg.Log)
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		logger.Fatal("Invalid flags", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	approved, rejected, failed := processDecisions(ctx, services.BackOffice, req)

	query := api.TransactionQuery{Filter: aggregate.Criteria{Search: req.search}}
	title := "PENDING WITHDRAWAL QUEUE"
	load := services.BackOffice.WithdrawalQueue
	if req.history {
		title = "TRANSACTION HISTORY"
		load = services.BackOffice.TransactionHistory
	}

	list, err := load(ctx, query)
	if err != nil {
		logger.Fatal("Failed to load transactions", zap.Error(err))
	}

	common.PrintHeader(title, common.WideWidth)
	for i, tx := range list {
		printTransaction(tx, i == len(list)-1)
	}
	common.PrintFooter(fmt.Sprintf("SUMMARY: %d records (%d approved, %d rejected, %d failed this run)",
		len(list), approved, rejected, failed), common.WideWidth)

	logger.Info("Withdrawal queue processed",
		zap.Int("records", len(list)),
		zap.Int("approved", approved),
		zap.Int("rejected", rejected),
		zap.Int("failed", failed))
}
