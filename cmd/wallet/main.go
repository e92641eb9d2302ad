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
	"time"

	"broker-backoffice-go/internal/api"
	"broker-backoffice-go/internal/common"
	"broker-backoffice-go/internal/config"
	"broker-backoffice-go/internal/endpoints"
	"broker-backoffice-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type walletRequest struct {
	from      *time.Time
	to        *time.Time
	ledger    int
	replenish decimal.Decimal
	withdraw  decimal.Decimal
	note      string
}

func parseDate(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s, expected YYYY-MM-DD: %w", name, err)
	}
	return &t, nil
}

func parseAmount(name, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s amount: %w", name, err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("--%s must be greater than zero", name)
	}
	return amount, nil
}

func parseAndValidateFlags() (*walletRequest, error) {
	fromFlag := flag.String("from", "", "Summary start date, YYYY-MM-DD (optional)")
	toFlag := flag.String("to", "", "Summary end date, YYYY-MM-DD (optional)")
	ledgerFlag := flag.Int("ledger", 10, "Number of recent ledger entries to show (0 to skip)")
	replenishFlag := flag.String("replenish", "", "Amount to add to the main wallet (optional)")
	withdrawFlag := flag.String("withdraw", "", "Amount to withdraw from the main wallet (optional)")
	noteFlag := flag.String("note", "", "Note attached to a replenish or withdraw operation")
	flag.Parse()

	req := &walletRequest{ledger: *ledgerFlag, note: *noteFlag}

	var err error
	if req.from, err = parseDate("from", *fromFlag); err != nil {
		return nil, err
	}
	if req.to, err = parseDate("to", *toFlag); err != nil {
		return nil, err
	}
	if req.replenish, err = parseAmount("replenish", *replenishFlag); err != nil {
		return nil, err
	}
	if req.withdraw, err = parseAmount("withdraw", *withdrawFlag); err != nil {
		return nil, err
	}
	if req.replenish.IsPositive() && req.withdraw.IsPositive() {
		return nil, fmt.Errorf("--replenish and --withdraw are mutually exclusive")
	}
	return req, nil
}

func printBalances(b models.WalletBalances) {
	fmt.Printf("\n┌─ Wallet balances\n")
	rows := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Main", b.Main},
		{"Commission", b.Commission},
		{"Reserve", b.Reserve},
		{"Total", b.Total},
	}
	for i, row := range rows {
		fmt.Printf("%s %-20s: %20s\n", common.BoxPrefix(i == len(rows)-1), row.label, common.FormatAmount(row.amount))
	}
}

func printSummary(s models.AccountingSummary) {
	fmt.Printf("\n┌─ Accounting summary\n")
	rows := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Deposits", s.TotalDeposits},
		{"Withdrawals", s.TotalWithdrawals},
		{"Commissions", s.TotalCommissions},
		{"Pending deposits", s.PendingDeposits},
		{"Pending withdrawals", s.PendingWithdrawals},
		{"Net flow", s.NetFlow},
	}
	for i, row := range rows {
		fmt.Printf("%s %-20s: %20s\n", common.BoxPrefix(i == len(rows)-1), row.label, common.FormatAmount(row.amount))
	}
}

func printLedger(entries []models.LedgerEntry) {
	fmt.Printf("\n┌─ Recent ledger entries (%d)\n", len(entries))
	common.PrintBoxSeparator(78)
	for i, e := range entries {
		fmt.Printf("%s %s  %-10s %16s  bal %16s  %s\n",
			common.BoxPrefix(i == len(entries)-1),
			common.FormatTime(e.CreatedAt),
			e.Kind,
			common.FormatAmount(e.Amount),
			common.FormatAmount(e.BalanceAfter),
			common.Truncate(e.Note, 20))
	}
}

func runOperation(ctx context.Context, service *api.BackOffice, req *walletRequest) error {
	var (
		balances models.WalletBalances
		err      error
		kind     string
	)
	switch {
	case req.replenish.IsPositive():
		kind = "replenish"
		balances, err = service.ReplenishWallet(ctx, req.replenish, req.note)
	case req.withdraw.IsPositive():
		kind = "withdraw"
		balances, err = service.WithdrawWallet(ctx, req.withdraw, req.note)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("wallet %s failed: %w", kind, err)
	}

	fmt.Printf("Wallet %s completed, main balance is now %s\n", kind, common.FormatAmount(balances.Main))
	return nil
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

	if err := runOperation(ctx, services.BackOffice, req); err != nil {
		logger.Fatal("Wallet operation failed", zap.Error(err))
	}

	overview, err := services.BackOffice.Wallet(ctx, endpoints.SummaryRange{From: req.from, To: req.to})
	if err != nil {
		logger.Fatal("Failed to load wallet", zap.Error(err))
	}

	common.PrintHeader("ADMIN WALLET REPORT", common.DefaultWidth)
	printBalances(overview.Balances)
	printSummary(overview.Summary)

	ledgerCount := 0
	if req.ledger > 0 {
		entries, err := services.BackOffice.WalletLedger(ctx, endpoints.Page{Page: 1, Limit: req.ledger})
		if err != nil {
			logger.Error("Failed to load ledger", zap.Error(err))
		} else {
			ledgerCount = len(entries)
			printLedger(entries)
		}
	}

	common.PrintFooter(fmt.Sprintf("TOTAL: %s across all wallets", common.FormatAmount(overview.Balances.Total)), common.DefaultWidth)

	logger.Info("Wallet report completed",
		zap.String("total", overview.Balances.Total.String()),
		zap.Int("ledger_entries", ledgerCount))
}
