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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the canonical direction of a money movement
type TransactionType string

const (
	TypeDeposit    TransactionType = "Deposit"
	TypeWithdrawal TransactionType = "Withdrawal"
)

// TransactionStatus is the canonical three-state status
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "Completed"
	StatusPending   TransactionStatus = "Pending"
	StatusRejected  TransactionStatus = "Rejected"
)

// Origin records which backend resource a NormalizedTransaction came from
type Origin string

const (
	OriginTransaction Origin = "transaction"
	OriginCommission  Origin = "commission"
)

// CommissionMarker prefixes AccountIdentifier for commission withdrawals
const CommissionMarker = "COMMISSION:"

// NormalizedTransaction is the unified view of deposits, withdrawals and
// commission withdrawal requests
type NormalizedTransaction struct {
	Id                    int64             `json:"id"`
	Type                  TransactionType   `json:"type"`
	Status                TransactionStatus `json:"status"`
	RawStatus             string            `json:"raw_status"`
	Amount                decimal.Decimal   `json:"amount"` // negative for withdrawals
	UserId                int64             `json:"user_id,omitempty"`
	ClientName            string            `json:"client_name"`
	Email                 string            `json:"email"`
	PaymentMethod         string            `json:"payment_method"`
	CounterpartyReference string            `json:"counterparty_reference"`
	AccountIdentifier     string            `json:"account_identifier"`
	Origin                Origin            `json:"origin"`
	CreatedAt             time.Time         `json:"created_at"`
	ProcessedAt           *time.Time        `json:"processed_at,omitempty"`
	RejectionReason       *string           `json:"rejection_reason,omitempty"`
}

// EffectiveTime prefers the processed timestamp over the creation timestamp
func (t NormalizedTransaction) EffectiveTime() time.Time {
	if t.ProcessedAt != nil && !t.ProcessedAt.IsZero() {
		return *t.ProcessedAt
	}
	return t.CreatedAt
}

// IsCommission reports whether the record was sourced from a commission request
func (t NormalizedTransaction) IsCommission() bool {
	return t.Origin == OriginCommission
}

// DocumentStatus is the review state of a single KYC artifact
type DocumentStatus string

const (
	DocumentApproved DocumentStatus = "approved"
	DocumentPending  DocumentStatus = "pending"
	DocumentRejected DocumentStatus = "rejected"
)

// DocumentKind names a KYC artifact slot
type DocumentKind string

const (
	DocPassportFront DocumentKind = "passport_front"
	DocPassportBack  DocumentKind = "passport_back"
	DocSelfie        DocumentKind = "selfie"
	DocUtilityBill   DocumentKind = "utility_bill"
)

// KycDocument is one reviewable artifact
type KycDocument struct {
	Kind            DocumentKind   `json:"kind"`
	Url             string         `json:"url"`
	Status          DocumentStatus `json:"status"`
	RejectionReason *string        `json:"rejection_reason,omitempty"`
	ApprovedBy      *string        `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
}

// KycDocumentSet holds up to four independently reviewed artifacts
type KycDocumentSet struct {
	UserId        int64        `json:"user_id"`
	SubmissionId  int64        `json:"submission_id"`
	ClientName    string       `json:"client_name"`
	Email         string       `json:"email"`
	PassportFront *KycDocument `json:"passport_front,omitempty"`
	PassportBack  *KycDocument `json:"passport_back,omitempty"`
	Selfie        *KycDocument `json:"selfie,omitempty"`
	UtilityBill   *KycDocument `json:"utility_bill,omitempty"`
	SubmittedAt   time.Time    `json:"submitted_at"`
}

// Documents returns the present artifacts in fixed slot order
func (s KycDocumentSet) Documents() []KycDocument {
	var docs []KycDocument
	for _, d := range []*KycDocument{s.PassportFront, s.PassportBack, s.Selfie, s.UtilityBill} {
		if d != nil {
			docs = append(docs, *d)
		}
	}
	return docs
}

// AccountKind distinguishes real from demo accounts
type AccountKind string

const (
	AccountReal AccountKind = "REAL"
	AccountDemo AccountKind = "DEMO"
)

// AccountStatus is the admin-controlled lifecycle of a trading account
type AccountStatus string

const (
	AccountActive  AccountStatus = "ACTIVE"
	AccountArchive AccountStatus = "ARCHIVE"
)

// TradingAccount is a single trading account
type TradingAccount struct {
	Id             int64           `json:"id"`
	UserId         int64           `json:"user_id"`
	Number         string          `json:"number"`
	Kind           AccountKind     `json:"kind"`
	Leverage       int             `json:"leverage"`
	FundsAvailable decimal.Decimal `json:"funds_available"`
	AccountStatus  AccountStatus   `json:"account_status"`
	AccountType    string          `json:"account_type"`
	Currency       string          `json:"currency"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TradingAccountSummary groups one user's accounts
type TradingAccountSummary struct {
	UserId int64            `json:"user_id"`
	Real   []TradingAccount `json:"real"`
	Demo   []TradingAccount `json:"demo"`
}

// WalletBalances is the admin wallet snapshot
type WalletBalances struct {
	Main       decimal.Decimal `json:"main"`
	Commission decimal.Decimal `json:"commission"`
	Reserve    decimal.Decimal `json:"reserve"`
	Total      decimal.Decimal `json:"total"`
	UpdatedAt  *time.Time      `json:"updated_at,omitempty"`
}

// AccountingSummary holds ledger totals
type AccountingSummary struct {
	TotalDeposits      decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals   decimal.Decimal `json:"total_withdrawals"`
	TotalCommissions   decimal.Decimal `json:"total_commissions"`
	PendingDeposits    decimal.Decimal `json:"pending_deposits"`
	PendingWithdrawals decimal.Decimal `json:"pending_withdrawals"`
	NetFlow            decimal.Decimal `json:"net_flow"`
}

// LedgerEntry is a single admin wallet movement
type LedgerEntry struct {
	Id           int64           `json:"id"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Note         string          `json:"note"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ClientSummary is the list/detail view of a client
type ClientSummary struct {
	Id        int64           `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Country   string          `json:"country"`
	KycStatus string          `json:"kyc_status"`
	Balance   decimal.Decimal `json:"balance"`
	Blocked   bool            `json:"blocked"`
	CreatedAt time.Time       `json:"created_at"`
}

// ClientProfile aggregates everything shown on a client screen
type ClientProfile struct {
	Client       ClientSummary           `json:"client"`
	Accounts     TradingAccountSummary   `json:"accounts"`
	Transactions []NormalizedTransaction `json:"transactions"`
	Kyc          *KycDocumentSet         `json:"kyc,omitempty"`
}

// SymbolSpread is a per-symbol markup
type SymbolSpread struct {
	Symbol string          `json:"symbol"`
	Markup decimal.Decimal `json:"markup"`
}

// SpreadProfile groups symbol markups assigned to account types
type SpreadProfile struct {
	Id          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	IsDefault   bool           `json:"is_default"`
	Spreads     []SymbolSpread `json:"spreads"`
}

// AccountType is a configurable trading account product
type AccountType struct {
	Id              int64           `json:"id"`
	Name            string          `json:"name"`
	MinDeposit      decimal.Decimal `json:"min_deposit"`
	MaxLeverage     int             `json:"max_leverage"`
	Commission      decimal.Decimal `json:"commission"`
	SpreadProfileId int64           `json:"spread_profile_id,omitempty"`
	Active          bool            `json:"active"`
}

// Notification is a broadcast or targeted message
type Notification struct {
	Id            int64     `json:"id"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Audience      string    `json:"audience"`
	UserIds       []int64   `json:"user_ids,omitempty"`
	AttachmentUrl string    `json:"attachment_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TicketStatus is the lifecycle of a support ticket
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketClosed     TicketStatus = "closed"
)

// TicketMessage is one message in a ticket thread
type TicketMessage struct {
	Id        int64     `json:"id"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	FromAdmin bool      `json:"from_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// SupportTicket is a client support request
type SupportTicket struct {
	Id         int64           `json:"id"`
	UserId     int64           `json:"user_id"`
	ClientName string          `json:"client_name"`
	Subject    string          `json:"subject"`
	Status     TicketStatus    `json:"status"`
	Priority   string          `json:"priority"`
	Messages   []TicketMessage `json:"messages,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ClientMessage is a custom message sent by an admin to a client.
// Local marks an optimistic placeholder not yet confirmed by the backend.
type ClientMessage struct {
	Id        int64     `json:"id"`
	LocalKey  string    `json:"local_key,omitempty"`
	UserId    int64     `json:"user_id"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Local     bool      `json:"local"`
}
