package models

// Wire shapes returned by the back-office REST backend. Numeric and timestamp
// fields are typed as any because the backend sends numbers, numeric strings
// with thousands separators, or null for the same field; the normalize
// package coerces them.

// UserRefDTO is the embedded user object attached to many resources
type UserRefDTO struct {
	Id        any    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// UserDTO represents a client record
type UserDTO struct {
	Id        any    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Country   string `json:"country"`
	KycStatus string `json:"kycStatus"`
	Balance   any    `json:"balance"`
	IsBlocked any    `json:"isBlocked"`
	CreatedAt any    `json:"createdAt"`
}

// TransactionDTO represents an ordinary deposit or withdrawal
type TransactionDTO struct {
	Id              any         `json:"id"`
	Type            string      `json:"type"`
	Status          string      `json:"status"`
	Amount          any         `json:"amount"`
	UserId          any         `json:"userId"`
	User            *UserRefDTO `json:"user"`
	ClientName      string      `json:"clientName"`
	Email           string      `json:"email"`
	PaymentMethod   string      `json:"paymentMethod"`
	Method          string      `json:"method"`
	WalletAddress   string      `json:"walletAddress"`
	Reference       string      `json:"reference"`
	CreatedAt       any         `json:"createdAt"`
	ProcessedAt     any         `json:"processedAt"`
	UpdatedAt       any         `json:"updatedAt"`
	RejectionReason string      `json:"rejectionReason"`
}

// CommissionWithdrawalDTO represents a withdrawal request against a
// referral-commission balance
type CommissionWithdrawalDTO struct {
	Id            any         `json:"id"`
	UserId        any         `json:"userId"`
	User          *UserRefDTO `json:"user"`
	Amount        any         `json:"amount"`
	Status        string      `json:"status"`
	Method        string      `json:"method"`
	WalletAddress string      `json:"walletAddress"`
	CreatedAt     any         `json:"createdAt"`
	ProcessedAt   any         `json:"processedAt"`
	RejectReason  string      `json:"rejectReason"`
}

// KycDocumentDTO is a single reviewable artifact inside a KYC submission
type KycDocumentDTO struct {
	Type            string `json:"type"`
	Url             string `json:"url"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
	ApprovedBy      string `json:"approvedBy"`
	ApprovedAt      any    `json:"approvedAt"`
}

// KycSubmissionDTO is a user's KYC submission
type KycSubmissionDTO struct {
	Id          any              `json:"id"`
	UserId      any              `json:"userId"`
	User        *UserRefDTO      `json:"user"`
	Documents   []KycDocumentDTO `json:"documents"`
	SubmittedAt any              `json:"submittedAt"`
	CreatedAt   any              `json:"createdAt"`
}

// TradingAccountDTO represents a real or demo trading account
type TradingAccountDTO struct {
	Id             any    `json:"id"`
	UserId         any    `json:"userId"`
	AccountNumber  any    `json:"accountNumber"`
	Type           string `json:"type"`
	IsDemo         any    `json:"isDemo"`
	Leverage       any    `json:"leverage"`
	FundsAvailable any    `json:"fundsAvailable"`
	Balance        any    `json:"balance"`
	AccountStatus  string `json:"accountStatus"`
	AccountType    string `json:"accountType"`
	Currency       string `json:"currency"`
	CreatedAt      any    `json:"createdAt"`
}

// WalletBalancesDTO is the admin wallet snapshot
type WalletBalancesDTO struct {
	MainBalance       any `json:"mainBalance"`
	CommissionBalance any `json:"commissionBalance"`
	ReserveBalance    any `json:"reserveBalance"`
	TotalBalance      any `json:"totalBalance"`
	UpdatedAt         any `json:"updatedAt"`
}

// AccountingSummaryDTO holds ledger totals
type AccountingSummaryDTO struct {
	TotalDeposits      any `json:"totalDeposits"`
	TotalWithdrawals   any `json:"totalWithdrawals"`
	TotalCommissions   any `json:"totalCommissions"`
	PendingDeposits    any `json:"pendingDeposits"`
	PendingWithdrawals any `json:"pendingWithdrawals"`
	NetFlow            any `json:"netFlow"`
}

// LedgerEntryDTO is a single admin wallet ledger movement
type LedgerEntryDTO struct {
	Id           any    `json:"id"`
	Type         string `json:"type"`
	Amount       any    `json:"amount"`
	BalanceAfter any    `json:"balanceAfter"`
	Note         string `json:"note"`
	Description  string `json:"description"`
	CreatedAt    any    `json:"createdAt"`
}

// SymbolSpreadDTO is a per-symbol markup inside a spread profile
type SymbolSpreadDTO struct {
	Symbol string `json:"symbol"`
	Markup any    `json:"markup"`
}

// SpreadProfileDTO represents a spread profile
type SpreadProfileDTO struct {
	Id          any               `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	IsDefault   any               `json:"isDefault"`
	Spreads     []SymbolSpreadDTO `json:"spreads"`
}

// AccountTypeDTO represents a configurable trading account type
type AccountTypeDTO struct {
	Id              any    `json:"id"`
	Name            string `json:"name"`
	MinDeposit      any    `json:"minDeposit"`
	MaxLeverage     any    `json:"maxLeverage"`
	Commission      any    `json:"commission"`
	SpreadProfileId any    `json:"spreadProfileId"`
	IsActive        any    `json:"isActive"`
}

// NotificationDTO represents a broadcast or targeted notification
type NotificationDTO struct {
	Id            any    `json:"id"`
	Title         string `json:"title"`
	Message       string `json:"message"`
	Target        string `json:"target"`
	UserIds       []any  `json:"userIds"`
	AttachmentUrl string `json:"attachmentUrl"`
	CreatedAt     any    `json:"createdAt"`
}

// TicketMessageDTO is a single message in a support ticket thread
type TicketMessageDTO struct {
	Id        any    `json:"id"`
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	IsAdmin   any    `json:"isAdmin"`
	CreatedAt any    `json:"createdAt"`
}

// SupportTicketDTO represents a support ticket
type SupportTicketDTO struct {
	Id        any                `json:"id"`
	UserId    any                `json:"userId"`
	User      *UserRefDTO        `json:"user"`
	Subject   string             `json:"subject"`
	Status    string             `json:"status"`
	Priority  string             `json:"priority"`
	Messages  []TicketMessageDTO `json:"messages"`
	CreatedAt any                `json:"createdAt"`
	UpdatedAt any                `json:"updatedAt"`
}

// ClientMessageDTO is a custom message sent by an admin to a client
type ClientMessageDTO struct {
	Id        any    `json:"id"`
	UserId    any    `json:"userId"`
	Message   string `json:"message"`
	SentBy    string `json:"sentBy"`
	CreatedAt any    `json:"createdAt"`
}
