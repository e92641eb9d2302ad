package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"broker-backoffice-go/internal/aggregate"
	"broker-backoffice-go/internal/cache"
	"broker-backoffice-go/internal/client"
	"broker-backoffice-go/internal/endpoints"
	"broker-backoffice-go/internal/models"

	"github.com/shopspring/decimal"
)

type fakeBackend struct {
	mu           sync.Mutex
	hits         map[string]int
	messages     []map[string]any
	sendStatus   int
	walletTotal  string
	lastReview   map[string]any
	lastApproved string
}

func (f *fakeBackend) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := r.Method + " " + r.URL.Path
	f.hits[key]++

	switch key {
	case "GET /admin/transactions":
		fmt.Fprint(w, `{"transactions":[
			{"id":41,"type":"DEPOSIT","status":"PAID","amount":"10","createdAt":"2025-05-03T10:00:00Z"},
			{"id":42,"type":"WITHDRAWAL","status":"PENDING","amount":"1,000","createdAt":"2025-05-02T10:00:00Z"},
			{"id":43,"type":"DEPOSIT","status":"PENDING","amount":"5","createdAt":"2025-05-01T10:00:00Z"}
		]}`)
	case "GET /admin/commission-withdrawals":
		fmt.Fprint(w, `{"data":{"withdrawalRequests":[
			{"id":1,"status":"PENDING","amount":"20","createdAt":"2025-05-05T10:00:00Z"},
			{"id":3,"status":"PAID","amount":"30","createdAt":"2025-05-04T10:00:00Z"}
		]}}`)
	case "PATCH /admin/commission-withdrawals/1":
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.lastApproved, _ = body["status"].(string)
	case "GET /admin/users/7":
		fmt.Fprint(w, `{"user":{"id":7,"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}}`)
	case "GET /admin/users/7/trading-accounts":
		fmt.Fprint(w, `{"accounts":[{"id":70,"accountNumber":"7001","type":"REAL","leverage":"1:100"},{"id":71,"accountNumber":"7002","isDemo":true}]}`)
	case "GET /admin/users/7/transactions":
		fmt.Fprint(w, `[{"id":41,"type":"DEPOSIT","status":"PAID","amount":"10"}]`)
	case "GET /admin/kyc/user/7":
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"No KYC submission"}`)
	case "PATCH /admin/kyc/9/documents/SELFIE":
		json.NewDecoder(r.Body).Decode(&f.lastReview)
	case "GET /admin/wallet/balances":
		fmt.Fprintf(w, `{"mainBalance":%q,"commissionBalance":"0","reserveBalance":"0"}`, f.walletTotal)
	case "GET /admin/accounting/summary":
		fmt.Fprint(w, `{"summary":{"totalDeposits":"10,000","totalWithdrawals":"2,500"}}`)
	case "POST /admin/wallet/replenish":
		f.walletTotal = "1,500"
		fmt.Fprint(w, `{}`)
	case "GET /admin/users/7/messages":
		json.NewEncoder(w).Encode(map[string]any{"data": f.messages})
	case "POST /admin/users/7/messages":
		if f.sendStatus >= 300 {
			w.WriteHeader(f.sendStatus)
			fmt.Fprint(w, `{"message":"Client is blocked"}`)
			return
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.messages = append(f.messages, map[string]any{"id": len(f.messages) + 1, "message": body["message"], "sentBy": "admin"})
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestBackOffice(t *testing.T) (*BackOffice, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{hits: map[string]int{}, sendStatus: http.StatusCreated, walletTotal: "1,000"}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	c, err := client.NewWithHTTPClient(models.BackendConfig{BaseURL: srv.URL}, srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	qc := cache.New(models.CacheConfig{KeepUnusedFor: time.Minute, CleanupInterval: time.Minute})
	return NewBackOffice(endpoints.NewRegistry(c, qc), aggregate.PreferMostRecent), backend
}

func ids(list []models.NormalizedTransaction) []string {
	out := make([]string, len(list))
	for i, tx := range list {
		out[i] = fmt.Sprintf("%s:%d", tx.Origin, tx.Id)
	}
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTransactionViews(t *testing.T) {
	s, _ := newTestBackOffice(t)
	ctx := context.Background()

	tests := []struct {
		name string
		load func() ([]models.NormalizedTransaction, error)
		want []string
	}{
		{
			name: "history",
			load: func() ([]models.NormalizedTransaction, error) { return s.TransactionHistory(ctx, TransactionQuery{}) },
			want: []string{"commission:3", "transaction:41"},
		},
		{
			name: "withdrawal queue",
			load: func() ([]models.NormalizedTransaction, error) { return s.WithdrawalQueue(ctx, TransactionQuery{}) },
			want: []string{"commission:1", "transaction:42"},
		},
		{
			name: "deposit queue",
			load: func() ([]models.NormalizedTransaction, error) { return s.DepositQueue(ctx, TransactionQuery{}) },
			want: []string{"transaction:43"},
		},
		{
			name: "filtered queue",
			load: func() ([]models.NormalizedTransaction, error) {
				return s.WithdrawalQueue(ctx, TransactionQuery{Filter: aggregate.Criteria{Search: "commission:"}})
			},
			want: []string{"commission:1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := tt.load()
			if err != nil {
				t.Fatal(err)
			}
			got := ids(list)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApproveCommissionRefreshesQueue(t *testing.T) {
	s, backend := newTestBackOffice(t)
	ctx := context.Background()

	if _, err := s.WithdrawalQueue(ctx, TransactionQuery{}); err != nil {
		t.Fatal(err)
	}
	if err := s.ApproveTransaction(ctx, models.OriginCommission, 1); err != nil {
		t.Fatal(err)
	}

	backend.mu.Lock()
	status := backend.lastApproved
	backend.mu.Unlock()
	if status != "PAID" {
		t.Errorf("commission approval sent status %q, want PAID", status)
	}

	if _, err := s.WithdrawalQueue(ctx, TransactionQuery{}); err != nil {
		t.Fatal(err)
	}
	if n := backend.count("GET /admin/commission-withdrawals"); n != 2 {
		t.Errorf("commission list requests = %d, want 2", n)
	}
	if n := backend.count("GET /admin/transactions"); n != 1 {
		t.Errorf("transaction list requests = %d, want 1 (unrelated tags)", n)
	}
}

func TestApproveRejectsBadInput(t *testing.T) {
	s, backend := newTestBackOffice(t)
	ctx := context.Background()

	if err := s.ApproveTransaction(ctx, models.OriginTransaction, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero id: got %v, want ErrInvalidArgument", err)
	}
	if err := s.RejectTransaction(ctx, "ledger", 5, "no"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unknown origin: got %v, want ErrInvalidArgument", err)
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.hits) != 0 {
		t.Errorf("invalid input reached the backend: %v", backend.hits)
	}
}

func TestClientProfile(t *testing.T) {
	s, _ := newTestBackOffice(t)

	profile, err := s.ClientProfile(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if profile.Client.Name != "Ada Lovelace" {
		t.Errorf("client name = %q", profile.Client.Name)
	}
	if len(profile.Accounts.Real) != 1 || len(profile.Accounts.Demo) != 1 {
		t.Fatalf("accounts = %+v, want one real and one demo", profile.Accounts)
	}
	if profile.Accounts.Real[0].Leverage != 100 {
		t.Errorf("leverage = %d, want 100", profile.Accounts.Real[0].Leverage)
	}
	if len(profile.Transactions) != 1 {
		t.Errorf("transactions = %d, want 1", len(profile.Transactions))
	}
	if profile.Kyc != nil {
		t.Errorf("kyc = %+v, want nil for a client without a submission", profile.Kyc)
	}
}

func TestReviewKycDocument(t *testing.T) {
	s, backend := newTestBackOffice(t)

	err := s.ReviewKycDocument(context.Background(), endpoints.KycReview{
		UserId: 7, SubmissionId: 9, Document: models.DocumentKind("selfie"), Reason: " blurry ",
	})
	if err != nil {
		t.Fatal(err)
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.lastReview["status"] != "REJECTED" || backend.lastReview["rejectionReason"] != "blurry" {
		t.Errorf("review body = %v", backend.lastReview)
	}
}

func TestReplenishWalletRefetchesBalances(t *testing.T) {
	s, backend := newTestBackOffice(t)
	ctx := context.Background()

	overview, err := s.Wallet(ctx, endpoints.SummaryRange{})
	if err != nil {
		t.Fatal(err)
	}
	if !overview.Balances.Main.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("main balance = %s, want 1000", overview.Balances.Main)
	}
	if !overview.Summary.TotalDeposits.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("total deposits = %s, want 10000", overview.Summary.TotalDeposits)
	}

	balances, err := s.ReplenishWallet(ctx, decimal.NewFromInt(500), "top up")
	if err != nil {
		t.Fatal(err)
	}
	if !balances.Main.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("main balance after replenish = %s, want 1500", balances.Main)
	}
	if n := backend.count("GET /admin/wallet/balances"); n != 2 {
		t.Errorf("balance requests = %d, want 2", n)
	}
}

func TestWalletOperationRejectsNonPositiveAmount(t *testing.T) {
	s, backend := newTestBackOffice(t)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		if _, err := s.WithdrawWallet(context.Background(), amount, ""); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %s: got %v, want ErrInvalidAmount", amount, err)
		}
	}
	if n := backend.count("POST /admin/wallet/withdraw"); n != 0 {
		t.Errorf("withdraw requests = %d, want 0", n)
	}
}

func TestMessengerRollsBackRejectedSend(t *testing.T) {
	s, backend := newTestBackOffice(t)
	backend.mu.Lock()
	backend.sendStatus = http.StatusForbidden
	backend.mu.Unlock()

	var mu sync.Mutex
	var sawPlaceholder bool
	m, err := s.Messenger(7, "admin", func(list []models.ClientMessage) {
		mu.Lock()
		defer mu.Unlock()
		for _, msg := range list {
			if msg.Local && msg.Body == "A" {
				sawPlaceholder = true
			}
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()
	waitFor(t, "initial thread", m.Ready)

	err = m.Send(context.Background(), "A")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Client is blocked" {
		t.Fatalf("Send() error = %v, want backend rejection", err)
	}

	mu.Lock()
	if !sawPlaceholder {
		t.Error("placeholder was never shown")
	}
	mu.Unlock()

	if got := m.Messages(); len(got) != 0 {
		t.Errorf("Messages() = %+v, want empty after rejection", got)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", m.Pending())
	}
}

func TestMessengerReconcilesAfterSend(t *testing.T) {
	s, _ := newTestBackOffice(t)

	m, err := s.Messenger(7, "admin", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()
	waitFor(t, "initial thread", m.Ready)

	if err := m.Send(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "server copy to replace the placeholder", func() bool {
		got := m.Messages()
		return len(got) == 1 && !got[0].Local && got[0].Body == "hello"
	})
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", m.Pending())
	}
}

func TestMessengerRejectsEmptyBody(t *testing.T) {
	s, _ := newTestBackOffice(t)
	m, err := s.Messenger(7, "admin", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	if err := m.Send(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("got %v, want ErrEmptyMessage", err)
	}
	if _, err := s.Messenger(0, "admin", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero user id: got %v, want ErrInvalidArgument", err)
	}
}

func TestWatchTransactionsRefreshesAfterApproval(t *testing.T) {
	s, backend := newTestBackOffice(t)

	views := make(chan FeedView, 16)
	feed := s.WatchTransactions(TransactionQuery{}, func(v FeedView) {
		select {
		case views <- v:
		default:
		}
	})
	defer feed.Close()

	waitFor(t, "both sources", func() bool { return feed.View().Complete })
	if got := ids(feed.View().Queue); fmt.Sprint(got) != "[commission:1 transaction:42]" {
		t.Errorf("queue = %v", got)
	}

	if err := s.ApproveTransaction(context.Background(), models.OriginCommission, 1); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "commission refetch", func() bool {
		return backend.count("GET /admin/commission-withdrawals") == 2
	})
}
