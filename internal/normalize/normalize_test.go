package normalize

import (
	"reflect"
	"testing"
	"time"

	"broker-backoffice-go/internal/models"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestTransactionStatusTotality(t *testing.T) {
	tests := []struct {
		raw  string
		want models.TransactionStatus
	}{
		{"PENDING", models.StatusPending},
		{"pending", models.StatusPending},
		{"APPROVED", models.StatusCompleted},
		{"approved", models.StatusCompleted},
		{"PAID", models.StatusCompleted},
		{"REJECTED", models.StatusRejected},
		{"", models.StatusPending},
		{"ON_HOLD", models.StatusPending},
		{"???", models.StatusPending},
	}
	valid := map[models.TransactionStatus]bool{
		models.StatusCompleted: true,
		models.StatusPending:   true,
		models.StatusRejected:  true,
	}
	for _, tt := range tests {
		got := TransactionStatus(tt.raw)
		if got != tt.want {
			t.Errorf("TransactionStatus(%q) = %q, want %q", tt.raw, got, tt.want)
		}
		if !valid[got] {
			t.Errorf("TransactionStatus(%q) returned non-canonical %q", tt.raw, got)
		}
	}
}

func TestDecodeListShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":1},{"id":2}]`, 2},
		{"data envelope", `{"data":[{"id":1}]}`, 1},
		{"resource envelope", `{"transactions":[{"id":1},{"id":2},{"id":3}],"total":3}`, 3},
		{"nested", `{"data":{"transactions":[{"id":1}]}}`, 1},
		{"empty data", `{"data":[]}`, 0},
		{"null data", `{"data":null}`, 0},
		{"scalar", `42`, 0},
		{"garbage", `{not json`, 0},
		{"empty", ``, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeList([]byte(tt.body), "transactions")
			if len(got) != tt.want {
				t.Errorf("DecodeList(%s) returned %d items, want %d", tt.body, len(got), tt.want)
			}
		})
	}
}

func TestTransactionMapping(t *testing.T) {
	body := []byte(`{"transactions":[
		{"id":7,"type":"WITHDRAWAL","status":"approved","amount":"1,250.00",
		 "user":{"id":3,"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"},
		 "paymentMethod":"USDT","walletAddress":"TX9","createdAt":"2025-05-01T10:00:00Z",
		 "processedAt":"2025-05-02T10:00:00Z"},
		{"id":"8","type":"DEPOSIT","status":"PENDING","amount":100,"userId":4},
		{"id":9,"type":"DEPOSIT","status":"REJECTED","amount":null,"rejectionReason":"  bad card "}
	]}`)

	txs := Transactions(body, testNow)
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}

	w := txs[0]
	if w.Type != models.TypeWithdrawal || w.Status != models.StatusCompleted {
		t.Errorf("unexpected type/status: %s/%s", w.Type, w.Status)
	}
	if !w.Amount.Equal(decimal.RequireFromString("-1250")) {
		t.Errorf("withdrawal amount should be negative, got %s", w.Amount)
	}
	if w.ClientName != "Ada Lovelace" || w.Email != "ada@example.com" || w.UserId != 3 {
		t.Errorf("unexpected identity: %+v", w)
	}
	if w.ProcessedAt == nil || w.EffectiveTime().Day() != 2 {
		t.Errorf("effective time should prefer processedAt, got %v", w.EffectiveTime())
	}
	if w.Origin != models.OriginTransaction || w.IsCommission() {
		t.Errorf("ordinary transaction flagged as commission")
	}

	d := txs[1]
	if d.Id != 8 || d.ClientName != "User 4" {
		t.Errorf("expected synthesized name for user 4, got %q (id %d)", d.ClientName, d.Id)
	}
	if !d.CreatedAt.Equal(testNow) {
		t.Errorf("missing createdAt should fall back to now, got %v", d.CreatedAt)
	}

	r := txs[2]
	if r.ClientName != "User 9" {
		t.Errorf("expected name synthesized from id, got %q", r.ClientName)
	}
	if !r.Amount.IsZero() {
		t.Errorf("null amount should be 0, got %s", r.Amount)
	}
	if r.RejectionReason == nil || *r.RejectionReason != "bad card" {
		t.Errorf("rejection reason not preserved: %v", r.RejectionReason)
	}
}

func TestTransactionMappingIsPure(t *testing.T) {
	body := []byte(`[{"id":1,"type":"DEPOSIT","status":"PAID","amount":"5"}]`)
	first := Transactions(body, testNow)
	second := Transactions(body, testNow)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("mapping the same input twice produced different output")
	}
}

func TestCommissionWithdrawalKeepsProvenance(t *testing.T) {
	body := []byte(`{"data":[{"id":12,"userId":5,"amount":"2,000","status":"PAID","walletAddress":"0xabc"}]}`)
	entries := CommissionWithdrawals(body, testNow)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.AccountIdentifier != "COMMISSION:12" || !e.IsCommission() {
		t.Errorf("commission marker missing: %+v", e)
	}
	if e.Type != models.TypeWithdrawal || !e.Amount.Equal(decimal.NewFromInt(-2000)) {
		t.Errorf("unexpected type/amount: %s %s", e.Type, e.Amount)
	}
	if e.RawStatus != "PAID" || e.Status != models.StatusCompleted {
		t.Errorf("unexpected status: %s/%s", e.RawStatus, e.Status)
	}
}

func TestKycSubmissionFlattening(t *testing.T) {
	body := []byte(`{"data":{"id":3,"userId":11,"documents":[
		{"type":"PASSPORT_FRONT","status":"APPROVED","approvedBy":"admin@x","approvedAt":"2025-05-05T00:00:00Z"},
		{"type":"passport-back","status":"rejected","rejectionReason":"blurry"},
		{"type":"SELFIE","status":"weird"},
		{"type":"DRIVING_LICENSE","status":"APPROVED"}
	]}}`)

	set := KycForUser(body, testNow)
	if set == nil {
		t.Fatal("expected a KYC document set")
	}
	if set.UserId != 11 || set.SubmissionId != 3 {
		t.Errorf("unexpected ids: %+v", set)
	}
	if set.PassportFront == nil || set.PassportFront.Status != models.DocumentApproved ||
		set.PassportFront.ApprovedBy == nil || set.PassportFront.ApprovedAt == nil {
		t.Errorf("passport front not mapped: %+v", set.PassportFront)
	}
	if set.PassportBack == nil || set.PassportBack.Status != models.DocumentRejected ||
		set.PassportBack.RejectionReason == nil || *set.PassportBack.RejectionReason != "blurry" {
		t.Errorf("passport back not mapped: %+v", set.PassportBack)
	}
	if set.Selfie == nil || set.Selfie.Status != models.DocumentPending {
		t.Errorf("unknown document status should be pending: %+v", set.Selfie)
	}
	if set.UtilityBill != nil {
		t.Errorf("utility bill should be absent")
	}
	if len(set.Documents()) != 3 {
		t.Errorf("expected 3 documents, got %d", len(set.Documents()))
	}
}

func TestKycForUserEmpty(t *testing.T) {
	for _, body := range []string{`{"data":null}`, `[]`, ``, `{}`} {
		if set := KycForUser([]byte(body), testNow); set != nil {
			t.Errorf("KycForUser(%q) = %+v, want nil", body, set)
		}
	}
}

func TestWalletBalancesTolerateFormattedStrings(t *testing.T) {
	body := []byte(`{"data":{"mainBalance":"12,500.75","commissionBalance":300,"reserveBalance":null}}`)
	b := WalletBalances(body)
	if !b.Main.Equal(decimal.RequireFromString("12500.75")) {
		t.Errorf("main = %s", b.Main)
	}
	if !b.Reserve.IsZero() {
		t.Errorf("null reserve should be 0, got %s", b.Reserve)
	}
	if !b.Total.Equal(decimal.RequireFromString("12800.75")) {
		t.Errorf("total should be derived, got %s", b.Total)
	}

	if garbage := WalletBalances([]byte(`<html>`)); !garbage.Total.IsZero() {
		t.Errorf("garbage payload should degrade to zero, got %+v", garbage)
	}
}

func TestAccountingSummaryNetFlow(t *testing.T) {
	s := AccountingSummary([]byte(`{"totalDeposits":"10,000","totalWithdrawals":"-2,500","totalCommissions":"abc"}`))
	if !s.NetFlow.Equal(decimal.NewFromInt(7500)) {
		t.Errorf("net flow = %s, want 7500", s.NetFlow)
	}
	if !s.TotalCommissions.IsZero() {
		t.Errorf("invalid commissions should coerce to 0, got %s", s.TotalCommissions)
	}
}

func TestTradingAccountsSplit(t *testing.T) {
	body := []byte(`[
		{"id":1,"accountNumber":1001,"type":"REAL","leverage":"1:200","fundsAvailable":"1,000","accountStatus":"ACTIVE"},
		{"id":2,"accountNumber":"D-2","isDemo":true,"leverage":100,"balance":"50","accountStatus":"ARCHIVE"}
	]`)
	summary := TradingAccounts(body, 42, testNow)
	if len(summary.Real) != 1 || len(summary.Demo) != 1 {
		t.Fatalf("unexpected split: %+v", summary)
	}
	live := summary.Real[0]
	if live.Leverage != 200 || live.Number != "1001" || live.UserId != 42 {
		t.Errorf("unexpected real account: %+v", live)
	}
	demo := summary.Demo[0]
	if demo.AccountStatus != models.AccountArchive || !demo.FundsAvailable.Equal(decimal.NewFromInt(50)) {
		t.Errorf("unexpected demo account: %+v", demo)
	}
}

func TestClientNameSynthesis(t *testing.T) {
	clients := Clients([]byte(`{"users":[{"id":5,"email":"x@y.z"},{"id":6,"firstName":"Grace","lastName":"Hopper"}]}`), testNow)
	if len(clients) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(clients))
	}
	if clients[0].Name != "User 5" {
		t.Errorf("expected synthesized name, got %q", clients[0].Name)
	}
	if clients[1].Name != "Grace Hopper" {
		t.Errorf("expected full name, got %q", clients[1].Name)
	}
}

func TestMalformedItemsAreSkipped(t *testing.T) {
	body := []byte(`[{"id":1,"type":"DEPOSIT","status":"PAID"},{"id":2,"type":{"nested":true}}]`)
	txs := Transactions(body, testNow)
	if len(txs) != 1 || txs[0].Id != 1 {
		t.Errorf("expected only the well-formed item, got %+v", txs)
	}
}

func TestSupportTicketMapping(t *testing.T) {
	body := []byte(`{"ticket":{"id":9,"user":{"id":2,"firstName":"Linus"},"subject":" Login ","status":"RESOLVED",
		"messages":[{"id":1,"message":"help","isAdmin":false},{"id":2,"message":"done","isAdmin":"true"}]}}`)
	ticket := SupportTicketDetail(body, testNow)
	if ticket.Status != models.TicketClosed || ticket.Subject != "Login" || ticket.ClientName != "Linus" {
		t.Errorf("unexpected ticket: %+v", ticket)
	}
	if len(ticket.Messages) != 2 || ticket.Messages[1].Author != "admin" || ticket.Messages[0].Author != "client" {
		t.Errorf("unexpected messages: %+v", ticket.Messages)
	}
}
