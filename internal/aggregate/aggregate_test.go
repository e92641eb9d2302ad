package aggregate

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"broker-backoffice-go/internal/models"

	"github.com/shopspring/decimal"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func tx(id int64, kind models.TransactionType, status models.TransactionStatus, at time.Time) models.NormalizedTransaction {
	return models.NormalizedTransaction{
		Id:         id,
		Type:       kind,
		Status:     status,
		Amount:     decimal.NewFromInt(100),
		ClientName: "Client",
		Origin:     models.OriginTransaction,
		CreatedAt:  at,
	}
}

var rawStatuses = map[models.TransactionStatus]string{
	models.StatusPending:   "PENDING",
	models.StatusCompleted: "PAID",
	models.StatusRejected:  "REJECTED",
}

func commission(id int64, status models.TransactionStatus, at time.Time) models.NormalizedTransaction {
	c := tx(id, models.TypeWithdrawal, status, at)
	c.Origin = models.OriginCommission
	c.AccountIdentifier = models.CommissionMarker + "x"
	c.RawStatus = rawStatuses[status]
	return c
}

// rawCommission builds a commission entry the way normalisation would for an
// arbitrary backend status: anything unrecognised reads as pending.
func rawCommission(id int64, raw string, at time.Time) models.NormalizedTransaction {
	status := models.StatusPending
	for s, r := range rawStatuses {
		if r == raw {
			status = s
		}
	}
	c := commission(id, status, at)
	c.RawStatus = raw
	return c
}

func ids(list []models.NormalizedTransaction) []int64 {
	out := make([]int64, 0, len(list))
	for _, t := range list {
		out = append(out, t.Id)
	}
	return out
}

func TestMergeDeduplicates(t *testing.T) {
	a := []models.NormalizedTransaction{tx(1, models.TypeDeposit, models.StatusPending, base), tx(2, models.TypeDeposit, models.StatusPending, base)}
	b := []models.NormalizedTransaction{tx(2, models.TypeDeposit, models.StatusCompleted, base.Add(time.Hour)), tx(3, models.TypeDeposit, models.StatusPending, base)}

	for _, policy := range []Policy{PreferMostRecent, PreferFirstSource} {
		merged := Merge(policy, a, b)
		if got := ids(merged); !reflect.DeepEqual(got, []int64{1, 2, 3}) {
			t.Errorf("%s: merged ids = %v, want [1 2 3]", policy, got)
		}
	}
}

func TestMergePolicies(t *testing.T) {
	older := tx(7, models.TypeWithdrawal, models.StatusPending, base)
	newer := tx(7, models.TypeWithdrawal, models.StatusCompleted, base.Add(time.Minute))

	tests := []struct {
		name    string
		policy  Policy
		sources [][]models.NormalizedTransaction
		want    models.TransactionStatus
	}{
		{"most recent wins when second", PreferMostRecent, [][]models.NormalizedTransaction{{older}, {newer}}, models.StatusCompleted},
		{"most recent wins when first", PreferMostRecent, [][]models.NormalizedTransaction{{newer}, {older}}, models.StatusCompleted},
		{"first source wins", PreferFirstSource, [][]models.NormalizedTransaction{{older}, {newer}}, models.StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := Merge(tt.policy, tt.sources...)
			if len(merged) != 1 || merged[0].Status != tt.want {
				t.Errorf("got %+v, want single record with status %s", merged, tt.want)
			}
		})
	}
}

func TestMergeTieKeepsFirstSeen(t *testing.T) {
	first := tx(5, models.TypeDeposit, models.StatusPending, base)
	second := tx(5, models.TypeDeposit, models.StatusRejected, base)
	merged := Merge(PreferMostRecent, []models.NormalizedTransaction{first}, []models.NormalizedTransaction{second})
	if merged[0].Status != models.StatusPending {
		t.Errorf("tie should keep the first-seen record, got %s", merged[0].Status)
	}
}

func TestMergeCollapsesSharedIdAcrossSources(t *testing.T) {
	transactions := []models.NormalizedTransaction{tx(7, models.TypeWithdrawal, models.StatusCompleted, base)}
	commissions := []models.NormalizedTransaction{commission(7, models.StatusCompleted, base.Add(time.Minute))}

	tests := []struct {
		policy Policy
		want   models.Origin
	}{
		{PreferMostRecent, models.OriginCommission},
		{PreferFirstSource, models.OriginTransaction},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			merged := Merge(tt.policy, transactions, commissions)
			if len(merged) != 1 || merged[0].Origin != tt.want {
				t.Errorf("merged = %+v, want one %s record", merged, tt.want)
			}

			history := HistoryWithPolicy(tt.policy, transactions, commissions)
			if len(history) != 1 || history[0].Id != 7 || history[0].Origin != tt.want {
				t.Errorf("history = %+v, want one %s record with id 7", history, tt.want)
			}
		})
	}
}

func TestSortByRecency(t *testing.T) {
	processed := base.Add(5 * time.Hour)
	late := tx(1, models.TypeDeposit, models.StatusCompleted, base)
	late.ProcessedAt = &processed
	list := []models.NormalizedTransaction{
		tx(2, models.TypeDeposit, models.StatusPending, base.Add(time.Hour)),
		late,
		tx(3, models.TypeDeposit, models.StatusPending, base.Add(time.Hour)),
	}
	sorted := SortByRecency(list)
	if got := ids(sorted); !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Errorf("sorted ids = %v, want [1 2 3]", got)
	}
	if ids(list)[0] != 2 {
		t.Errorf("input slice was modified")
	}
}

func TestFilterNoOp(t *testing.T) {
	list := []models.NormalizedTransaction{
		tx(3, models.TypeDeposit, models.StatusPending, base),
		tx(1, models.TypeWithdrawal, models.StatusCompleted, base.Add(-time.Hour)),
		tx(2, models.TypeDeposit, models.StatusRejected, base.Add(time.Hour)),
	}
	for _, c := range []Criteria{
		{},
		{Search: "", Type: "all", Status: "all"},
		{Search: "   ", Type: "ALL"},
	} {
		if got := Filter(list, c); !reflect.DeepEqual(got, list) {
			t.Errorf("Filter(%+v) = %v, want the input unchanged", c, ids(got))
		}
	}
}

func TestFilterPredicates(t *testing.T) {
	alice := tx(10, models.TypeDeposit, models.StatusCompleted, base)
	alice.ClientName = "Alice Martin"
	alice.Email = "alice@example.com"
	alice.PaymentMethod = "Bank Wire"

	bob := tx(11, models.TypeWithdrawal, models.StatusPending, base)
	bob.ClientName = "Bob Stone"
	bob.CounterpartyReference = "0xDEADBEEF"

	carol := commission(12, models.StatusRejected, base)
	carol.ClientName = "Carol"
	carol.AccountIdentifier = "COMMISSION:12"

	list := []models.NormalizedTransaction{alice, bob, carol}

	tests := []struct {
		name     string
		criteria Criteria
		want     []int64
	}{
		{"search name case-insensitive", Criteria{Search: "ALICE"}, []int64{10}},
		{"search email", Criteria{Search: "example.com"}, []int64{10}},
		{"search id", Criteria{Search: "11"}, []int64{11}},
		{"search payment method", Criteria{Search: "wire"}, []int64{10}},
		{"search counterparty", Criteria{Search: "deadbeef"}, []int64{11}},
		{"search account identifier", Criteria{Search: "commission:"}, []int64{12}},
		{"type", Criteria{Type: "withdrawal"}, []int64{11, 12}},
		{"status", Criteria{Status: "Rejected"}, []int64{12}},
		{"and of predicates", Criteria{Type: "Withdrawal", Status: "Pending"}, []int64{11}},
		{"no match", Criteria{Search: "zed"}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(Filter(list, tt.criteria)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateRangeBoundaries(t *testing.T) {
	from := time.Date(2025, 1, 10, 15, 30, 0, 0, time.UTC)
	to := time.Date(2025, 1, 12, 8, 0, 0, 0, time.UTC)
	r := &DateRange{From: from, To: to}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"start of first day", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), true},
		{"last second of last day", time.Date(2025, 1, 12, 23, 59, 59, 0, time.UTC), true},
		{"last millisecond of last day", time.Date(2025, 1, 12, 23, 59, 59, int(999*time.Millisecond), time.UTC), true},
		{"one millisecond before", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC).Add(-time.Millisecond), false},
		{"next day midnight", time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), false},
		{"middle", time.Date(2025, 1, 11, 12, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := []models.NormalizedTransaction{tx(1, models.TypeDeposit, models.StatusCompleted, tt.at)}
			got := len(Filter(list, Criteria{Range: r})) == 1
			if got != tt.want {
				t.Errorf("included = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateRangeOpenSides(t *testing.T) {
	at := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	if !(DateRange{From: base}).Contains(at) {
		t.Errorf("open upper bound should include later times")
	}
	if !(DateRange{To: at}).Contains(base) {
		t.Errorf("open lower bound should include earlier times")
	}
}

func TestDateRangeUsesBoundLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	r := DateRange{From: time.Date(2025, 1, 10, 12, 0, 0, 0, loc)}
	// 2025-01-09T21:00Z is midnight of the 10th at UTC+3.
	if !r.Contains(time.Date(2025, 1, 9, 21, 0, 0, 0, time.UTC)) {
		t.Errorf("bound should be normalised in its own location")
	}
	if r.Contains(time.Date(2025, 1, 9, 20, 59, 59, 0, time.UTC)) {
		t.Errorf("instant before local midnight should be excluded")
	}
}

func TestCommissionPendingExclusion(t *testing.T) {
	commissions := []models.NormalizedTransaction{
		commission(1, models.StatusPending, base),
		commission(2, models.StatusCompleted, base.Add(time.Minute)),
		commission(3, models.StatusRejected, base.Add(2*time.Minute)),
	}

	history := History(nil, commissions)
	if got := ids(history); !reflect.DeepEqual(got, []int64{3, 2}) {
		t.Errorf("history ids = %v, want [3 2]", got)
	}

	queue := WithdrawalQueue(nil, commissions)
	if got := ids(queue); !reflect.DeepEqual(got, []int64{1}) {
		t.Errorf("queue ids = %v, want [1]", got)
	}
}

func TestCommissionRoutingUsesRawStatus(t *testing.T) {
	commissions := []models.NormalizedTransaction{
		rawCommission(1, "PENDING", base),
		rawCommission(2, "PAID", base.Add(time.Minute)),
		rawCommission(3, "REJECTED", base.Add(2*time.Minute)),
		rawCommission(4, "CANCELLED", base.Add(3*time.Minute)),
		rawCommission(5, "PROCESSING", base.Add(4*time.Minute)),
	}

	if got := ids(History(nil, commissions)); !reflect.DeepEqual(got, []int64{5, 4, 3, 2}) {
		t.Errorf("history ids = %v, want [5 4 3 2]", got)
	}
	if got := ids(WithdrawalQueue(nil, commissions)); !reflect.DeepEqual(got, []int64{1}) {
		t.Errorf("queue ids = %v, want [1]", got)
	}
}

func TestWithdrawalQueueHonoursPolicy(t *testing.T) {
	transactions := []models.NormalizedTransaction{tx(9, models.TypeWithdrawal, models.StatusPending, base)}
	commissions := []models.NormalizedTransaction{commission(9, models.StatusPending, base.Add(time.Hour))}

	tests := []struct {
		policy Policy
		want   models.Origin
	}{
		{PreferMostRecent, models.OriginCommission},
		{PreferFirstSource, models.OriginTransaction},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			queue := WithdrawalQueueWithPolicy(tt.policy, transactions, commissions)
			if len(queue) != 1 || queue[0].Origin != tt.want {
				t.Errorf("queue = %+v, want one %s record", queue, tt.want)
			}
		})
	}
}

func TestHistoryAndQueueCombineSources(t *testing.T) {
	transactions := []models.NormalizedTransaction{
		tx(20, models.TypeDeposit, models.StatusCompleted, base),
		tx(21, models.TypeWithdrawal, models.StatusPending, base),
		tx(22, models.TypeDeposit, models.StatusPending, base),
		tx(23, models.TypeWithdrawal, models.StatusRejected, base),
	}
	commissions := []models.NormalizedTransaction{commission(30, models.StatusPending, base)}

	if got := len(History(transactions, commissions)); got != 2 {
		t.Errorf("history has %d records, want 2", got)
	}
	queue := WithdrawalQueue(transactions, commissions)
	if len(queue) != 2 || queue[0].Id != 21 || !queue[1].IsCommission() {
		t.Errorf("unexpected queue: %v", ids(queue))
	}
	if got := ids(DepositQueue(transactions)); !reflect.DeepEqual(got, []int64{22}) {
		t.Errorf("deposit queue = %v, want [22]", got)
	}
}

func TestSourcesIncremental(t *testing.T) {
	s := NewSources(PreferMostRecent, "transactions", "commissions")
	if s.Complete() || len(s.Merged()) != 0 {
		t.Fatalf("new aggregator should be empty and incomplete")
	}

	s.Set("commissions", []models.NormalizedTransaction{commission(2, models.StatusCompleted, base)})
	if got := len(s.Merged()); got != 1 {
		t.Errorf("partial view has %d records, want 1", got)
	}
	if s.Has("transactions") || s.Get("transactions") != nil {
		t.Errorf("transactions should not have arrived")
	}

	s.Set("transactions", []models.NormalizedTransaction{tx(1, models.TypeDeposit, models.StatusCompleted, base.Add(time.Hour))})
	if !s.Complete() {
		t.Errorf("both sources arrived")
	}
	merged := s.Merged()
	if len(merged) != 2 || merged[0].Origin != models.OriginTransaction {
		t.Errorf("unexpected merged view: %+v", merged)
	}

	s.Clear("commissions")
	if s.Complete() || len(s.Merged()) != 1 {
		t.Errorf("cleared source should drop out of the view")
	}
}

func TestSourcesConcurrentUpdates(t *testing.T) {
	s := NewSources(PreferMostRecent, "a", "b")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Set("a", []models.NormalizedTransaction{tx(int64(i+1), models.TypeDeposit, models.StatusPending, base)})
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Merged()
		}()
	}
	wg.Wait()
	if got := len(s.Get("a")); got != 1 {
		t.Errorf("last write should hold one record, got %d", got)
	}
}

func TestParsePolicy(t *testing.T) {
	if ParsePolicy("first_source") != PreferFirstSource || ParsePolicy("bogus") != PreferMostRecent {
		t.Errorf("unexpected policy parsing")
	}
}
