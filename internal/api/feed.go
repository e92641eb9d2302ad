package api

import (
	"sync"

	"broker-backoffice-go/internal/aggregate"
	"broker-backoffice-go/internal/endpoints"
	"broker-backoffice-go/internal/models"
)

const (
	sourceTransactions = "transactions"
	sourceCommissions  = "commissions"
)

// FeedView is one rendering of the live transaction screens. Complete is
// false until both sources have delivered data.
type FeedView struct {
	History  []models.NormalizedTransaction `json:"history"`
	Queue    []models.NormalizedTransaction `json:"queue"`
	Complete bool                           `json:"complete"`
}

// TransactionFeed keeps the history and withdrawal queue current by watching
// both transaction sources. Each source is applied as soon as it arrives.
type TransactionFeed struct {
	policy       aggregate.Policy
	criteria     aggregate.Criteria
	sources      *aggregate.Sources
	onChange     func(FeedView)
	deliverMutex sync.Mutex

	transactions *endpoints.Handle[[]models.NormalizedTransaction]
	commissions  *endpoints.Handle[[]models.NormalizedTransaction]
}

// WatchTransactions starts a live feed. onChange receives a new view after
// every source update, including refetches triggered by approvals elsewhere.
func (s *BackOffice) WatchTransactions(q TransactionQuery, onChange func(FeedView)) *TransactionFeed {
	f := &TransactionFeed{
		policy:   s.policy,
		criteria: q.Filter,
		sources:  aggregate.NewSources(s.policy, sourceTransactions, sourceCommissions),
		onChange: onChange,
	}
	f.transactions = endpoints.Watch(s.registry, endpoints.ListTransactions, q.Backend, f.apply(sourceTransactions))
	f.commissions = endpoints.Watch(s.registry, endpoints.ListCommissionWithdrawals, endpoints.CommissionFilter{}, f.apply(sourceCommissions))
	return f
}

func (f *TransactionFeed) apply(source string) func(endpoints.State[[]models.NormalizedTransaction]) {
	return func(st endpoints.State[[]models.NormalizedTransaction]) {
		if st.FulfilledAt.IsZero() {
			return
		}
		f.sources.Set(source, st.Data)
		if f.onChange == nil {
			return
		}
		f.deliverMutex.Lock()
		defer f.deliverMutex.Unlock()
		f.onChange(f.View())
	}
}

// View returns the current rendering from whatever sources have arrived
func (f *TransactionFeed) View() FeedView {
	transactions := f.sources.Get(sourceTransactions)
	commissions := f.sources.Get(sourceCommissions)
	return FeedView{
		History:  aggregate.Filter(aggregate.HistoryWithPolicy(f.policy, transactions, commissions), f.criteria),
		Queue:    aggregate.Filter(aggregate.WithdrawalQueueWithPolicy(f.policy, transactions, commissions), f.criteria),
		Complete: f.sources.Complete(),
	}
}

// Close stops both subscriptions
func (f *TransactionFeed) Close() {
	f.transactions.Close()
	f.commissions.Close()
}
