package api

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"broker-backoffice-go/internal/endpoints"
	"broker-backoffice-go/internal/models"
	"broker-backoffice-go/internal/outbox"

	"go.uber.org/zap"
)

// Messenger is the client message thread for one user. Sent messages show up
// immediately as local placeholders; the placeholders are dropped as soon as
// the backend list is fetched again, or the most recent one is dropped when
// the send fails.
type Messenger struct {
	registry *endpoints.Registry
	userId   int64
	author   string
	now      func() time.Time
	outbox   *outbox.Outbox[models.ClientMessage]
	onChange func([]models.ClientMessage)
	handle   *endpoints.Handle[[]models.ClientMessage]

	mutex         sync.Mutex
	server        []models.ClientMessage
	lastFulfilled time.Time

	deliverMutex sync.Mutex
}

// Messenger opens the thread for userId. onChange, when set, receives the
// combined view after every change.
func (s *BackOffice) Messenger(userId int64, author string, onChange func([]models.ClientMessage)) (*Messenger, error) {
	if err := requireId("user id", userId); err != nil {
		return nil, err
	}

	m := &Messenger{
		registry: s.registry,
		userId:   userId,
		author:   author,
		now:      time.Now,
		onChange: onChange,
		outbox: outbox.New[models.ClientMessage]().WithStamp(func(msg models.ClientMessage, key string, seq int64) models.ClientMessage {
			msg.LocalKey = key
			msg.Id = -seq
			return msg
		}),
	}
	m.handle = endpoints.Watch(s.registry, endpoints.ListClientMessages, userId, m.onState)
	return m, nil
}

func (m *Messenger) onState(st endpoints.State[[]models.ClientMessage]) {
	if st.FulfilledAt.IsZero() {
		return
	}

	m.mutex.Lock()
	fresh := !st.FulfilledAt.Equal(m.lastFulfilled)
	if fresh {
		m.lastFulfilled = st.FulfilledAt
		m.server = st.Data
	}
	m.mutex.Unlock()

	if !fresh {
		return
	}
	if n := m.outbox.Supersede(); n > 0 {
		zap.L().Debug("Client message placeholders superseded",
			zap.Int64("user_id", m.userId),
			zap.Int("count", n))
	}
	m.publish()
}

// Messages returns pending placeholders newest first, then the server thread
func (m *Messenger) Messages() []models.ClientMessage {
	m.mutex.Lock()
	server := slices.Clone(m.server)
	m.mutex.Unlock()
	return m.outbox.View(server)
}

// Send posts body to the client. The placeholder is visible until the thread
// is refetched; on failure it is removed and the error returned.
func (m *Messenger) Send(ctx context.Context, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return ErrEmptyMessage
	}

	m.outbox.Add(models.ClientMessage{
		UserId:    m.userId,
		Body:      body,
		Author:    m.author,
		CreatedAt: m.now(),
		Local:     true,
	})
	m.publish()

	_, err := endpoints.Execute(ctx, m.registry, endpoints.SendClientMessage, endpoints.ClientMessageInput{
		UserId:  m.userId,
		Message: body,
	})
	if err != nil {
		if p, ok := m.outbox.Fail(); ok {
			zap.L().Warn("Client message rejected, placeholder removed",
				zap.Int64("user_id", m.userId),
				zap.String("local_key", p.Key),
				zap.Error(err))
		}
		m.publish()
		return err
	}
	return nil
}

// Refetch reloads the thread from the backend
func (m *Messenger) Refetch(ctx context.Context) error {
	return m.handle.Refetch(ctx)
}

// Ready reports whether the thread has been loaded at least once
func (m *Messenger) Ready() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return !m.lastFulfilled.IsZero()
}

// Pending returns the number of unconfirmed sends
func (m *Messenger) Pending() int {
	return m.outbox.Len()
}

func (m *Messenger) Close() {
	m.handle.Close()
}

func (m *Messenger) publish() {
	if m.onChange == nil {
		return
	}
	m.deliverMutex.Lock()
	defer m.deliverMutex.Unlock()
	m.onChange(m.Messages())
}
