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

package listener

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"broker-backoffice-go/internal/cache"
	"broker-backoffice-go/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	sendBuffer = 32
)

// InvalidationListenerConfig contains configuration for InvalidationListener
type InvalidationListenerConfig struct {
	Cache          *cache.Cache
	PingInterval   time.Duration
	AllowedOrigins []string
}

// InvalidationListener forwards cache invalidations to websocket clients so
// UIs outside this process know which views to refetch
type InvalidationListener struct {
	cache        *cache.Cache
	upgrader     websocket.Upgrader
	pingInterval time.Duration

	// Connected clients
	clients map[uint64]*subscriber
	nextId  uint64
	mutex   sync.RWMutex

	// enqueueMutex keeps events in seq order on the way into events
	enqueueMutex sync.Mutex
	seq          uint64
	events       chan models.InvalidationEvent
	unsubscribe func()

	// Control channels
	stopChan chan struct{}
	doneChan chan struct{}
}

type subscriber struct {
	id   uint64
	conn *websocket.Conn
	send chan models.InvalidationEvent
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

// NewInvalidationListener creates a new invalidation listener
func NewInvalidationListener(cfg InvalidationListenerConfig) *InvalidationListener {
	pingInterval := cfg.PingInterval
	if pingInterval <= 0 || pingInterval >= pongWait {
		pingInterval = pongWait * 9 / 10
	}

	l := &InvalidationListener{
		cache:        cfg.Cache,
		pingInterval: pingInterval,
		clients:      make(map[uint64]*subscriber),
		events:       make(chan models.InvalidationEvent, 256),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
	l.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return l
}

// originChecker allows same-origin requests, plus any listed origin. A "*"
// entry allows every origin.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin) {
			return true
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}

// Start subscribes to the cache and begins broadcasting
func (l *InvalidationListener) Start(ctx context.Context) {
	zap.L().Info("Starting invalidation listener")
	l.unsubscribe = l.cache.OnInvalidate(l.enqueue)
	go l.broadcastLoop(ctx)
}

// Stop gracefully stops the listener and disconnects every client
func (l *InvalidationListener) Stop() {
	zap.L().Info("Stopping invalidation listener")
	if l.unsubscribe != nil {
		l.unsubscribe()
	}
	close(l.stopChan)
	<-l.doneChan

	l.mutex.Lock()
	for id, s := range l.clients {
		s.close()
		delete(l.clients, id)
	}
	l.mutex.Unlock()
	zap.L().Info("Invalidation listener stopped")
}

// Clients returns the number of connected websocket clients
func (l *InvalidationListener) Clients() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return len(l.clients)
}

func (l *InvalidationListener) enqueue(tags []cache.Tag) {
	event := models.InvalidationEvent{Tags: make([]string, len(tags))}
	for i, t := range tags {
		event.Tags[i] = t.String()
	}

	l.enqueueMutex.Lock()
	defer l.enqueueMutex.Unlock()
	l.seq++
	event.Seq = l.seq
	event.At = time.Now().UTC()

	select {
	case l.events <- event:
	default:
		zap.L().Warn("Invalidation event dropped, broadcast queue full",
			zap.Uint64("seq", event.Seq),
			zap.Strings("tags", event.Tags))
	}
}

// broadcastLoop fans events out to every client. A client whose buffer is
// full is disconnected rather than slowing the others down.
func (l *InvalidationListener) broadcastLoop(ctx context.Context) {
	defer close(l.doneChan)

	for {
		select {
		case event := <-l.events:
			l.broadcast(event)
		case <-l.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (l *InvalidationListener) broadcast(event models.InvalidationEvent) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	for id, s := range l.clients {
		select {
		case s.send <- event:
		default:
			zap.L().Warn("Disconnecting slow websocket client", zap.Uint64("client_id", id))
			s.close()
			delete(l.clients, id)
		}
	}
}

// ServeWS upgrades the request and streams invalidation events until the
// client disconnects
func (l *InvalidationListener) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	l.mutex.Lock()
	l.nextId++
	s := &subscriber{
		id:   l.nextId,
		conn: conn,
		send: make(chan models.InvalidationEvent, sendBuffer),
	}
	l.clients[s.id] = s
	l.mutex.Unlock()

	zap.L().Info("Websocket client connected",
		zap.Uint64("client_id", s.id),
		zap.String("remote_addr", r.RemoteAddr))

	go l.writeLoop(s)
	l.readLoop(s)
}

func (l *InvalidationListener) remove(s *subscriber) {
	l.mutex.Lock()
	if _, ok := l.clients[s.id]; ok {
		delete(l.clients, s.id)
		s.close()
	}
	l.mutex.Unlock()
}

// readLoop discards client messages and detects disconnects
func (l *InvalidationListener) readLoop(s *subscriber) {
	defer func() {
		l.remove(s)
		s.conn.Close()
		zap.L().Info("Websocket client disconnected", zap.Uint64("client_id", s.id))
	}()

	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (l *InvalidationListener) writeLoop(s *subscriber) {
	ticker := time.NewTicker(l.pingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case event, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := s.conn.WriteJSON(event); err != nil {
				zap.L().Debug("Websocket write failed",
					zap.Uint64("client_id", s.id),
					zap.Error(err))
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
