package feed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/quantfeed/blockwatch/pkg/types"
	"go.uber.org/zap"
)

// Manager manages the WebSocket connection to the alert feed. It decodes
// raw feed messages and hands them to the pipeline over a buffered channel.
type Manager struct {
	url             string
	conn            *websocket.Conn
	logger          *zap.Logger
	redialer        *redialer
	config          Config
	messageChan     chan *types.RawMessage
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	mu              sync.RWMutex
	connected       atomic.Bool
	lastPongTime    atomic.Int64
	connectionStart atomic.Int64 // Unix timestamp of connection start
}

// Config holds feed manager configuration.
type Config struct {
	URL                   string
	Channel               string
	DialTimeout           time.Duration
	PongTimeout           time.Duration
	PingInterval          time.Duration
	ReconnectInitialDelay time.Duration
	ReconnectMaxDelay     time.Duration
	ReconnectBackoffMult  float64
	MessageBufferSize     int
	Logger                *zap.Logger

	// OnStateChange is invoked when the connection state flips. Used to
	// drive the readiness probe. May be nil.
	OnStateChange func(connected bool)
}

// New creates a new feed manager.
func New(cfg Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		url:         cfg.URL,
		logger:      cfg.Logger,
		redialer:    newRedialer(cfg.ReconnectInitialDelay, cfg.ReconnectMaxDelay, cfg.ReconnectBackoffMult, redialJitter, cfg.Logger),
		config:      cfg,
		messageChan: make(chan *types.RawMessage, cfg.MessageBufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start connects to the feed and starts the read, ping and reconnect loops.
func (m *Manager) Start() error {
	m.logger.Info("feed-manager-starting", zap.String("url", m.url))

	err := m.connect(m.ctx)
	if err != nil {
		return fmt.Errorf("initial connection: %w", err)
	}

	m.wg.Add(3)
	go m.readLoop()
	go m.pingLoop()
	go m.reconnectLoop()

	return nil
}

// connect establishes a WebSocket connection and subscribes to the alert
// channel.
func (m *Manager) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: m.config.DialTimeout,
	}

	m.logger.Info("connecting-to-feed", zap.String("url", m.url))

	conn, _, err := dialer.DialContext(ctx, m.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	conn.SetPongHandler(func(string) error {
		m.lastPongTime.Store(time.Now().Unix())
		return nil
	})

	if m.config.Channel != "" {
		subscribeMsg := map[string]interface{}{
			"op":      "subscribe",
			"channel": m.config.Channel,
		}
		err = conn.WriteJSON(subscribeMsg)
		if err != nil {
			conn.Close()
			return fmt.Errorf("write subscribe message: %w", err)
		}
	}

	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()

	now := time.Now()
	m.connected.Store(true)
	m.lastPongTime.Store(now.Unix())
	m.connectionStart.Store(now.Unix())
	ActiveConnections.Set(1)
	m.notifyState(true)

	m.logger.Info("feed-connected", zap.String("channel", m.config.Channel))

	return nil
}

// readLoop reads messages from the WebSocket.
func (m *Manager) readLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		m.mu.RLock()
		conn := m.conn
		m.mu.RUnlock()

		if conn == nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			m.logger.Warn("read-error", zap.Error(err))

			// Observe connection duration before marking as disconnected
			startTime := m.connectionStart.Load()
			if startTime > 0 {
				duration := time.Since(time.Unix(startTime, 0)).Seconds()
				ConnectionDuration.Observe(duration)
			}

			m.connected.Store(false)
			ActiveConnections.Set(0)
			m.notifyState(false)
			return
		}

		var raw types.RawMessage
		err = json.Unmarshal(message, &raw)
		if err != nil || raw.Text == "" {
			messageStr := string(message)

			// Heartbeat or keepalive
			if messageStr == "{}" || messageStr == "" || len(message) < 10 {
				m.logger.Debug("feed-heartbeat-received",
					zap.Int("bytes", len(message)))
				continue
			}

			// Subscription ack or other control message
			var controlMsg map[string]interface{}
			if json.Unmarshal(message, &controlMsg) == nil {
				if op, ok := controlMsg["op"].(string); ok {
					m.logger.Debug("feed-control-message",
						zap.String("op", op),
						zap.Int("bytes", len(message)))
					continue
				}
			}

			previewLen := len(messageStr)
			if previewLen > 100 {
				previewLen = 100
			}
			m.logger.Debug("feed-unparseable-frame",
				zap.Error(err),
				zap.Int("bytes", len(message)),
				zap.String("preview", messageStr[:previewLen]))
			MessagesDroppedTotal.WithLabelValues("unparseable_frame").Inc()
			continue
		}

		MessagesReceivedTotal.Inc()

		// Send to channel (non-blocking)
		select {
		case m.messageChan <- &raw:
		default:
			m.logger.Warn("message-channel-full", zap.Int64("message-id", raw.ID))
			MessagesDroppedTotal.WithLabelValues("channel_full").Inc()
		}
	}
}

// pingLoop sends periodic PING messages.
func (m *Manager) pingLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if !m.connected.Load() {
				continue
			}

			m.mu.RLock()
			conn := m.conn
			m.mu.RUnlock()

			if conn == nil {
				continue
			}

			err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
			if err != nil {
				m.logger.Warn("ping-error", zap.Error(err))
			}
		}
	}
}

// reconnectLoop handles reconnection when the connection drops.
func (m *Manager) reconnectLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		if m.connected.Load() {
			time.Sleep(time.Second)
			continue
		}

		m.logger.Warn("connection-lost-initiating-reconnect")

		err := m.redialer.redial(m.ctx, m.connect)
		if err != nil {
			if err == context.Canceled {
				return
			}
			m.logger.Error("reconnection-failed", zap.Error(err))
			continue
		}

		m.logger.Info("reconnection-complete-restarting-read-loop")

		m.wg.Add(1)
		go m.readLoop()
	}
}

// notifyState invokes the state-change callback if configured.
func (m *Manager) notifyState(connected bool) {
	if m.config.OnStateChange != nil {
		m.config.OnStateChange(connected)
	}
}

// Connected reports whether the feed connection is currently up.
func (m *Manager) Connected() bool {
	return m.connected.Load()
}

// MessageChan returns the channel for receiving raw feed messages.
func (m *Manager) MessageChan() <-chan *types.RawMessage {
	return m.messageChan
}

// Close gracefully closes the feed manager.
func (m *Manager) Close() error {
	m.logger.Info("closing-feed-manager")

	m.cancel()

	m.mu.RLock()
	if m.conn != nil {
		m.conn.Close()
	}
	m.mu.RUnlock()

	m.wg.Wait()

	close(m.messageChan)

	ActiveConnections.Set(0)

	m.logger.Info("feed-manager-closed")

	return nil
}
