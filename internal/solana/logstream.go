package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// LogsFilter defines the logsSubscribe filter.
type LogsFilter struct {
	// Mentions filters notifications to transactions mentioning this address.
	Mentions []string
}

// LogNotification is one logsSubscribe message: a confirmed transaction's
// signature, slot and log lines.
type LogNotification struct {
	Signature string
	Slot      int64
	Logs      []string
	Err       interface{}
}

// StreamConfig configures LogStream behavior.
type StreamConfig struct {
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	PingInterval      time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	Buffer            int
}

// DefaultStreamConfig returns the default stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		Buffer:            4096,
	}
}

// LogStream maintains a single logsSubscribe subscription over WebSocket,
// reconnecting and resubscribing with backoff when the connection drops.
type LogStream struct {
	endpoint string
	filter   LogsFilter
	cfg      StreamConfig

	conn   *websocket.Conn
	connMu sync.Mutex

	out    chan LogNotification
	done   chan struct{}
	closed atomic.Bool
	wg     sync.WaitGroup
}

// DialLogStream connects, subscribes, and starts delivering notifications.
func DialLogStream(ctx context.Context, endpoint string, filter LogsFilter, cfg *StreamConfig) (*LogStream, error) {
	c := DefaultStreamConfig()
	if cfg != nil {
		c = *cfg
	}

	s := &LogStream{
		endpoint: endpoint,
		filter:   filter,
		cfg:      c,
		out:      make(chan LogNotification, c.Buffer),
		done:     make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	s.wg.Add(2)
	go s.readLoop()
	go s.pingLoop()

	return s, nil
}

// Notifications returns the delivery channel. It is closed on Close.
func (s *LogStream) Notifications() <-chan LogNotification {
	return s.out
}

// Close shuts down the stream and closes the notification channel.
func (s *LogStream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	close(s.out)
	return nil
}

// wsRequest is a JSON-RPC 2.0 request over WebSocket.
type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// wsEnvelope covers both subscription confirmations and notifications.
type wsEnvelope struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
	Params *wsParams       `json:"params"`
}

type wsParams struct {
	Result wsLogResult `json:"result"`
}

type wsLogResult struct {
	Context struct {
		Slot int64 `json:"slot"`
	} `json:"context"`
	Value struct {
		Signature string      `json:"signature"`
		Err       interface{} `json:"err"`
		Logs      []string    `json:"logs"`
	} `json:"value"`
}

// connect dials the endpoint and sends the subscription request. The
// confirmation is read synchronously: nothing else arrives on a fresh
// connection before it.
func (s *LogStream) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	var mentions interface{}
	if len(s.filter.Mentions) > 0 {
		mentions = map[string]interface{}{"mentions": s.filter.Mentions}
	} else {
		mentions = "all"
	}

	req := wsRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "logsSubscribe",
		Params: []interface{}{
			mentions,
			map[string]string{"commitment": "confirmed"},
		},
	}

	conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		return fmt.Errorf("write subscribe: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	var env wsEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		conn.Close()
		return fmt.Errorf("read subscribe confirmation: %w", err)
	}
	if env.Error != nil {
		conn.Close()
		return fmt.Errorf("subscribe: %w", env.Error)
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()
	return nil
}

// readLoop reads notifications and reconnects on failure.
func (s *LogStream) readLoop() {
	defer s.wg.Done()

	delay := s.cfg.ReconnectDelay

	for !s.closed.Load() {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			if !s.reconnect(delay) {
				return
			}
			delay *= 2
			if delay > s.cfg.MaxReconnectDelay {
				delay = s.cfg.MaxReconnectDelay
			}
			continue
		}

		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.Close()
				s.conn = nil
			}
			s.connMu.Unlock()
			continue
		}

		delay = s.cfg.ReconnectDelay
		s.dispatch(message)
	}
}

// reconnect waits and re-establishes the connection and subscription.
// Returns false when the stream is closed.
func (s *LogStream) reconnect(delay time.Duration) bool {
	select {
	case <-s.done:
		return false
	case <-time.After(delay):
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.connect(ctx); err != nil {
		// Next readLoop iteration retries with a longer delay.
		return !s.closed.Load()
	}
	return true
}

// dispatch parses a message and forwards log notifications.
func (s *LogStream) dispatch(message []byte) {
	var env wsEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		return
	}
	if env.Method != "logsNotification" || env.Params == nil {
		return
	}

	n := LogNotification{
		Signature: env.Params.Result.Value.Signature,
		Slot:      env.Params.Result.Context.Slot,
		Logs:      env.Params.Result.Value.Logs,
		Err:       env.Params.Result.Value.Err,
	}

	select {
	case s.out <- n:
	case <-s.done:
	}
}

// pingLoop keeps the connection alive.
func (s *LogStream) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
				s.conn.WriteMessage(websocket.PingMessage, nil)
			}
			s.connMu.Unlock()
		}
	}
}
