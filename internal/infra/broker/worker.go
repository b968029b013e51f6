package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"ticker_audit/internal/domain"
	"ticker_audit/internal/infra"

	"github.com/gorilla/websocket"
)

// OrderFeed maintains a live snapshot of the broker's conditional
// orders over the websocket order channel. It implements
// domain.OrderRepository; while disconnected it falls back to the
// REST client so audit runs still see a consistent snapshot.
type OrderFeed struct {
	wsURL   string
	client  *Client
	metrics *infra.Metrics
	logger  *slog.Logger

	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	connected bool
	orders    map[string]domain.Order
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewOrderFeed creates a feed over the given REST fallback client.
func NewOrderFeed(cfg *infra.Config, client *Client, metrics *infra.Metrics) *OrderFeed {
	return &OrderFeed{
		wsURL:   cfg.Broker.WSURL,
		client:  client,
		metrics: metrics,
		logger:  slog.Default().With("module", "order_feed"),
		orders:  make(map[string]domain.Order),
	}
}

// Connect starts the connection loop in the background.
func (w *OrderFeed) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.connectionLoop(ctx)
	return nil
}

// Disconnect stops the feed and waits for the loop to exit.
func (w *OrderFeed) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}

// IsConnected reports whether the websocket is currently up.
func (w *OrderFeed) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// Orders returns the live snapshot, or one REST fetch when the feed
// has no connection.
func (w *OrderFeed) Orders(ctx context.Context) ([]domain.Order, error) {
	w.mu.RLock()
	if w.connected {
		out := make([]domain.Order, 0, len(w.orders))
		for _, order := range w.orders {
			out = append(out, order)
		}
		w.mu.RUnlock()
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out, nil
	}
	w.mu.RUnlock()
	return w.client.Orders(ctx)
}

func (w *OrderFeed) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			w.logger.Warn("broker feed connection failed", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(baseDelay):
			}
		} else {
			w.readLoop(ctx)
		}
	}
}

func (w *OrderFeed) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, w.wsURL, nil)
	if err != nil {
		return domain.NewNetworkError("connect", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()
	if w.metrics != nil {
		w.metrics.IncrementBrokerConnections()
	}

	if err := w.subscribe(); err != nil {
		w.closeConnection()
		return err
	}

	go w.pingLoop(ctx)
	w.logger.Info("broker order feed connected")
	return nil
}

func (w *OrderFeed) subscribe() error {
	req := subscribeRequest{Op: "subscribe", Channel: "gtt_orders"}
	b, _ := json.Marshal(req)
	return w.threadSafeWrite(websocket.TextMessage, b)
}

func (w *OrderFeed) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.threadSafeWrite(websocket.TextMessage, []byte("ping"))
		}
	}
}

func (w *OrderFeed) threadSafeWrite(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.conn == nil {
		return fmt.Errorf("no conn")
	}
	return w.conn.WriteMessage(msgType, data)
}

func (w *OrderFeed) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.mu.RLock()
		if w.conn == nil {
			w.mu.RUnlock()
			return
		}
		w.conn.SetReadDeadline(time.Now().Add(readTimeout))
		w.mu.RUnlock()

		_, msg, err := w.conn.ReadMessage()
		if err != nil {
			w.closeConnection()
			return
		}
		if string(msg) == "pong" {
			continue
		}
		w.handleMessage(msg)
	}
}

func (w *OrderFeed) handleMessage(msg []byte) {
	var frame streamMessage
	if err := json.Unmarshal(msg, &frame); err != nil {
		w.logger.Warn("unparseable feed frame", slog.Any("error", err))
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch frame.Action {
	case "snapshot":
		w.orders = make(map[string]domain.Order, len(frame.Data))
		for _, payload := range frame.Data {
			if order, err := parseOrder(payload); err == nil {
				w.orders[order.ID] = order
			}
		}
	case "update":
		for _, payload := range frame.Data {
			if order, err := parseOrder(payload); err == nil {
				w.orders[order.ID] = order
			}
		}
	case "delete":
		for _, payload := range frame.Data {
			delete(w.orders, payload.ID)
		}
	default:
		w.logger.Warn("unknown feed action", slog.String("action", frame.Action))
	}
}

func (w *OrderFeed) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	if w.connected && w.metrics != nil {
		w.metrics.DecrementBrokerConnections()
	}
	w.connected = false
}
