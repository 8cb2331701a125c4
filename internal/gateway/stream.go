package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// PriceStream maintains a websocket subscription to last-trade prices
// for the tokens of open positions, giving the lifecycle monitor a
// fresher reference price than a REST book fetch. It is best-effort:
// when the stream is down the monitor falls back to the REST book.
type PriceStream struct {
	url    string
	logger *zap.Logger

	mu     sync.RWMutex
	prices map[string]float64 // token id -> last trade price
	tokens map[string]bool

	conn   *websocket.Conn
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPriceStream creates a stream for the given websocket endpoint.
func NewPriceStream(url string, logger *zap.Logger) *PriceStream {
	return &PriceStream{
		url:    url,
		logger: logger,
		prices: make(map[string]float64),
		tokens: make(map[string]bool),
	}
}

// Start connects and begins consuming price events. A failed dial is
// returned to the caller; read errors after that trigger reconnects
// with a flat backoff until the context is cancelled.
func (s *PriceStream) Start(ctx context.Context) error {
	streamCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	err := s.dial(streamCtx)
	if err != nil {
		cancel()
		return err
	}

	s.wg.Add(1)
	go s.readLoop(streamCtx)

	return nil
}

func (s *PriceStream) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		StreamErrorsTotal.Inc()
		return err
	}

	s.mu.Lock()
	s.conn = conn
	subscribed := make([]string, 0, len(s.tokens))
	for tok := range s.tokens {
		subscribed = append(subscribed, tok)
	}
	s.mu.Unlock()

	if len(subscribed) > 0 {
		err = conn.WriteJSON(map[string]any{"type": "market", "assets_ids": subscribed})
		if err != nil {
			return err
		}
	}

	s.logger.Info("price-stream-connected", zap.Int("tokens", len(subscribed)))

	return nil
}

// Subscribe adds tokens to the live subscription.
func (s *PriceStream) Subscribe(tokenIDs []string) {
	s.mu.Lock()
	fresh := make([]string, 0, len(tokenIDs))
	for _, tok := range tokenIDs {
		if !s.tokens[tok] {
			s.tokens[tok] = true
			fresh = append(fresh, tok)
		}
	}
	conn := s.conn
	s.mu.Unlock()

	if len(fresh) == 0 || conn == nil {
		return
	}

	err := conn.WriteJSON(map[string]any{"type": "market", "assets_ids": fresh})
	if err != nil {
		s.logger.Warn("price-stream-subscribe-failed", zap.Error(err))
	}
}

// LastPrice returns the most recent streamed trade price for a token.
func (s *PriceStream) LastPrice(tokenID string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	price, ok := s.prices[tokenID]
	return price, ok
}

type streamEvent struct {
	EventType string `json:"event_type"`
	AssetID   string `json:"asset_id"`
	Price     string `json:"price"`
}

func (s *PriceStream) readLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			StreamErrorsTotal.Inc()
			s.logger.Warn("price-stream-read-error", zap.Error(err))

			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}

			if dialErr := s.dial(ctx); dialErr != nil {
				s.logger.Warn("price-stream-reconnect-failed", zap.Error(dialErr))
			}
			continue
		}

		var ev streamEvent
		if json.Unmarshal(raw, &ev) != nil {
			continue
		}
		if ev.EventType != "last_trade_price" || ev.AssetID == "" {
			continue
		}

		var price float64
		if json.Unmarshal([]byte(ev.Price), &price) != nil {
			continue
		}

		s.mu.Lock()
		s.prices[ev.AssetID] = price
		s.mu.Unlock()

		StreamEventsTotal.Inc()
	}
}

// Close stops the stream and waits for the read loop.
func (s *PriceStream) Close() error {
	if s.cancel != nil {
		s.cancel()
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}

	s.wg.Wait()
	return nil
}
