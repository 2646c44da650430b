package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	bufferSize     = 256
)

// WebSocketChannel subscribes to topics over one websocket connection per topic.
// The topic is passed in the "topic" query parameter of the push URL.
type WebSocketChannel struct {
	pushURL string
	dialer  *websocket.Dialer
	header  http.Header
	log     *slog.Logger
}

func NewWebSocketChannel(pushURL string, log *slog.Logger) (*WebSocketChannel, error) {
	u, err := url.Parse(pushURL)
	if err != nil {
		return nil, fmt.Errorf("invalid push URL %q: %w", pushURL, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported push URL scheme %q", u.Scheme)
	}
	return &WebSocketChannel{
		pushURL: u.String(),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		header: http.Header{},
		log:    log,
	}, nil
}

// SetHeader adds a header sent on every handshake, e.g. Authorization.
func (c *WebSocketChannel) SetHeader(key, value string) {
	c.header.Set(key, value)
}

func (c *WebSocketChannel) topicURL(topic string) string {
	u, _ := url.Parse(c.pushURL)
	q := u.Query()
	q.Set("topic", topic)
	u.RawQuery = q.Encode()
	return u.String()
}

// Subscribe dials the push endpoint and returns once the connection is established.
func (c *WebSocketChannel) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	target := c.topicURL(topic)
	conn, resp, err := c.dialer.DialContext(ctx, target, c.header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect to push channel %s (status %d): %w", target, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to connect to push channel %s: %w", target, err)
	}
	c.log.Info("push channel connected", slog.String("topic", topic))

	sub := &wsSubscription{
		topic: topic,
		conn:  conn,
		out:   make(chan []byte, bufferSize),
		done:  make(chan struct{}),
		log:   c.log,
	}
	sub.wg.Add(2)
	go sub.readPump()
	go sub.pingPump()
	return sub, nil
}

type wsSubscription struct {
	topic string
	conn  *websocket.Conn
	out   chan []byte
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
	log   *slog.Logger
}

func (s *wsSubscription) Topic() string           { return s.topic }
func (s *wsSubscription) Messages() <-chan []byte { return s.out }

// Close releases the connection and waits for the pumps, so no message follows it.
func (s *wsSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		deadline := time.Now().Add(writeWait)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = s.conn.Close()
		s.wg.Wait()
	})
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func (s *wsSubscription) readPump() {
	defer func() {
		s.wg.Done()
		close(s.out)
	}()
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error { s.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.log.Warn("push channel disconnected", slog.String("topic", s.topic), slog.Any("error", err))
				} else {
					s.log.Info("push channel closed by server", slog.String("topic", s.topic))
				}
			}
			return
		}
		if strings.TrimSpace(string(message)) == "" {
			continue
		}
		select {
		case s.out <- message:
		case <-s.done:
			return
		}
	}
}

func (s *wsSubscription) pingPump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.wg.Done()
	}()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
