package viewer

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/anmol-28/livedatatest/internal/model"
)

// Client is one live viewer session: it dials the relay's websocket
// endpoint, renders each received event into its window, and redials without
// bound whenever the connection drops.
type Client struct {
	url       string
	window    *Window
	dialer    *websocket.Dialer
	retryWait time.Duration
	log       *logrus.Logger
	onEvent   func(model.PositionEvent)
}

// NewClient builds a viewer session. onEvent may be nil; when set it is
// called after each event has been inserted into the window.
func NewClient(url string, window *Window, retryWait time.Duration, logger *logrus.Logger, onEvent func(model.PositionEvent)) *Client {
	if retryWait <= 0 {
		retryWait = 2 * time.Second
	}
	return &Client{
		url:       url,
		window:    window,
		dialer:    &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		retryWait: retryWait,
		log:       logger,
		onEvent:   onEvent,
	}
}

// Window returns the session's bounded history.
func (c *Client) Window() *Window {
	return c.window
}

// Run connects and consumes events until ctx is cancelled, reconnecting on
// every connection loss.
func (c *Client) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.WithError(err).Warn("dial failed, retrying")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryWait):
			}
			continue
		}

		c.log.Infof("connected to %s", c.url)
		c.consume(ctx, conn)
	}
}

func (c *Client) consume(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.log.WithError(err).Warn("connection lost")
			}
			return
		}

		event, err := model.DecodeEvent(data)
		if err != nil {
			c.log.WithError(err).Warn("skipping undecodable frame")
			continue
		}

		c.window.Insert(event)
		if c.onEvent != nil {
			c.onEvent(event)
		}
	}
}
