package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	contractx "github.com/jewelryops/agent/agent/contract"
)

// ErrServer carries an error frame received from the backend.
var ErrServer = errors.New("server error")

// Done reports the terminal frame of one streamed turn.
type Done struct {
	SessionID      string
	ToolCallsCount int
}

// Client streams chat turns over the backend WebSocket endpoint, passing
// every displayed fragment through a PrefixFilter.
type Client struct {
	url    string
	dialer *websocket.Dialer
}

func New(url string) *Client {
	return &Client{url: url, dialer: websocket.DefaultDialer}
}

// Stream sends one request and forwards every displayable text fragment
// to onToken until the server closes the turn.
func (c *Client) Stream(ctx context.Context, sessionID, message string, onToken func(string)) (Done, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return Done{}, fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer conn.Close()

	req := contractx.ChatRequest{SessionID: sessionID, Message: message}
	if err := conn.WriteJSON(req); err != nil {
		return Done{}, fmt.Errorf("send request: %w", err)
	}

	filter := NewPrefixFilter()
	for {
		var frame contractx.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			return Done{}, fmt.Errorf("read frame: %w", err)
		}

		switch frame.Type {
		case contractx.FrameToken:
			if out := filter.Feed(frame.Data); out != "" {
				onToken(out)
			}
		case contractx.FrameDone:
			if out := filter.Flush(); out != "" {
				onToken(out)
			}
			done := Done{SessionID: frame.SessionID}
			if frame.ToolCallsCount != nil {
				done.ToolCallsCount = *frame.ToolCallsCount
			}
			return done, nil
		case contractx.FrameError:
			msg := frame.Data
			if msg == "" {
				msg = "unknown error"
			}
			return Done{}, fmt.Errorf("%w: %s", ErrServer, msg)
		}
	}
}
