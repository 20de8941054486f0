// Package client implements the protocol client: it dials the mail server
// with retry and exchanges framed request/response envelopes over one TCP
// connection.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/mailkeeper/internal/protocol"
	"github.com/dmitrijs2005/mailkeeper/internal/transport"
)

// ErrUnavailable reports that the server could not be reached within the
// configured dial attempts.
var ErrUnavailable = errors.New("server unavailable")

// Client holds one live connection to the server. Methods are not safe for
// concurrent use; the CLI drives one request at a time, matching the
// one-request-per-connection protocol.
type Client struct {
	conn net.Conn
}

// Dial connects to addr, retrying with exponential backoff up to attempts
// extra times. Each attempt is bounded by timeout.
func Dial(ctx context.Context, addr string, timeout time.Duration, attempts uint64) (*Client, error) {
	var conn net.Conn

	backoff := retry.WithMaxRetries(attempts, retry.NewExponential(250*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &Client{conn: conn}, nil
}

// Exchange sends one envelope and waits for the single response envelope.
func (c *Client) Exchange(header string, payload any) (protocol.Envelope, error) {
	env, err := protocol.NewEnvelope(header, payload)
	if err != nil {
		return protocol.Envelope{}, err
	}
	data, err := protocol.Encode(env)
	if err != nil {
		return protocol.Envelope{}, err
	}
	if err := transport.Send(c.conn, data); err != nil {
		return protocol.Envelope{}, err
	}

	raw, err := transport.Receive(c.conn)
	if err != nil {
		return protocol.Envelope{}, err
	}
	return protocol.Decode(raw)
}

// SendOnly sends one envelope without awaiting a response. Used for BYE,
// the one request the server never answers.
func (c *Client) SendOnly(header string) error {
	env, err := protocol.NewEnvelope(header, nil)
	if err != nil {
		return err
	}
	data, err := protocol.Encode(env)
	if err != nil {
		return err
	}
	return transport.Send(c.conn, data)
}

func (c *Client) Close() error {
	return c.conn.Close()
}
