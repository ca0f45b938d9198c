// The client package implements the requesting side of the wordgate protocol:
// one persistent connection over which the full word sequence is pulled down
// page by page.
package client

import (
	"bufio"
	"context"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wordgate/wordgate/internal/core"
	"github.com/wordgate/wordgate/internal/wire"
)

// Client drives the paginated download of the server's word sequence.
type Client struct {
	cfg    *core.Config
	id     uuid.UUID
	logger *logrus.Entry

	conn   net.Conn
	reader *bufio.Reader
}

// New creates a Client from the given config.
func New(cfg *core.Config, logger *logrus.Logger) *Client {
	id := uuid.New()
	return &Client{
		cfg:    cfg,
		id:     id,
		logger: logger.WithField("client", id.String()),
	}
}

// Connect dials the single persistent connection used for the whole download.
func (c *Client) Connect(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.cfg.DialAddr())
	if err != nil {
		return fmt.Errorf("error connecting to %s: %w", c.cfg.DialAddr(), err)
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.logger.Infof("connected to %s", c.cfg.DialAddr())
	return nil
}

// Close closes the connection. Safe to call after a failed Connect.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Fetch runs the request loop until the server signals end of data, starting
// from the configured offset and advancing by the configured page size after
// every non-terminal response. The accumulated words are returned in order.
//
// A read that yields no response is unexpected termination: Fetch returns
// the words accumulated so far along with an error. There are no retries; no
// request is ever reissued.
func (c *Client) Fetch(ctx context.Context) ([]string, error) {
	if c.conn == nil {
		return nil, fmt.Errorf("client is not connected")
	}

	offset := c.cfg.Client.StartOffset
	count := c.cfg.Client.PageSize

	var accumulated []string
	for {
		if err := ctx.Err(); err != nil {
			return accumulated, err
		}

		req := wire.Request{Offset: offset, Count: count}
		if _, err := c.conn.Write(req.Encode()); err != nil {
			return accumulated, fmt.Errorf("error sending request %d,%d: %w", offset, count, err)
		}

		// Accumulate bytes until the newline terminator; one read call is
		// not guaranteed to return one full response.
		line, err := c.reader.ReadString('\n')
		if err != nil && line == "" {
			return accumulated, fmt.Errorf("connection ended before end of data: %w", err)
		}

		words, terminal := wire.DecodePage(line)
		accumulated = append(accumulated, words...)
		c.logger.Debugf("received %d words at offset %d (terminal=%t)", len(words), offset, terminal)

		if terminal {
			c.logger.Infof("download complete: %d words", len(accumulated))
			return accumulated, nil
		}
		offset += count
	}
}
