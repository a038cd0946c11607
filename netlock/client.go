package netlock

import (
	"bufio"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/ossearch/ossearch"
)

// Ensure Client implements ossearch.Locker at compile time.
var _ ossearch.Locker = (*Client)(nil)

// Client acquires one named lock from a Server. Each acquisition opens its
// own connection; the server releases the lock if that connection drops, so
// Release is guaranteed even when the claimer crashes mid-claim.
type Client struct {
	addr    string
	authKey []byte
	name    string

	mu   sync.Mutex
	conn net.Conn
}

// NewClient creates a client for the named lock on the given server
// address, e.g. "lockhost:4643".
func NewClient(addr, authKey, name string) *Client {
	return &Client{
		addr:    addr,
		authKey: []byte(authKey),
		name:    name,
	}
}

// Acquire blocks until the lock is granted or the context is done.
func (c *Client) Acquire(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return ossearch.Errorf(ossearch.ECONFLICT, "lock %q already held", c.name)
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return ossearch.Errorf(ossearch.EUNAVAILABLE, "lock server unavailable: %v", err)
	}

	// Closing the connection unblocks any pending read when the context
	// is cancelled while waiting for the grant.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	reader := bufio.NewReader(conn)
	if err := c.handshake(conn, reader); err != nil {
		conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	if _, err := fmt.Fprintf(conn, "%s %s\n", cmdAcquire, c.name); err != nil {
		conn.Close()
		return ossearch.Errorf(ossearch.EUNAVAILABLE, "lock server unavailable: %v", err)
	}
	reply, err := reader.ReadString('\n')
	if err != nil {
		conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ossearch.Errorf(ossearch.EUNAVAILABLE, "lock server unavailable: %v", err)
	}
	if !strings.HasPrefix(reply, replyGranted) {
		conn.Close()
		return ossearch.Errorf(ossearch.EINTERNAL, "lock not granted: %s", strings.TrimSpace(reply))
	}

	c.conn = conn
	return nil
}

// Release gives the lock back and drops the connection. The connection
// close alone is enough for the server to release, so errors past that
// point are not reported.
func (c *Client) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ossearch.Errorf(ossearch.ECONFLICT, "lock %q not held", c.name)
	}

	fmt.Fprintf(c.conn, "%s %s\n", cmdRelease, c.name)
	c.conn.Close()
	c.conn = nil
	return nil
}

// handshake answers the server's HMAC challenge.
func (c *Client) handshake(conn net.Conn, reader *bufio.Reader) error {
	line, err := reader.ReadString('\n')
	if err != nil {
		return ossearch.Errorf(ossearch.EUNAVAILABLE, "lock server unavailable: %v", err)
	}
	challenge, err := base64.StdEncoding.DecodeString(strings.TrimSpace(line))
	if err != nil {
		return ossearch.Errorf(ossearch.EINTERNAL, "malformed challenge: %v", err)
	}

	mac := hmac.New(sha256.New, c.authKey)
	mac.Write(challenge)
	if _, err := fmt.Fprintf(conn, "%s\n", hex.EncodeToString(mac.Sum(nil))); err != nil {
		return ossearch.Errorf(ossearch.EUNAVAILABLE, "lock server unavailable: %v", err)
	}

	reply, err := reader.ReadString('\n')
	if err != nil {
		return ossearch.Errorf(ossearch.EUNAVAILABLE, "lock server unavailable: %v", err)
	}
	if strings.TrimSpace(reply) != replyOK {
		return ossearch.Errorf(ossearch.EINVALID, "lock server rejected authkey")
	}
	return nil
}
