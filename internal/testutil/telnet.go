package testutil

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

// DefaultTimeout bounds every Expect call.
const DefaultTimeout = 5 * time.Second

// TelnetClient is a line-oriented Telnet client for driving the game screens in
// integration tests. Everything it reads is kept so a failure can show the
// whole conversation.
type TelnetClient struct {
	conn    net.Conn
	t       *testing.T
	pending strings.Builder
	log     strings.Builder
}

// NewTelnetClient dials the given address and returns a test client.
//
// Precondition: addr must be a valid "host:port" string with a listening server.
// Postcondition: Returns a connected TelnetClient or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	start := time.Now()

	conn, err := net.DialTimeout("tcp", addr, DefaultTimeout)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", addr, err, time.Since(start))
	}
	t.Cleanup(func() { _ = conn.Close() })

	t.Logf("telnet client connected to %s [%s]", addr, time.Since(start))
	return &TelnetClient{conn: conn, t: t}
}

// ReadUntil reads until substr has been seen and returns everything read since
// the previous match, up to and including substr. Text after the match is kept
// for the next call.
//
// Precondition: substr must be non-empty.
// Postcondition: Returns the output containing substr, or fails on timeout.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	deadline := time.Now().Add(timeout)

	tmp := make([]byte, 1024)
	for {
		buf := c.pending.String()
		if i := strings.Index(buf, substr); i >= 0 {
			end := i + len(substr)
			c.pending.Reset()
			c.pending.WriteString(buf[end:])
			return buf[:end]
		}
		_ = c.conn.SetReadDeadline(deadline)
		n, err := c.conn.Read(tmp)
		if n > 0 {
			c.pending.Write(tmp[:n])
			c.log.Write(tmp[:n])
		}
		if err != nil {
			c.t.Fatalf("reading until %q: got %q, error: %v\ntranscript:\n%s", substr, c.pending.String(), err, c.log.String())
		}
	}
}

// Expect is ReadUntil with DefaultTimeout.
func (c *TelnetClient) Expect(substr string) string {
	c.t.Helper()
	return c.ReadUntil(substr, DefaultTimeout)
}

// Send writes a line of text to the server, appending \r\n.
//
// Precondition: text should not contain trailing newline characters.
// Postcondition: text + \r\n is written to the connection.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(DefaultTimeout))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Transcript returns everything read so far.
func (c *TelnetClient) Transcript() string {
	return c.log.String()
}

// Close closes the underlying connection.
func (c *TelnetClient) Close() {
	_ = c.conn.Close()
}
