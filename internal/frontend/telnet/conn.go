package telnet

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/cory-johannsen/storyteller/internal/config"
)

// Telnet command bytes per RFC 854.
const (
	SE   byte = 240 // sub-negotiation end
	NOP  byte = 241
	GA   byte = 249 // go ahead
	SB   byte = 250 // sub-negotiation begin
	WILL byte = 251
	WONT byte = 252
	DO   byte = 253
	DONT byte = 254
	IAC  byte = 255 // interpret as command
)

// Telnet options the server negotiates.
const (
	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

// maxLine bounds a single input line; longer input is truncated.
const maxLine = 1024

// Conn is one client connection. Reads strip Telnet commands and return whole
// lines; writes are serialised and use CRLF line endings.
type Conn struct {
	raw net.Conn
	in  *bufio.Reader

	wmu          sync.Mutex
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw using the timeouts in cfg. A zero timeout disables the deadline.
//
// Precondition: raw must be an open connection.
func NewConn(raw net.Conn, cfg config.TelnetConfig) *Conn {
	return &Conn{
		raw:          raw,
		in:           bufio.NewReader(raw),
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}
}

// Negotiate asks the client to suppress go-ahead so prompts render inline.
func (c *Conn) Negotiate() error {
	return c.Write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next line of input without its line ending. Telnet
// commands and control characters other than tab are dropped.
//
// Postcondition: Returns the line, or the partial line and the read error
// (io.EOF when the client hangs up).
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var (
		line strings.Builder
		f    iacFilter
	)
	for {
		b, err := c.in.ReadByte()
		if err != nil {
			return line.String(), err
		}
		out, ok := f.feed(b)
		if !ok {
			continue
		}
		switch {
		case out == '\n':
			return line.String(), nil
		case out == '\r':
			if next, err := c.in.Peek(1); err == nil && next[0] == '\n' {
				_, _ = c.in.ReadByte()
			}
			return line.String(), nil
		case out == IAC, out < ' ' && out != '\t', out == 0x7f:
			// literal 0xFF and control bytes never reach the game
		case line.Len() < maxLine:
			line.WriteByte(out)
		}
	}
}

// Write sends data as-is.
func (c *Conn) Write(data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// WriteLine sends text followed by CRLF. Bare newlines inside text are
// converted so multi-line blocks render on every client.
func (c *Conn) WriteLine(text string) error {
	return c.Write([]byte(crlf(text) + "\r\n"))
}

// WriteLines sends each line followed by CRLF in a single write.
func (c *Conn) WriteLines(lines ...string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(crlf(l))
		b.WriteString("\r\n")
	}
	return c.Write([]byte(b.String()))
}

// WritePrompt sends prompt without a line ending.
func (c *Conn) WritePrompt(prompt string) error {
	return c.Write([]byte(prompt))
}

// Close closes the underlying connection. Blocked reads return an error.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the client's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

func crlf(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", "\r\n")
}

// FilterIAC returns input with every Telnet command sequence removed. An
// escaped IAC (IAC IAC) yields a single 0xFF byte.
func FilterIAC(input []byte) []byte {
	out := make([]byte, 0, len(input))
	var f iacFilter
	for _, b := range input {
		if v, ok := f.feed(b); ok {
			out = append(out, v)
		}
	}
	return out
}

type iacState int

const (
	stateData iacState = iota
	stateCommand
	stateOption
	stateSub
	stateSubCommand
)

// iacFilter is a byte-at-a-time Telnet command stripper. It carries state
// across calls so sequences split between reads are handled.
type iacFilter struct {
	state iacState
}

// feed consumes b and reports the data byte it yields, if any.
func (f *iacFilter) feed(b byte) (byte, bool) {
	switch f.state {
	case stateCommand:
		switch b {
		case IAC:
			f.state = stateData
			return IAC, true
		case WILL, WONT, DO, DONT:
			f.state = stateOption
		case SB:
			f.state = stateSub
		default:
			f.state = stateData
		}
	case stateOption:
		f.state = stateData
	case stateSub:
		if b == IAC {
			f.state = stateSubCommand
		}
	case stateSubCommand:
		if b == SE {
			f.state = stateData
		} else {
			f.state = stateSub
		}
	default:
		if b == IAC {
			f.state = stateCommand
			return 0, false
		}
		return b, true
	}
	return 0, false
}
