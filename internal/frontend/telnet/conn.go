package telnet

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Telnet IAC (Interpret As Command) constants per RFC 854.
const (
	IAC  byte = 255 // Interpret As Command
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250 // Sub-negotiation Begin
	SE   byte = 240 // Sub-negotiation End
	NOP  byte = 241
	GA   byte = 249 // Go Ahead

	// Telnet options
	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

// MaxLineLen bounds a single input line; longer input is truncated.
const MaxLineLen = 2048

// Conn is a line-oriented player terminal. Over TCP it speaks Telnet
// (IAC filtering, echo control, deadlines); over plain streams it is a
// local console.
type Conn struct {
	id     string
	raw    net.Conn
	reader *bufio.Reader
	w      io.Writer
	closer io.Closer
	mu     sync.Mutex

	color  bool
	telnet bool

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps a raw TCP connection with Telnet protocol handling.
//
// Precondition: raw must be a valid, open network connection.
// Postcondition: Returns a Conn ready for reading and writing, with ANSI
// color enabled.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		id:           uuid.NewString(),
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		w:            raw,
		closer:       raw,
		color:        true,
		telnet:       true,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// NewStreamConn wraps a reader and writer pair, such as stdin and stdout.
// No Telnet negotiation is sent and no deadlines apply. When color is false
// every ANSI sequence is stripped before writing.
//
// Precondition: r and w must be non-nil.
func NewStreamConn(r io.Reader, w io.Writer, color bool) *Conn {
	c := &Conn{
		id:     uuid.NewString(),
		reader: bufio.NewReaderSize(r, 4096),
		w:      w,
		color:  color,
	}
	if cl, ok := r.(io.Closer); ok {
		c.closer = cl
	}
	return c
}

// ID returns the connection's unique id, used to correlate log lines.
func (c *Conn) ID() string {
	return c.id
}

// Color reports whether ANSI sequences reach the client.
func (c *Conn) Color() bool {
	return c.color
}

// Negotiate sends initial Telnet option negotiations.
// We request the client to suppress go-ahead and let us handle echo.
//
// Postcondition: Negotiation bytes are written to the connection; a no-op
// for stream connections.
func (c *Conn) Negotiate() error {
	if !c.telnet {
		return nil
	}
	return c.writeRaw([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine reads a single line of input, filtering Telnet IAC sequences
// and control characters. The returned line does not include the trailing
// \r\n.
//
// Postcondition: Returns the next line of text input, or an error (including io.EOF).
// A final unterminated line is returned together with io.EOF.
func (c *Conn) ReadLine() (string, error) {
	if c.raw != nil && c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line bytes.Buffer
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}

		if b == IAC {
			if err := c.handleIAC(); err != nil {
				return line.String(), err
			}
			continue
		}

		if b == '\n' {
			break
		}
		if b == '\r' {
			next, err := c.reader.Peek(1)
			if err == nil && len(next) > 0 && next[0] == '\n' {
				_, _ = c.reader.ReadByte()
			}
			break
		}

		// Backspace and DEL edit the line for raw-mode clients.
		if b == 8 || b == 127 {
			if line.Len() > 0 {
				line.Truncate(line.Len() - 1)
			}
			continue
		}
		if b < 32 && b != '\t' {
			continue
		}

		if line.Len() < MaxLineLen {
			line.WriteByte(b)
		}
	}

	return line.String(), nil
}

// handleIAC processes a Telnet IAC sequence after the initial IAC byte
// has been read.
func (c *Conn) handleIAC() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}

	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err := c.reader.ReadByte()
		return err
	case SB:
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if b != IAC {
				continue
			}
			next, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if next == SE {
				return nil
			}
		}
	}
	// Escaped IAC, NOP, GA and the rest carry no option byte.
	return nil
}

// ReadPassword reads a line of input with server-side echo suppression.
// It sends IAC WILL Echo before reading (client stops echoing) and
// IAC WONT Echo after (client resumes echoing), then writes a blank
// line so the cursor advances past the hidden input.
//
// Postcondition: Returns the input with echo restored. Stream connections
// read a plain line.
func (c *Conn) ReadPassword() (string, error) {
	if !c.telnet {
		return c.ReadLine()
	}
	if err := c.writeRaw([]byte{IAC, WILL, OptEcho}); err != nil {
		return "", err
	}

	line, err := c.ReadLine()

	_ = c.writeRaw([]byte{IAC, WONT, OptEcho})
	_ = c.writeRaw([]byte("\r\n"))

	return line, err
}

// WriteLine sends text followed by \r\n. Embedded newlines are sent as
// \r\n so multi-line blocks render on every client.
//
// Postcondition: text + \r\n is written to the connection.
func (c *Conn) WriteLine(text string) error {
	return c.writeText(text + "\n")
}

// WriteLines writes each line in order, stopping at the first error.
func (c *Conn) WriteLines(lines ...string) error {
	for _, l := range lines {
		if err := c.WriteLine(l); err != nil {
			return err
		}
	}
	return nil
}

// WritePrompt sends a prompt string without a trailing newline.
//
// Postcondition: The prompt text is written to the connection.
func (c *Conn) WritePrompt(prompt string) error {
	return c.writeText(prompt)
}

// Write sends raw bytes to the client without translation.
//
// Postcondition: The data is written to the connection.
func (c *Conn) Write(data []byte) error {
	return c.writeRaw(data)
}

func (c *Conn) writeText(text string) error {
	if !c.color {
		text = StripANSI(text)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", "\r\n")
	return c.writeRaw([]byte(text))
}

func (c *Conn) writeRaw(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.raw != nil && c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.w.Write(data)
	return err
}

// Close closes the underlying connection, or the stream reader when it is
// closable.
//
// Postcondition: The connection is closed and no longer usable.
func (c *Conn) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// RemoteAddr returns the client's address, or "local" for stream connections.
func (c *Conn) RemoteAddr() string {
	if c.raw == nil {
		return "local"
	}
	return c.raw.RemoteAddr().String()
}
