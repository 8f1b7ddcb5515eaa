package smppcheck

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

// Conn is the probe connection to the SMSC: a plain TCP socket or a TLS
// client session on top of it
type Conn struct {
	conn net.Conn
}

// Connect dials the SMSC within the timeout. TLS mode sends SNI for the
// target host but skips peer certificate verification: the checker
// answers "can I bind", not "is the certificate chain healthy"
func Connect(host string, port int, timeout time.Duration, useTLS bool) (*Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, NewError(ErrConnect, fmt.Sprintf("Cannot connect to [%s]", addr), err)
	}

	if useTLS {
		tc := tls.Client(conn, &tls.Config{
			InsecureSkipVerify: true,
			ServerName:         host,
		})
		// Handshake is bounded by the same timeout as the dial
		tc.SetDeadline(time.Now().Add(timeout))
		if err := tc.Handshake(); err != nil {
			tc.Close()
			return nil, NewError(ErrConnect, fmt.Sprintf("TLS handshake with [%s] failed", addr), err)
		}
		tc.SetDeadline(time.Time{})
		conn = tc
	}

	return &Conn{conn: conn}, nil
}

// ReadExact reads exactly n bytes within the timeout
func (c *Conn) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	buf := make([]byte, n)
	c.conn.SetReadDeadline(time.Now().Add(timeout))

	if _, err := io.ReadFull(c.conn, buf); err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return nil, NewError(ErrReadTimeout, fmt.Sprintf("No data from peer within %v", timeout), err)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, NewError(ErrClosed, "Peer closed the connection", err)
		}
		return nil, NewError(ErrClosed, "Error reading from peer", err)
	}
	return buf, nil
}

func (c *Conn) Write(b []byte) error {
	if _, err := c.conn.Write(b); err != nil {
		return NewError(ErrWrite, "Error writing to peer", err)
	}
	return nil
}

// TLSState reports the negotiated TLS parameters, nil for plain TCP
func (c *Conn) TLSState() *tls.ConnectionState {
	if tc, ok := c.conn.(*tls.Conn); ok {
		st := tc.ConnectionState()
		return &st
	}
	return nil
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
