package smppcheck

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	smppcheck "github.com/smpplab/smppcheck/const"
)

func testReporter() *Reporter {
	return NewReporter(ReporterOptions{Output: io.Discard})
}

// startSMSC runs a scripted SMSC on the loopback and returns a session
// configuration pointing at it
func startSMSC(t *testing.T, script func(conn net.Conn)) SessionConfig {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		script(conn)
	}()

	host, port := hostPort(t, l.Addr())
	return SessionConfig{
		Host: host,
		Port: port,
		Bind: SMPPBind{
			ConnMode:   CSMPPTRX,
			SystemID:   "probe",
			Password:   "secret",
			SystemType: "SMPP",
		},
		ConnectTimeout: time.Second,
		ReadTimeout:    500 * time.Millisecond,
	}
}

// scriptReadPDU is the SMSC side of readPDU, any error just ends the script
func scriptReadPDU(conn net.Conn) (*SMPPPacket, error) {
	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(conn, lenBuf); err != nil {
		return nil, err
	}
	pktLen, err := DecodeLength(lenBuf)
	if err != nil {
		return nil, err
	}
	rest := make([]byte, pktLen-4)
	if _, err := io.ReadFull(conn, rest); err != nil {
		return nil, err
	}
	p := &SMPPPacket{}
	if err := p.Decode(append(lenBuf, rest...)); err != nil {
		return nil, err
	}
	return p, nil
}

// answeringSMSC confirms bind, enquire_link and unbind, rejecting the
// bind when bindStatus is not ESME_ROK. Received sequence numbers are
// pushed to seqs when the script ends
func answeringSMSC(bindStatus uint32, seqs chan<- []uint32) func(conn net.Conn) {
	return func(conn net.Conn) {
		var got []uint32
		if seqs != nil {
			defer func() { seqs <- got }()
		}
		for {
			p, err := scriptReadPDU(conn)
			if err != nil {
				return
			}
			got = append(got, p.Hdr.Seq)
			switch p.Hdr.ID {
			case smppcheck.CMD_BIND_TRANSMITTER, smppcheck.CMD_BIND_RECEIVER, smppcheck.CMD_BIND_TRANSCIEVER:
				conn.Write(EncodeBindRespRAW(p.Hdr.ID, p.Hdr.Seq, bindStatus, "TEST-SMSC"))
				if bindStatus != smppcheck.ESME_ROK {
					return
				}
			case smppcheck.CMD_ENQUIRE_LINK:
				conn.Write(EncodeEnquireLinkRespRAW(p.Hdr.Seq))
			case smppcheck.CMD_UNBIND:
				conn.Write(EncodeUnbindRespRAW(p.Hdr.Seq))
				return
			default:
				return
			}
		}
	}
}

func TestSessionDefaults(t *testing.T) {
	s := NewSession(SessionConfig{Host: "smsc"}, testReporter())
	assert.Equal(t, CSessDisconnected, s.State())
	assert.Equal(t, 2775, s.cfg.Port)
	assert.Equal(t, 10*time.Second, s.cfg.ConnectTimeout)
	assert.Equal(t, 10*time.Second, s.cfg.ReadTimeout)
}

func TestSessionStateGuards(t *testing.T) {
	s := NewSession(SessionConfig{Host: "smsc"}, testReporter())
	assert.EqualError(t, s.Bind(), "Bind is not allowed in state [Disconnected]")
	assert.EqualError(t, s.EnquireLink(), "EnquireLink is not allowed in state [Disconnected]")
	assert.EqualError(t, s.Unbind(), "Unbind is not allowed in state [Disconnected]")
}

func TestSessionRunOK(t *testing.T) {
	cfg := startSMSC(t, answeringSMSC(smppcheck.ESME_ROK, nil))
	s := NewSession(cfg, testReporter())
	assert.Equal(t, 0, s.Run())
	assert.Equal(t, CSessClosed, s.State())
}

func TestSessionRunWithEnquireLink(t *testing.T) {
	seqs := make(chan []uint32, 1)
	cfg := startSMSC(t, answeringSMSC(smppcheck.ESME_ROK, seqs))
	cfg.Enquire = true
	s := NewSession(cfg, testReporter())
	assert.Equal(t, 0, s.Run())
	assert.Equal(t, CSessClosed, s.State())

	got := <-seqs
	require.Len(t, got, 3)
	assert.Equal(t, uint32(1), got[0])          // bind
	assert.Equal(t, uint32(2), got[1])          // enquire_link
	assert.Equal(t, uint32(0x7FFF0001), got[2]) // unbind from its own range
}

func TestSessionBindRefused(t *testing.T) {
	cfg := startSMSC(t, answeringSMSC(smppcheck.ESME_RINVPASWD, nil))
	s := NewSession(cfg, testReporter())

	require.NoError(t, s.Connect())
	err := s.Bind()
	require.Error(t, err)

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, ErrBindRefused, e.Kind)
	assert.Equal(t, uint32(smppcheck.ESME_RINVPASWD), e.Status)
	assert.Contains(t, err.Error(), "ESME_RINVPASWD")
	s.Close()
}

func TestSessionRunBindRefused(t *testing.T) {
	cfg := startSMSC(t, answeringSMSC(smppcheck.ESME_RBINDFAIL, nil))
	s := NewSession(cfg, testReporter())
	assert.Equal(t, 1, s.Run())
	assert.Equal(t, CSessFailed, s.State())
}

func TestSessionBindRefusedUnknownStatus(t *testing.T) {
	cfg := startSMSC(t, answeringSMSC(0xFF, nil))
	s := NewSession(cfg, testReporter())

	require.NoError(t, s.Connect())
	err := s.Bind()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNKNOWN(0x000000FF)")
	s.Close()
}

func TestSessionBindTimesOut(t *testing.T) {
	cfg := startSMSC(t, func(conn net.Conn) {
		// Accept the bind request and never answer
		scriptReadPDU(conn)
		io.ReadFull(conn, make([]byte, 1))
	})
	s := NewSession(cfg, testReporter())

	require.NoError(t, s.Connect())
	err := s.Bind()
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrReadTimeout, kind)
	s.Close()
}

func TestSessionPartialResponse(t *testing.T) {
	cfg := startSMSC(t, func(conn net.Conn) {
		if _, err := scriptReadPDU(conn); err != nil {
			return
		}
		// 10 bytes of a response that declares 20
		conn.Write([]byte{0x00, 0x00, 0x00, 0x14, 0x80, 0x00, 0x00, 0x09, 0x00, 0x00})
	})
	s := NewSession(cfg, testReporter())

	require.NoError(t, s.Connect())
	err := s.Bind()
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrClosed, kind)
	s.Close()
}

func TestSessionMalformedResponseDumped(t *testing.T) {
	cfg := startSMSC(t, func(conn net.Conn) {
		if _, err := scriptReadPDU(conn); err != nil {
			return
		}
		// A length prefix no packet can have
		conn.Write([]byte{0x00, 0x00, 0x00, 0x08})
		io.ReadFull(conn, make([]byte, 1))
	})
	var buf bytes.Buffer
	s := NewSession(cfg, NewReporter(ReporterOptions{Verbose: true, Output: &buf}))

	require.NoError(t, s.Connect())
	err := s.Bind()
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrMalformed, kind)

	// The offending bytes must be on record, not just the error text
	assert.Contains(t, buf.String(), "dir=recv")
	assert.Contains(t, buf.String(), "00000008")
	s.Close()
}

func TestSessionBindWrongResponse(t *testing.T) {
	cfg := startSMSC(t, func(conn net.Conn) {
		p, err := scriptReadPDU(conn)
		if err != nil {
			return
		}
		conn.Write(EncodeEnquireLinkRespRAW(p.Hdr.Seq))
	})
	s := NewSession(cfg, testReporter())

	require.NoError(t, s.Connect())
	err := s.Bind()
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrMalformed, kind)
	assert.Contains(t, err.Error(), "ENQUIRE_LINK_RESP")
	s.Close()
}

func TestSessionEnquireUnexpectedResponse(t *testing.T) {
	seqs := make(chan []uint32, 1)
	cfg := startSMSC(t, func(conn net.Conn) {
		var got []uint32
		defer func() { seqs <- got }()
		for {
			p, err := scriptReadPDU(conn)
			if err != nil {
				return
			}
			got = append(got, p.Hdr.Seq)
			switch p.Hdr.ID {
			case smppcheck.CMD_BIND_TRANSCIEVER:
				conn.Write(EncodeBindRespRAW(p.Hdr.ID, p.Hdr.Seq, smppcheck.ESME_ROK, "TEST-SMSC"))
			case smppcheck.CMD_ENQUIRE_LINK:
				// Answer with a response to a different command
				conn.Write(EncodeUnbindRespRAW(p.Hdr.Seq))
			case smppcheck.CMD_UNBIND:
				conn.Write(EncodeUnbindRespRAW(p.Hdr.Seq))
				return
			default:
				return
			}
		}
	})
	cfg.Enquire = true
	s := NewSession(cfg, testReporter())
	assert.Equal(t, 0, s.Run())
	assert.Equal(t, CSessClosed, s.State())

	got := <-seqs
	require.Len(t, got, 3) // the unbind still went out
}

func TestSessionUnbindWithoutAnswer(t *testing.T) {
	cfg := startSMSC(t, func(conn net.Conn) {
		p, err := scriptReadPDU(conn)
		if err != nil {
			return
		}
		conn.Write(EncodeBindRespRAW(p.Hdr.ID, p.Hdr.Seq, smppcheck.ESME_ROK, "TEST-SMSC"))
		// Swallow the unbind and say nothing
		scriptReadPDU(conn)
		io.ReadFull(conn, make([]byte, 1))
	})
	s := NewSession(cfg, testReporter())
	assert.Equal(t, 0, s.Run())
	assert.Equal(t, CSessClosed, s.State())
}

func TestSessionAbort(t *testing.T) {
	cfg := startSMSC(t, func(conn net.Conn) {
		// Keep the bind unanswered until the checker aborts
		scriptReadPDU(conn)
		io.ReadFull(conn, make([]byte, 1))
	})
	cfg.ReadTimeout = 5 * time.Second
	s := NewSession(cfg, testReporter())
	require.NoError(t, s.Connect())

	go func() {
		time.Sleep(100 * time.Millisecond)
		s.Abort()
	}()

	err := s.Bind()
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrClosed, kind)
	s.Close()
}

func TestSessionAbortDuringRun(t *testing.T) {
	cfg := startSMSC(t, func(conn net.Conn) {
		scriptReadPDU(conn)
		io.ReadFull(conn, make([]byte, 1))
	})
	cfg.ReadTimeout = 5 * time.Second
	s := NewSession(cfg, testReporter())

	// The same shape the signal handler uses: Abort races the probe
	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(100 * time.Millisecond)
		s.Abort()
	}()

	assert.Equal(t, 1, s.Run())
	assert.Equal(t, CSessFailed, s.State())
	<-done

	// A late signal after teardown stays harmless
	s.Abort()
}
