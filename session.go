package smppcheck

import (
	"crypto/tls"
	"fmt"
	log "github.com/sirupsen/logrus"
	smppcheck "github.com/smpplab/smppcheck/const"
	"sync"
	"time"
)

// Unbind requests are numbered from their own base so a late handshake
// answer can never be mistaken for the unbind confirmation
const unbindSeqBase = 0x7FFF0000

// SessionConfig is fixed at session creation, the probe never mutates it
type SessionConfig struct {
	Host string
	Port int

	Bind SMPPBind

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	UseTLS  bool
	Enquire bool
}

// Session drives one single-shot check:
// Connect => Bind => [EnquireLink] => Unbind => Close.
// Any fatal error parks the session in Failed
type Session struct {
	cfg SessionConfig
	rep *Reporter

	mu    sync.Mutex // conn is touched by Abort from the signal goroutine
	conn  *Conn
	state SessionState

	seq       uint32 // bind + enquire_link requests
	unbindSeq uint32 // independent counter for the unbind exchange
}

func NewSession(cfg SessionConfig, rep *Reporter) *Session {
	if cfg.Port == 0 {
		cfg.Port = smppcheck.DEFAULT_SMPP_PORT
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = smppcheck.DEFAULT_CONNECT_TIMEOUT_MS * time.Millisecond
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = smppcheck.DEFAULT_READ_TIMEOUT_MS * time.Millisecond
	}

	return &Session{
		cfg:       cfg,
		rep:       rep,
		state:     CSessDisconnected,
		unbindSeq: unbindSeqBase,
	}
}

func (s *Session) State() SessionState { return s.state }

// Allocate SEQUENCE number for handshake requests
func (s *Session) allocateSeqNo() uint32 {
	s.seq++
	return s.seq
}

// Allocate SEQUENCE number for the unbind exchange
func (s *Session) allocateUnbindSeqNo() uint32 {
	s.unbindSeq++
	return s.unbindSeq
}

// send pushes one encoded packet to the wire and traces it
func (s *Session) send(buf []byte) error {
	if err := s.conn.Write(buf); err != nil {
		return err
	}
	s.rep.DumpPDU("sent", buf)
	return nil
}

// readPDU reads one complete packet: the 4 byte command_length prefix
// first, then the declared remainder, then a full decode
func (s *Session) readPDU() (*SMPPPacket, error) {
	lenBuf, err := s.conn.ReadExact(4, s.cfg.ReadTimeout)
	if err != nil {
		return nil, err
	}

	pktLen, err := DecodeLength(lenBuf)
	if err != nil {
		s.rep.DumpPDU("recv", lenBuf)
		return nil, err
	}

	rest, err := s.conn.ReadExact(int(pktLen)-4, s.cfg.ReadTimeout)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, pktLen)
	copy(frame, lenBuf)
	copy(frame[4:], rest)
	s.rep.DumpPDU("recv", frame)

	p := &SMPPPacket{}
	if err := p.Decode(frame); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Session) Connect() error {
	if s.state != CSessDisconnected {
		return fmt.Errorf("Connect is not allowed in state [%s]", s.state)
	}

	transport := "TCP"
	if s.cfg.UseTLS {
		transport = "TLS"
	}
	remote := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "Connect", "remote": remote, "transport": transport}).Info("Connecting")

	conn, err := Connect(s.cfg.Host, s.cfg.Port, s.cfg.ConnectTimeout, s.cfg.UseTLS)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.state = CSessConnected

	if st := conn.TLSState(); st != nil {
		s.rep.WithFields(log.Fields{
			"type":    "smpp-check",
			"service": "Connect",
			"version": tls.VersionName(st.Version),
			"cipher":  tls.CipherSuiteName(st.CipherSuite),
		}).Debug("TLS handshake complete")
	}

	s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "Connect", "remote": remote}).Info("Connection established")
	return nil
}

func (s *Session) Bind() error {
	if s.state != CSessConnected {
		return fmt.Errorf("Bind is not allowed in state [%s]", s.state)
	}

	seq := s.allocateSeqNo()
	req, err := EncodeBind(s.cfg.Bind.ConnMode, s.cfg.Bind, seq)
	if err != nil {
		return err
	}

	s.rep.WithFields(log.Fields{
		"type":     "smpp-check",
		"service":  "Bind",
		"mode":     s.cfg.Bind.ConnMode.String(),
		"systemID": s.cfg.Bind.SystemID,
		"seq":      seq,
	}).Info("Sending bind request")

	if err := s.send(req); err != nil {
		return err
	}

	p, err := s.readPDU()
	if err != nil {
		return err
	}

	status, smscID, derr := DecodeBindResp(p)
	if derr != nil {
		s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "Bind"}).Warning("Cannot parse bind response body: ", derr)
	}

	s.rep.WithFields(log.Fields{
		"type":    "smpp-check",
		"service": "Bind",
		"resp":    CmdName(p.Hdr.ID),
		"status":  StatusName(status),
		"seq":     p.Hdr.Seq,
	}).Info("Received bind response")

	if p.Hdr.Seq != seq {
		// Some SMSC implementations misnumber the first response, report
		// and carry on
		s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "Bind", "sent": seq, "got": p.Hdr.Seq}).Warning("Sequence mismatch in bind response")
	}

	if status != smppcheck.ESME_ROK {
		return &Error{
			Kind:   ErrBindRefused,
			Desc:   fmt.Sprintf("Bind rejected with status [%s]", StatusName(status)),
			Status: status,
		}
	}

	reqID := p.Hdr.ID &^ uint32(smppcheck.CMD_RESP_MASK)
	isBindResp := p.Hdr.ID&smppcheck.CMD_RESP_MASK != 0 &&
		(reqID == smppcheck.CMD_BIND_TRANSMITTER || reqID == smppcheck.CMD_BIND_RECEIVER || reqID == smppcheck.CMD_BIND_TRANSCIEVER)
	if !isBindResp {
		return NewError(ErrMalformed, fmt.Sprintf("Expected bind response, got [%s]", CmdName(p.Hdr.ID)), nil)
	}

	if expect := BindRespCommandID(s.cfg.Bind.ConnMode); p.Hdr.ID != expect {
		s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "Bind", "resp": CmdName(p.Hdr.ID)}).Warning("Bind mode mismatch in response")
	}

	if len(smscID) > 0 {
		s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "Bind", "SMSCID": smscID}).Info("Remote system identified itself")
	}

	s.state = CSessBound
	return nil
}

// EnquireLink verifies link liveness after a successful bind. From here
// on nothing is fatal anymore, the verdict was earned by the bind
func (s *Session) EnquireLink() error {
	if s.state != CSessBound {
		return fmt.Errorf("EnquireLink is not allowed in state [%s]", s.state)
	}

	seq := s.allocateSeqNo()
	s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "EnquireLink", "seq": seq}).Info("Sending enquire_link")

	if err := s.send(EncodeEnquireLinkRAW(seq)); err != nil {
		s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "EnquireLink"}).Warning("Cannot send enquire_link: ", err)
		return err
	}

	p, err := s.readPDU()
	if err != nil {
		s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "EnquireLink"}).Warning("No enquire_link confirmation: ", err)
		return err
	}

	if p.Hdr.ID != smppcheck.CMD_ENQUIRE_LINK_RESP {
		s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "EnquireLink", "resp": CmdName(p.Hdr.ID)}).Warning("Unexpected response to enquire_link")
	} else if p.Hdr.Seq != seq {
		s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "EnquireLink", "sent": seq, "got": p.Hdr.Seq}).Warning("Sequence mismatch in enquire_link response")
	} else {
		s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "EnquireLink", "seq": p.Hdr.Seq, "status": StatusName(p.Hdr.Status)}).Info("Link verified")
	}

	s.state = CSessVerified
	return nil
}

// Unbind tells the peer the check is over. Best effort: the verdict does
// not depend on the confirmation arriving
func (s *Session) Unbind() error {
	if (s.state != CSessBound) && (s.state != CSessVerified) {
		return fmt.Errorf("Unbind is not allowed in state [%s]", s.state)
	}

	seq := s.allocateUnbindSeqNo()
	s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "Unbind", "seq": seq}).Info("Sending unbind")

	if err := s.send(EncodeUnbindRAW(seq)); err != nil {
		s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "Unbind"}).Warning("Cannot send unbind: ", err)
		s.state = CSessUnbound
		return err
	}

	p, err := s.readPDU()
	if err != nil {
		s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "Unbind"}).Warning("No unbind confirmation: ", err)
		s.state = CSessUnbound
		return err
	}

	if p.Hdr.ID != smppcheck.CMD_UNBIND_RESP {
		s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "Unbind", "resp": CmdName(p.Hdr.ID)}).Warning("Unexpected response to unbind")
	} else if p.Hdr.Seq != seq {
		s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "Unbind", "sent": seq, "got": p.Hdr.Seq}).Warning("Sequence mismatch in unbind response")
	} else {
		s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "Unbind", "seq": p.Hdr.Seq, "status": StatusName(p.Hdr.Status)}).Info("Unbind confirmed")
	}

	s.state = CSessUnbound
	return nil
}

// Close shuts the socket down unconditionally, close errors never matter
func (s *Session) Close() {
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "Close"}).Debug("Error closing connection: ", err)
		}
	}
	if s.state != CSessFailed {
		s.state = CSessClosed
	}
}

// Abort closes the socket from a signal handler. The in-flight read
// fails and the probe reports the failure through the usual path
func (s *Session) Abort() {
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()
	if c != nil {
		c.Close()
	}
}

// fail emits the single ERROR line of a failed probe
func (s *Session) fail(err error) {
	s.state = CSessFailed
	s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "Probe"}).Error("Bind check failed: ", err)
}

// Run executes the whole probe and returns the process exit code:
// 0 when connect and bind both succeeded, 1 otherwise. Failures after a
// successful bind are reported as warnings and do not change the verdict
func (s *Session) Run() int {
	if err := s.Connect(); err != nil {
		s.fail(err)
		return 1
	}

	if err := s.Bind(); err != nil {
		s.fail(err)
		s.Close()
		return 1
	}

	transportAlive := true
	if s.cfg.Enquire {
		if err := s.EnquireLink(); err != nil {
			if kind, ok := KindOf(err); ok && (kind == ErrClosed || kind == ErrWrite) {
				transportAlive = false
			}
		}
	}

	if transportAlive {
		s.Unbind()
	}
	s.Close()

	s.rep.WithFields(log.Fields{"type": "smpp-check", "service": "Probe", "state": s.state.String()}).Info("Bind check complete: OK")
	return 0
}
