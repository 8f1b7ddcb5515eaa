package smppcheck

import (
	"fmt"
	smppcheck "github.com/smpplab/smppcheck/const"
)

const MaxSMPPPacketSize = 8192

type ConnSMPPMode uint8
type SessionState uint8

type SMPPHeader struct {
	Len    uint32
	ID     uint32
	Status uint32
	Seq    uint32
}

func (h SMPPHeader) String() string {
	return fmt.Sprintf("[%d|%d,%s|%d|%d bytes]", h.Seq, h.ID, CmdName(h.ID), h.Status, h.Len)
}

type SMPPPacket struct {
	Hdr  SMPPHeader
	Body []byte

	BodyLen uint32 // Length of the data body
}

// Checker session state: Disconnected => Connected => Bound [ => Verified ] => Unbound => Closed
// Failed is terminal for any fatal error on the way
const (
	CSessDisconnected SessionState = iota
	CSessConnected
	CSessBound
	CSessVerified
	CSessUnbound
	CSessClosed
	CSessFailed
)

var sessionStateText = map[SessionState]string{
	CSessDisconnected: "Disconnected",
	CSessConnected:    "Connected",
	CSessBound:        "Bound",
	CSessVerified:     "Verified",
	CSessUnbound:      "Unbound",
	CSessClosed:       "Closed",
	CSessFailed:       "Failed",
}

func (x SessionState) String() string { return sessionStateText[x] }

// SMPP Bind mode: TX, RX, TRX
const (
	CSMPPUndefined ConnSMPPMode = iota
	CSMPPTX
	CSMPPRX
	CSMPPTRX
)

var connSMPPModeText = map[ConnSMPPMode]string{
	CSMPPUndefined: "Undefined",
	CSMPPTX:        "TX",
	CSMPPRX:        "RX",
	CSMPPTRX:       "TRX",
}

func (x ConnSMPPMode) String() string { return connSMPPModeText[x] }

type SMPPBind struct {
	ConnMode   ConnSMPPMode
	SystemID   string
	Password   string
	SystemType string
	AddrTON    uint8
	AddrNPI    uint8
	AddrRange  string
}

var CMDNameMapping = map[uint32]string{
	smppcheck.CMD_GENERIC_NACK:          "GENERIC_NACK",
	smppcheck.CMD_BIND_RECEIVER:         "BIND_RECEIVER",
	smppcheck.CMD_BIND_RECEIVER_RESP:    "BIND_RECEIVER_RESP",
	smppcheck.CMD_BIND_TRANSMITTER:      "BIND_TRANSMITTER",
	smppcheck.CMD_BIND_TRANSMITTER_RESP: "BIND_TRANSMITTER_RESP",
	smppcheck.CMD_QUERY_SM:              "QUERY_SM",
	smppcheck.CMD_QUERY_SM_RESP:         "QUERY_SM_RESP",
	smppcheck.CMD_SUBMIT_SM:             "SUBMIT_SM",
	smppcheck.CMD_SUBMIT_SM_RESP:        "SUBMIT_SM_RESP",
	smppcheck.CMD_DELIVER_SM:            "DELIVER_SM",
	smppcheck.CMD_DELIVER_SM_RESP:       "DELIVER_SM_RESP",
	smppcheck.CMD_UNBIND:                "UNBIND",
	smppcheck.CMD_UNBIND_RESP:           "UNBIND_RESP",
	smppcheck.CMD_REPLACE_SM:            "REPLACE_SM",
	smppcheck.CMD_REPLACE_SM_RESP:       "REPLACE_SM_RESP",
	smppcheck.CMD_CANCEL_SM:             "CANCEL_SM",
	smppcheck.CMD_CANCEL_SM_RESP:        "CANCEL_SM_RESP",
	smppcheck.CMD_BIND_TRANSCIEVER:      "BIND_TRANSCIEVER",
	smppcheck.CMD_BIND_TRANSCIEVER_RESP: "BIND_TRANSCIEVER_RESP",
	smppcheck.CMD_OUTBIND:               "OUTBIND",
	smppcheck.CMD_ENQUIRE_LINK:          "ENQUIRE_LINK",
	smppcheck.CMD_ENQUIRE_LINK_RESP:     "ENQUIRE_LINK_RESP",
	smppcheck.CMD_SUBMIT_MULTI:          "SUBMIT_MULTI",
	smppcheck.CMD_SUBMIT_MULTI_RESP:     "SUBMIT_MULTI_RESP",
	smppcheck.CMD_ALERT_NOTIFICATION:    "ALERT_NOTIFICATION",
	smppcheck.CMD_DATA_SM:               "DATA_SM",
	smppcheck.CMD_DATA_SM_RESP:          "DATA_SM_RESP",
}

func CmdName(id uint32) string {
	if name, ok := CMDNameMapping[id]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%08X)", id)
}
