package smppcheck

import (
	"encoding/binary"
	"fmt"
	smppcheck "github.com/smpplab/smppcheck/const"
)

func ReadCString(b []byte, maxLen int, fieldName string) (data string, l int, err error) {
	if (maxLen < 1) || (maxLen > len(b)) {
		maxLen = len(b)
	}

	for l = 0; l < maxLen; l++ {
		if b[l] == 0 {
			if l > 0 {
				data = string(b[0:l])
			} else {
				data = ""
			}
			// Skip trailing 0x00
			l++
			return
		}
	}

	// No terminator found, copy the least part of the line and raise an error
	data = string(b[0:maxLen])
	err = fmt.Errorf("No CString terminator for field [%s]", fieldName)
	return
}

// DecodeLength reads the command_length prefix of an incoming packet.
// Requires at least 4 bytes of data
func DecodeLength(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, NewError(ErrMalformed, fmt.Sprintf("Length prefix is too short (%d, expecting 4 bytes)", len(b)), nil)
	}
	l := binary.BigEndian.Uint32(b)
	if l < 16 {
		return 0, NewError(ErrMalformed, fmt.Sprintf("Packet body is too short (%d)", l), nil)
	}
	if l > MaxSMPPPacketSize {
		return 0, NewError(ErrMalformed, fmt.Sprintf("Packet body is too large (%d, allowed only %d bytes)", l, MaxSMPPPacketSize), nil)
	}
	return l, nil
}

// Decode parses a complete packet: 16 byte header + body
func (p *SMPPPacket) Decode(b []byte) error {
	if len(b) < 16 {
		return NewError(ErrMalformed, fmt.Sprintf("Packet is too short (%d, expecting 16 or more bytes)", len(b)), nil)
	}
	p.Hdr.Len = binary.BigEndian.Uint32(b[0:])
	p.Hdr.ID = binary.BigEndian.Uint32(b[4:])
	p.Hdr.Status = binary.BigEndian.Uint32(b[8:])
	p.Hdr.Seq = binary.BigEndian.Uint32(b[12:])

	if p.Hdr.Len < 16 {
		return NewError(ErrMalformed, fmt.Sprintf("Packet body is too short (%d)", p.Hdr.Len), nil)
	}
	if p.Hdr.Len > MaxSMPPPacketSize {
		return NewError(ErrMalformed, fmt.Sprintf("Packet body is too large (%d, allowed only %d bytes)", p.Hdr.Len, MaxSMPPPacketSize), nil)
	}
	if uint32(len(b)) != p.Hdr.Len {
		return NewError(ErrMalformed, fmt.Sprintf("Packet length mismatch (declared %d, got %d bytes)", p.Hdr.Len, len(b)), nil)
	}

	p.BodyLen = p.Hdr.Len - 16
	p.Body = make([]byte, p.BodyLen)
	copy(p.Body, b[16:])
	return nil
}

func encodeFrame(id uint32, status uint32, seq uint32, body []byte) []byte {
	buf := make([]byte, 16+len(body))
	binary.BigEndian.PutUint32(buf, uint32(16+len(body)))
	binary.BigEndian.PutUint32(buf[4:], id)
	binary.BigEndian.PutUint32(buf[8:], status)
	binary.BigEndian.PutUint32(buf[12:], seq)
	copy(buf[16:], body)
	return buf
}

// EncodeRAW wraps a request body into a complete packet.
// Requests always carry command_status = 0
func EncodeRAW(id uint32, seq uint32, body []byte) []byte {
	return encodeFrame(id, 0, seq, body)
}

// Encode ENQUIRE_LINK
func EncodeEnquireLinkRAW(seq uint32) []byte {
	return encodeFrame(smppcheck.CMD_ENQUIRE_LINK, 0, seq, nil)
}

// Encode ENQUIRE_LINK_RESP
func EncodeEnquireLinkRespRAW(seq uint32) []byte {
	return encodeFrame(smppcheck.CMD_ENQUIRE_LINK_RESP, 0, seq, nil)
}

// Encode UNBIND
func EncodeUnbindRAW(seq uint32) []byte {
	return encodeFrame(smppcheck.CMD_UNBIND, 0, seq, nil)
}

// Encode UNBIND_RESP
func EncodeUnbindRespRAW(seq uint32) []byte {
	return encodeFrame(smppcheck.CMD_UNBIND_RESP, 0, seq, nil)
}

// Encode BindResp for the requested bind Command ID
func EncodeBindRespRAW(id uint32, seq uint32, status uint32, systemID string) []byte {
	body := make([]byte, len(systemID)+1)
	copy(body, systemID)
	return encodeFrame(id|smppcheck.CMD_RESP_MASK, status, seq, body)
}

// Decode BindResp
func DecodeBindResp(p *SMPPPacket) (status uint32, systemID string, err error) {
	status = p.Hdr.Status
	if p.Hdr.Len == 16 {
		return
	}
	systemID, _, err = ReadCString(p.Body, len(p.Body), "SystemID")
	return
}

// EncodeBindBody packs bind parameters into the wire layout:
// system_id, password and system_type as CStrings, interface_version
// (always 0x34), addr_ton and addr_npi bytes, address_range CString.
// Field lengths are not capped here, a checker must be able to send
// whatever credentials it was given
func EncodeBindBody(b SMPPBind) []byte {
	buf := make([]byte, len(b.SystemID)+len(b.Password)+len(b.SystemType)+len(b.AddrRange)+7)
	offset := 0

	copy(buf, b.SystemID)
	offset += len(b.SystemID)
	buf[offset] = 0
	offset++

	copy(buf[offset:], b.Password)
	offset += len(b.Password)
	buf[offset] = 0
	offset++

	copy(buf[offset:], b.SystemType)
	offset += len(b.SystemType)
	buf[offset] = 0
	offset++

	buf[offset] = smppcheck.SMPP_VERSION_34
	offset++
	buf[offset] = b.AddrTON
	offset++
	buf[offset] = b.AddrNPI
	offset++

	copy(buf[offset:], b.AddrRange)
	offset += len(b.AddrRange)
	buf[offset] = 0
	offset++

	return buf[0:offset]
}

// DecodeBindBody is the inverse of EncodeBindBody.
// ConnMode is not part of the body, the caller takes it from the Command ID
func DecodeBindBody(b []byte) (bind SMPPBind, iversion uint8, err error) {
	var l, offset int

	bind.SystemID, l, err = ReadCString(b[offset:], 16, "SystemID")
	offset += l
	if err != nil {
		return
	}

	bind.Password, l, err = ReadCString(b[offset:], 9, "Password")
	offset += l
	if err != nil {
		return
	}

	bind.SystemType, l, err = ReadCString(b[offset:], 13, "SystemType")
	offset += l
	if err != nil {
		return
	}

	if offset+3 > len(b) {
		err = fmt.Errorf("Invalid packet, no data for InterfaceVersion/AddrTON/AddrNPI")
		return
	}

	iversion = b[offset]
	offset++
	bind.AddrTON = b[offset]
	offset++
	bind.AddrNPI = b[offset]
	offset++

	bind.AddrRange, l, err = ReadCString(b[offset:], 41, "AddressRange")
	offset += l
	if err != nil {
		return
	}

	if offset != len(b) {
		err = fmt.Errorf("Invalid packet body len [Body: %d, Context: %d]", len(b), offset)
		return
	}

	return
}

// BindCommandID maps a bind mode to its request Command ID
func BindCommandID(m ConnSMPPMode) (uint32, error) {
	switch m {
	case CSMPPTX:
		return smppcheck.CMD_BIND_TRANSMITTER, nil
	case CSMPPRX:
		return smppcheck.CMD_BIND_RECEIVER, nil
	case CSMPPTRX:
		return smppcheck.CMD_BIND_TRANSCIEVER, nil
	}
	return 0, fmt.Errorf("Invalid connection mode")
}

// BindRespCommandID maps a bind mode to the expected response Command ID,
// 0 for an invalid mode
func BindRespCommandID(m ConnSMPPMode) uint32 {
	id, err := BindCommandID(m)
	if err != nil {
		return 0
	}
	return id | smppcheck.CMD_RESP_MASK
}

// Generate BIND packet for the requested mode
func EncodeBind(m ConnSMPPMode, b SMPPBind, seq uint32) ([]byte, error) {
	cmdid, err := BindCommandID(m)
	if err != nil {
		return nil, err
	}

	return EncodeRAW(cmdid, seq, EncodeBindBody(b)), nil
}
