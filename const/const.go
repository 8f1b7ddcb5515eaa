package smppcheck

// SMPP 3.4 Command IDs
const (
	CMD_GENERIC_NACK          = 0x80000000
	CMD_BIND_RECEIVER         = 0x00000001
	CMD_BIND_RECEIVER_RESP    = 0x80000001
	CMD_BIND_TRANSMITTER      = 0x00000002
	CMD_BIND_TRANSMITTER_RESP = 0x80000002
	CMD_QUERY_SM              = 0x00000003
	CMD_QUERY_SM_RESP         = 0x80000003
	CMD_SUBMIT_SM             = 0x00000004
	CMD_SUBMIT_SM_RESP        = 0x80000004
	CMD_DELIVER_SM            = 0x00000005
	CMD_DELIVER_SM_RESP       = 0x80000005
	CMD_UNBIND                = 0x00000006
	CMD_UNBIND_RESP           = 0x80000006
	CMD_REPLACE_SM            = 0x00000007
	CMD_REPLACE_SM_RESP       = 0x80000007
	CMD_CANCEL_SM             = 0x00000008
	CMD_CANCEL_SM_RESP        = 0x80000008
	CMD_BIND_TRANSCIEVER      = 0x00000009
	CMD_BIND_TRANSCIEVER_RESP = 0x80000009
	CMD_OUTBIND               = 0x0000000B
	CMD_ENQUIRE_LINK          = 0x00000015
	CMD_ENQUIRE_LINK_RESP     = 0x80000015
	CMD_SUBMIT_MULTI          = 0x00000021
	CMD_SUBMIT_MULTI_RESP     = 0x80000021
	CMD_ALERT_NOTIFICATION    = 0x00000102
	CMD_DATA_SM               = 0x00000103
	CMD_DATA_SM_RESP          = 0x80000103
)

// Response packets carry the request Command ID with this bit set
const CMD_RESP_MASK = 0x80000000

// SMPP 3.4 Command Status (ESME) codes
const (
	ESME_ROK           = 0x00000000
	ESME_RINVMSGLEN    = 0x00000001
	ESME_RINVCMDLEN    = 0x00000002
	ESME_RINVCMDID     = 0x00000003
	ESME_RINVBNDSTS    = 0x00000004
	ESME_RALYBND       = 0x00000005
	ESME_RINVPRTFLG    = 0x00000006
	ESME_RINVREGDLVFLG = 0x00000007
	ESME_RSYSERR       = 0x00000008
	ESME_RINVSRCADR    = 0x0000000A
	ESME_RINVDSTADR    = 0x0000000B
	ESME_RINVMSGID     = 0x0000000C
	ESME_RBINDFAIL     = 0x0000000D
	ESME_RINVPASWD     = 0x0000000E
	ESME_RINVSYSID     = 0x0000000F
	ESME_RCANCELFAIL   = 0x00000011
	ESME_RREPLACEFAIL  = 0x00000013
	ESME_RMSGQFUL      = 0x00000014
	ESME_RINVSERTYP    = 0x00000015
	ESME_RINVSYSTYP    = 0x00000053
	ESME_RTHROTTLED    = 0x00000058
)

// Interface version byte sent in BIND requests
const SMPP_VERSION_34 = 0x34

// Defaults for the bind checker
const (
	DEFAULT_SMPP_PORT          = 2775
	DEFAULT_CONNECT_TIMEOUT_MS = 10000
	DEFAULT_READ_TIMEOUT_MS    = 10000
)
