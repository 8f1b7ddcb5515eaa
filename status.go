package smppcheck

import (
	"fmt"
	smppcheck "github.com/smpplab/smppcheck/const"
)

// Symbolic names for SMPP 3.4 command_status values
var StatusNameMapping = map[uint32]string{
	smppcheck.ESME_ROK:           "ESME_ROK",
	smppcheck.ESME_RINVMSGLEN:    "ESME_RINVMSGLEN",
	smppcheck.ESME_RINVCMDLEN:    "ESME_RINVCMDLEN",
	smppcheck.ESME_RINVCMDID:     "ESME_RINVCMDID",
	smppcheck.ESME_RINVBNDSTS:    "ESME_RINVBNDSTS",
	smppcheck.ESME_RALYBND:       "ESME_RALYBND",
	smppcheck.ESME_RINVPRTFLG:    "ESME_RINVPRTFLG",
	smppcheck.ESME_RINVREGDLVFLG: "ESME_RINVREGDLVFLG",
	smppcheck.ESME_RSYSERR:       "ESME_RSYSERR",
	smppcheck.ESME_RINVSRCADR:    "ESME_RINVSRCADR",
	smppcheck.ESME_RINVDSTADR:    "ESME_RINVDSTADR",
	smppcheck.ESME_RINVMSGID:     "ESME_RINVMSGID",
	smppcheck.ESME_RBINDFAIL:     "ESME_RBINDFAIL",
	smppcheck.ESME_RINVPASWD:     "ESME_RINVPASWD",
	smppcheck.ESME_RINVSYSID:     "ESME_RINVSYSID",
	smppcheck.ESME_RCANCELFAIL:   "ESME_RCANCELFAIL",
	smppcheck.ESME_RREPLACEFAIL:  "ESME_RREPLACEFAIL",
	smppcheck.ESME_RMSGQFUL:      "ESME_RMSGQFUL",
	smppcheck.ESME_RINVSERTYP:    "ESME_RINVSERTYP",
	smppcheck.ESME_RINVSYSTYP:    "ESME_RINVSYSTYP",
	smppcheck.ESME_RTHROTTLED:    "ESME_RTHROTTLED",
}

// StatusName renders any command_status for log output, codes outside the
// table are printed as UNKNOWN(0x...) instead of failing the decode
func StatusName(code uint32) string {
	if name, ok := StatusNameMapping[code]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%08X)", code)
}
