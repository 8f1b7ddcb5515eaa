package main

import (
	"github.com/smpplab/smppcheck"
)

// Config merges the yaml file and the SMPPCHECK_* environment, variable
// names derive from the structure (SMPPCHECK_SMPP_HOST,
// SMPPCHECK_SMPP_BIND_SYSTEMID, SMPPCHECK_LOG_VERBOSE, ...)
type Config struct {
	Log struct {
		File    string `yaml:"file,omitempty"`
		Verbose bool   `yaml:"verbose"`
	}

	SMPP struct {
		Host string `yaml:"host,omitempty"`
		Port int    `yaml:"port,omitempty"`
		TLS  bool   `yaml:"tls"`

		Bind struct {
			SystemID     string `yaml:"systemID,omitempty"`
			Password     string `yaml:"password,omitempty"`
			SystemType   string `yaml:"systemType,omitempty"`
			Mode         string `yaml:"mode,omitempty"`
			AddrTON      uint8  `yaml:"addrTON"`
			AddrNPI      uint8  `yaml:"addrNPI"`
			AddressRange string `yaml:"addressRange,omitempty"`
		}

		ConnectTimeout string `yaml:"connectTimeout,omitempty"`
		ReadTimeout    string `yaml:"readTimeout,omitempty"`
		EnquireLink    bool   `yaml:"enquireLink"`
	}
}

type Params struct {
	session    smppcheck.SessionConfig
	reporter   smppcheck.ReporterOptions
	configFile string
}
