package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/smpplab/smppcheck"
	smppconst "github.com/smpplab/smppcheck/const"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// loadConfig merges the three configuration sources in order of
// priority: config file, then ENVIRONMENT, then explicit flags.
func loadConfig(cmd *cobra.Command) (params Params, err error) {
	config := Config{}
	config.SMPP.Port = smppconst.DEFAULT_SMPP_PORT
	config.SMPP.Bind.Mode = "trx"

	loadedFile := ""
	configFileName, _ := cmd.Flags().GetString("config")
	source, rerr := os.ReadFile(configFileName)
	if rerr == nil {
		if err = yaml.Unmarshal(source, &config); err != nil {
			err = fmt.Errorf("error parsing config file [%s]: %v", configFileName, err)
			return
		}
		loadedFile = configFileName
	} else if cmd.Flags().Changed("config") {
		err = fmt.Errorf("cannot read config file [%s]: %v", configFileName, rerr)
		return
	}

	// Load ENV configuration
	if err = envconfig.Process("smppcheck", &config); err != nil {
		err = fmt.Errorf("error parsing ENVIRONMENT configuration: %v", err)
		return
	}

	applyFlags(cmd, &config)

	params, err = resolveParams(config)
	if err != nil {
		return
	}
	params.configFile = loadedFile
	return
}

// applyFlags copies every flag the caller set explicitly over the
// file and ENVIRONMENT values.
func applyFlags(cmd *cobra.Command, config *Config) {
	f := cmd.Flags()

	if f.Changed("host") {
		config.SMPP.Host, _ = f.GetString("host")
	}
	if f.Changed("port") {
		config.SMPP.Port, _ = f.GetInt("port")
	}
	if f.Changed("system_id") {
		config.SMPP.Bind.SystemID, _ = f.GetString("system_id")
	}
	if f.Changed("password") {
		config.SMPP.Bind.Password, _ = f.GetString("password")
	}
	if f.Changed("system_type") {
		config.SMPP.Bind.SystemType, _ = f.GetString("system_type")
	}
	if f.Changed("bind") {
		config.SMPP.Bind.Mode, _ = f.GetString("bind")
	}
	if f.Changed("addr_ton") {
		config.SMPP.Bind.AddrTON, _ = f.GetUint8("addr_ton")
	}
	if f.Changed("addr_npi") {
		config.SMPP.Bind.AddrNPI, _ = f.GetUint8("addr_npi")
	}
	if f.Changed("address_range") {
		config.SMPP.Bind.AddressRange, _ = f.GetString("address_range")
	}
	if f.Changed("timeout") {
		d, _ := f.GetDuration("timeout")
		config.SMPP.ConnectTimeout = d.String()
	}
	if f.Changed("read_timeout") {
		d, _ := f.GetDuration("read_timeout")
		config.SMPP.ReadTimeout = d.String()
	}
	if f.Changed("enquire") {
		config.SMPP.EnquireLink, _ = f.GetBool("enquire")
	}
	if f.Changed("tls") {
		config.SMPP.TLS, _ = f.GetBool("tls")
	}
	if f.Changed("log") {
		config.Log.File, _ = f.GetString("log")
	}
	if f.Changed("verbose") {
		config.Log.Verbose, _ = f.GetBool("verbose")
	}
}

// resolveParams validates the merged configuration and translates it
// into session and reporter parameters.
func resolveParams(config Config) (params Params, err error) {
	if len(config.SMPP.Host) < 1 {
		err = fmt.Errorf("smpp/host is not specified")
		return
	}
	if (config.SMPP.Port < 1) || (config.SMPP.Port > 65535) {
		err = fmt.Errorf("invalid smpp/port: %d", config.SMPP.Port)
		return
	}
	if len(config.SMPP.Bind.SystemID) < 1 {
		err = fmt.Errorf("bind/systemID is not specified")
		return
	}

	// Credentials travel as CStrings, an embedded NUL would silently
	// truncate the field on the wire
	if err = checkNoNUL("systemID", config.SMPP.Bind.SystemID); err != nil {
		return
	}
	if err = checkNoNUL("password", config.SMPP.Bind.Password); err != nil {
		return
	}
	if err = checkNoNUL("systemType", config.SMPP.Bind.SystemType); err != nil {
		return
	}
	if err = checkNoNUL("addressRange", config.SMPP.Bind.AddressRange); err != nil {
		return
	}

	var mode smppcheck.ConnSMPPMode
	switch strings.ToLower(config.SMPP.Bind.Mode) {
	case "tx":
		mode = smppcheck.CSMPPTX
	case "rx":
		mode = smppcheck.CSMPPRX
	case "trx":
		mode = smppcheck.CSMPPTRX
	default:
		err = fmt.Errorf("invalid bind mode [%s] (supported only: trx, tx, rx)", config.SMPP.Bind.Mode)
		return
	}

	connectTimeout, err := parseTimeout(config.SMPP.ConnectTimeout, "connectTimeout")
	if err != nil {
		return
	}
	readTimeout, err := parseTimeout(config.SMPP.ReadTimeout, "readTimeout")
	if err != nil {
		return
	}

	params.session = smppcheck.SessionConfig{
		Host: config.SMPP.Host,
		Port: config.SMPP.Port,
		Bind: smppcheck.SMPPBind{
			ConnMode:   mode,
			SystemID:   config.SMPP.Bind.SystemID,
			Password:   config.SMPP.Bind.Password,
			SystemType: config.SMPP.Bind.SystemType,
			AddrTON:    config.SMPP.Bind.AddrTON,
			AddrNPI:    config.SMPP.Bind.AddrNPI,
			AddrRange:  config.SMPP.Bind.AddressRange,
		},
		ConnectTimeout: connectTimeout,
		ReadTimeout:    readTimeout,
		UseTLS:         config.SMPP.TLS,
		Enquire:        config.SMPP.EnquireLink,
	}
	params.reporter = smppcheck.ReporterOptions{
		Verbose: config.Log.Verbose,
		LogFile: config.Log.File,
	}
	return
}

func checkNoNUL(name string, v string) error {
	if strings.ContainsRune(v, 0) {
		return fmt.Errorf("bind/%s must not contain NUL bytes", name)
	}
	return nil
}

// parseTimeout accepts an empty value, the session falls back to its
// own default in that case.
func parseTimeout(v string, name string) (time.Duration, error) {
	if len(v) < 1 {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s [%s]: expected Go duration like 10s or 1m", name, v)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s [%s]: must be positive", name, v)
	}
	return d, nil
}
