package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/smpplab/smppcheck"
	smppconst "github.com/smpplab/smppcheck/const"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

func newRootCmd(exitCode *int) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "smpp-bindcheck",
		Short: "Single-shot SMPP 3.4 bind checker",
		Long: `smpp-bindcheck connects to an SMSC, binds with the supplied
credentials, optionally verifies the link with enquire_link, then
unbinds and reports the outcome.

Exit code is 0 when the bind was accepted, 1 when the check failed
and 2 on invalid arguments.`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			*exitCode = runCheck(cmd, params)
			return nil
		},
	}
	rootCmd.SilenceErrors = true

	f := rootCmd.Flags()
	f.String("host", "", "SMSC host name or address")
	f.Int("port", smppconst.DEFAULT_SMPP_PORT, "SMSC port")
	f.String("system_id", "", "ESME system_id for the bind request")
	f.String("password", "", "ESME password")
	f.String("system_type", "", "ESME system_type")
	f.String("bind", "trx", "bind mode (trx, tx or rx)")
	f.Uint8("addr_ton", 0, "addr_ton field of the bind request")
	f.Uint8("addr_npi", 0, "addr_npi field of the bind request")
	f.String("address_range", "", "address_range field of the bind request")
	f.Duration("timeout", 10*time.Second, "connect and TLS handshake timeout")
	f.Duration("read_timeout", 10*time.Second, "timeout for each response read")
	f.Bool("enquire", false, "verify the bound link with enquire_link")
	f.Bool("tls", false, "connect over TLS (SNI enabled, peer certificate not verified)")
	f.String("log", "", "append a copy of the report to this file")
	f.Bool("verbose", false, "debug output including PDU hex dumps")
	f.String("config", "config.yml", "configuration file")

	return rootCmd
}

func main() {
	exitCode := 0
	rootCmd := newRootCmd(&exitCode)

	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(2)
	}
	os.Exit(exitCode)
}

// runCheck wires the reporter, the session and the signal handler
// together and runs the probe
func runCheck(cmd *cobra.Command, params Params) int {
	params.reporter.Output = cmd.OutOrStdout()
	rep := smppcheck.NewReporter(params.reporter)

	rep.WithFields(log.Fields{"type": "smpp-check", "version": version}).Info("Starting bind check")
	if len(params.configFile) > 0 {
		rep.WithFields(log.Fields{"type": "smpp-check"}).Info("Loaded configuration file: ", params.configFile)
	}

	s := smppcheck.NewSession(params.session, rep)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		rep.WithFields(log.Fields{"type": "smpp-check", "service": "Signal"}).Warning("Received signal: ", sig)
		s.Abort()
	}()

	code := s.Run()

	if code == 0 {
		color.New(color.FgGreen, color.Bold).Fprintln(cmd.OutOrStdout(), "BIND OK")
	} else {
		color.New(color.FgRed, color.Bold).Fprintln(cmd.OutOrStdout(), "BIND FAILED")
	}
	return code
}
