package smppcheck

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

type ReporterOptions struct {
	Verbose bool
	LogFile string
	Output  io.Writer // defaults to os.Stdout
}

// Reporter is the single output channel of the probe: timestamped console
// lines always, a logfile tee when requested, wire dumps in verbose mode
type Reporter struct {
	log *log.Logger
}

func NewReporter(opts ReporterOptions) *Reporter {
	l := log.New()

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	l.SetOutput(out)
	l.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if opts.Verbose {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.InfoLevel)
	}

	if len(opts.LogFile) > 0 {
		l.AddHook(&fileTeeHook{
			path: opts.LogFile,
			fmt:  &log.TextFormatter{FullTimestamp: true, DisableColors: true},
		})
	}

	return &Reporter{log: l}
}

func (r *Reporter) WithFields(f log.Fields) *log.Entry {
	return r.log.WithFields(f)
}

// DumpPDU traces raw wire data, shown only in verbose mode
func (r *Reporter) DumpPDU(direction string, buf []byte) {
	r.log.WithFields(log.Fields{"service": "Wire", "dir": direction, "len": len(buf)}).Debug(fmt.Sprintf("%x", buf))
}

// fileTeeHook appends every emitted entry to a logfile. The file is
// opened per write and all errors are swallowed: logging must never
// fail the probe
type fileTeeHook struct {
	path string
	fmt  log.Formatter
}

func (h *fileTeeHook) Levels() []log.Level { return log.AllLevels }

func (h *fileTeeHook) Fire(e *log.Entry) error {
	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}
	defer f.Close()

	line, err := h.fmt.Format(e)
	if err != nil {
		return nil
	}
	f.Write(line)
	return nil
}
