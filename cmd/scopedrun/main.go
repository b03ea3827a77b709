// Command scopedrun is a thin CLI entry point that does nothing
// interesting on its own but exercises the reslist/errctl/ioguard core end
// to end, and installs the process-root catch frame the core assumes
// always exists.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/canonical/scopedrun/procname"
)

type cmdGlobal struct {
	cmd *cobra.Command

	flagLogDebug   bool
	flagLogVerbose bool
	flagConfig     string
	flagTimeout    time.Duration
}

func (c *cmdGlobal) preRun(cmd *cobra.Command, args []string) error {
	if c.flagConfig != "" {
		flagTimeout := c.flagTimeout
		if err := loadConfig(c.flagConfig, c); err != nil {
			return err
		}
		if cmd.Flags().Changed("timeout") {
			c.flagTimeout = flagTimeout
		}
	}

	out := os.Stderr
	var writer io.Writer
	if term.IsTerminal(int(out.Fd())) {
		writer = colorable.NewColorable(out)
	} else {
		writer = out
	}
	logrus.SetOutput(writer)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if c.flagLogDebug {
		logrus.SetLevel(logrus.DebugLevel)
	} else if c.flagLogVerbose {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	return nil
}

func main() {
	procname.OrigArgv0 = os.Args[0]
	procname.SetPrgname("scopedrun")

	global := &cmdGlobal{}

	app := &cobra.Command{
		Use:   "scopedrun",
		Short: "Exercise the scopedrun reslist/catch runtime",
	}
	app.SilenceUsage = true
	app.SilenceErrors = true
	app.PersistentFlags().BoolVar(&global.flagLogDebug, "debug", false, "Show all debug messages")
	app.PersistentFlags().BoolVarP(&global.flagLogVerbose, "verbose", "v", false, "Show informational messages")
	app.PersistentFlags().StringVar(&global.flagConfig, "config", "", "Path to a YAML config file")
	app.PersistentPreRunE = global.preRun
	global.cmd = app

	readCmd := cmdRead{global: global}
	app.AddCommand(readCmd.command())

	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", procname.Prgname(), err)
		os.Exit(1)
	}
}
