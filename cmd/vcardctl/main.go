// Command vcardctl checks, converts and dumps vCard files from the shell.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"gitea.jw6.us/james/vcardedit/internal/logging"
	"gitea.jw6.us/james/vcardedit/internal/vcard"
)

func initializeLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	log, err := logging.New(cmd.String("log-level"))
	if err != nil {
		return ctx, err
	}
	zap.ReplaceGlobals(log)
	return ctx, nil
}

func syncLogger(_ context.Context, _ *cli.Command) error {
	_ = zap.L().Sync()
	return nil
}

// errors are reported by main, not by urfave/cli
func exitErrHandler(context.Context, *cli.Command, error) {}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            "vcardctl",
		Usage:           "check, convert and inspect vCard files",
		HideHelpCommand: true,
		Before:          initializeLogger,
		After:           syncLogger,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "normal", Usage: "logging verbosity: none, normal or debug"},
		},
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Reports rejected keys and invalid field values",
				Action:    runCheck,
				ArgsUsage: "FILE...",
			},
			{
				Name:   "convert",
				Usage:  "Exports a vCard file for another vCard version",
				Action: runConvert,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Value: string(vcard.Version30), Usage: "target `VERSION`: 2.1, 3.0 or 4.0"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write to `FILE` (default edited_vcard_<version>.vcf, - for stdout)"},
					&cli.BoolFlag{Name: "force", Usage: "export even when some field values are invalid"},
				},
				ArgsUsage: "FILE",
			},
			{
				Name:   "dump",
				Usage:  "Prints the parsed contacts",
				Action: runDump,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "json", Usage: "output `FORMAT`: json or yaml"},
				},
				ArgsUsage: "FILE",
			},
		},
	}

	var err error
	// os.Exit skips deferred calls, keep this the only one
	defer func() {
		stop()
		if err != nil {
			fmt.Fprintf(os.Stderr, "vcardctl: %v\n", err)
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
