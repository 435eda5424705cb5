package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"pandoc2hwpx/convert"
	"pandoc2hwpx/misc"
	"pandoc2hwpx/state"
)

const convertHelp = `%s
SOURCE:
    pandoc JSON AST (pandoc input.md -t json -o input.json), one of:
        "[path_to_file]file.json" - single document
        "[path_to_directory]directory" - every .json file under directory, recursively, in natural order (symbolic links are not followed)
        "-" - single document read from standard input

DESTINATION:
    directory for results, output file name(s) are derived from configuration
    if absent - current working directory
`

const dumpConfigHelp = `%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Actual configuration is the embedded defaults with values from configuration
file applied on top. Use --default to see embedded defaults only.
`

func newApp() *cli.Command {
	return &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "converts pandoc JSON documents to HWPX (Hancom word processor) packages",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "collect troubleshooting information into report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "convert",
				Usage:        "Converts pandoc JSON document(s) to HWPX",
				OnUsageError: usageErrorHandler,
				Action:       convert.Run,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "do not reproduce source directory structure in destination"},
					&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "replace existing output files"},
					&cli.BoolFlag{Name: "toc", Usage: "insert table of contents even when document metadata does not ask for it"},
					&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "use reference `FILE` (.hwpx) as package skeleton"},
					&cli.StringFlag{Name: "input-dir", Usage: "resolve relative image paths against `DIR` instead of source directory"},
				},
				ArgsUsage:          "SOURCE [DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf(convertHelp, cli.CommandHelpTemplate),
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError:       usageErrorHandler,
				Action:             dumpConfiguration,
				ArgsUsage:          "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(dumpConfigHelp, cli.CommandHelpTemplate),
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	err := newApp().Run(ctx, os.Args)
	stop()
	if err != nil {
		// log may be not ready yet or already closed
		if !errWasHandled {
			fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
		}
		os.Exit(1)
	}
}
