// Package cli implements the aoc command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"aoc/internal/config"
	"aoc/internal/runner"
)

const (
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// CLI errors.
var (
	ErrFlagRequiresArg = errors.New("flag requires an argument")
	ErrUnknownFlag     = errors.New("unknown flag")
	ErrUnknownCommand  = errors.New("unknown command")
)

// Run is the main entry point. Returns exit code.
// The registry supplies the solvers available to the bench command.
func Run(ctx context.Context, in io.Reader, out, errOut io.Writer, args []string, env map[string]string, registry *runner.Registry) int {
	if len(args) < 2 {
		printUsage(out)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	cfg, err := config.Load(config.LoadInput{
		ConfigPath:  flags.configPath,
		DataDirFlag: flags.dataDir,
		Env:         env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut)

		return 1
	}

	if len(flags.remaining) == 0 {
		printUsage(out)

		return 0
	}

	name := flags.remaining[0]
	if name == "-h" || name == helpFlag {
		printUsage(out)

		return 0
	}

	log := newLogger(flags.verbose, errOut)
	defer func() { _ = log.Sync() }()

	o := NewIO(in, out, errOut, cfg.Quiet)

	app := &app{
		cfg:       cfg,
		env:       env,
		tokenFlag: flags.token,
		log:       log,
		registry:  registry,
	}

	for _, cmd := range commands(app) {
		if cmd.Name() == name {
			return cmd.Run(ctx, o, flags.remaining[1:])
		}
	}

	fprintln(errOut, "error:", fmt.Errorf("%w: %s", ErrUnknownCommand, name))
	printUsage(errOut)

	return 1
}

// app carries resolved configuration and shared dependencies into commands.
type app struct {
	cfg       config.Config
	env       map[string]string
	tokenFlag string
	log       *zap.Logger
	registry  *runner.Registry
}

func commands(a *app) []*Command {
	return []*Command{
		getCmd(a),
		submitCmd(a),
		benchCmd(a),
		tokenCmd(a),
		printConfigCmd(a),
	}
}

type globalFlags struct {
	configPath string
	dataDir    string
	token      string
	verbose    bool
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a global flag at args[idx]. Returns number of args
// consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	stringFlags := []struct {
		long string
		dest *string
	}{
		{long: "--config", dest: &flags.configPath},
		{long: "--data-dir", dest: &flags.dataDir},
		{long: "--token", dest: &flags.token},
	}

	for _, sf := range stringFlags {
		if arg == sf.long {
			if idx+1 >= len(args) {
				return consumedNone, fmt.Errorf("%w: %s", ErrFlagRequiresArg, arg)
			}

			*sf.dest = args[idx+1]

			return consumedTwo, nil
		}

		if after, ok := strings.CutPrefix(arg, sf.long+"="); ok {
			*sf.dest = after

			return consumedOne, nil
		}
	}

	if arg == "-v" || arg == "--verbose" {
		flags.verbose = true

		return consumedOne, nil
	}

	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", ErrUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

// newLogger builds the diagnostic logger. Verbose gets a console logger on
// stderr; the default is a nop logger so normal runs stay clean.
func newLogger(verbose bool, errOut io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(writerSyncer{errOut}),
		zapcore.DebugLevel,
	)

	return zap.New(core)
}

// writerSyncer adapts an io.Writer for zapcore.
type writerSyncer struct {
	io.Writer
}

func (writerSyncer) Sync() error { return nil }

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == helpFlag {
			return true
		}
	}

	return false
}

func printUsage(w io.Writer) {
	fprintln(w, `aoc - fetch, cache, and submit daily programming puzzle answers

Usage: aoc [options] <command> [args]

Options:
  --config <file>     Use specified config file
  --data-dir <dir>    Override the data directory
  --token <session>   Use specified session token
  -v, --verbose       Enable debug logging

Commands:
  get                      Fetch and cache a puzzle input
  submit <value>           Submit an answer
  bench                    Benchmark a solver against cached datasets
  token set|show           Manage the saved session token
  print-config             Show resolved configuration`)
}
