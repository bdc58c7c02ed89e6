package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/xferdump/internal/cliconfig"
	"github.com/bft-labs/xferdump/internal/dump"
	"github.com/bft-labs/xferdump/internal/watch"
	xlog "github.com/bft-labs/xferdump/pkg/log"
	"github.com/bft-labs/xferdump/pkg/state"
)

const longHelp = `
Walk a capture made of length-prefixed transfers and report every frame.

Each transfer starts with a 4-byte big-endian length covering the whole
record. For every frame xferdump prints its offset and size and can
optionally check the embedded sequence counter, dump the bytes as hex or
printable text, and store each frame in a directory or a bbolt database.

The input may be raw bytes, a Wireshark "0x.." hex dump, or a pcap/pcapng
capture whose TCP payloads are concatenated.
`

var exampleUsage = strings.TrimSpace(`
  xferdump capture.bin
  xferdump --check-seq --dump-text --write-files --out-dir raw-files capture.txt
  xferdump --format pcap --port 5672 --sink bolt --write-files session.pcapng
  xferdump rewrite wireshark.txt data.c
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log := cliconfig.Logger()
		log.Error().Err(err).Msg("xferdump")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "xferdump [flags] <input>",
		Short:         "Walk a capture of length-prefixed transfers",
		Long:          strings.TrimSpace(longHelp),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
			if len(args) == 1 {
				cfg.Input = args[0]
				changed["input"] = true
			}

			if err := resolveConfig(&cfg, cfgPath, changed); err != nil {
				return err
			}
			cliconfig.SetLogLevel(cfg.LogLevel)
			log := cliconfig.Logger()
			log.Debug().Interface("config", cfg).Msg("configuration")

			logger := xlog.NewZerologAdapterWithLogger(log)
			opts := []dump.Option{dump.WithLogger(logger)}
			if cfg.StateDir != "" {
				opts = append(opts, dump.WithStateRepository(state.NewFileRepository(cfg.StateDir)))
			}
			d := dump.New(cfg, cmd.OutOrStdout(), opts...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Watch {
				return watch.New(cfg.Input, d, cfg.Debounce, logger).Run(ctx)
			}
			_, err := d.Run(ctx)
			return err
		},
	}

	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.xferdump/config.toml)")
	f.StringVar(&cfg.Input, "input", cfg.Input, "capture file to walk (or pass it as the argument)")
	f.StringVar(&cfg.Format, "format", cfg.Format, "input format: auto, raw, hex or pcap")
	f.IntVar(&cfg.PcapPort, "port", cfg.PcapPort, "keep only TCP segments from or to this port (pcap input)")

	f.BoolVar(&cfg.ValidateSequence, "check-seq", cfg.ValidateSequence, "require consecutive sequence counters")
	f.IntVar(&cfg.SeqOffset, "seq-offset", cfg.SeqOffset, "byte offset of the sequence counter within a frame")
	f.BoolVar(&cfg.DumpHex, "dump-hex", cfg.DumpHex, "print each frame as hex")
	f.BoolVar(&cfg.DumpText, "dump-text", cfg.DumpText, "print each frame as printable text")
	f.BoolVar(&cfg.WriteFiles, "write-files", cfg.WriteFiles, "store every frame and the whole capture")

	f.StringVar(&cfg.Sink, "sink", cfg.Sink, "frame store: dir or bolt")
	f.StringVar(&cfg.OutDir, "out-dir", cfg.OutDir, "output directory for frame files")
	f.StringVar(&cfg.BoltPath, "bolt-path", cfg.BoltPath, "bbolt database path (default: <out-dir>/frames.db)")
	f.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for status.json (default in watch mode: input directory)")

	f.BoolVar(&cfg.Watch, "watch", cfg.Watch, "walk again whenever the input is written")
	f.DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "delay before re-walking after a write")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")

	root.AddCommand(newRewriteCommand())
	return root
}

// resolveConfig layers the config file and environment under explicit flags.
func resolveConfig(cfg *cliconfig.Config, cfgPath string, changed map[string]bool) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	} else if cfgPath != "" {
		return fmt.Errorf("load config: %s does not exist", cfgPath)
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	return cfg.Validate()
}
