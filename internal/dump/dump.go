// Package dump drives one walk of a capture: load the buffer, walk its
// frames and hand every frame to the enabled consumers.
package dump

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bft-labs/xferdump/internal/cliconfig"
	"github.com/bft-labs/xferdump/internal/domain"
	"github.com/bft-labs/xferdump/pkg/log"
	"github.com/bft-labs/xferdump/pkg/render"
	"github.com/bft-labs/xferdump/pkg/sink"
	"github.com/bft-labs/xferdump/pkg/source"
	"github.com/bft-labs/xferdump/pkg/state"
	"github.com/bft-labs/xferdump/pkg/xfer"
)

// Summary describes a finished (or aborted) walk.
type Summary struct {
	Input  string
	Format source.Format
	Bytes  int
	Frames int

	LastSequence uint32
	Sequenced    bool
}

// Dumper walks captures according to a Config.
type Dumper struct {
	cfg    cliconfig.Config
	out    io.Writer
	logger log.Logger
	repo   state.Repository

	hex  render.Renderer
	text render.Renderer

	openSink func() (sink.FrameWriter, error)
}

// Option configures a Dumper.
type Option func(*Dumper)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l log.Logger) Option {
	return func(d *Dumper) { d.logger = l }
}

// WithStateRepository records a summary of every walk in repo.
func WithStateRepository(repo state.Repository) Option {
	return func(d *Dumper) { d.repo = repo }
}

// WithSink overrides how the frame writer is opened.
func WithSink(open func() (sink.FrameWriter, error)) Option {
	return func(d *Dumper) { d.openSink = open }
}

// New creates a Dumper printing its report to out. cfg must be validated.
func New(cfg cliconfig.Config, out io.Writer, opts ...Option) *Dumper {
	d := &Dumper{
		cfg:    cfg,
		out:    out,
		logger: log.NewNoopLogger(),
		hex:    render.Hex{},
		text:   render.Text{},
	}
	d.openSink = d.defaultSink
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dumper) defaultSink() (sink.FrameWriter, error) {
	if d.cfg.Sink == cliconfig.SinkBolt {
		dir := filepath.Dir(d.cfg.BoltPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &domain.IOError{Op: "mkdir", Path: dir, Err: err}
		}
		return sink.NewBoltWriter(d.cfg.BoltPath)
	}
	return sink.NewDirWriter(d.cfg.OutDir)
}

// Run loads the configured input and walks it.
func (d *Dumper) Run(ctx context.Context) (Summary, error) {
	sum, _, err := d.run(ctx, false)
	return sum, err
}

// RunIfChanged walks the input unless the state repository shows the same
// revision was already walked. It reports whether the walk was skipped.
func (d *Dumper) RunIfChanged(ctx context.Context) (Summary, bool, error) {
	return d.run(ctx, true)
}

func (d *Dumper) run(ctx context.Context, skipUnchanged bool) (Summary, bool, error) {
	input := d.cfg.Input
	fi, err := os.Stat(input)
	if err != nil {
		return Summary{Input: input}, false, &domain.IOError{Op: "stat", Path: input, Err: err}
	}

	if skipUnchanged && d.repo != nil {
		prev, err := d.repo.Load()
		if err != nil {
			d.logger.Warn("load state", log.Err(err))
		} else if prev.SameRevision(input, fi.Size(), fi.ModTime(), d.fingerprint()) {
			d.logger.Debug("input unchanged, skipping walk", log.String("input", input))
			return Summary{Input: input, Format: source.Format(prev.Format), Bytes: prev.Bytes, Frames: prev.Frames}, true, nil
		}
	}

	buf, format, err := source.Load(input, source.Format(d.cfg.Format), source.Options{Port: uint16(d.cfg.PcapPort)})
	if err != nil {
		return Summary{Input: input}, false, err
	}
	d.logger.Info("loaded capture",
		log.String("input", input),
		log.String("format", string(format)),
		log.Int("bytes", len(buf)))

	sum, walkErr := d.Walk(ctx, buf)
	sum.Input = input
	sum.Format = format

	if d.repo != nil {
		st := state.State{
			Input:       input,
			Format:      string(format),
			Size:        fi.Size(),
			ModTime:     fi.ModTime(),
			Options:     d.fingerprint(),
			Frames:      sum.Frames,
			Bytes:       sum.Bytes,
			CompletedAt: time.Now(),
		}
		if sum.Sequenced {
			last := sum.LastSequence
			st.LastSequence = &last
		}
		if walkErr != nil {
			st.Error = walkErr.Error()
		}
		if err := d.repo.Save(st); err != nil {
			d.logger.Warn("save state", log.Err(err))
		}
	}
	return sum, false, walkErr
}

// fingerprint captures every setting that changes what a walk does or prints.
func (d *Dumper) fingerprint() string {
	c := d.cfg
	return fmt.Sprintf("format=%s port=%d check-seq=%t seq-offset=%d dump-hex=%t dump-text=%t write-files=%t sink=%s out-dir=%s bolt-path=%s",
		c.Format, c.PcapPort, c.ValidateSequence, c.SeqOffset, c.DumpHex, c.DumpText, c.WriteFiles, c.Sink, c.OutDir, c.BoltPath)
}

// Walk reports every frame of buf. It stops at the first framing, sequence
// or write error, or when ctx is cancelled.
func (d *Dumper) Walk(ctx context.Context, buf []byte) (Summary, error) {
	sum := Summary{Bytes: len(buf)}

	var w sink.FrameWriter
	if d.cfg.WriteFiles {
		var err error
		if w, err = d.openSink(); err != nil {
			return sum, err
		}
		defer func() {
			if err := w.Close(); err != nil {
				d.logger.Warn("close sink", log.Err(err))
			}
		}()
		if err := w.WriteAll(buf); err != nil {
			return sum, err
		}
	}

	var opts []xfer.Option
	if d.cfg.ValidateSequence {
		opts = append(opts, xfer.WithSequenceCheck(d.cfg.SeqOffset))
	}
	var walker xfer.Reader = xfer.NewWalker(buf, opts...)

	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		frame, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sum, err
		}
		if err := d.emit(frame, w); err != nil {
			return sum, err
		}
		sum.Frames++
		if frame.Sequenced {
			sum.LastSequence = frame.Sequence
			sum.Sequenced = true
		}
	}

	d.logger.Info("walk complete", log.Int("frames", sum.Frames), log.Int("bytes", sum.Bytes))
	return sum, nil
}

func (d *Dumper) emit(frame xfer.Frame, w sink.FrameWriter) error {
	if frame.Sequenced {
		fmt.Fprintf(d.out, "transfer seq=%08d offset=%d size=%d\n", frame.Sequence, frame.Offset, frame.Length)
	} else {
		fmt.Fprintf(d.out, "performative offset=%d size=%d\n", frame.Offset, frame.Length)
	}
	if d.cfg.DumpHex {
		fmt.Fprintln(d.out, d.hex.Render(frame.Payload))
	}
	if d.cfg.DumpText {
		fmt.Fprintln(d.out, d.text.Render(frame.Payload))
	}
	if w != nil {
		key := FrameKey(frame)
		if err := w.Write(frame.Payload, key); err != nil {
			return err
		}
		d.logger.Debug("wrote frame", log.Int("offset", frame.Offset), log.String("key", sink.KeyName(key)))
	}
	return nil
}

// FrameKey identifies a frame for its destination: the sequence counter
// when one was read, the frame ordinal otherwise.
func FrameKey(f xfer.Frame) uint32 {
	if f.Sequenced {
		return f.Sequence
	}
	return uint32(f.Index)
}
