package dump

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bft-labs/xferdump/internal/cliconfig"
	"github.com/bft-labs/xferdump/internal/domain"
	"github.com/bft-labs/xferdump/pkg/sink"
	"github.com/bft-labs/xferdump/pkg/state"
)

func record(body []byte) []byte {
	out := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(out, uint32(len(out)))
	copy(out[4:], body)
	return out
}

func seqRecord(counter uint32) []byte {
	body := make([]byte, 23)
	binary.BigEndian.PutUint32(body[19:], counter)
	return record(body)
}

func testConfig(t *testing.T, mut func(*cliconfig.Config)) cliconfig.Config {
	t.Helper()
	cfg := cliconfig.DefaultConfig()
	cfg.Input = filepath.Join(t.TempDir(), "capture.bin")
	cfg.OutDir = filepath.Join(t.TempDir(), "raw-files")
	if mut != nil {
		mut(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	return cfg
}

func TestWalk_TwoFramesNoOptions(t *testing.T) {
	cfg := testConfig(t, nil)
	var out bytes.Buffer

	buf := append(record(nil), record([]byte{'h', 'i'})...)
	sum, err := New(cfg, &out).Walk(context.Background(), buf)
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if sum.Frames != 2 || sum.Bytes != 10 {
		t.Errorf("summary = %+v", sum)
	}
	want := "performative offset=0 size=4\nperformative offset=4 size=6\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if _, err := os.Stat(cfg.OutDir); !os.IsNotExist(err) {
		t.Errorf("out dir should not be created when writing is disabled")
	}
}

func TestWalk_Renderers(t *testing.T) {
	cfg := testConfig(t, func(c *cliconfig.Config) {
		c.DumpHex = true
		c.DumpText = true
	})
	var out bytes.Buffer

	if _, err := New(cfg, &out).Walk(context.Background(), record([]byte{0x41, 0x00, 0xff})); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	want := "performative offset=0 size=7\n000000074100ff\n0x000x000x000x07A0x000xff\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestWalk_SequenceAndFiles(t *testing.T) {
	cfg := testConfig(t, func(c *cliconfig.Config) {
		c.ValidateSequence = true
		c.WriteFiles = true
	})
	var out bytes.Buffer

	buf := bytes.Join([][]byte{seqRecord(5), seqRecord(6), seqRecord(7)}, nil)
	sum, err := New(cfg, &out).Walk(context.Background(), buf)
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if !sum.Sequenced || sum.LastSequence != 7 || sum.Frames != 3 {
		t.Errorf("summary = %+v", sum)
	}
	if !strings.HasPrefix(out.String(), "transfer seq=00000005 offset=0 size=27\n") {
		t.Errorf("unexpected output %q", out.String())
	}

	all, err := os.ReadFile(filepath.Join(cfg.OutDir, "all.dat"))
	if err != nil || !bytes.Equal(all, buf) {
		t.Errorf("all.dat = %x, %v", all, err)
	}
	for _, key := range []string{"00000005", "00000006", "00000007"} {
		if _, err := os.Stat(filepath.Join(cfg.OutDir, "d_"+key+".dat")); err != nil {
			t.Errorf("missing frame file %s: %v", key, err)
		}
	}
}

func TestWalk_SequenceGapStops(t *testing.T) {
	cfg := testConfig(t, func(c *cliconfig.Config) { c.ValidateSequence = true })
	var out bytes.Buffer

	buf := bytes.Join([][]byte{seqRecord(5), seqRecord(7), seqRecord(8)}, nil)
	sum, err := New(cfg, &out).Walk(context.Background(), buf)

	var se *domain.SequenceError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SequenceError, got %v", err)
	}
	if se.Expected != 6 || se.Actual != 7 || se.Offset != 27 {
		t.Errorf("error = %+v", se)
	}
	if sum.Frames != 1 {
		t.Errorf("frames before error = %d, want 1", sum.Frames)
	}
	if strings.Count(out.String(), "\n") != 1 {
		t.Errorf("expected a single report line, got %q", out.String())
	}
}

func TestWalk_FramingError(t *testing.T) {
	cfg := testConfig(t, nil)
	_, err := New(cfg, &bytes.Buffer{}).Walk(context.Background(), []byte{0, 0, 0, 40, 1})
	if !errors.Is(err, domain.ErrFraming) {
		t.Fatalf("expected ErrFraming, got %v", err)
	}
}

type failingSink struct{}

func (failingSink) WriteAll([]byte) error { return nil }
func (failingSink) Write([]byte, uint32) error {
	return &domain.IOError{Op: "open", Path: "d_00000000.dat", Err: os.ErrPermission}
}
func (failingSink) Close() error { return nil }

func TestWalk_SinkErrorStops(t *testing.T) {
	cfg := testConfig(t, func(c *cliconfig.Config) { c.WriteFiles = true })
	d := New(cfg, &bytes.Buffer{}, WithSink(func() (sink.FrameWriter, error) { return failingSink{}, nil }))

	sum, err := d.Walk(context.Background(), append(record(nil), record(nil)...))
	if !errors.Is(err, domain.ErrIO) || !errors.Is(err, os.ErrPermission) {
		t.Fatalf("expected IO permission error, got %v", err)
	}
	if sum.Frames != 0 {
		t.Errorf("frames = %d, want 0", sum.Frames)
	}
}

func TestWalk_BoltSink(t *testing.T) {
	cfg := testConfig(t, func(c *cliconfig.Config) {
		c.WriteFiles = true
		c.Sink = cliconfig.SinkBolt
		c.BoltPath = ""
	})
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	buf := append(record([]byte("one")), record([]byte("two"))...)
	if _, err := New(cfg, &bytes.Buffer{}).Walk(context.Background(), buf); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}

	w, err := sink.NewBoltWriter(cfg.BoltPath)
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	defer w.Close()
	got, err := w.Get(sink.FramesBucket, "00000001")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !bytes.Equal(got, record([]byte("two"))) {
		t.Errorf("frame 1 = %x", got)
	}
}

func TestWalk_Cancelled(t *testing.T) {
	cfg := testConfig(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(cfg, &bytes.Buffer{}).Walk(ctx, record(nil))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRun_HexInputAndState(t *testing.T) {
	cfg := testConfig(t, nil)
	if err := os.WriteFile(cfg.Input, []byte("0x00, 0x00, 0x00, 0x04,\n0x00, 0x00, 0x00, 0x05, 0x2a\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	repo := state.NewFileRepository(t.TempDir())
	var out bytes.Buffer
	d := New(cfg, &out, WithStateRepository(repo))

	sum, skipped, err := d.RunIfChanged(context.Background())
	if err != nil || skipped {
		t.Fatalf("RunIfChanged = %+v, %v, %v", sum, skipped, err)
	}
	if sum.Format != "hex" || sum.Frames != 2 {
		t.Errorf("summary = %+v", sum)
	}

	st, err := repo.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if st.Frames != 2 || st.Error != "" || st.Input != cfg.Input {
		t.Errorf("state = %+v", st)
	}

	out.Reset()
	if _, skipped, err := d.RunIfChanged(context.Background()); err != nil || !skipped {
		t.Fatalf("second run should be skipped: skipped=%v err=%v", skipped, err)
	}
	if out.Len() != 0 {
		t.Errorf("skipped run printed %q", out.String())
	}
}

func TestRun_RecordsError(t *testing.T) {
	cfg := testConfig(t, func(c *cliconfig.Config) { c.Format = "raw" })
	if err := os.WriteFile(cfg.Input, []byte{0, 0, 0, 0}, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	repo := state.NewFileRepository(t.TempDir())

	_, err := New(cfg, &bytes.Buffer{}, WithStateRepository(repo)).Run(context.Background())
	if !errors.Is(err, domain.ErrFraming) {
		t.Fatalf("expected ErrFraming, got %v", err)
	}
	st, _ := repo.Load()
	if !strings.Contains(st.Error, "framing error at offset 0") {
		t.Errorf("state error = %q", st.Error)
	}
}

func TestRunIfChanged_RetriesFailedWalk(t *testing.T) {
	cfg := testConfig(t, func(c *cliconfig.Config) { c.Format = "raw" })
	if err := os.WriteFile(cfg.Input, []byte{0, 0, 0, 0}, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	d := New(cfg, &bytes.Buffer{}, WithStateRepository(state.NewFileRepository(t.TempDir())))

	for i := 0; i < 2; i++ {
		_, skipped, err := d.RunIfChanged(context.Background())
		if skipped {
			t.Fatalf("run %d skipped a failed revision", i)
		}
		if !errors.Is(err, domain.ErrFraming) {
			t.Fatalf("run %d: expected ErrFraming, got %v", i, err)
		}
	}
}

func TestRunIfChanged_OptionsChange(t *testing.T) {
	cfg := testConfig(t, func(c *cliconfig.Config) { c.Format = "raw" })
	if err := os.WriteFile(cfg.Input, record([]byte{0x2a}), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	repo := state.NewFileRepository(t.TempDir())

	if _, skipped, err := New(cfg, &bytes.Buffer{}, WithStateRepository(repo)).RunIfChanged(context.Background()); err != nil || skipped {
		t.Fatalf("first run: skipped=%v err=%v", skipped, err)
	}

	tests := []struct {
		name     string
		mut      func(*cliconfig.Config)
		wantSkip bool
		wantErr  error
	}{
		{name: "same options", mut: func(*cliconfig.Config) {}, wantSkip: true},
		{name: "sequence check enabled", mut: func(c *cliconfig.Config) { c.ValidateSequence = true }, wantErr: domain.ErrFraming},
		{name: "hex dump enabled", mut: func(c *cliconfig.Config) { c.DumpHex = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := cfg
			tt.mut(&next)
			var out bytes.Buffer
			_, skipped, err := New(next, &out, WithStateRepository(repo)).RunIfChanged(context.Background())
			if skipped != tt.wantSkip {
				t.Fatalf("skipped = %v, want %v", skipped, tt.wantSkip)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.wantSkip && !strings.Contains(out.String(), "2a") {
				t.Errorf("walk output = %q, want hex dump", out.String())
			}
		})
	}
}

func TestWalk_BoltSinkCreatesParentDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "db", "frames.db")
	cfg := testConfig(t, func(c *cliconfig.Config) {
		c.WriteFiles = true
		c.Sink = cliconfig.SinkBolt
		c.BoltPath = dbPath
	})

	if _, err := New(cfg, &bytes.Buffer{}).Walk(context.Background(), record([]byte("one"))); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("bolt file not created: %v", err)
	}
	if _, err := os.Stat(cfg.OutDir); !os.IsNotExist(err) {
		t.Errorf("bolt sink should not create the files directory, stat err = %v", err)
	}
}

func TestRun_MissingInput(t *testing.T) {
	cfg := testConfig(t, nil)
	_, err := New(cfg, &bytes.Buffer{}).Run(context.Background())
	if !errors.Is(err, domain.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
}
