package cliconfig

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/xferdump/internal/domain"
	"github.com/bft-labs/xferdump/pkg/source"
	"github.com/bft-labs/xferdump/pkg/xfer"
)

// Sink kinds.
const (
	SinkDir  = "dir"
	SinkBolt = "bolt"
)

// Config holds CLI configuration for xferdump.
type Config struct {
	Input    string
	Format   string
	PcapPort int

	ValidateSequence bool
	SeqOffset        int
	WriteFiles       bool
	DumpHex          bool
	DumpText         bool

	Sink     string
	OutDir   string
	BoltPath string
	StateDir string

	Watch    bool
	Debounce time.Duration

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Format:    string(source.FormatAuto),
		SeqOffset: xfer.DefaultSequenceOffset,
		Sink:      SinkDir,
		OutDir:    "raw-files",
		Debounce:  200 * time.Millisecond,
		LogLevel:  "info",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Input == "" {
		return invalid("input is required")
	}

	f, err := source.ParseFormat(c.Format)
	if err != nil {
		return invalid(err.Error())
	}
	c.Format = string(f)

	if c.PcapPort < 0 || c.PcapPort > 0xffff {
		return invalid("port must be between 0 and 65535")
	}
	if c.SeqOffset < 0 {
		return invalid("seq-offset must not be negative")
	}

	c.Sink = strings.ToLower(c.Sink)
	switch c.Sink {
	case "":
		c.Sink = SinkDir
	case SinkDir, SinkBolt:
	default:
		return invalid(fmt.Sprintf("unknown sink %q (want dir or bolt)", c.Sink))
	}

	if c.WriteFiles && c.OutDir == "" {
		return invalid("out-dir is required when writing files")
	}
	if c.BoltPath == "" {
		c.BoltPath = filepath.Join(c.OutDir, "frames.db")
	}

	if c.Watch && c.StateDir == "" {
		c.StateDir = filepath.Dir(c.Input)
	}
	if c.Debounce <= 0 {
		return invalid("debounce must be positive")
	}

	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, msg)
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value from a pointer if not nil and flag not changed.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
