package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
// Pointers distinguish an explicit zero or false from an absent key.
type FileConfig struct {
	Input            string `toml:"input"`
	Format           string `toml:"format"`
	PcapPort         *int   `toml:"pcap_port"`
	ValidateSequence *bool  `toml:"validate_sequence"`
	SeqOffset        *int   `toml:"seq_offset"`
	WriteFiles       *bool  `toml:"write_files"`
	DumpHex          *bool  `toml:"dump_hex"`
	DumpText         *bool  `toml:"dump_text"`
	Sink             string `toml:"sink"`
	OutDir           string `toml:"out_dir"`
	BoltPath         string `toml:"bolt_path"`
	StateDir         string `toml:"state_dir"`
	Watch            *bool  `toml:"watch"`
	Debounce         string `toml:"debounce"`
	LogLevel         string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.xferdump/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".xferdump", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("input", fc.Input, &cfg.Input)
	s.setString("format", fc.Format, &cfg.Format)
	s.setString("sink", fc.Sink, &cfg.Sink)
	s.setString("out-dir", fc.OutDir, &cfg.OutDir)
	s.setString("bolt-path", fc.BoltPath, &cfg.BoltPath)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("port", fc.PcapPort, &cfg.PcapPort)
	s.setInt("seq-offset", fc.SeqOffset, &cfg.SeqOffset)

	s.setBool("check-seq", fc.ValidateSequence, &cfg.ValidateSequence)
	s.setBool("write-files", fc.WriteFiles, &cfg.WriteFiles)
	s.setBool("dump-hex", fc.DumpHex, &cfg.DumpHex)
	s.setBool("dump-text", fc.DumpText, &cfg.DumpText)
	s.setBool("watch", fc.Watch, &cfg.Watch)

	return s.setDuration("debounce", fc.Debounce, &cfg.Debounce)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
