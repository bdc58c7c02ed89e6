package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (XFERDUMP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("input", os.Getenv("XFERDUMP_INPUT"), &cfg.Input)
	s.setString("format", os.Getenv("XFERDUMP_FORMAT"), &cfg.Format)
	s.setString("sink", os.Getenv("XFERDUMP_SINK"), &cfg.Sink)
	s.setString("out-dir", os.Getenv("XFERDUMP_OUT_DIR"), &cfg.OutDir)
	s.setString("bolt-path", os.Getenv("XFERDUMP_BOLT_PATH"), &cfg.BoltPath)
	s.setString("state-dir", os.Getenv("XFERDUMP_STATE_DIR"), &cfg.StateDir)
	s.setString("log-level", os.Getenv("XFERDUMP_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("port", os.Getenv("XFERDUMP_PCAP_PORT"), &cfg.PcapPort); err != nil {
		return err
	}
	if err := s.setIntFromString("seq-offset", os.Getenv("XFERDUMP_SEQ_OFFSET"), &cfg.SeqOffset); err != nil {
		return err
	}
	if err := s.setDuration("debounce", os.Getenv("XFERDUMP_DEBOUNCE"), &cfg.Debounce); err != nil {
		return err
	}

	s.setBoolFromString("check-seq", os.Getenv("XFERDUMP_VALIDATE_SEQUENCE"), &cfg.ValidateSequence)
	s.setBoolFromString("write-files", os.Getenv("XFERDUMP_WRITE_FILES"), &cfg.WriteFiles)
	s.setBoolFromString("dump-hex", os.Getenv("XFERDUMP_DUMP_HEX"), &cfg.DumpHex)
	s.setBoolFromString("dump-text", os.Getenv("XFERDUMP_DUMP_TEXT"), &cfg.DumpText)
	s.setBoolFromString("watch", os.Getenv("XFERDUMP_WATCH"), &cfg.Watch)

	return nil
}
