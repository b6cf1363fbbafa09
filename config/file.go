package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	ircerr "tinyirc/internal/errors"
)

// LoadFile overlays a YAML profile onto cfg.  Keys missing from the file
// leave cfg untouched; unknown keys are an error so typos do not go
// unnoticed.  A "server" value of the form host:port also sets Port.
//
//	server: irc.libera.chat:6667
//	nick: gopher
//	channels: ["#go-nuts", "#tinyirc"]
//	tick: 50ms
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ircerr.ConfigError{Field: "config", Value: path, Message: err.Error()}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if ircerr.Is(err, io.EOF) {
			return nil // empty file
		}
		return &ircerr.ConfigError{
			Field:   "config",
			Value:   path,
			Message: strings.TrimPrefix(err.Error(), "yaml: "),
		}
	}

	if strings.Contains(cfg.Server, ":") {
		host, port, err := ParseServerSpec(cfg.Server)
		if err != nil {
			return &ircerr.ConfigError{Field: "config", Value: path, Message: fmt.Sprintf("server: %v", err)}
		}
		cfg.Server, cfg.Port = host, port
	}
	cfg.Encoding = strings.ToLower(cfg.Encoding)
	return nil
}
