package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pepbut/nsd/internal/name"
)

// Config holds everything needed to start a Server: listen addresses,
// the control socket path, verbosity, the deployment-wide SOA MNAME/
// RNAME (the binary zone format deliberately omits these — they are
// constants of the running instance, not of any one zone), and the
// zone files to load at startup.
type Config struct {
	ListenAddr    string   `yaml:"listen"`
	ControlSocket string   `yaml:"control_socket"`
	Verbosity     int      `yaml:"verbosity"`
	MName         string   `yaml:"mname"`
	RName         string   `yaml:"rname"`
	Zones         []string `yaml:"zones"`

	// MetricsAddr, if non-empty, is a loopback address the Prometheus
	// handler is served on. Empty disables metrics serving.
	MetricsAddr string `yaml:"metrics_addr"`
}

// DefaultConfig returns the baseline configuration, overridden in turn
// by a config file and then by explicit flags.
func DefaultConfig() Config {
	return Config{
		ListenAddr:    "[::]:53",
		ControlSocket: "/run/pepbut/nsd.sock",
		Verbosity:     0,
		MName:         "ns1.invalid.",
		RName:         "hostmaster.invalid.",
		MetricsAddr:   "127.0.0.1:9153",
	}
}

// LoadConfigFile reads a YAML config file and overlays its fields onto
// cfg. A zero value in the file (empty string, zero verbosity) leaves
// cfg's existing value untouched, so flags parsed before this call
// still apply; call order in cmd/nsd is: defaults, then config file,
// then flags explicitly set by the user.
func LoadConfigFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(b, &file); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if file.ListenAddr != "" {
		cfg.ListenAddr = file.ListenAddr
	}
	if file.ControlSocket != "" {
		cfg.ControlSocket = file.ControlSocket
	}
	if file.Verbosity != 0 {
		cfg.Verbosity = file.Verbosity
	}
	if file.MName != "" {
		cfg.MName = file.MName
	}
	if file.RName != "" {
		cfg.RName = file.RName
	}
	if file.MetricsAddr != "" {
		cfg.MetricsAddr = file.MetricsAddr
	}
	cfg.Zones = append(cfg.Zones, file.Zones...)
	return nil
}

// mnameRname parses the configured MNAME/RNAME once at startup so
// zone loading never has to repeat that work or its error handling.
func (c Config) mnameRname() (mname, rname name.Name, err error) {
	mname, err = name.Parse(c.MName)
	if err != nil {
		return name.Name{}, name.Name{}, fmt.Errorf("config mname: %w", err)
	}
	rname, err = name.Parse(c.RName)
	if err != nil {
		return name.Name{}, name.Name{}, fmt.Errorf("config rname: %w", err)
	}
	return mname, rname, nil
}
