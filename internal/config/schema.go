package config

import "time"

// Config holds the small set of knobs the client and daemon share.
type Config struct {
	// DataDir holds data.json, the backup, the socket and the daemon's
	// side record. Defaults to ~/.yaru.
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// SocketPath is the daemon's local endpoint. Defaults to
	// <data_dir>/daemon.sock.
	SocketPath string `yaml:"socket_path" mapstructure:"socket_path"`

	// ClientTimeout bounds connecting to the daemon and awaiting each
	// response.
	ClientTimeout time.Duration `yaml:"client_timeout" mapstructure:"client_timeout"`
}
