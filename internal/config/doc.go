// Package config loads trctl settings: defaults, then an optional TOML
// file, then TRANSMISSION_* environment variables (a .env file in the
// working directory is read first).
package config
