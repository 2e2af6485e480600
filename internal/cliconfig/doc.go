// Package cliconfig loads stubd CLI configuration from environment
// variables and manages the CLI session token file.
//
// Server settings follow a fixed precedence: command-line flags override
// environment variables, which override defaults. The Sources map records
// where each value came from so `stubd serve` can log surprising
// configuration.
//
// The session token written by `stubd login` lives in the user config
// directory (e.g. ~/.config/stubd/token) with owner-only permissions.
// STUBD_TOKEN overrides it for CI use.
package cliconfig
