// Package config loads, validates and persists installer settings.
//
// Settings are stored as YAML next to the binary by default and cover the
// peer endorser address, the submitting identity (MSP id and certificate),
// and optional overrides such as the chaincode source root.
package config
