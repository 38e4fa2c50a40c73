// Package resource serves build-descriptor templates embedded in the binary,
// keeping the installer self-contained with no runtime resource directory.
package resource
