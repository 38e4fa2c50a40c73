// Package identity turns an enrollment certificate and an MSP identifier
// into the serialized creator bytes proposals carry in their signature headers.
package identity
