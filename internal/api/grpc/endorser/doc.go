// Package endorser provides the gRPC client used to submit signed install
// proposals to a peer's Endorser service.
package endorser
