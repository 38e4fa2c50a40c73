// Package installer drives the end-to-end chaincode install workflow:
// load settings and identity, build the install proposal, then either
// write the unsigned proposal to disk for an external signer or sign it
// and submit it to the configured peer endorser.
package installer
