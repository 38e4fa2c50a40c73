// Package proposal turns chaincode install requests into transport-ready
// install proposals.
//
// The InstallBuilder resolves the source layout for the chaincode language,
// packages the source tree into a portable artifact (generating and cleaning
// up a build descriptor when the language needs one), encodes the deployment
// descriptor, and wraps it into an install invocation of the lifecycle system
// chaincode. Development mode skips resolution and packaging entirely and
// registers the chaincode by name only.
package proposal
