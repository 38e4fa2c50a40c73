// Package chaincode holds the domain model for chaincode installation:
// supported implementation languages, their source-layout conventions,
// and the errors a failed layout resolution can produce.
//
// Each language is a self-contained variant carrying its own resolver,
// so adding a language never touches the logic of another.
package chaincode
