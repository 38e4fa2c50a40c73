package main

import "github.com/oshokin/chaincode-installer/cmd/chaincode-installer/cmd"

func main() {
	cmd.Execute()
}
