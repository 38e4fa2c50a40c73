package proposal

import (
	"fmt"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/peer"
)

// EncodeDeploymentSpec serializes a chaincode deployment descriptor:
// the language type, identity (name, path, version) and the packaged source.
// An empty code package is valid for development-mode descriptors.
func EncodeDeploymentSpec(
	specType peer.ChaincodeSpec_Type,
	name, path, version string,
	codePackage []byte,
) ([]byte, error) {
	spec := &peer.ChaincodeDeploymentSpec{
		ChaincodeSpec: &peer.ChaincodeSpec{
			Type: specType,
			ChaincodeId: &peer.ChaincodeID{
				Name:    name,
				Path:    path,
				Version: version,
			},
		},
		CodePackage: codePackage,
	}

	contents, err := proto.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("encode deployment descriptor: %w", err)
	}

	return contents, nil
}
