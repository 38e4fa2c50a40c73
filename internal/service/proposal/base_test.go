package proposal

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/hyperledger/fabric-protos-go/peer"
	"github.com/stretchr/testify/require"
)

// TestAssemble_Headers verifies the channel and signature headers of an
// assembled proposal: header type, nonce-derived transaction id, creator bytes
// and the chaincode header extension.
func TestAssemble_Headers(t *testing.T) {
	t.Parallel()

	invocation := &peer.ChaincodeInvocationSpec{
		ChaincodeSpec: &peer.ChaincodeSpec{
			Type:        peer.ChaincodeSpec_GOLANG,
			ChaincodeId: &peer.ChaincodeID{Name: "lccc"},
			Input:       &peer.ChaincodeInput{Args: [][]byte{[]byte("install")}},
		},
	}

	creator := []byte("serialized-identity")

	prop, txID, err := assemble(invocation, "", creator)
	require.NoError(t, err)

	var header common.Header
	require.NoError(t, proto.Unmarshal(prop.GetHeader(), &header))

	var channelHeader common.ChannelHeader
	require.NoError(t, proto.Unmarshal(header.GetChannelHeader(), &channelHeader))
	require.Equal(t, int32(common.HeaderType_ENDORSER_TRANSACTION), channelHeader.GetType())
	require.Empty(t, channelHeader.GetChannelId())
	require.Equal(t, txID, channelHeader.GetTxId())
	require.NotNil(t, channelHeader.GetTimestamp())

	var extension peer.ChaincodeHeaderExtension
	require.NoError(t, proto.Unmarshal(channelHeader.GetExtension(), &extension))
	require.Equal(t, "lccc", extension.GetChaincodeId().GetName())

	var signatureHeader common.SignatureHeader
	require.NoError(t, proto.Unmarshal(header.GetSignatureHeader(), &signatureHeader))
	require.Equal(t, creator, signatureHeader.GetCreator())
	require.Len(t, signatureHeader.GetNonce(), nonceLength)

	// The transaction id is the hex digest of nonce followed by creator.
	digest := sha256.New()
	digest.Write(signatureHeader.GetNonce())
	digest.Write(creator)
	require.Equal(t, hex.EncodeToString(digest.Sum(nil)), txID)
}

// TestAssemble_UniqueTxIDs ensures repeated assembly yields distinct nonces
// and therefore distinct transaction ids.
func TestAssemble_UniqueTxIDs(t *testing.T) {
	t.Parallel()

	invocation := &peer.ChaincodeInvocationSpec{
		ChaincodeSpec: &peer.ChaincodeSpec{
			ChaincodeId: &peer.ChaincodeID{Name: "lccc"},
		},
	}

	_, first, err := assemble(invocation, "", nil)
	require.NoError(t, err)

	_, second, err := assemble(invocation, "", nil)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}
