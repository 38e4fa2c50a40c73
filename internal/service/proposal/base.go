package proposal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/hyperledger/fabric-protos-go/peer"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// nonceLength is the size of the random nonce placed into signature headers.
const nonceLength = 24

// assemble wraps a chaincode invocation into a transport-ready proposal:
// channel header, signature header with creator and nonce, and the invocation
// payload. It returns the proposal together with its transaction id.
func assemble(invocation *peer.ChaincodeInvocationSpec, channelID string, creator []byte) (*peer.Proposal, string, error) {
	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, "", fmt.Errorf("generate nonce: %w", err)
	}

	txID := computeTxID(nonce, creator)

	extension, err := proto.Marshal(&peer.ChaincodeHeaderExtension{
		ChaincodeId: invocation.GetChaincodeSpec().GetChaincodeId(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal header extension: %w", err)
	}

	channelHeader, err := proto.Marshal(&common.ChannelHeader{
		Type:      int32(common.HeaderType_ENDORSER_TRANSACTION),
		TxId:      txID,
		Timestamp: timestamppb.Now(),
		ChannelId: channelID,
		Epoch:     0,
		Extension: extension,
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal channel header: %w", err)
	}

	signatureHeader, err := proto.Marshal(&common.SignatureHeader{
		Creator: creator,
		Nonce:   nonce,
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal signature header: %w", err)
	}

	header, err := proto.Marshal(&common.Header{
		ChannelHeader:   channelHeader,
		SignatureHeader: signatureHeader,
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal header: %w", err)
	}

	invocationBytes, err := proto.Marshal(invocation)
	if err != nil {
		return nil, "", fmt.Errorf("marshal invocation spec: %w", err)
	}

	payload, err := proto.Marshal(&peer.ChaincodeProposalPayload{
		Input: invocationBytes,
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal proposal payload: %w", err)
	}

	return &peer.Proposal{
		Header:  header,
		Payload: payload,
	}, txID, nil
}

// computeTxID derives the transaction id from the nonce and creator bytes.
func computeTxID(nonce, creator []byte) string {
	h := sha256.New()
	h.Write(nonce)
	h.Write(creator)

	return hex.EncodeToString(h.Sum(nil))
}
