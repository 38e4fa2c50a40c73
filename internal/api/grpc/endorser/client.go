package endorser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/peer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/oshokin/chaincode-installer/internal/config"
)

// Signer produces a signature over raw proposal bytes.
// Implementations typically wrap the submitter's enrollment private key.
type Signer interface {
	Sign(message []byte) ([]byte, error)
}

// Client wraps the peer Endorser gRPC service with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the peer.
	conn *grpc.ClientConn
	// api is the generated Endorser client interface.
	api peer.EndorserClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errSignerRequired is returned when no signer is provided for a signed call.
	errSignerRequired = errors.New("signer must be provided")
	// errProposalRequired is returned when no proposal is provided.
	errProposalRequired = errors.New("proposal must be provided")
)

// Dial establishes a gRPC connection to the peer endorser.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial peer: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         peer.NewEndorserClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// ProcessProposal signs the proposal and submits it to the peer endorser.
// The endorser response status is checked; anything outside the 2xx-3xx range
// is reported as an error carrying the peer's message.
func (c *Client) ProcessProposal(
	ctx context.Context,
	prop *peer.Proposal,
	signer Signer,
) (*peer.ProposalResponse, error) {
	if prop == nil {
		return nil, errProposalRequired
	}

	if signer == nil {
		return nil, errSignerRequired
	}

	proposalBytes, err := proto.Marshal(prop)
	if err != nil {
		return nil, fmt.Errorf("marshal proposal: %w", err)
	}

	signature, err := signer.Sign(proposalBytes)
	if err != nil {
		return nil, fmt.Errorf("sign proposal: %w", err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.ProcessProposal(callCtx, &peer.SignedProposal{
		ProposalBytes: proposalBytes,
		Signature:     signature,
	})
	if err != nil {
		return nil, fmt.Errorf("process proposal: %w", err)
	}

	if status := response.GetResponse().GetStatus(); status < 200 || status >= 400 {
		return nil, fmt.Errorf("peer rejected proposal: status %d: %s",
			status, response.GetResponse().GetMessage())
	}

	return response, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
