package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/docbroker/knowledge"
)

// JSON-RPC error code the upstream uses for "no data for the subject".
const rpcCodeNotFound = -32004

// RPCConfig configures the JSON-RPC transport.
type RPCConfig struct {
	// Endpoint is the upstream JSON-RPC URL. Required.
	Endpoint string

	// Name identifies the channel. Default: "rpc"
	Name string

	// HTTPClient carries the POSTs.
	// If nil, a default client with a 10s timeout is used.
	HTTPClient *http.Client
}

// RPC reaches the upstream through its JSON-RPC 2.0 surface. The request
// path becomes the RPC method name.
type RPC struct {
	config RPCConfig
	nextID atomic.Int64
}

// NewRPC creates the JSON-RPC channel.
func NewRPC(config RPCConfig) (*RPC, error) {
	if config.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if config.Name == "" {
		config.Name = "rpc"
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &RPC{config: config}, nil
}

// Name identifies the channel.
func (c *RPC) Name() string { return c.config.Name }

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  Params `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Request performs one JSON-RPC call and maps the result into typed items.
func (c *RPC) Request(ctx context.Context, path string, params Params) ([]knowledge.Item, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  path,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("channel %s: encode request: %w", c.config.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("channel %s: build request: %w", c.config.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, &TransientError{Channel: c.config.Name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, &TransientError{
				Channel: c.config.Name,
				Err:     fmt.Errorf("upstream status %d", resp.StatusCode),
			}
		}
		return nil, fmt.Errorf("channel %s: upstream status %d", c.config.Name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, &TransientError{Channel: c.config.Name, Err: err}
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("channel %s: decode response: %w", c.config.Name, err)
	}
	if rpcResp.Error != nil {
		if rpcResp.Error.Code == rpcCodeNotFound {
			return nil, &NotFoundError{Channel: c.config.Name, Subject: params["subject"]}
		}
		return nil, &TransientError{Channel: c.config.Name, Err: rpcResp.Error}
	}

	var envelope wireResults
	if err := json.Unmarshal(rpcResp.Result, &envelope); err != nil {
		return nil, fmt.Errorf("channel %s: decode result: %w", c.config.Name, err)
	}

	return mapItems(c.config.Name, envelope.Results), nil
}

// HealthCheck issues a ping call.
func (c *RPC) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.Request(ctx, "ping", nil)
	return err == nil
}

// Ensure RPC implements Channel
var _ Channel = (*RPC)(nil)
