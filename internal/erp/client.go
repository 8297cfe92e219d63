// Package erp implements a JSON-RPC 2.0 client for the remote Odoo-style
// store. The service holds no durable state of its own; every order, line,
// product and worker record lives behind this client.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/flfwms/picking-api/internal/domain"
	"github.com/google/uuid"
)

const (
	serviceCommon = "common"
	serviceObject = "object"

	defaultTimeout = 30 * time.Second
)

// Config holds connection parameters for the remote store.
type Config struct {
	URL      string
	Database string
	Username string
	Password string
	Timeout  time.Duration // Optional: defaults to defaultTimeout
}

// Client executes RPC calls against the remote store. The authenticated uid
// is cached after the first call; everything else is per-request.
type Client struct {
	httpClient *http.Client
	url        string
	db         string
	username   string
	password   string

	mu  sync.Mutex
	uid int
}

// NewClient creates a Client from the given configuration.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        cfg.URL,
		db:         cfg.Database,
		username:   cfg.Username,
		password:   cfg.Password,
	}
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      uint32    `json:"id"`
}

type rpcParams struct {
	Service string `json:"service,omitempty"`
	Method  string `json:"method,omitempty"`
	Args    []any  `json:"args,omitempty"`

	// Session authentication uses named params instead of service/args.
	Database string `json:"db,omitempty"`
	Login    string `json:"login,omitempty"`
	Password string `json:"password,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// call posts a single JSON-RPC request to the given path and returns the raw
// result payload.
func (c *Client) call(ctx context.Context, path string, params rpcParams) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  params,
		ID:      uuid.New().ID(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("decode rpc response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return rpcResp.Result, nil
}

// authenticate resolves and caches the uid for the configured service
// account via common.authenticate.
func (c *Client) authenticate(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.uid != 0 {
		return c.uid, nil
	}

	result, err := c.call(ctx, "/jsonrpc", rpcParams{
		Service: serviceCommon,
		Method:  "authenticate",
		Args:    []any{c.db, c.username, c.password, map[string]any{}},
	})
	if err != nil {
		return 0, fmt.Errorf("authenticate service account: %w", err)
	}

	var uid int
	if err := json.Unmarshal(result, &uid); err != nil || uid == 0 {
		return 0, fmt.Errorf("authenticate service account: unexpected result %s", result)
	}

	c.uid = uid
	return uid, nil
}

// ExecuteKw invokes model.method on the remote store through
// object.execute_kw and returns the raw result.
func (c *Client) ExecuteKw(ctx context.Context, model, method string, args []any, kwargs map[string]any) (json.RawMessage, error) {
	uid, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	if kwargs == nil {
		kwargs = map[string]any{}
	}

	result, err := c.call(ctx, "/jsonrpc", rpcParams{
		Service: serviceObject,
		Method:  "execute_kw",
		Args:    []any{c.db, uid, c.password, model, method, args, kwargs},
	})
	if err != nil {
		return nil, fmt.Errorf("execute %s.%s: %w", model, method, err)
	}

	return result, nil
}

// SearchRead runs model.search_read with the given filter and options and
// unmarshals the record list into dest.
func (c *Client) SearchRead(ctx context.Context, model string, filter []any, opts map[string]any, dest any) error {
	result, err := c.ExecuteKw(ctx, model, "search_read", []any{filter}, opts)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(result, dest); err != nil {
		return fmt.Errorf("decode %s records: %w", model, err)
	}

	return nil
}

// Read runs model.read for the given ids and unmarshals the records into dest.
func (c *Client) Read(ctx context.Context, model string, ids []int, fields []string, dest any) error {
	result, err := c.ExecuteKw(ctx, model, "read", []any{ids}, map[string]any{"fields": fields})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(result, dest); err != nil {
		return fmt.Errorf("decode %s records: %w", model, err)
	}

	return nil
}

// Write updates the given record ids with vals.
func (c *Client) Write(ctx context.Context, model string, ids []int, vals map[string]any) error {
	_, err := c.ExecuteKw(ctx, model, "write", []any{ids, vals}, nil)
	return err
}

// AuthenticateSession verifies worker credentials through the session
// endpoint and returns the authenticated user id. Rejected credentials
// surface as domain.ErrInvalidCredentials.
func (c *Client) AuthenticateSession(ctx context.Context, login, password string) (int, error) {
	result, err := c.call(ctx, "/web/session/authenticate", rpcParams{
		Database: c.db,
		Login:    login,
		Password: password,
	})
	if err != nil {
		// The remote store reports bad credentials as an RPC-level error.
		var rpcErr *rpcError
		if errors.As(err, &rpcErr) {
			return 0, domain.ErrInvalidCredentials
		}
		return 0, fmt.Errorf("authenticate session: %w", err)
	}

	var session struct {
		UID int `json:"uid"`
	}
	if err := json.Unmarshal(result, &session); err != nil || session.UID == 0 {
		return 0, domain.ErrInvalidCredentials
	}

	return session.UID, nil
}
