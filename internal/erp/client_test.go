package erp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flfwms/picking-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcCall struct {
	Path   string
	Params rpcParams
}

// newRPCServer returns a test server that records calls and answers each
// /jsonrpc request with the next result in sequence. /web/session/authenticate
// is answered from sessionResult.
func newRPCServer(t *testing.T, results []any, sessionResult any) (*httptest.Server, *[]rpcCall) {
	calls := &[]rpcCall{}
	i := 0

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, "call", req.Method)
		*calls = append(*calls, rpcCall{Path: r.URL.Path, Params: req.Params})

		var result any
		if r.URL.Path == "/web/session/authenticate" {
			result = sessionResult
		} else {
			require.Less(t, i, len(results), "unexpected extra rpc call")
			result = results[i]
			i++
		}

		w.Header().Set("Content-Type", "application/json")
		if rpcErr, ok := result.(*rpcError); ok {
			require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   rpcErr,
			}))
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		}))
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, calls
}

func newTestClient(url string) *Client {
	return NewClient(Config{
		URL:      url,
		Database: "warehouse",
		Username: "svc",
		Password: "svc-secret",
	})
}

func TestClient_SearchRead(t *testing.T) {
	records := []map[string]any{
		{"id": 10, "name": "WH/OUT/00042"},
	}
	server, calls := newRPCServer(t, []any{7, records}, nil)
	client := newTestClient(server.URL)

	var dest []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	filter := []any{[]any{"name", "=", "WH/OUT/00042"}}
	err := client.SearchRead(context.Background(), "stock.picking", filter, map[string]any{"limit": 1}, &dest)
	require.NoError(t, err)

	require.Len(t, dest, 1)
	assert.Equal(t, 10, dest[0].ID)
	assert.Equal(t, "WH/OUT/00042", dest[0].Name)

	// First call authenticates the service account, second runs the query.
	require.Len(t, *calls, 2)
	auth := (*calls)[0]
	assert.Equal(t, "/jsonrpc", auth.Path)
	assert.Equal(t, "common", auth.Params.Service)
	assert.Equal(t, "authenticate", auth.Params.Method)
	assert.Equal(t, []any{"warehouse", "svc", "svc-secret", map[string]any{}}, auth.Params.Args)

	query := (*calls)[1]
	assert.Equal(t, "object", query.Params.Service)
	assert.Equal(t, "execute_kw", query.Params.Method)
	require.Len(t, query.Params.Args, 7)
	assert.Equal(t, "warehouse", query.Params.Args[0])
	assert.Equal(t, float64(7), query.Params.Args[1], "uses the authenticated uid")
	assert.Equal(t, "stock.picking", query.Params.Args[3])
	assert.Equal(t, "search_read", query.Params.Args[4])
}

func TestClient_CachesAuthenticatedUID(t *testing.T) {
	server, calls := newRPCServer(t, []any{7, []any{}, []any{}}, nil)
	client := newTestClient(server.URL)

	var dest []struct{}
	require.NoError(t, client.SearchRead(context.Background(), "product.product", []any{}, nil, &dest))
	require.NoError(t, client.SearchRead(context.Background(), "product.product", []any{}, nil, &dest))

	authCalls := 0
	for _, call := range *calls {
		if call.Params.Method == "authenticate" {
			authCalls++
		}
	}
	assert.Equal(t, 1, authCalls)
}

func TestClient_Write(t *testing.T) {
	server, calls := newRPCServer(t, []any{7, true}, nil)
	client := newTestClient(server.URL)

	err := client.Write(context.Background(), "stock.move.line", []int{42}, map[string]any{"qty_done": 2})
	require.NoError(t, err)

	write := (*calls)[1]
	assert.Equal(t, "stock.move.line", write.Params.Args[3])
	assert.Equal(t, "write", write.Params.Args[4])
	assert.Equal(t, []any{[]any{float64(42)}, map[string]any{"qty_done": float64(2)}}, write.Params.Args[5])
}

func TestClient_RPCErrorSurfaces(t *testing.T) {
	server, _ := newRPCServer(t, []any{7, &rpcError{Code: 200, Message: "Odoo Server Error"}}, nil)
	client := newTestClient(server.URL)

	var dest []struct{}
	err := client.SearchRead(context.Background(), "stock.picking", []any{}, nil, &dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Odoo Server Error")
}

func TestClient_AuthenticateFailureOnZeroUID(t *testing.T) {
	server, _ := newRPCServer(t, []any{false}, nil)
	client := newTestClient(server.URL)

	var dest []struct{}
	err := client.SearchRead(context.Background(), "stock.picking", []any{}, nil, &dest)
	assert.Error(t, err)
}

func TestClient_AuthenticateSession(t *testing.T) {
	t.Run("valid credentials return the uid", func(t *testing.T) {
		server, calls := newRPCServer(t, nil, map[string]any{"uid": 7, "name": "Vasyl"})
		client := newTestClient(server.URL)

		uid, err := client.AuthenticateSession(context.Background(), "vasyl", "secret")
		require.NoError(t, err)
		assert.Equal(t, 7, uid)

		require.Len(t, *calls, 1)
		session := (*calls)[0]
		assert.Equal(t, "/web/session/authenticate", session.Path)
		assert.Equal(t, "warehouse", session.Params.Database)
		assert.Equal(t, "vasyl", session.Params.Login)
		assert.Equal(t, "secret", session.Params.Password)
	})

	t.Run("rpc error maps to invalid credentials", func(t *testing.T) {
		server, _ := newRPCServer(t, nil, &rpcError{Code: 100, Message: "Access Denied"})
		client := newTestClient(server.URL)

		_, err := client.AuthenticateSession(context.Background(), "vasyl", "wrong")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("missing uid maps to invalid credentials", func(t *testing.T) {
		server, _ := newRPCServer(t, nil, map[string]any{"uid": false})
		client := newTestClient(server.URL)

		_, err := client.AuthenticateSession(context.Background(), "vasyl", "wrong")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}
