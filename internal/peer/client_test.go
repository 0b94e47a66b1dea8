package peer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/witnet-go/witnet-core/internal/types"
)

// rpcHandler returns an httptest server that replies to a single named
// JSON-RPC method with a fixed result, and a *Client pointed at it.
func rpcHandler(t *testing.T, method string, result any) (*httptest.Server, *Client) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req jsonRPCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("server: decode request: %v", err)
		}
		if req.Method != method {
			t.Fatalf("server: got method %q, want %q", req.Method, method)
		}
		if req.ID == "" {
			t.Error("server: request carried no id")
		}

		raw, err := json.Marshal(result)
		if err != nil {
			t.Fatalf("server: marshal result: %v", err)
		}
		resp := jsonRPCResponse{Result: raw}
		_ = json.NewEncoder(w).Encode(resp)
	}))

	addr := strings.TrimPrefix(srv.URL, "http://")
	return srv, NewClient(Config{Addr: addr})
}

func TestGetLastBeacon(t *testing.T) {
	want := types.LastBeacon{HighestBlockCheckpoint: types.Checkpoint{Epoch: 9}}
	srv, client := rpcHandler(t, "getLastBeacon", want)
	defer srv.Close()

	got, err := client.GetLastBeacon()
	if err != nil {
		t.Fatalf("GetLastBeacon: %v", err)
	}
	if got.HighestBlockCheckpoint.Epoch != 9 {
		t.Errorf("got epoch %d, want 9", got.HighestBlockCheckpoint.Epoch)
	}
}

func TestGetBlocksEmptyRange(t *testing.T) {
	srv, client := rpcHandler(t, "getBlocks", []*types.Block{})
	defer srv.Close()

	blocks, err := client.GetBlocks(0, 10)
	if err != nil {
		t.Fatalf("GetBlocks: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("expected no blocks, got %d", len(blocks))
	}
}

func TestCallSurfacesRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := jsonRPCResponse{Error: &struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}{Code: -32000, Message: "boom"}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient(Config{Addr: strings.TrimPrefix(srv.URL, "http://")})
	_, err := client.GetLastBeacon()
	if err == nil {
		t.Fatal("expected an error from a peer-reported RPC failure")
	}
}

func TestAddr(t *testing.T) {
	client := NewClient(Config{Addr: "127.0.0.1:1234"})
	if client.Addr() != "127.0.0.1:1234" {
		t.Errorf("Addr() = %q, want 127.0.0.1:1234", client.Addr())
	}
}
