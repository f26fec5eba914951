package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// BridgeAgent reaches a wallet extension through a local websocket bridge.
// The bridge speaks a small request/response protocol: requests carry an id
// and a method name, responses echo the id with a result or an error string.
// Calls are serialized; the extension side is single-threaded anyway.
type BridgeAgent struct {
	url string

	mu     sync.Mutex // serializes dial + request/response pairs
	conn   *websocket.Conn
	nextID uint64

	DialTimeout time.Duration
	CallTimeout time.Duration
}

// NewBridgeAgent creates an agent for the given ws:// bridge URL.
func NewBridgeAgent(url string) *BridgeAgent {
	return &BridgeAgent{
		url:         url,
		DialTimeout: 2 * time.Second,
		CallTimeout: 60 * time.Second, // authorization may wait on the user
	}
}

type bridgeRequest struct {
	ID     uint64 `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type bridgeResponse struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// Present reports whether the bridge is reachable. A failed dial means the
// extension is not running; the detection probe treats that as absence.
func (a *BridgeAgent) Present(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ensureConn(ctx) == nil
}

// IsConnected asks the extension whether an authorization already exists.
func (a *BridgeAgent) IsConnected(ctx context.Context) (bool, error) {
	var connected bool
	if err := a.call(ctx, "isConnected", nil, &connected); err != nil {
		return false, err
	}
	return connected, nil
}

// Connect requests authorization; the extension may prompt the user.
func (a *BridgeAgent) Connect(ctx context.Context) error {
	return a.call(ctx, "connect", nil, nil)
}

// GetAddresses returns the settlement and ordinal addresses.
func (a *BridgeAgent) GetAddresses(ctx context.Context) (Addresses, error) {
	var addrs Addresses
	if err := a.call(ctx, "getAddresses", nil, &addrs); err != nil {
		return Addresses{}, err
	}
	if addrs.BSVAddress == "" || addrs.OrdAddress == "" {
		return Addresses{}, errors.New("agent returned incomplete addresses")
	}
	return addrs, nil
}

// GetBalance returns the raw balance value; shape normalization is the
// session manager's job.
func (a *BridgeAgent) GetBalance(ctx context.Context) (any, error) {
	var raw any
	if err := a.call(ctx, "getBalance", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// PurchaseOrdinal delegates fund movement to the extension and returns the
// settlement txid. Only available when the bridge advertises the method;
// older extensions answer with a "method not found" error which callers see
// as a plain failure — the coordinator gates on Purchaser beforehand.
func (a *BridgeAgent) PurchaseOrdinal(ctx context.Context, req PurchaseRequest) (string, error) {
	var txid string
	if err := a.call(ctx, "purchaseOrdinal", req, &txid); err != nil {
		return "", err
	}
	if txid == "" {
		return "", errors.New("agent returned no settlement txid")
	}
	return txid, nil
}

func (a *BridgeAgent) call(ctx context.Context, method string, params, out any) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureConn(ctx); err != nil {
		return fmt.Errorf("wallet bridge unreachable: %w", err)
	}

	a.nextID++
	req := bridgeRequest{ID: a.nextID, Method: method, Params: params}

	deadline := time.Now().Add(a.CallTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	a.conn.SetWriteDeadline(deadline)

	if err := a.conn.WriteJSON(req); err != nil {
		a.drop()
		return fmt.Errorf("wallet bridge write: %w", err)
	}

	for {
		a.conn.SetReadDeadline(deadline)
		var resp bridgeResponse
		if err := a.conn.ReadJSON(&resp); err != nil {
			a.drop()
			return fmt.Errorf("wallet bridge read: %w", err)
		}
		if resp.ID != req.ID {
			// Stale response from an earlier timed-out call; skip.
			slog.Debug("Wallet bridge stale response", slog.Uint64("id", resp.ID))
			continue
		}
		if resp.Error != "" {
			return errors.New(resp.Error)
		}
		if out != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, out); err != nil {
				return fmt.Errorf("wallet bridge decode: %w", err)
			}
		}
		return nil
	}
}

// ensureConn dials the bridge if needed. Caller holds the mutex.
func (a *BridgeAgent) ensureConn(ctx context.Context) error {
	if a.conn != nil {
		return nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: a.DialTimeout}
	conn, _, err := dialer.DialContext(ctx, a.url, http.Header{})
	if err != nil {
		return err
	}
	a.conn = conn
	slog.Debug("Wallet bridge connected", slog.String("url", a.url))
	return nil
}

// drop discards a broken connection; the next call redials.
func (a *BridgeAgent) drop() {
	if a.conn != nil {
		a.conn.Close()
		a.conn = nil
	}
}
