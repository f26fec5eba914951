package wallet

import (
	"context"
	"errors"
	"sync"
)

// MockAgent is a scriptable in-process agent for tests and offline runs.
// Field defaults model an absent agent; flip IsPresent to bring it online.
type MockAgent struct {
	mu sync.Mutex

	IsPresent  bool
	Authorized bool
	ConnectErr error
	AddrResult Addresses
	AddrErr    error
	BalanceRaw any
	BalanceErr error

	ConnectCalls int
}

func (m *MockAgent) Present(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.IsPresent
}

func (m *MockAgent) IsConnected(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Authorized, nil
}

func (m *MockAgent) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConnectCalls++
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	m.Authorized = true
	return nil
}

func (m *MockAgent) GetAddresses(ctx context.Context) (Addresses, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddrErr != nil {
		return Addresses{}, m.AddrErr
	}
	return m.AddrResult, nil
}

func (m *MockAgent) GetBalance(ctx context.Context) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BalanceErr != nil {
		return nil, m.BalanceErr
	}
	return m.BalanceRaw, nil
}

// MockPurchasingAgent is a MockAgent that also supports purchases.
type MockPurchasingAgent struct {
	MockAgent

	PurchaseTxid  string
	PurchaseErr   error
	PurchaseCalls int
	LastPurchase  PurchaseRequest
}

func (m *MockPurchasingAgent) PurchaseOrdinal(ctx context.Context, req PurchaseRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PurchaseCalls++
	m.LastPurchase = req
	if m.PurchaseErr != nil {
		return "", m.PurchaseErr
	}
	if m.PurchaseTxid == "" {
		return "", errors.New("no txid configured")
	}
	return m.PurchaseTxid, nil
}
