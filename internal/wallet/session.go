package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Sirbiscuits1/Marketplace/pkg/fees"
)

// SessionState is the wallet session lifecycle.
// Unknown -> Detecting -> {NotFound, Connecting -> Connected}.
// Connected is terminal in this scope; there is no modeled disconnect.
type SessionState int

const (
	StateUnknown SessionState = iota
	StateDetecting
	StateNotFound
	StateConnecting
	StateConnected
)

func (s SessionState) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateDetecting:
		return "detecting"
	case StateNotFound:
		return "not_found"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "invalid"
	}
}

// ErrAgentNotFound is surfaced when a connect intent finds no agent within
// the detection deadline. The caller may offer a fallback navigation
// (install page); that is a UI concern.
var ErrAgentNotFound = errors.New("wallet agent not found")

// Session tracks the signing agent: detection, authorization, addresses and
// last-known balance. One instance per coordinator; transitions happen only
// through the startup probe and explicit connect intents.
type Session struct {
	mu    sync.Mutex
	agent Agent
	state SessionState

	addresses Addresses
	balance   fees.Sats

	detectInterval     time.Duration
	passiveTimeout     time.Duration
	interactiveTimeout time.Duration

	// onConnected fires after every successful transition to Connected,
	// with the ordinal address. Used to refresh the owned-assets view.
	onConnected func(ctx context.Context, ordAddress string)
}

// SessionOptions configures a Session.
type SessionOptions struct {
	DetectInterval     time.Duration
	PassiveTimeout     time.Duration
	InteractiveTimeout time.Duration
	OnConnected        func(ctx context.Context, ordAddress string)
}

// NewSession creates a session in the Unknown state.
func NewSession(agent Agent, opts SessionOptions) *Session {
	if opts.DetectInterval <= 0 {
		opts.DetectInterval = 100 * time.Millisecond
	}
	if opts.PassiveTimeout <= 0 {
		opts.PassiveTimeout = 3 * time.Second
	}
	if opts.InteractiveTimeout <= 0 {
		opts.InteractiveTimeout = 8 * time.Second
	}
	return &Session{
		agent:              agent,
		state:              StateUnknown,
		detectInterval:     opts.DetectInterval,
		passiveTimeout:     opts.PassiveTimeout,
		interactiveTimeout: opts.InteractiveTimeout,
		onConnected:        opts.OnConnected,
	}
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Addresses returns the connected agent's addresses (zero until Connected).
func (s *Session) Addresses() Addresses {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addresses
}

// OrdAddress returns the connected ordinal-signing address, or "".
func (s *Session) OrdAddress() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addresses.OrdAddress
}

// Balance returns the last-known balance in satoshis.
func (s *Session) Balance() fees.Sats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// StartupProbe runs the passive detection probe and, when the agent already
// holds an authorization, reconnects silently without prompting. Call once
// at coordinator start.
func (s *Session) StartupProbe(ctx context.Context) {
	s.setState(StateUnknown, StateDetecting)

	if !s.detect(ctx, s.passiveTimeout) {
		s.setState(StateDetecting, StateNotFound)
		slog.Info("Wallet agent not detected", slog.Duration("timeout", s.passiveTimeout))
		return
	}

	authorized, err := s.safeIsConnected(ctx)
	if err != nil {
		slog.Warn("Wallet authorization query failed", slog.Any("error", err))
		return // remain Detecting; an explicit connect can retry
	}
	if !authorized {
		slog.Info("Wallet agent detected, awaiting connect intent")
		return
	}

	// Existing authorization: populate silently, no user prompt.
	if err := s.finalizeConnect(ctx); err != nil {
		slog.Warn("Silent wallet reconnect failed", slog.Any("error", err))
	}
}

// Connect handles an explicit connect intent. No-op success when already
// Connected. Surfaces ErrAgentNotFound when the agent is absent, or the
// agent's reported reason when authorization is rejected; the session always
// lands in a well-defined state.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateConnected {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if !s.detect(ctx, s.interactiveTimeout) {
		// Absence does not change state: a later intent may find it.
		return ErrAgentNotFound
	}

	s.forceState(StateConnecting)

	if err := s.safeConnect(ctx); err != nil {
		s.forceState(StateDetecting)
		return fmt.Errorf("wallet connect rejected: %w", err)
	}

	if err := s.finalizeConnect(ctx); err != nil {
		return err
	}
	return nil
}

// finalizeConnect retrieves addresses (required) and balance (best-effort),
// then commits the Connected state. Address failure rolls back to Detecting.
func (s *Session) finalizeConnect(ctx context.Context) error {
	addrs, err := s.safeGetAddresses(ctx)
	if err != nil {
		s.forceState(StateDetecting)
		return fmt.Errorf("wallet address retrieval failed: %w", err)
	}

	var balance fees.Sats
	raw, err := s.safeGetBalance(ctx)
	if err != nil {
		// Tolerated: balance stays 0 until the next refresh.
		slog.Warn("Wallet balance fetch failed", slog.Any("error", err))
	} else {
		balance = NormalizeBalance(raw)
	}

	s.mu.Lock()
	s.addresses = addrs
	s.balance = balance
	s.state = StateConnected
	cb := s.onConnected
	s.mu.Unlock()

	slog.Info("Wallet connected",
		slog.String("ord_address", addrs.OrdAddress),
		slog.String("balance", balance.String()))

	if cb != nil {
		cb(ctx, addrs.OrdAddress)
	}
	return nil
}

// RefreshBalance re-fetches the balance best-effort.
func (s *Session) RefreshBalance(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateConnected {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	raw, err := s.safeGetBalance(ctx)
	if err != nil {
		slog.Warn("Wallet balance refresh failed", slog.Any("error", err))
		return
	}

	s.mu.Lock()
	s.balance = NormalizeBalance(raw)
	s.mu.Unlock()
}

// Purchaser returns the agent's purchase capability, or nil when the agent
// does not support purchasing.
func (s *Session) Purchaser() Purchaser {
	if p, ok := s.agent.(Purchaser); ok {
		return p
	}
	return nil
}

// detect polls for agent presence at the configured interval until it is
// found or the deadline expires. Always terminates.
func (s *Session) detect(ctx context.Context, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for {
		if s.safePresent(ctx) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(s.detectInterval):
		}
	}
}

// setState transitions from -> to if the current state matches.
func (s *Session) setState(from, to SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == from {
		s.state = to
	}
}

func (s *Session) forceState(to SessionState) {
	s.mu.Lock()
	s.state = to
	s.mu.Unlock()
}

// Agent calls are panic-wrapped: a misbehaving extension must degrade to a
// reported failure, never an unhandled fault.

func (s *Session) safePresent(ctx context.Context) (present bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Wallet agent panicked in Present", slog.Any("panic", r))
			present = false
		}
	}()
	return s.agent.Present(ctx)
}

func (s *Session) safeIsConnected(ctx context.Context) (ok bool, err error) {
	defer recoverToErr(&err, "IsConnected")
	return s.agent.IsConnected(ctx)
}

func (s *Session) safeConnect(ctx context.Context) (err error) {
	defer recoverToErr(&err, "Connect")
	return s.agent.Connect(ctx)
}

func (s *Session) safeGetAddresses(ctx context.Context) (a Addresses, err error) {
	defer recoverToErr(&err, "GetAddresses")
	return s.agent.GetAddresses(ctx)
}

func (s *Session) safeGetBalance(ctx context.Context) (raw any, err error) {
	defer recoverToErr(&err, "GetBalance")
	return s.agent.GetBalance(ctx)
}

func recoverToErr(err *error, call string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("wallet agent panicked in %s: %v", call, r)
	}
}
