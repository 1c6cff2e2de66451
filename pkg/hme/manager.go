package hme

import (
	"context"
	"net/http"
	"strings"

	"github.com/hmectl/hmectl/pkg/icloud"
	"github.com/hmectl/hmectl/pkg/logger"
)

const (
	generatePath   = "/v1/hme/generate"
	reservePath    = "/v1/hme/reserve"
	listPath       = "/v2/hme/list"
	updatePath     = "/v1/hme/updateMetaData"
	deactivatePath = "/v1/hme/deactivate"
	reactivatePath = "/v1/hme/reactivate"
	deletePath     = "/v1/hme/delete"
)

// Manager generates and reserves Hide My Email addresses over a validated
// session.
//
// Every call sends the cookies captured when the session was validated.
// The manager does not follow later cookie rotations; once the server
// stops accepting them, validate the client again and build a new
// Manager.
type Manager struct {
	s    *icloud.Session
	l    logger.Logger
	base string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger overrides the logger inherited from the session.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.l = l
		}
	}
}

// NewManager returns a Manager bound to the Hide My Email endpoint of s.
func NewManager(s *icloud.Session, opts ...Option) *Manager {
	m := &Manager{s: s}
	if s != nil {
		m.l = s.Logger()
		m.base = strings.TrimRight(s.BaseURL(), "/")
	}
	if m.l == nil {
		m.l = logger.NewNopLogger()
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) do(ctx context.Context, op, method, path string, in any, out interface{ err() error }) error {
	if m.s == nil || m.base == "" {
		return icloud.ErrMissingBaseURL
	}
	if err := m.s.DoJSON(ctx, op, method, m.base+path, in, out); err != nil {
		m.l.Error("hme: %s failed: %v", op, err)
		return err
	}
	if err := out.err(); err != nil {
		m.l.Warning("hme: %s rejected: %v", op, err)
		return err
	}
	return nil
}

// Generate asks the server for a new address. The address is not
// reserved until it is claimed. A 2xx reply with success false fails
// with an *APIError even if it carries a result.
func (m *Manager) Generate(ctx context.Context) (string, error) {
	var resp generateResponse
	if err := m.do(ctx, "generate", http.MethodPost, generatePath, nil, &resp); err != nil {
		return "", err
	}
	if resp.Result == nil || resp.Result.HME == "" {
		return "", &icloud.DecodeError{Op: "generate", Err: ErrEmptyResult}
	}
	m.l.Info("hme: generated %s", resp.Result.HME)
	return resp.Result.HME, nil
}

// Claim reserves address under label. The reservation must come back
// active and for the same address, otherwise a *ClaimMismatchError is
// returned.
func (m *Manager) Claim(ctx context.Context, address, label, note string) (*Address, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}
	payload := claimPayload{HME: address, Label: label, Note: note}
	var resp reserveResponse
	if err := m.do(ctx, "reserve", http.MethodPost, reservePath, payload, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil || resp.Result.HME == nil {
		return nil, &icloud.DecodeError{Op: "reserve", Err: ErrEmptyResult}
	}
	got := resp.Result.HME
	if got.AnonymousID == "" {
		return nil, &icloud.DecodeError{Op: "reserve", Err: ErrIncompleteAddress}
	}
	if !got.IsActive || got.Address != address {
		return nil, &ClaimMismatchError{
			Requested: address,
			Active:    got.IsActive,
			Actual:    got.Address,
		}
	}
	m.l.Info("hme: reserved %s (label %q)", got.Address, got.Label)
	return got, nil
}

// List returns every address of the account in one call.
func (m *Manager) List(ctx context.Context) (*ListResult, error) {
	var resp listResponse
	if err := m.do(ctx, "list", http.MethodGet, listPath, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, &icloud.DecodeError{Op: "list", Err: ErrEmptyResult}
	}
	return resp.Result, nil
}

// GenerateAndClaim generates an address and reserves it. The two steps
// are not atomic: if the claim fails the generated address is returned
// inside an *OrphanedAddressError and nothing is cleaned up.
func (m *Manager) GenerateAndClaim(ctx context.Context, label, note string) (string, error) {
	address, err := m.Generate(ctx)
	if err != nil {
		return "", err
	}
	claimed, err := m.Claim(ctx, address, label, note)
	if err != nil {
		return "", &OrphanedAddressError{Address: address, Err: err}
	}
	return claimed.Address, nil
}

// UpdateMetadata replaces the label and note of an address.
func (m *Manager) UpdateMetadata(ctx context.Context, anonymousID, label, note string) error {
	if anonymousID == "" {
		return ErrEmptyAnonymous
	}
	if label == "" {
		return ErrEmptyLabel
	}
	payload := metadataPayload{AnonymousID: anonymousID, Label: label, Note: note}
	return m.do(ctx, "updateMetaData", http.MethodPost, updatePath, payload, &ackResponse{})
}

// Deactivate stops forwarding for an address without deleting it.
func (m *Manager) Deactivate(ctx context.Context, anonymousID string) error {
	return m.lifecycle(ctx, "deactivate", deactivatePath, anonymousID)
}

// Reactivate resumes forwarding for a deactivated address.
func (m *Manager) Reactivate(ctx context.Context, anonymousID string) error {
	return m.lifecycle(ctx, "reactivate", reactivatePath, anonymousID)
}

// Delete removes a deactivated address for good.
func (m *Manager) Delete(ctx context.Context, anonymousID string) error {
	return m.lifecycle(ctx, "delete", deletePath, anonymousID)
}

func (m *Manager) lifecycle(ctx context.Context, op, path, anonymousID string) error {
	if anonymousID == "" {
		return ErrEmptyAnonymous
	}
	if err := m.do(ctx, op, http.MethodPost, path, idPayload{AnonymousID: anonymousID}, &ackResponse{}); err != nil {
		return err
	}
	m.l.Info("hme: %s %s", op, anonymousID)
	return nil
}
