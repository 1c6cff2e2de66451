package hme

import "time"

// Address is a reserved Hide My Email address.
type Address struct {
	Origin          string `json:"origin"`
	AnonymousID     string `json:"anonymousId"`
	Domain          string `json:"domain"`
	Address         string `json:"hme"`
	Label           string `json:"label"`
	Note            string `json:"note"`
	CreateTimestamp uint64 `json:"createTimestamp"`
	IsActive        bool   `json:"isActive"`
	RecipientMailID string `json:"recipientMailId"`
}

// CreatedAt converts the millisecond creation timestamp.
func (a *Address) CreatedAt() time.Time {
	return time.UnixMilli(int64(a.CreateTimestamp))
}

// ListedAddress is an entry of the address list; it also carries the
// mailbox the address forwards to.
type ListedAddress struct {
	Address
	ForwardToEmail string `json:"forwardToEmail"`
}

// ListResult is the full list of addresses of the account.
type ListResult struct {
	ForwardToEmails   []string        `json:"forwardToEmails"`
	HMEEmails         []ListedAddress `json:"hmeEmails"`
	SelectedForwardTo string          `json:"selectedForwardTo"`
}

// Find returns the addresses carrying the given label.
func (r *ListResult) Find(label string) []ListedAddress {
	var found []ListedAddress
	for _, a := range r.HMEEmails {
		if a.Label == label {
			found = append(found, a)
		}
	}
	return found
}

// Active returns the addresses that currently forward mail.
func (r *ListResult) Active() []ListedAddress {
	var active []ListedAddress
	for _, a := range r.HMEEmails {
		if a.IsActive {
			active = append(active, a)
		}
	}
	return active
}

// Lookup finds an address by its e-mail or anonymous id.
func (r *ListResult) Lookup(key string) (*ListedAddress, bool) {
	for i := range r.HMEEmails {
		a := &r.HMEEmails[i]
		if a.Address.Address == key || a.AnonymousID == key {
			return a, true
		}
	}
	return nil, false
}

// envelope is the part shared by every response.
type envelope struct {
	Success   bool      `json:"success"`
	Timestamp uint64    `json:"timestamp"`
	Error     *APIError `json:"error,omitempty"`
}

func (e *envelope) err() error {
	if e.Success {
		return nil
	}
	if e.Error != nil {
		return e.Error
	}
	return &APIError{}
}

type generateResponse struct {
	envelope
	Result *struct {
		HME string `json:"hme"`
	} `json:"result"`
}

type reserveResponse struct {
	envelope
	Result *struct {
		HME *Address `json:"hme"`
	} `json:"result"`
}

type listResponse struct {
	envelope
	Result *ListResult `json:"result"`
}

type ackResponse struct {
	envelope
}

type claimPayload struct {
	HME   string `json:"hme"`
	Label string `json:"label"`
	Note  string `json:"note"`
}

type idPayload struct {
	AnonymousID string `json:"anonymousId"`
}

type metadataPayload struct {
	AnonymousID string `json:"anonymousId"`
	Label       string `json:"label"`
	Note        string `json:"note"`
}
