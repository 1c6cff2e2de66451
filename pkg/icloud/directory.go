package icloud

import "sort"

const (
	// HMEService is the web service key of Hide My Email.
	HMEService = "premiummailsettings"

	statusActive = "active"
)

// Service is one entry of the web service directory. Both fields are
// optional on the wire.
type Service struct {
	URL    *string `json:"url,omitempty"`
	Status *string `json:"status,omitempty"`
}

// GetURL returns the service URL or "".
func (s Service) GetURL() string {
	if s.URL == nil {
		return ""
	}
	return *s.URL
}

// GetStatus returns the service status or "".
func (s Service) GetStatus() string {
	if s.Status == nil {
		return ""
	}
	return *s.Status
}

// Directory maps a web service name to its endpoint.
type Directory map[string]Service

// Names returns the service names sorted alphabetically.
func (d Directory) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// clone returns a shallow copy of the directory.
func (d Directory) clone() Directory {
	c := make(Directory, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// checkHME verifies that Hide My Email is listed, active and has a URL,
// and returns that URL.
func (d Directory) checkHME() (string, error) {
	svc, ok := d[HMEService]
	if !ok {
		return "", ErrServiceMissing
	}
	if svc.Status == nil {
		return "", ErrServiceStatusMissing
	}
	if *svc.Status != statusActive {
		return "", ErrServiceInactive
	}
	if svc.GetURL() == "" {
		return "", ErrMissingBaseURL
	}
	return *svc.URL, nil
}

type validateResponse struct {
	Webservices Directory `json:"webservices"`
}
