package icloud

import "net/http"

const (
	// Header keys
	ORIGIN_KEY       = "Origin"
	REFERER_KEY      = "Referer"
	ACCEPT_KEY       = "Accept"
	USER_AGENT_KEY   = "User-Agent"
	COOKIE_KEY       = "Cookie"
	CONTENT_TYPE_KEY = "Content-Type"
)

const (
	DEF_ORIGIN     = "https://www.icloud.com"
	DEF_REFERER    = "https://www.icloud.com/"
	DEF_ACCEPT     = "*/*"
	DEF_USER_AGENT = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
)

// Headers represents a list of headers.
type Headers []Header

// Get returns the index of the header with the given key.
// If the header is not found, the second return value is false.
func (h Headers) Get(key string) (index int, have bool) {
	for i, x := range h {
		if x.Key != key {
			continue
		}
		index = i
		have = true
		break
	}
	return
}

// Value returns the value of the header with the given key, or "".
func (h Headers) Value(key string) string {
	i, ok := h.Get(key)
	if !ok {
		return ""
	}
	return h[i].Value
}

// InitOrUpdate adds the header only if the key is not present yet.
func (h *Headers) InitOrUpdate(key, value string) {
	_, ok := h.Get(key)
	if ok {
		return
	}
	*h = append(*h, Header{key, value})
}

// Update updates the header with the given key and value.
// If the header is not present, it is initialized.
func (h *Headers) Update(key, value string) {
	i, ok := h.Get(key)
	if ok {
		(*h)[i] = Header{key, value}
		return
	}
	*h = append(*h, Header{key, value})
}

// Clone returns a copy that can be updated independently.
func (h Headers) Clone() Headers {
	return append(Headers(nil), h...)
}

// Set sets the headers in the given http.Header.
func (h Headers) Set(header http.Header) {
	for _, x := range h {
		x.Set(header)
	}
}

// Header represents a key-value pair.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Set sets the header in the given http.Header.
func (h *Header) Set(header http.Header) {
	header.Set(h.Key, h.Value)
}

// defaultHeaders returns the headers the iCloud web frontend sends.
func defaultHeaders(userAgent, cookie string) Headers {
	if userAgent == "" {
		userAgent = DEF_USER_AGENT
	}
	return Headers{
		{ORIGIN_KEY, DEF_ORIGIN},
		{REFERER_KEY, DEF_REFERER},
		{ACCEPT_KEY, DEF_ACCEPT},
		{USER_AGENT_KEY, userAgent},
		{COOKIE_KEY, cookie},
	}
}
