package s3publish

import "strings"

// Header is a single request header. Request keeps headers as a plain
// sequence; ordering is imposed only when the request is canonicalized.
type Header struct {
	Name  string
	Value string
}

// Request describes an HTTP request to be signed.
//
// Path must already be URI-encoded per segment and Query must already be in
// canonical (sorted, encoded) form. The signer reads every field as given and
// only adds the x-amz-date and x-amz-content-sha256 headers.
type Request struct {
	Method  string
	Path    string
	Query   string
	Headers []Header
	Payload []byte
}

// Get returns the value of the first header matching name, case-insensitively.
func (r *Request) Get(name string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// Set replaces every header matching name with a single name: value entry,
// or appends one if none exists. The header slice is always reallocated so
// requests sharing a backing array never see each other's writes.
func (r *Request) Set(name, value string) {
	out := make([]Header, 0, len(r.Headers)+1)
	set := false
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			if set {
				continue
			}
			h = Header{Name: name, Value: value}
			set = true
		}
		out = append(out, h)
	}
	if !set {
		out = append(out, Header{Name: name, Value: value})
	}
	r.Headers = out
}

// Add appends a header without touching existing entries.
func (r *Request) Add(name, value string) {
	r.Headers = append(r.Headers[:len(r.Headers):len(r.Headers)], Header{Name: name, Value: value})
}
