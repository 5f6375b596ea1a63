package s3publish

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of a failed response is kept on UploadError.
const maxErrorBody = 4 << 10

// Error kinds. Each failure returned by this package matches exactly one of
// them with errors.Is.
var (
	// ErrConfig is returned when credentials, region or bucket are missing or
	// invalid. It is fatal before serving.
	ErrConfig = errors.New("configuration error")
	// ErrEncoding is returned for malformed caller input such as bad base64
	// or an invalid object key.
	ErrEncoding = errors.New("encoding error")
	// ErrSigning is returned when a request cannot be signed.
	ErrSigning = errors.New("signing error")
	// ErrTransport is matched by every *UploadError.
	ErrTransport = errors.New("transport error")
)

// UploadError represents a failed transfer: either a non-2xx response from
// the object store or a transport fault (StatusCode 0).
// http://docs.aws.amazon.com/AmazonS3/latest/API/ErrorResponses.html
type UploadError struct {
	Code       string
	Message    string
	Resource   string
	RequestID  string `xml:"RequestId"`
	StatusCode int    `xml:"-"`
	Body       string `xml:"-"`
	Err        error  `xml:"-"`
}

func newUploadError(r *http.Response) *UploadError {
	e := new(UploadError)
	e.StatusCode = r.StatusCode
	b, _ := io.ReadAll(io.LimitReader(r.Body, maxErrorBody))
	e.Body = string(b)
	xml.NewDecoder(bytes.NewReader(b)).Decode(e) // parse error from response
	return e
}

func (e *UploadError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upload failed: %v", e.Err)
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("upload failed: %d %s: %q", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("upload failed: %d: %q", e.StatusCode, msg)
}

func (e *UploadError) Unwrap() error { return e.Err }

func (e *UploadError) Is(target error) bool { return target == ErrTransport }
