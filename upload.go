package s3publish

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7/pkg/s3utils"
)

// Key joins folder and filename into an object key.
func Key(folder, filename string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return filename
	}
	return folder + "/" + filename
}

// Upload stores content under key with a single signed PUT request and
// returns the public URL of the object.
//
// A non-2xx response or a transport fault is returned as *UploadError. The
// request is attempted once; retrying is left to the caller.
// DefaultConfig is used if c is nil.
func (b *Bucket) Upload(ctx context.Context, key string, content []byte, contentType string, c *Config) (objURL string, err error) {
	if c == nil {
		c = DefaultConfig
	}
	key = strings.TrimPrefix(key, "/")
	if err := s3utils.CheckValidObjectName(key); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	u := b.Url(key, c)
	req := &Request{
		Method: http.MethodPut,
		Path:   u.EscapedPath(),
		Headers: []Header{
			{"Host", u.Host},
			{"Content-Type", contentType},
		},
		Payload: content,
	}
	if c.ACL != "" {
		req.Add("x-amz-acl", c.ACL)
	}
	sig, err := Sign(b.Credentials, req, b.S3.now())
	if err != nil {
		return "", err
	}

	r, err := http.NewRequestWithContext(ctx, req.Method, u.String(), bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigning, err)
	}
	r.Host = u.Host
	for _, h := range req.Headers {
		if strings.EqualFold(h.Name, "host") {
			continue
		}
		r.Header.Set(h.Name, h.Value)
	}
	r.Header.Set("Authorization", sig.Authorization)

	l := logger.With().Str("bucket", b.Name).Str("key", key).Logger()
	l.Debug().Str("url", u.String()).Str("content_type", contentType).Int("size", len(content)).
		Str("signed_headers", sig.SignedHeaders).Msg("uploading object")

	start := time.Now()
	defer func() { observeUpload(start, len(content), err) }()

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(r)
	if err != nil {
		l.Error().Err(err).Msg("upload transport failure")
		return "", &UploadError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		uerr := newUploadError(resp)
		l.Error().Int("status", uerr.StatusCode).Str("code", uerr.Code).Str("body", uerr.Body).Msg("upload rejected")
		return "", uerr
	}
	objURL = u.String()
	l.Info().Str("url", objURL).Dur("took", time.Since(start)).Msg("object uploaded")
	return objURL, nil
}
