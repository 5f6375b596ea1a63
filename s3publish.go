// Package s3publish uploads objects to Amazon S3 (or an S3-compatible store)
// with hand-built AWS Signature Version 4 requests. The command-line
// interface and function server live in `publish`.
package s3publish

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7/pkg/s3utils"
	"github.com/rs/zerolog"
)

// S3 contains the domain of an S3-compatible service and the credentials
// used to sign requests to it.
type S3 struct {
	Domain string // defaults to "s3.<region>.amazonaws.com"
	Credentials

	now func() time.Time
}

// A Bucket for an S3 service.
type Bucket struct {
	*S3
	Name string
}

// Config includes transport parameters for uploads.
type Config struct {
	*http.Client        // http client to use for requests
	Scheme       string // url scheme, defaults to 'https'
	ACL          string // canned acl sent as x-amz-acl; empty sends none
}

// DefaultConfig is used if *Config is nil.
var DefaultConfig = &Config{
	Scheme: "https",
	ACL:    "public-read",
	Client: ClientWithTimeout(clientTimeout),
}

// http client timeout
const (
	clientTimeout = 30 * time.Second
)

// New returns a new S3. The credentials are validated up front so a
// misconfigured process fails before it signs anything.
// domain defaults to the regional AWS endpoint if empty.
func New(domain string, creds Credentials) (*S3, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if domain == "" {
		domain = DefaultDomain(creds.Region)
	}
	return &S3{Domain: domain, Credentials: creds, now: time.Now}, nil
}

// DefaultDomain returns the virtual-hosted style endpoint for region.
func DefaultDomain(region string) string {
	return fmt.Sprintf("s3.%s.amazonaws.com", region)
}

// Bucket returns a bucket on s3.
func (s3 *S3) Bucket(name string) (*Bucket, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: missing bucket name", ErrConfig)
	}
	if err := s3utils.CheckValidBucketName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return &Bucket{s3, name}, nil
}

// Host returns the virtual-hosted style host of the bucket.
func (b *Bucket) Host() string {
	return b.Name + "." + b.S3.Domain
}

// Url returns the url of key, using the scheme specified in Config.Scheme.
// key is percent-encoded per segment; slashes are kept.
func (b *Bucket) Url(key string, c *Config) url.URL {
	if c == nil {
		c = DefaultConfig
	}
	scheme := c.Scheme
	if scheme == "" {
		scheme = "https"
	}
	p := "/" + strings.TrimPrefix(key, "/")
	return url.URL{
		Scheme:  scheme,
		Host:    b.Host(),
		Path:    p,
		RawPath: s3utils.EncodePath(p),
	}
}

// SetLogger sets the logger used for the internal logging of s3publish.
// s3publish does not log output by default.
func SetLogger(l zerolog.Logger) {
	logger = l
}

var logger = zerolog.Nop()
