package s3publish

import (
	"crypto/hmac"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/minio/sha256-simd"
)

const (
	prefix    = "AWS4-HMAC-SHA256"
	isoFormat = "20060102T150405Z"
	shortDate = "20060102"
	terminal  = "aws4_request"

	// EmptyPayloadHash is the hex SHA-256 of an empty payload.
	EmptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	amzDateHeader        = "x-amz-date"
	amzContentHashHeader = "x-amz-content-sha256"
	amzTokenHeader       = "x-amz-security-token"
)

// Signature holds the headers a signed request must carry, along with the
// intermediate strings that produced them.
type Signature struct {
	Authorization string
	AmzDate       string
	ContentSHA256 string

	SignedHeaders    string
	CanonicalRequest string
	StringToSign     string
}

// signingContext is derived from the signing time for exactly one request.
type signingContext struct {
	timestamp       string
	dateStamp       string
	credentialScope string
}

func newSigningContext(t time.Time, region, service string) signingContext {
	ts := t.UTC().Format(isoFormat)
	date := ts[:len(shortDate)]
	return signingContext{
		timestamp:       ts,
		dateStamp:       date,
		credentialScope: strings.Join([]string{date, region, service, terminal}, "/"),
	}
}

type signer struct {
	Time        time.Time
	Request     *Request
	Credentials Credentials

	ctx              signingContext
	payloadHash      string
	signedHeaders    string
	canonicalHeaders string
	canonicalString  string
	stringToSign     string
	signature        string
}

// Sign computes the SigV4 signature of req at time t. It adds x-amz-date and
// x-amz-content-sha256 (and x-amz-security-token for temporary credentials)
// to req.Headers; every other field of req is left untouched.
func Sign(creds Credentials, req *Request, t time.Time) (*Signature, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if req == nil || req.Method == "" {
		return nil, fmt.Errorf("%w: request method is required", ErrSigning)
	}
	s := &signer{
		Time:        t,
		Request:     req,
		Credentials: creds,
	}
	s.sign()
	return &Signature{
		Authorization:    s.authorization(),
		AmzDate:          s.ctx.timestamp,
		ContentSHA256:    s.payloadHash,
		SignedHeaders:    s.signedHeaders,
		CanonicalRequest: s.canonicalString,
		StringToSign:     s.stringToSign,
	}, nil
}

func (s *signer) sign() {
	s.buildContext()
	s.buildPayloadHash()
	s.buildCanonicalHeaders()
	s.buildCanonicalString()
	s.buildStringToSign()
	s.buildSignature()
}

func (s *signer) authorization() string {
	parts := []string{
		prefix + " Credential=" + s.Credentials.AccessKeyID + "/" + s.ctx.credentialScope,
		"SignedHeaders=" + s.signedHeaders,
		"Signature=" + s.signature,
	}
	return strings.Join(parts, ",")
}

func (s *signer) buildContext() {
	s.ctx = newSigningContext(s.Time, s.Credentials.Region, s.Credentials.service())
	s.Request.Set(amzDateHeader, s.ctx.timestamp)
	if s.Credentials.SessionToken != "" {
		s.Request.Set(amzTokenHeader, s.Credentials.SessionToken)
	}
}

// buildPayloadHash hashes the payload once; the same value is the header and
// the last canonical line.
func (s *signer) buildPayloadHash() {
	s.payloadHash = hashHex(s.Request.Payload)
	s.Request.Set(amzContentHashHeader, s.payloadHash)
}

func (s *signer) buildCanonicalHeaders() {
	headers := canonicalize(s.Request.Headers)

	names := make([]string, len(headers))
	var b strings.Builder
	for i, h := range headers {
		names[i] = h.Name
		b.WriteString(h.Name)
		b.WriteByte(':')
		b.WriteString(h.Value)
		b.WriteByte('\n')
	}
	s.signedHeaders = strings.Join(names, ";")
	s.canonicalHeaders = b.String()
}

// canonicalize lower-cases names, trims values, merges repeated names in
// their original order and sorts by name. Internal whitespace in values is
// kept as is.
func canonicalize(in []Header) []Header {
	index := make(map[string]int, len(in))
	out := make([]Header, 0, len(in))
	for _, h := range in {
		name := strings.ToLower(strings.TrimSpace(h.Name))
		value := strings.TrimSpace(h.Value)
		if i, ok := index[name]; ok {
			out[i].Value += "," + value
			continue
		}
		index[name] = len(out)
		out = append(out, Header{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *signer) buildCanonicalString() {
	uri := s.Request.Path
	if uri == "" {
		uri = "/"
	}
	s.canonicalString = strings.Join([]string{
		s.Request.Method,
		uri,
		s.Request.Query,
		s.canonicalHeaders,
		s.signedHeaders,
		s.payloadHash,
	}, "\n")
}

func (s *signer) buildStringToSign() {
	s.stringToSign = strings.Join([]string{
		prefix,
		s.ctx.timestamp,
		s.ctx.credentialScope,
		hashHex([]byte(s.canonicalString)),
	}, "\n")
}

func (s *signer) buildSignature() {
	key := DeriveKey(s.Credentials.SecretAccessKey, s.ctx.dateStamp, s.Credentials.Region, s.Credentials.service())
	s.signature = hex.EncodeToString(hmacSHA256(key, s.stringToSign))
}

// DeriveKey returns the 32-byte signing key scoped to dateStamp (YYYYMMDD),
// region and service.
func DeriveKey(secret, dateStamp, region, service string) []byte {
	date := hmacSHA256([]byte("AWS4"+secret), dateStamp)
	reg := hmacSHA256(date, region)
	svc := hmacSHA256(reg, service)
	return hmacSHA256(svc, terminal)
}

func hmacSHA256(key []byte, msg string) []byte {
	hash := hmac.New(sha256.New, key)
	hash.Write([]byte(msg))
	return hash.Sum(nil)
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
