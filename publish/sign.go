package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7/pkg/s3utils"

	"github.com/streamrail/s3publish"
)

type signOpts struct {
	Method      string   `long:"method" short:"X" default:"PUT" description:"HTTP method"`
	Path        string   `long:"path" short:"p" default:"/" description:"Request path, unencoded"`
	Query       string   `long:"query" description:"Canonical query string, already encoded and sorted"`
	Header      []string `long:"header" short:"m" description:"Request header as name:value. May be repeated"`
	PayloadFile string   `long:"payload-file" description:"File holding the request payload. Defaults to an empty payload"`
	Time        string   `long:"time" description:"Signing time as 20060102T150405Z or RFC3339. Defaults to now"`
	CommonOpts
}

var signCmd signOpts

// out is where sign writes its report.
var out io.Writer = os.Stdout

func (so *signOpts) Execute(args []string) (err error) {
	so.logger()
	t := time.Now()
	if so.Time != "" {
		if t, err = parseTime(so.Time); err != nil {
			return
		}
	}
	req := &s3publish.Request{
		Method: strings.ToUpper(so.Method),
		Path:   s3utils.EncodePath(so.Path),
		Query:  so.Query,
	}
	for _, h := range so.Header {
		k, v, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("header %q: expected name:value", h)
		}
		req.Add(k, v)
	}
	if so.PayloadFile != "" {
		if req.Payload, err = os.ReadFile(so.PayloadFile); err != nil {
			return
		}
	}

	sig, err := s3publish.Sign(so.credentials(), req, t)
	if err != nil {
		return
	}
	fmt.Fprintf(out, "canonical request:\n%s\n\n", sig.CanonicalRequest)
	fmt.Fprintf(out, "string to sign:\n%s\n\n", sig.StringToSign)
	fmt.Fprintf(out, "x-amz-date: %s\n", sig.AmzDate)
	fmt.Fprintf(out, "x-amz-content-sha256: %s\n", sig.ContentSHA256)
	fmt.Fprintf(out, "authorization: %s\n", sig.Authorization)
	return
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse("20060102T150405Z", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q: expected 20060102T150405Z or RFC3339", s)
	}
	return t, nil
}

func init() {
	_, err := parser.AddCommand("sign", "print a request signature", "print the canonical request, string to sign and authorization header of a request", &signCmd)
	if err != nil {
		log.Fatal(err)
	}
}
