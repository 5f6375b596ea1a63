package s3publish

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

type authT struct {
	env []string
}

// save current environment for restoration
func (s *authT) saveEnv() {
	s.env = os.Environ()
	os.Clearenv()
}

// restore environment after each test
func (s *authT) restoreEnv() {
	os.Clearenv()
	for _, kv := range s.env {
		l := strings.SplitN(kv, "=", 2)
		os.Setenv(l[0], l[1])
	}
}

func TestEnvCredentialsWithoutToken(t *testing.T) {
	testCreds := Credentials{
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		Region:          "eu-west-2",
		Service:         "s3",
	}
	s := authT{}
	s.saveEnv()
	defer s.restoreEnv()
	os.Setenv("AWS_ACCESS_KEY_ID", testCreds.AccessKeyID)
	os.Setenv("AWS_SECRET_ACCESS_KEY", testCreds.SecretAccessKey)
	os.Setenv("AWS_REGION", testCreds.Region)
	creds, err := EnvCredentials()
	if err != nil {
		t.Error(err)
	}
	if creds != testCreds {
		t.Errorf("Credentials do not match. Expected: %v. Actual: %v", testCreds, creds)
	}
}

func TestEnvCredentialsWithToken(t *testing.T) {
	testCreds := Credentials{
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		SessionToken:    "testtoken",
		Region:          "us-east-1",
		Service:         "s3",
	}
	s := authT{}
	s.saveEnv()
	defer s.restoreEnv()
	os.Setenv("AWS_ACCESS_KEY_ID", testCreds.AccessKeyID)
	os.Setenv("AWS_SECRET_ACCESS_KEY", testCreds.SecretAccessKey)
	os.Setenv("AWS_SESSION_TOKEN", testCreds.SessionToken)
	os.Setenv("AWS_REGION", testCreds.Region)
	creds, err := EnvCredentials()
	if err != nil {
		t.Error(err)
	}
	if creds != testCreds {
		t.Errorf("Credentials do not match. Expected: %v. Actual: %v", testCreds, creds)
	}
}

func TestEnvCredentialsNotSet(t *testing.T) {
	s := authT{}
	s.saveEnv()
	defer s.restoreEnv()
	_, err := EnvCredentials()
	expErr := "configuration error: not set in environment: AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY"
	if err == nil || err.Error() != expErr {
		t.Errorf("Expected error: %v. Actual: %v", expErr, err)
	}
	if !errors.Is(err, ErrConfig) {
		t.Errorf("Expected ErrConfig, got %v", err)
	}
}

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		creds Credentials
		err   string
	}{
		{Credentials{AccessKeyID: "a", SecretAccessKey: "s", Region: "r"}, ""},
		{Credentials{SecretAccessKey: "s", Region: "r"}, "configuration error: missing access key id"},
		{Credentials{AccessKeyID: "a", Region: "r"}, "configuration error: missing secret access key"},
		{Credentials{}, "configuration error: missing access key id, secret access key, region"},
	}
	for _, tt := range tests {
		err := tt.creds.Validate()
		if tt.err == "" {
			if err != nil {
				t.Errorf("Validate(%+v) unexpected error: %v", tt.creds, err)
			}
			continue
		}
		if err == nil || err.Error() != tt.err {
			t.Errorf("Validate(%+v) expected %q, got %v", tt.creds, tt.err, err)
		}
	}
}

func TestRequestHeaders(t *testing.T) {
	r := &Request{Headers: []Header{{"Host", "h"}, {"X-Amz-Date", "old"}, {"x-amz-date", "dup"}}}
	r.Set("x-amz-date", "new")
	if len(r.Headers) != 2 {
		t.Fatalf("expected 2 headers, got %v", r.Headers)
	}
	if v := r.Get("X-AMZ-DATE"); v != "new" {
		t.Errorf("expected 'new', got '%s'", v)
	}
	r.Set("x-amz-content-sha256", EmptyPayloadHash)
	r.Add("x-amz-meta-a", "1")
	if len(r.Headers) != 4 || r.Headers[3].Name != "x-amz-meta-a" {
		t.Errorf("unexpected headers %v", r.Headers)
	}
}

func TestRequestsSharingHeaders(t *testing.T) {
	base := make([]Header, 1, 8)
	base[0] = Header{"host", "examplebucket.s3.amazonaws.com"}
	r1 := &Request{Method: "GET", Path: "/test.txt", Headers: base}
	r2 := &Request{Method: "GET", Path: "/test.txt", Headers: base}

	t1 := time.Date(2013, 05, 24, 0, 0, 0, 0, time.UTC)
	sig1, err := Sign(testCreds, r1, t1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Sign(testCreds, r2, t1.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	r2.Add("x-amz-meta-a", "1")

	if v := r1.Get("x-amz-date"); v != "20130524T000000Z" {
		t.Errorf("first request date overwritten, got '%s'", v)
	}
	if v := r2.Get("x-amz-date"); v != "20130524T010000Z" {
		t.Errorf("second request date, got '%s'", v)
	}
	if len(r1.Headers) != 3 {
		t.Errorf("first request headers changed: %v", r1.Headers)
	}
	again, err := Sign(testCreds, r1, t1)
	if err != nil {
		t.Fatal(err)
	}
	if again.Authorization != sig1.Authorization {
		t.Errorf("first request no longer matches its signature:\n%s\n%s", again.Authorization, sig1.Authorization)
	}
	if len(base) != 1 || base[0].Name != "host" || base[:2][1].Name != "" {
		t.Errorf("shared backing array written: %v", base[:2])
	}
}
