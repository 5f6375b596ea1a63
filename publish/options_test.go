package main

import (
	"os"
	"os/user"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamrail/s3publish"
)

func TestHomeDir(t *testing.T) {
	hs := os.Getenv("HOME")
	defer os.Setenv("HOME", hs)

	u, err := user.Current()
	if err != nil {
		t.Fatal(err)
	}
	thdir := u.HomeDir

	if err := os.Setenv("HOME", ""); err != nil {
		t.Fatal(err)
	}
	hdir, err := homeDir()
	if err != nil {
		t.Fatal(err)
	}
	if hdir != thdir {
		t.Errorf("expected %s\n actual%s\n", thdir, hdir)
	}
}

var testOpts = CommonOpts{
	Region:    "eu-west-2",
	AccessKey: "AKIDEXAMPLE",
	SecretKey: "wJalrXUtnFEMI/K7MDENG/bPxRfiCYEXAMPLEKEY",
}

func TestBucket(t *testing.T) {
	co := testOpts
	b, conf, err := bucket(&co, &BucketOpts{Bucket: "photos", ACL: "private"})
	require.NoError(t, err)
	assert.Equal(t, "photos.s3.eu-west-2.amazonaws.com", b.Host())
	assert.Equal(t, "https", conf.Scheme)
	assert.Equal(t, "private", conf.ACL)
	assert.Equal(t, "public-read", s3publish.DefaultConfig.ACL, "DefaultConfig must not be modified")

	co.EndPoint = "localhost:9000"
	b, conf, err = bucket(&co, &BucketOpts{Bucket: "photos", NoSSL: true})
	require.NoError(t, err)
	assert.Equal(t, "photos.localhost:9000", b.Host())
	assert.Equal(t, "http", conf.Scheme)
	assert.Equal(t, "", conf.ACL)
}

func TestBucketErrors(t *testing.T) {
	co := testOpts
	_, _, err := bucket(&co, &BucketOpts{})
	assert.ErrorIs(t, err, s3publish.ErrConfig)

	_, _, err = bucket(&co, &BucketOpts{Bucket: "Not_A_Bucket"})
	assert.ErrorIs(t, err, s3publish.ErrConfig)

	co.SecretKey = ""
	_, _, err = bucket(&co, &BucketOpts{Bucket: "photos"})
	assert.ErrorIs(t, err, s3publish.ErrConfig)
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, s := range []string{"20240102T030405Z", "2024-01-02T03:04:05Z", "2024-01-02T04:04:05+01:00"} {
		got, err := parseTime(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}
	_, err := parseTime("yesterday")
	assert.Error(t, err)
}
