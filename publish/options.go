package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"github.com/streamrail/s3publish"
)

const (
	iniFile = ".s3publish.ini"
)

// CommonOpts are Options common to all commands
type CommonOpts struct {
	Region       string `long:"region" env:"AWS_REGION" description:"AWS region of the bucket" ini-name:"region"`
	AccessKey    string `long:"access-key" env:"AWS_ACCESS_KEY_ID" description:"AWS access key id" ini-name:"access-key"`
	SecretKey    string `long:"secret-key" env:"AWS_SECRET_ACCESS_KEY" description:"AWS secret access key" ini-name:"secret-key"`
	SessionToken string `long:"session-token" env:"AWS_SESSION_TOKEN" description:"AWS session token for temporary credentials" ini-name:"session-token"`
	EndPoint     string `long:"endpoint" env:"S3_ENDPOINT" description:"S3 endpoint. Defaults to s3.<region>.amazonaws.com" ini-name:"endpoint"`
	LogLevel     string `long:"log-level" default:"info" description:"Log level: debug, info, warn or error" ini-name:"log-level"`
	LogJSON      bool   `long:"log-json" description:"Log JSON lines instead of console output" ini-name:"log-json"`
}

// BucketOpts are Options common to the commands that upload.
type BucketOpts struct {
	Bucket string `long:"bucket" short:"b" env:"S3_BUCKET_NAME" description:"S3 bucket" ini-name:"bucket"`
	NoSSL  bool   `long:"no-ssl" description:"Do not use SSL for endpoint connection." ini-name:"no-ssl"`
	ACL    string `long:"acl" default:"public-read" description:"canned acl to apply to uploaded objects; empty sends none" ini-name:"acl"`
}

var appOpts struct {
	Version  func() `long:"version" short:"v" description:"Print version"`
	Man      func() `long:"manpage" description:"Create publish.man man page in current directory"`
	WriteIni bool   `long:"writeini" short:"i" description:"Write .s3publish.ini in current user's home directory" no-ini:"true"`
}
var parser = flags.NewParser(&appOpts, (flags.HelpFlag | flags.PassDoubleDash))

func init() {

	// set parser fields
	parser.ShortDescription = "signed S3 uploads and publish functions"

	appOpts.Version = func() {
		fmt.Fprintf(os.Stderr, "%s version %s\n", name, version)
		os.Exit(0)
	}

	appOpts.Man = func() {
		f, err := os.Create(name + ".man")
		if err != nil {
			log.Fatal(err)
		}
		parser.WriteManPage(f)
		fmt.Fprintf(os.Stderr, "man page written to %s\n", f.Name())
		os.Exit(0)
	}
}

// credentials returns the signing credentials named by the options.
func (o *CommonOpts) credentials() s3publish.Credentials {
	return s3publish.Credentials{
		AccessKeyID:     o.AccessKey,
		SecretAccessKey: o.SecretKey,
		SessionToken:    o.SessionToken,
		Region:          o.Region,
		Service:         s3publish.DefaultService,
	}
}

// bucket validates the configuration and returns the target bucket with the
// upload config the options describe.
func bucket(co *CommonOpts, bo *BucketOpts) (*s3publish.Bucket, *s3publish.Config, error) {
	s3, err := s3publish.New(co.EndPoint, co.credentials())
	if err != nil {
		return nil, nil, err
	}
	b, err := s3.Bucket(bo.Bucket)
	if err != nil {
		return nil, nil, err
	}
	conf := new(s3publish.Config)
	*conf = *s3publish.DefaultConfig
	if bo.NoSSL {
		conf.Scheme = "http"
	}
	conf.ACL = bo.ACL
	return b, conf, nil
}

// logger builds the process logger and hands it to the s3publish package.
// Output goes to stderr so stdout stays free for command results.
func (o *CommonOpts) logger() zerolog.Logger {
	var l zerolog.Logger
	if o.LogJSON {
		l = zerolog.New(os.Stderr)
	} else {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
	lvl, err := zerolog.ParseLevel(o.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	l = l.Level(lvl).With().Timestamp().Str("app", name).Logger()
	s3publish.SetLogger(l)
	return l
}

func iniPath() (path string, exist bool, err error) {
	hdir, err := homeDir()
	if err != nil {
		return
	}
	path = fmt.Sprintf("%s/%s", hdir, iniFile)
	if _, staterr := os.Stat(path); !os.IsNotExist(staterr) {
		exist = true
	}
	return
}

func parseIni() (err error) {
	p, exist, err := iniPath()
	if err != nil || !exist {
		return
	}
	return flags.NewIniParser(parser).ParseFile(p)
}

func writeIni() {
	p, exist, err := iniPath()
	if err != nil {
		log.Fatal(err)
	}
	if exist {
		fmt.Fprintf(os.Stderr, "%s exists, refusing to overwrite.\n", p)
	} else {
		if err := flags.NewIniParser(parser).WriteFile(p,
			(flags.IniIncludeComments | flags.IniIncludeDefaults | flags.IniCommentDefaults)); err != nil {
			log.Fatal(err)
		}
		fmt.Fprintf(os.Stderr, "ini file written to %s\n", p)
	}
	os.Exit(0)
}

// find unix home directory
func homeDir() (string, error) {
	if h := os.Getenv("HOME"); h != "" {
		return h, nil
	}
	h, err := exec.Command("sh", "-c", "eval echo ~$USER").Output()
	if err == nil && len(h) > 0 {
		return strings.TrimSpace(string(h)), nil
	}
	return "", fmt.Errorf("home directory not found for current user")
}
