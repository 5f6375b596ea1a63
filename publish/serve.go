package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/streamrail/s3publish/clicksend"
	"github.com/streamrail/s3publish/handler"
)

type serveOpts struct {
	Addr           string        `long:"addr" env:"S3PUBLISH_ADDR" default:":8080" description:"Address to listen on" ini-name:"addr"`
	AllowedOrigins []string      `long:"allow-origin" env:"S3PUBLISH_ALLOWED_ORIGINS" env-delim:"," description:"CORS allowed origin. May be repeated; none allows any origin" ini-name:"allow-origin"`
	MaxBodyBytes   int64         `long:"max-body" description:"Largest accepted request body, in bytes" default:"35651584" ini-name:"max-body"`
	ShutdownGrace  time.Duration `long:"shutdown-grace" description:"Time allowed for in-flight requests on shutdown" default:"10s" ini-name:"shutdown-grace"`
	CommonOpts
	BucketOpts
}

var serve serveOpts

func (serve *serveOpts) Execute(args []string) error {
	l := serve.logger()
	b, conf, err := bucket(&serve.CommonOpts, &serve.BucketOpts)
	if err != nil {
		return err
	}

	o := handler.Options{
		Uploader: handler.UploaderFunc(func(ctx context.Context, key string, content []byte, contentType string) (string, error) {
			return b.Upload(ctx, key, content, contentType, conf)
		}),
		Logger:         l,
		AllowedOrigins: serve.AllowedOrigins,
		MaxBodyBytes:   serve.MaxBodyBytes,
	}
	if cs, err := clicksend.NewFromEnv(); err == nil {
		cs.Logger = l
		o.Notifier = cs
	} else {
		l.Warn().Err(err).Msg("clicksend not configured")
	}

	srv := &http.Server{
		Addr:              serve.Addr,
		Handler:           handler.New(o),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		l.Info().Str("addr", serve.Addr).Str("bucket", b.Name).Msg("serving")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	l.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), serve.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func init() {
	_, err := parser.AddCommand("serve", "run the function server", "serve publish-file, send-sms, send-mms and send-email over HTTP", &serve)
	if err != nil {
		log.Fatal(err)
	}
}
