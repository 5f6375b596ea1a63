// Package handler serves the publish-file and notification functions over
// HTTP. Every function accepts a JSON POST and answers with JSON.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/streamrail/s3publish/clicksend"
)

// Uploader stores content under key and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, content []byte, contentType string) (string, error)
}

// UploaderFunc adapts a function to Uploader.
type UploaderFunc func(ctx context.Context, key string, content []byte, contentType string) (string, error)

func (f UploaderFunc) Upload(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	return f(ctx, key, content, contentType)
}

// Notifier delivers messages; *clicksend.Client implements it.
type Notifier interface {
	SendSMS(ctx context.Context, m clicksend.SMS) error
	SendMMS(ctx context.Context, m clicksend.MMS) error
	SendEmail(ctx context.Context, m clicksend.Email) error
}

// Options configure New.
type Options struct {
	Uploader Uploader
	Notifier Notifier // nil leaves the notification routes unmounted
	Logger   zerolog.Logger
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
	// MaxBodyBytes bounds request bodies; 0 uses DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// DefaultMaxBodyBytes is large enough for a base64 encoded 25MiB file.
const DefaultMaxBodyBytes = 34 << 20

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "s3publish_http_requests_total",
		Help: "Number of function requests by route and status.",
	}, []string{"route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "s3publish_http_request_duration_seconds",
		Help:    "Duration of function requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// New returns the function server handler.
func New(o Options) http.Handler {
	maxBody := o.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	mux := http.NewServeMux()
	route := func(path string, h http.Handler) {
		mux.Handle(path, instrument(path, http.MaxBytesHandler(h, maxBody)))
	}
	route("/publish-file", publishFile(o.Uploader))
	if o.Notifier != nil {
		route("/send-sms", sendSMS(o.Notifier))
		route("/send-mms", sendMMS(o.Notifier))
		route("/send-email", sendEmail(o.Notifier))
	} else {
		o.Logger.Warn().Msg("notifier not configured: send-sms, send-mms and send-email are disabled")
	}
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	c := cors.New(cors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey"},
	})
	return withLogger(o.Logger)(c.Handler(mux))
}

// withLogger attaches a request scoped logger carrying a fresh request id.
func withLogger(l zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := xid.New().String()
			w.Header().Set("X-Request-Id", id)
			rl := l.With().
				Str("req_id", id).
				Str("http_method", r.Method).
				Str("http_path", r.URL.Path).
				Logger()
			next.ServeHTTP(w, r.WithContext(rl.WithContext(r.Context())))
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{w, http.StatusOK}
		next.ServeHTTP(rw, r)
		requestsTotal.WithLabelValues(route, strconv.Itoa(rw.statusCode)).Inc()
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		zerolog.Ctx(r.Context()).Info().Int("status", rw.statusCode).Dur("took", time.Since(start)).Msg("request served")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodePost enforces POST and decodes the JSON body into v. It writes the
// error response itself and reports whether the handler should continue.
func decodePost(w http.ResponseWriter, r *http.Request, v interface{}, errBody func(msg string, err error) interface{}) bool {
	l := zerolog.Ctx(r.Context())
	if r.Method != http.MethodPost {
		l.Debug().Msg("unsupported method")
		writeJSON(w, http.StatusMethodNotAllowed, errBody("Method not allowed", nil))
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			l.Warn().Int64("limit", tooLarge.Limit).Msg("request body too large")
			writeJSON(w, http.StatusRequestEntityTooLarge, errBody("Request body too large", err))
			return false
		}
		l.Warn().Err(err).Msg("invalid request body")
		writeJSON(w, http.StatusBadRequest, errBody("Invalid JSON input", err))
		return false
	}
	return true
}
