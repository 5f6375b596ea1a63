package s3publish

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "s3publish_uploads_total",
		Help: "Number of object uploads by result.",
	}, []string{"result"})

	uploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "s3publish_upload_bytes_total",
		Help: "Bytes of object content accepted by the store.",
	})

	uploadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "s3publish_upload_duration_seconds",
		Help:    "Duration of object uploads, signing included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
)

// uploadResult labels an upload outcome: "ok", "transport" for faults
// without a response, or the response status code.
func uploadResult(err error) string {
	if err == nil {
		return "ok"
	}
	var uerr *UploadError
	if errors.As(err, &uerr) && uerr.StatusCode != 0 {
		return strconv.Itoa(uerr.StatusCode)
	}
	return "transport"
}

func observeUpload(start time.Time, size int, err error) {
	res := uploadResult(err)
	uploadsTotal.WithLabelValues(res).Inc()
	uploadDuration.WithLabelValues(res).Observe(time.Since(start).Seconds())
	if err == nil {
		uploadBytes.Add(float64(size))
	}
}
