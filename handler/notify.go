package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/streamrail/s3publish/clicksend"
)

type notifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func notifyError(msg string, _ error) interface{} {
	return notifyResponse{Error: msg}
}

// notify decodes a T and hands it to send. Invalid messages are client
// errors; anything else from the provider is a server error.
func notify[T any](kind string, send func(context.Context, T) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m T
		if !decodePost(w, r, &m, notifyError) {
			return
		}
		l := zerolog.Ctx(r.Context())
		if err := send(r.Context(), m); err != nil {
			if errors.Is(err, clicksend.ErrInvalid) {
				l.Warn().Err(err).Msgf("invalid %s request", kind)
				writeJSON(w, http.StatusBadRequest, notifyResponse{Error: err.Error()})
				return
			}
			l.Error().Err(err).Msgf("sending %s failed", kind)
			writeJSON(w, http.StatusInternalServerError, notifyResponse{Error: "Failed to send " + kind})
			return
		}
		l.Info().Msgf("%s sent", kind)
		writeJSON(w, http.StatusOK, notifyResponse{Success: true, Message: kind + " sent successfully"})
	})
}

func sendSMS(n Notifier) http.Handler {
	return notify[clicksend.SMS]("SMS", n.SendSMS)
}

func sendMMS(n Notifier) http.Handler {
	return notify[clicksend.MMS]("MMS", n.SendMMS)
}

func sendEmail(n Notifier) http.Handler {
	return notify[clicksend.Email]("Email", n.SendEmail)
}
