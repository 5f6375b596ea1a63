package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/streamrail/s3publish"
)

// PublishRequest is the body of a publish-file call. Data is base64 when Type
// is "base64" and raw text otherwise.
type PublishRequest struct {
	Folder   string `json:"folder"`
	Filename string `json:"filename"`
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
	Type     string `json:"type,omitempty"`
}

type publishResponse struct {
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

func publishError(msg string, err error) interface{} {
	resp := publishResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	return resp
}

// Content returns the bytes to upload.
func (p PublishRequest) Content() ([]byte, error) {
	if p.Type != "base64" {
		return []byte(p.Data), nil
	}
	b, err := decodeBase64(p.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: data: %v", s3publish.ErrEncoding, err)
	}
	return b, nil
}

func publishFile(u Uploader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req PublishRequest
		if !decodePost(w, r, &req, publishError) {
			return
		}
		if req.Filename == "" {
			writeJSON(w, http.StatusBadRequest, publishError("Missing required fields", errors.New("filename is required")))
			return
		}
		key := s3publish.Key(req.Folder, req.Filename)
		l := zerolog.Ctx(r.Context()).With().Str("key", key).Logger()

		content, err := req.Content()
		if err != nil {
			l.Warn().Err(err).Msg("invalid file content")
			writeJSON(w, http.StatusBadRequest, publishError("Invalid file content", err))
			return
		}

		l.Debug().Str("mime_type", req.MimeType).Int("size", len(content)).Msg("uploading file")
		url, err := u.Upload(r.Context(), key, content, req.MimeType)
		if err != nil {
			l.Error().Err(err).Msg("file upload failed")
			status := http.StatusInternalServerError
			if errors.Is(err, s3publish.ErrEncoding) {
				status = http.StatusBadRequest
			}
			writeJSON(w, status, publishError("Failed to upload file", err))
			return
		}
		l.Info().Str("url", url).Msg("file published")
		writeJSON(w, http.StatusOK, publishResponse{URL: url})
	})
}

// decodeBase64 is forgiving like browsers' atob: ASCII whitespace is ignored
// and padding is optional.
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\f', '\r':
			return -1
		}
		return r
	}, s)
	if len(s)%4 != 0 {
		return base64.RawStdEncoding.DecodeString(s)
	}
	return base64.StdEncoding.DecodeString(s)
}
