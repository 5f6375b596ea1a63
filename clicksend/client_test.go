package clicksend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	path string
	user string
	pass string
	ct   string
	body map[string]interface{}
}

func testServer(t *testing.T, status int, got *captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.user, got.pass, _ = r.BasicAuth()
		got.ct = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(b, &got.body))
		w.WriteHeader(status)
		io.WriteString(w, `{"response_msg":"`+http.StatusText(status)+`"}`)
	}))
}

func testClient(ts *httptest.Server) *Client {
	return &Client{Username: "user", APIKey: "key", EmailAddressID: 7, BaseURL: ts.URL}
}

func TestSendSMS(t *testing.T) {
	var got captured
	ts := testServer(t, http.StatusOK, &got)
	defer ts.Close()

	err := testClient(ts).SendSMS(context.Background(), SMS{Phone: "07700 900123", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "/v3/sms/send", got.path)
	assert.Equal(t, "user", got.user)
	assert.Equal(t, "key", got.pass)
	assert.Equal(t, "application/json", got.ct)

	msgs := got.body["messages"].([]interface{})
	require.Len(t, msgs, 1)
	msg := msgs[0].(map[string]interface{})
	assert.Equal(t, "+447700900123", msg["to"])
	assert.Equal(t, "hi", msg["body"])
	assert.Equal(t, "s3publish", msg["source"])
	assert.NotContains(t, msg, "country")
}

func TestSendSMSInvalid(t *testing.T) {
	c := &Client{Username: "user", APIKey: "key", BaseURL: "http://127.0.0.1:0"}
	assert.ErrorIs(t, c.SendSMS(context.Background(), SMS{Phone: "0770"}), ErrInvalid)
	assert.ErrorIs(t, c.SendSMS(context.Background(), SMS{Message: "hi"}), ErrInvalid)
}

func TestSendMMS(t *testing.T) {
	var got captured
	ts := testServer(t, http.StatusOK, &got)
	defer ts.Close()

	err := testClient(ts).SendMMS(context.Background(), MMS{
		Subject:   "photo",
		From:      "shop",
		To:        "+44 7700 900123",
		Body:      "look",
		MediaFile: "https://photos.s3.eu-west-2.amazonaws.com/a.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "/v3/mms/send", got.path)
	assert.Equal(t, "https://photos.s3.eu-west-2.amazonaws.com/a.jpg", got.body["media_file"])
	msg := got.body["messages"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "+447700900123", msg["to"])
	assert.Equal(t, "GB", msg["country"])
	assert.Equal(t, "photo", msg["subject"])
	assert.Equal(t, "shop", msg["from"])

	err = testClient(ts).SendMMS(context.Background(), MMS{Subject: "photo"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSendEmail(t *testing.T) {
	var got captured
	ts := testServer(t, http.StatusOK, &got)
	defer ts.Close()

	err := testClient(ts).SendEmail(context.Background(), Email{
		To:      []Recipient{{Email: "a@example.com", Name: "A"}},
		From:    "Support",
		Subject: "hello",
		Body:    "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "/v3/email/send", got.path)
	from := got.body["from"].(map[string]interface{})
	assert.Equal(t, float64(7), from["email_address_id"])
	assert.Equal(t, "Support", from["name"])
	assert.Equal(t, []interface{}{}, got.body["attachments"])

	err = testClient(ts).SendEmail(context.Background(), Email{From: "x", Subject: "s", Body: "b"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSendAPIError(t *testing.T) {
	var got captured
	ts := testServer(t, http.StatusUnauthorized, &got)
	defer ts.Close()

	err := testClient(ts).SendSMS(context.Background(), SMS{Phone: "+15550100", Message: "hi"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Unauthorized")
}

func TestNewFromEnv(t *testing.T) {
	for _, k := range []string{"CLICK_SEND_API_USERNAME", "CLICK_SEND_API_KEY", "CLICK_SEND_EMAIL_ADDRESS_ID"} {
		v, ok := os.LookupEnv(k)
		os.Unsetenv(k)
		if ok {
			defer os.Setenv(k, v)
		} else {
			defer os.Unsetenv(k)
		}
	}

	_, err := NewFromEnv()
	assert.Error(t, err)

	os.Setenv("CLICK_SEND_API_USERNAME", "user")
	os.Setenv("CLICK_SEND_API_KEY", "key")
	c, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 0, c.EmailAddressID)

	os.Setenv("CLICK_SEND_EMAIL_ADDRESS_ID", "12")
	c, err = NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 12, c.EmailAddressID)

	os.Setenv("CLICK_SEND_EMAIL_ADDRESS_ID", "twelve")
	_, err = NewFromEnv()
	assert.Error(t, err)
}
