package s3publish

import (
	"context"
	"net"
	"net/http"
	"time"
)

type deadlineConn struct {
	Timeout time.Duration
	net.Conn
}

func (c *deadlineConn) Read(b []byte) (n int, err error) {
	if err = c.Conn.SetDeadline(time.Now().Add(c.Timeout)); err != nil {
		return
	}
	return c.Conn.Read(b)
}

func (c *deadlineConn) Write(b []byte) (n int, err error) {
	if err = c.Conn.SetDeadline(time.Now().Add(c.Timeout)); err != nil {
		return
	}
	return c.Conn.Write(b)
}

// ClientWithTimeout is an http client for uploads to S3. It bounds the dial,
// the wait for response headers and every read or write on the TCP
// connection, so a stalled upload fails instead of blocking its caller.
func ClientWithTimeout(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: timeout, KeepAlive: timeout}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, netw, addr string) (net.Conn, error) {
			c, err := dialer.DialContext(ctx, netw, addr)
			if err != nil {
				return nil, err
			}
			return &deadlineConn{timeout, c}, nil
		},
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		MaxIdleConnsPerHost:   10,
	}
	return &http.Client{Transport: transport}
}
