// Package upstream performs the mutually-authenticated calls to the
// person-search web service: a transport client for single attempts and
// a retrier that applies the fixed retry budget.
package upstream

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Exchange is one completed HTTP exchange: status and body verbatim.
// Any status code counts as completed; content classification happens
// downstream.
type Exchange struct {
	Status int
	Body   []byte
}

// Config holds the settings needed to construct a Client.
type Config struct {
	URL        string
	SOAPAction string
	CertFile   string
	KeyFile    string
	Timeout    time.Duration
}

// Client posts SOAP envelopes to the upstream endpoint over mutual TLS.
// The certificate material is loaded once at construction and the
// underlying transport reuses connections; the client is safe for
// concurrent use.
type Client struct {
	http       *http.Client
	url        string
	soapAction string
}

// NewClient loads the client certificate/key pair and builds the HTTP
// client. An unreadable key pair is a startup fault: callers treat the
// returned error as fatal.
func NewClient(cfg Config) (*Client, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load client key pair: %w", err)
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		},
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		url:        cfg.URL,
		soapAction: cfg.SOAPAction,
	}, nil
}

// Do performs exactly one POST of the envelope. It returns an Exchange
// for any completed HTTP round trip regardless of status, and an error
// only for transport-level faults (connect, TLS, DNS, timeout). The
// context is attached to the outbound request, so inbound cancellation
// propagates to in-flight attempts.
func (c *Client) Do(ctx context.Context, envelope []byte) (Exchange, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(envelope))
	if err != nil {
		return Exchange{}, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", c.soapAction)

	resp, err := c.http.Do(req)
	if err != nil {
		return Exchange{}, fmt.Errorf("upstream transport: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Exchange{}, fmt.Errorf("read upstream response: %w", err)
	}

	return Exchange{Status: resp.StatusCode, Body: body}, nil
}
