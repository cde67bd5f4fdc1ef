package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
)

const (
	DefaultPageTimeout = 10 * time.Second
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	maxBodyBytes  = 2 << 20
	timeoutReason = "Timeout"
)

// FetchResult encodes the outcome of one page fetch. Failures never surface as errors.
type FetchResult struct {
	URL         string
	HTML        string
	OK          bool
	ErrorReason string
}

// Header is one request header. Order is preserved by transports that care about it.
type Header struct {
	Name  string
	Value string
}

// Response is the part of an HTTP response the fetcher needs.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Transport performs a single GET request.
type Transport interface {
	Get(ctx context.Context, target string, headers []Header) (*Response, error)
}

// PageFetcher retrieves pages with browser-like headers and a per-page timeout.
type PageFetcher struct {
	transport Transport
	timeout   time.Duration
	headers   []Header
}

// NewPageFetcher builds a fetcher. A nil transport uses HTTPTransport and a zero
// timeout uses DefaultPageTimeout.
func NewPageFetcher(transport Transport, timeout time.Duration, userAgent string) *PageFetcher {
	if transport == nil {
		transport = NewHTTPTransport()
	}
	if timeout <= 0 {
		timeout = DefaultPageTimeout
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	return &PageFetcher{
		transport: transport,
		timeout:   timeout,
		headers: []Header{
			{Name: "User-Agent", Value: userAgent},
			{Name: "Accept", Value: "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
			{Name: "Accept-Language", Value: "en-US,en;q=0.9"},
			{Name: "Accept-Encoding", Value: "gzip, deflate, br"},
		},
	}
}

// Fetch downloads target and reports the outcome in the result.
func (f *PageFetcher) Fetch(ctx context.Context, target string) (result FetchResult) {
	result.URL = target
	defer func() {
		if r := recover(); r != nil {
			result = FetchResult{URL: target, ErrorReason: fmt.Sprintf("panic: %v", r)}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.transport.Get(ctx, target, f.headers)
	if err != nil {
		result.ErrorReason = failureReason(ctx, err)
		return result
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.ErrorReason = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return result
	}

	result.HTML = decodeBody(resp.Body, resp.ContentType)
	result.OK = true
	return result
}

func failureReason(ctx context.Context, err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return timeoutReason
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return timeoutReason
	}
	return err.Error()
}

// decodeBody converts a body to UTF-8 using the declared charset, or sniffing when
// none is declared. Undecodable bodies are returned as-is.
func decodeBody(body []byte, contentType string) string {
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if label := params["charset"]; label != "" {
			if enc, err := htmlindex.Get(label); err == nil {
				if decoded, err := enc.NewDecoder().Bytes(body); err == nil {
					return string(decoded)
				}
			}
			return string(body)
		}
	}

	if utf8.Valid(body) {
		return string(body)
	}
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || enc == nil {
		return string(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

// HTTPTransport is the net/http transport used by default.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport builds a transport with pooled connections and bounded dial and
// TLS handshake times.
func NewHTTPTransport() *HTTPTransport {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		IdleConnTimeout:       60 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &HTTPTransport{client: &http.Client{Transport: transport}}
}

// NewHTTPTransportWithClient wraps an existing client, mainly for tests.
func NewHTTPTransportWithClient(client *http.Client) *HTTPTransport {
	if client == nil {
		return NewHTTPTransport()
	}
	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Get(ctx context.Context, target string, headers []Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "build request for %s", target)
	}
	for _, h := range headers {
		// net/http only decodes gzip transparently when it negotiates the encoding itself.
		if strings.EqualFold(h.Name, "Accept-Encoding") {
			continue
		}
		req.Header.Set(h.Name, h.Value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		return nil, eris.Wrapf(err, "read body of %s", target)
	}
	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        buf.Bytes(),
	}, nil
}
