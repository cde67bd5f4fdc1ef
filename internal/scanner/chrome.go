package scanner

import (
	"context"
	"io"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	tls_client_profiles "github.com/bogdanfinn/tls-client/profiles"
	"github.com/rotisserie/eris"
)

// ChromeTransport fetches pages through a TLS client that presents a Chrome 124
// fingerprint, for sites that reject Go's default handshake.
type ChromeTransport struct {
	timeout time.Duration
	profile tls_client_profiles.ClientProfile
}

// NewChromeTransport builds a transport whose sessions give up after timeout.
func NewChromeTransport(timeout time.Duration) *ChromeTransport {
	if timeout <= 0 {
		timeout = DefaultPageTimeout
	}
	return &ChromeTransport{timeout: timeout, profile: tls_client_profiles.Chrome_124}
}

// newSession creates a client with its own cookie jar so scans never share cookies.
func (t *ChromeTransport) newSession() (tls_client.HttpClient, error) {
	seconds := int(t.timeout / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(seconds),
		tls_client.WithClientProfile(t.profile),
		tls_client.WithCookieJar(tls_client.NewCookieJar()),
	}
	return tls_client.NewHttpClient(nil, options...)
}

func (t *ChromeTransport) Get(ctx context.Context, target string, headers []Header) (*Response, error) {
	session, err := t.newSession()
	if err != nil {
		return nil, eris.Wrap(err, "create tls session")
	}

	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "build request for %s", target)
	}
	req.Header = fhttp.Header{}
	order := make([]string, 0, len(headers))
	for _, h := range headers {
		req.Header.Set(h.Name, h.Value)
		order = append(order, h.Name)
	}
	req.Header[fhttp.HeaderOrderKey] = order

	resp, err := session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "read body of %s", target)
	}
	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
