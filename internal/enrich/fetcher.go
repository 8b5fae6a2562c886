package enrich

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

type FailureKind string

const (
	FailureDNS      FailureKind = "dns"
	FailureConnect  FailureKind = "connect"
	FailureTimeout  FailureKind = "timeout"
	FailureTLS      FailureKind = "tls"
	FailureStatus   FailureKind = "status"
	FailureCanceled FailureKind = "canceled"
	FailureOther    FailureKind = "other"
)

type (
	FetcherOptions struct {
		Timeout      time.Duration
		UserAgent    string
		MaxBodyBytes int64
	}

	RawPage struct {
		URL         string
		StatusCode  int
		ContentType string
		Body        string
	}

	// FetchError is the only error Fetch returns.
	FetchError struct {
		URL        string
		Kind       FailureKind
		StatusCode int
		Cause      error
	}

	Fetcher struct {
		client       *resty.Client
		maxBodyBytes int64
	}
)

func (e *FetchError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("error fetching data from %s: %s", e.URL, e.Kind)
	}
	return fmt.Sprintf("error fetching data from %s: %s", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

func NewFetcher(opts FetcherOptions) *Fetcher {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetDoNotParseResponse(true)
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	client.SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	return &Fetcher{
		client:       client,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

// Fetch issues a single GET for url. Bodies over the configured cap are
// truncated rather than rejected. The body is decoded to UTF-8 following the
// Content-Type charset, falling back to the page's <meta charset>.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*RawPage, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &FetchError{URL: url, Kind: classifyTransportError(ctx, err), Cause: err}
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= 400 {
		return nil, &FetchError{
			URL:        url,
			Kind:       FailureStatus,
			StatusCode: resp.StatusCode(),
			Cause:      errors.New(fmt.Sprintf("%d %s", resp.StatusCode(), statusText(resp))),
		}
	}

	var reader io.Reader = body
	if f.maxBodyBytes > 0 {
		reader = io.LimitReader(body, f.maxBodyBytes)
	}
	contentType := resp.Header().Get("Content-Type")
	decoded, err := charset.NewReader(reader, contentType)
	if err != nil {
		return nil, &FetchError{URL: url, Kind: classifyTransportError(ctx, err), Cause: errors.Wrap(err, "read body")}
	}
	b, err := io.ReadAll(decoded)
	if err != nil {
		return nil, &FetchError{URL: url, Kind: classifyTransportError(ctx, err), Cause: errors.Wrap(err, "read body")}
	}

	return &RawPage{
		URL:         url,
		StatusCode:  resp.StatusCode(),
		ContentType: contentType,
		Body:        string(b),
	}, nil
}

func statusText(resp *resty.Response) string {
	if resp.RawResponse != nil && resp.RawResponse.Status != "" {
		return resp.RawResponse.Status
	}
	return "unexpected status"
}

func classifyTransportError(ctx context.Context, err error) FailureKind {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return FailureTimeout
		}
		return FailureCanceled
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureDNS
	}

	var certErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var invalidCert x509.CertificateInvalidError
	var recordErr tls.RecordHeaderError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuthority) || errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidCert) || errors.As(err, &recordErr) {
		return FailureTLS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return FailureConnect
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return FailureConnect
	}

	return FailureOther
}
