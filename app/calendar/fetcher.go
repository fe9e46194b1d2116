package calendar

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"
)

var errPrivateHost = errors.New("host resolves to a private or reserved address")

// Fetcher retrieves raw calendar bytes for a source URL. It does not
// interpret the payload and never retries; a failed fetch fails only that
// source's contribution to a request.
type Fetcher struct {
	client            *http.Client
	timeout           time.Duration
	maxBodySize       int64
	userAgent         string
	allowPrivateHosts bool
}

func NewFetcher(client *http.Client, timeout time.Duration, maxBodySize int64,
	userAgent string, allowPrivateHosts bool) *Fetcher {
	return &Fetcher{
		client:            client,
		timeout:           timeout,
		maxBodySize:       maxBodySize,
		userAgent:         userAgent,
		allowPrivateHosts: allowPrivateHosts,
	}
}

func (f *Fetcher) Run(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Kind: FetchUnreachable, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/calendar, */*")

	if !f.allowPrivateHosts && f.isPrivateHost(ctx, req.URL.Hostname()) {
		return nil, &FetchError{URL: url, Kind: FetchUnreachable, Err: errPrivateHost}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Kind: classifyNetError(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, Kind: FetchHTTPStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, &FetchError{URL: url, Kind: classifyNetError(err), Err: err}
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, &FetchError{URL: url, Kind: FetchTooLarge}
	}

	return body, nil
}

// isPrivateHost reports whether a hostname resolves to a non-public
// address. A resolution failure counts as private, so unresolvable hosts
// are rejected rather than probed.
func (f *Fetcher) isPrivateHost(ctx context.Context, hostname string) bool {
	if ip := net.ParseIP(hostname); ip != nil {
		return isPrivateIP(ip)
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, hostname)
	if err != nil {
		return true
	}

	for _, addr := range addrs {
		if isPrivateIP(addr.IP) {
			return true
		}
	}

	return false
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}

func classifyNetError(err error) FetchErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FetchTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FetchTimeout
	}

	return FetchUnreachable
}
