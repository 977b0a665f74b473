package dns

import (
	"context"
	"fmt"
	"net"

	"github.com/mrzaxaryan/securert/httprt"
	"github.com/mrzaxaryan/securert/internal/embed"
	"github.com/mrzaxaryan/securert/internal/rterr"
	"github.com/mrzaxaryan/securert/tlsclient"
	"github.com/mrzaxaryan/securert/transport"
)

const dnsPort uint16 = 443
const maxResponseBytes = 512

// provider is one DoH service: the IPs to try in order and the TLS SNI
// hostname to present and to send as the HTTP Host header.
type provider struct {
	name string
	ips  []string
}

var cloudflare = provider{name: embed.String("one.one.one.one"), ips: []string{"1.1.1.1", "1.0.0.1"}}
var google = provider{name: embed.String("dns.google"), ips: []string{"8.8.8.8", "8.8.4.4"}}

// Resolve resolves host to an IP address via DoH, trying Cloudflare then
// Google, and falling back from AAAA to A if both fail and qtype was AAAA,
// per original_source's DNS::Resolve fallback order.
func Resolve(ctx context.Context, ent transport.Entropy, host string, qtype RecordType) (net.IP, error) {
	if host == "localhost" {
		if qtype == TypeAAAA {
			return net.IPv6loopback, nil
		}
		return net.IPv4(127, 0, 0, 1), nil
	}

	ip, err := resolveWithFallback(ctx, ent, cloudflare, host, qtype)
	if err != nil {
		ip, err = resolveWithFallback(ctx, ent, google, host, qtype)
	}
	if err != nil && qtype == TypeAAAA {
		ip, err = resolveWithFallback(ctx, ent, cloudflare, host, TypeA)
		if err != nil {
			ip, err = resolveWithFallback(ctx, ent, google, host, TypeA)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("dns: resolve %q failed: %w", host, rterr.ErrDnsResolveFailed)
	}
	return ip, nil
}

func resolveWithFallback(ctx context.Context, ent transport.Entropy, p provider, host string, qtype RecordType) (net.IP, error) {
	var lastErr error
	for _, ip := range p.ips {
		addr, err := resolveOverHTTP(ctx, ent, host, ip, p.name, qtype)
		if err == nil {
			return addr, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// resolveOverHTTP opens a TLS 1.3 connection to the DoH server at
// serverIP (SNI serverName), POSTs a DNS wire-format query and parses the
// wire-format response body, per RFC 8484 §4.1/4.2.
func resolveOverHTTP(ctx context.Context, ent transport.Entropy, host, serverIP, serverName string, qtype RecordType) (net.IP, error) {
	query, err := generateQuery(host, qtype)
	if err != nil {
		return nil, err
	}

	client := tlsclient.Create(transport.NewTCPTransport(), ent, serverName)
	if err := client.Open(ctx, serverIP, dnsPort); err != nil {
		return nil, fmt.Errorf("dns: connect to %s: %w", serverName, rterr.ErrDnsConnectFailed)
	}
	defer client.Close()

	headers := map[string]string{
		"Content-Type": "application/dns-message",
		"Accept":       "application/dns-message",
	}
	if err := httprt.WriteRequest(client, "POST", "/dns-query", serverName, headers, query); err != nil {
		return nil, fmt.Errorf("dns: send query: %w", rterr.ErrDnsSendFailed)
	}

	resp, err := httprt.ReadResponseHeadersExpecting(client, 200)
	if err != nil {
		return nil, fmt.Errorf("dns: read response headers: %w", rterr.ErrDnsResponseFailed)
	}
	if resp.ContentLength <= 0 || resp.ContentLength > maxResponseBytes {
		return nil, fmt.Errorf("dns: invalid content length %d: %w", resp.ContentLength, rterr.ErrDnsResponseFailed)
	}

	body := make([]byte, resp.ContentLength)
	total := 0
	for int64(total) < resp.ContentLength {
		n, err := client.Read(body[total:])
		if err != nil {
			return nil, fmt.Errorf("dns: read body: %w", rterr.ErrDnsResponseFailed)
		}
		total += n
	}

	addrBytes, err := parseResponse(body)
	if err != nil {
		return nil, err
	}
	return net.IP(addrBytes), nil
}
