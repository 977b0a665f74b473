// Package rterr enumerates the sentinel errors produced by this module's
// components. Call sites wrap these with fmt.Errorf("...: %w", ...) to add
// context; callers unwrap with errors.Is against the sentinels below.
package rterr

import "errors"

// Transport failures.
var (
	ErrSocketCreate  = errors.New("transport: socket create failed")
	ErrSocketConnect = errors.New("transport: connect failed")
	ErrSocketRead    = errors.New("transport: read failed")
	ErrSocketWrite   = errors.New("transport: write failed")
	ErrSocketTimeout = errors.New("transport: timed out")
)

// Cryptographic failures.
var (
	ErrEccInitFailed        = errors.New("ecdh: key generation failed")
	ErrEccExportKeyFailed   = errors.New("ecdh: export public key failed")
	ErrEccSharedSecretFailed = errors.New("ecdh: shared secret computation failed")
	ErrChaCha20DecodeFailed = errors.New("aead: authentication failed")
)

// TLS protocol failures.
var (
	ErrTlsUnexpectedPacket    = errors.New("tls: unexpected packet")
	ErrTlsBadCipherSuite      = errors.New("tls: unsupported cipher suite")
	ErrTlsVerifyFinished      = errors.New("tls: finished verification failed")
	ErrTlsAlertReceived       = errors.New("tls: alert received")
	ErrTlsUnsupportedVersion  = errors.New("tls: unsupported version")
)

// DNS failures.
var (
	ErrDnsConnectFailed  = errors.New("dns: connect to resolver failed")
	ErrDnsSendFailed     = errors.New("dns: query send failed")
	ErrDnsResponseFailed = errors.New("dns: response read failed")
	ErrDnsParseFailed    = errors.New("dns: response parse failed")
	ErrDnsQueryFailed    = errors.New("dns: query failed")
	ErrDnsResolveFailed  = errors.New("dns: resolve failed")
)

// HTTP failures.
var (
	ErrHttpBadStatus    = errors.New("http: unexpected status")
	ErrHttpBadHeader    = errors.New("http: malformed header")
	ErrHttpParseUrlFailed = errors.New("http: url parse failed")
)

// WebSocket failures.
var (
	ErrWsNotConnected     = errors.New("websocket: not connected")
	ErrWsCreateFailed     = errors.New("websocket: create failed")
	ErrWsTransportFailed  = errors.New("websocket: transport failed")
	ErrWsHandshakeFailed  = errors.New("websocket: handshake failed")
	ErrWsWriteFailed      = errors.New("websocket: write failed")
	ErrWsReceiveFailed    = errors.New("websocket: receive failed")
	ErrWsInvalidFrame     = errors.New("websocket: invalid frame")
	ErrWsFrameTooLarge    = errors.New("websocket: frame too large")
	ErrWsAllocFailed      = errors.New("websocket: allocation failed")
	ErrWsConnectionClosed = errors.New("websocket: connection closed")
	ErrWsDnsFailed        = errors.New("websocket: dns resolution failed")
)
