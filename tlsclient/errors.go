package tlsclient

import "errors"

var (
	errShortServerHello  = errors.New("tlsclient: truncated ServerHello")
	errShortRecordHeader = errors.New("tlsclient: truncated record header")
	errUnknownGroup      = errors.New("tlsclient: server selected an unoffered group")
	errMissingKeyShare   = errors.New("tlsclient: ServerHello carries no key_share")
	errUnexpectedMessage = errors.New("tlsclient: handshake message out of order")
)
