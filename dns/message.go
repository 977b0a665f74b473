// Package dns implements a DNS-over-HTTPS (DoH) stub resolver (RFC 8484):
// RFC 1035 wire-format queries sent as HTTP/1.1 POST bodies over a
// tlsclient connection to Cloudflare and Google's public resolvers, with
// AAAA-to-A fallback. Grounded on
// original_source/src/runtime/network/dns/dns.cc and
// original_source/include/network/dns.h.
package dns

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/mrzaxaryan/securert/internal/rterr"
)

// RecordType is a DNS QTYPE (RFC 1035 §3.2.2). The original_source enum
// carries more than A/AAAA even though only those two are ever queried by
// this resolver — kept here as a supplemented, documented superset so
// callers building their own raw queries aren't limited to address
// records.
type RecordType uint16

const (
	TypeA     RecordType = 1
	TypeNS    RecordType = 2
	TypeCNAME RecordType = 5
	TypeMX    RecordType = 15
	TypePTR   RecordType = 12
	TypeTXT   RecordType = 16
	TypeAAAA  RecordType = 28
)

const (
	classIN           = 1
	queryTransactionID = 0x24a1 // DoH correlates over HTTP, not the DNS ID; fixed per original.
	maxAnswerCount     = 20
	maxQuestionCount   = 10
)

// formatName encodes host as DNS wire-format length-prefixed labels
// terminated by a zero-length label (RFC 1035 §4.1.2 / §2.3.1).
func formatName(host string) ([]byte, error) {
	if host == "" {
		return nil, fmt.Errorf("dns: empty hostname: %w", rterr.ErrDnsQueryFailed)
	}
	labels := strings.Split(host, ".")
	out := make([]byte, 0, len(host)+2)
	for _, label := range labels {
		if label == "" {
			return nil, fmt.Errorf("dns: empty label in %q: %w", host, rterr.ErrDnsQueryFailed)
		}
		if len(label) > 63 {
			return nil, fmt.Errorf("dns: label %q exceeds 63 octets: %w", label, rterr.ErrDnsQueryFailed)
		}
		out = append(out, byte(len(label)))
		out = append(out, label...)
	}
	out = append(out, 0)
	return out, nil
}

// generateQuery builds a complete RFC 1035 DNS query message: a 12-byte
// header (QR=0, RD=1, QDCOUNT=1) followed by one question entry.
func generateQuery(host string, qtype RecordType) ([]byte, error) {
	name, err := formatName(host)
	if err != nil {
		return nil, err
	}

	msg := make([]byte, 0, 12+len(name)+4)
	msg = appendU16(msg, queryTransactionID)
	msg = appendU16(msg, 0x0100) // flags: RD=1, everything else 0
	msg = appendU16(msg, 1)      // QDCOUNT
	msg = appendU16(msg, 0)      // ANCOUNT
	msg = appendU16(msg, 0)      // NSCOUNT
	msg = appendU16(msg, 0)      // ARCOUNT

	msg = append(msg, name...)
	msg = appendU16(msg, uint16(qtype))
	msg = appendU16(msg, classIN)

	return msg, nil
}

func appendU16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

// skipName advances past one DNS name (labels or a 2-byte compression
// pointer) without following the pointer, returning the byte count
// consumed at the current position.
func skipName(data []byte) (int, error) {
	offset := 0
	for offset < len(data) {
		label := data[offset]
		switch {
		case label == 0:
			return offset + 1, nil
		case label >= 0xC0:
			if offset+2 > len(data) {
				return 0, fmt.Errorf("dns: truncated name pointer: %w", rterr.ErrDnsParseFailed)
			}
			return offset + 2, nil
		case label > 63:
			return 0, fmt.Errorf("dns: invalid label length %d: %w", label, rterr.ErrDnsParseFailed)
		default:
			offset += int(label) + 1
		}
	}
	return 0, fmt.Errorf("dns: unterminated name: %w", rterr.ErrDnsParseFailed)
}

// skipQuestions advances past questionCount question entries, returning the
// total bytes consumed.
func skipQuestions(data []byte, questionCount int) (int, error) {
	pos := 0
	for i := 0; i < questionCount; i++ {
		if pos >= len(data) {
			return 0, fmt.Errorf("dns: question section exhausted: %w", rterr.ErrDnsParseFailed)
		}
		n, err := skipName(data[pos:])
		if err != nil {
			return 0, err
		}
		entry := n + 4 // QTYPE + QCLASS
		if pos+entry > len(data) {
			return 0, fmt.Errorf("dns: truncated question entry: %w", rterr.ErrDnsParseFailed)
		}
		pos += entry
	}
	return pos, nil
}

// parseAnswers scans answerCount resource records and returns the first A
// or AAAA record's RDATA bytes (4 or 16 bytes respectively).
func parseAnswers(data []byte, answerCount int) ([]byte, error) {
	const fixedFieldsSize = 10 // TYPE(2) + CLASS(2) + TTL(4) + RDLENGTH(2)

	pos := 0
	for ; answerCount > 0; answerCount-- {
		if pos >= len(data) {
			break
		}
		n, err := skipName(data[pos:])
		if err != nil {
			break
		}
		pos += n

		if len(data)-pos < fixedFieldsSize {
			break
		}
		rtype := binary.BigEndian.Uint16(data[pos : pos+2])
		rdlength := int(binary.BigEndian.Uint16(data[pos+8 : pos+10]))
		pos += fixedFieldsSize

		if len(data)-pos < rdlength {
			break
		}

		if rtype == uint16(TypeA) && rdlength == 4 {
			return append([]byte(nil), data[pos:pos+4]...), nil
		}
		if rtype == uint16(TypeAAAA) && rdlength == 16 {
			return append([]byte(nil), data[pos:pos+16]...), nil
		}
		pos += rdlength
	}
	return nil, fmt.Errorf("dns: no A/AAAA record in answer section: %w", rterr.ErrDnsParseFailed)
}

// parseResponse validates and parses a complete DNS response message,
// returning the resolved address's raw bytes (4 for A, 16 for AAAA).
func parseResponse(data []byte) ([]byte, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("dns: response shorter than header: %w", rterr.ErrDnsParseFailed)
	}

	flags := binary.BigEndian.Uint16(data[2:4])
	if flags&0x8000 == 0 {
		return nil, fmt.Errorf("dns: message is not a response: %w", rterr.ErrDnsParseFailed)
	}
	if rcode := flags & 0x000F; rcode != 0 {
		return nil, fmt.Errorf("dns: server returned rcode %d: %w", rcode, rterr.ErrDnsParseFailed)
	}

	qCount := int(binary.BigEndian.Uint16(data[4:6]))
	ansCount := int(binary.BigEndian.Uint16(data[6:8]))
	if ansCount == 0 || ansCount > maxAnswerCount {
		return nil, fmt.Errorf("dns: invalid answer count %d: %w", ansCount, rterr.ErrDnsParseFailed)
	}
	if qCount > maxQuestionCount {
		return nil, fmt.Errorf("dns: suspicious question count %d: %w", qCount, rterr.ErrDnsParseFailed)
	}

	pos := 12
	if qCount > 0 {
		n, err := skipQuestions(data[pos:], qCount)
		if err != nil {
			return nil, err
		}
		pos += n
	}
	if pos >= len(data) {
		return nil, fmt.Errorf("dns: no space for answer section: %w", rterr.ErrDnsParseFailed)
	}

	return parseAnswers(data[pos:], ansCount)
}
