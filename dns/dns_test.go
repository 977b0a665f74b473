package dns

import (
	"encoding/binary"
	"testing"
)

func TestFormatNameEncodesLabels(t *testing.T) {
	name, err := formatName("www.example.com")
	if err != nil {
		t.Fatalf("formatName: %v", err)
	}
	want := []byte{3, 'w', 'w', 'w', 7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0}
	if string(name) != string(want) {
		t.Fatalf("got %v, want %v", name, want)
	}
}

func TestFormatNameRejectsEmptyLabel(t *testing.T) {
	if _, err := formatName("www..com"); err == nil {
		t.Fatalf("expected error for empty label")
	}
}

func TestFormatNameRejectsOverlongLabel(t *testing.T) {
	long := make([]byte, 64)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := formatName(string(long) + ".com"); err == nil {
		t.Fatalf("expected error for 64-byte label")
	}
}

func TestGenerateQueryWellFormed(t *testing.T) {
	msg, err := generateQuery("example.com", TypeA)
	if err != nil {
		t.Fatalf("generateQuery: %v", err)
	}
	if len(msg) < 12 {
		t.Fatalf("query shorter than header")
	}
	if binary.BigEndian.Uint16(msg[4:6]) != 1 {
		t.Fatalf("expected QDCOUNT=1")
	}
	qtype := binary.BigEndian.Uint16(msg[len(msg)-4 : len(msg)-2])
	if RecordType(qtype) != TypeA {
		t.Fatalf("expected QTYPE=A, got %d", qtype)
	}
}

// buildResponse assembles a minimal well-formed DNS response with a single
// A record answer, for exercising parseResponse.
func buildResponse(t *testing.T, ip [4]byte) []byte {
	t.Helper()
	name, err := formatName("example.com")
	if err != nil {
		t.Fatalf("formatName: %v", err)
	}

	msg := make([]byte, 0, 64)
	msg = appendU16(msg, 0x24a1)
	msg = appendU16(msg, 0x8180) // QR=1, RD=1, RA=1, RCODE=0
	msg = appendU16(msg, 1)      // QDCOUNT
	msg = appendU16(msg, 1)      // ANCOUNT
	msg = appendU16(msg, 0)
	msg = appendU16(msg, 0)

	msg = append(msg, name...)
	msg = appendU16(msg, uint16(TypeA))
	msg = appendU16(msg, classIN)

	// answer: name pointer to offset 12, TYPE, CLASS, TTL, RDLENGTH, RDATA
	msg = append(msg, 0xC0, 0x0C)
	msg = appendU16(msg, uint16(TypeA))
	msg = appendU16(msg, classIN)
	msg = append(msg, 0, 0, 0, 60) // TTL
	msg = appendU16(msg, 4)
	msg = append(msg, ip[:]...)

	return msg
}

func TestParseResponseExtractsARecord(t *testing.T) {
	msg := buildResponse(t, [4]byte{93, 184, 216, 34})
	addr, err := parseResponse(msg)
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if len(addr) != 4 || addr[0] != 93 || addr[3] != 34 {
		t.Fatalf("unexpected address bytes: %v", addr)
	}
}

func TestParseResponseRejectsNonResponse(t *testing.T) {
	msg := buildResponse(t, [4]byte{1, 2, 3, 4})
	binary.BigEndian.PutUint16(msg[2:4], 0x0100) // clear QR bit
	if _, err := parseResponse(msg); err == nil {
		t.Fatalf("expected error for non-response message")
	}
}

func TestParseResponseRejectsErrorRcode(t *testing.T) {
	msg := buildResponse(t, [4]byte{1, 2, 3, 4})
	binary.BigEndian.PutUint16(msg[2:4], 0x8183) // RCODE=3 NXDOMAIN
	if _, err := parseResponse(msg); err == nil {
		t.Fatalf("expected error for nonzero rcode")
	}
}
