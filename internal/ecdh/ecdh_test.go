package ecdh

import (
	"bytes"
	"testing"

	"github.com/mrzaxaryan/securert/transport"
)

func TestSharedSecretSymmetry(t *testing.T) {
	ent := transport.OSEntropy{}

	alice := NewP256()
	if err := alice.Initialize(ent); err != nil {
		t.Fatalf("alice.Initialize: %v", err)
	}
	bob := NewP256()
	if err := bob.Initialize(ent); err != nil {
		t.Fatalf("bob.Initialize: %v", err)
	}

	aliceKey := make([]byte, 2*alice.EccBytes()+1)
	if _, err := alice.ExportPublicKey(aliceKey); err != nil {
		t.Fatalf("alice.ExportPublicKey: %v", err)
	}
	bobKey := make([]byte, 2*bob.EccBytes()+1)
	if _, err := bob.ExportPublicKey(bobKey); err != nil {
		t.Fatalf("bob.ExportPublicKey: %v", err)
	}

	aliceSecret := make([]byte, alice.EccBytes())
	if err := alice.ComputeSharedSecret(bobKey, aliceSecret); err != nil {
		t.Fatalf("alice.ComputeSharedSecret: %v", err)
	}
	bobSecret := make([]byte, bob.EccBytes())
	if err := bob.ComputeSharedSecret(aliceKey, bobSecret); err != nil {
		t.Fatalf("bob.ComputeSharedSecret: %v", err)
	}

	if !bytes.Equal(aliceSecret, bobSecret) {
		t.Fatalf("shared secrets differ:\nalice=%x\nbob=%x", aliceSecret, bobSecret)
	}
}

func TestComputeSharedSecretRejectsMalformedKey(t *testing.T) {
	ent := transport.OSEntropy{}
	alice := NewP256()
	if err := alice.Initialize(ent); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	bad := make([]byte, 10)
	out := make([]byte, alice.EccBytes())
	if err := alice.ComputeSharedSecret(bad, out); err == nil {
		t.Fatalf("expected error for malformed peer key")
	}
}

func TestP384SharedSecretSymmetry(t *testing.T) {
	ent := transport.OSEntropy{}
	alice := NewP384()
	if err := alice.Initialize(ent); err != nil {
		t.Fatalf("alice.Initialize: %v", err)
	}
	bob := NewP384()
	if err := bob.Initialize(ent); err != nil {
		t.Fatalf("bob.Initialize: %v", err)
	}

	aliceKey := make([]byte, 2*alice.EccBytes()+1)
	alice.ExportPublicKey(aliceKey)
	bobKey := make([]byte, 2*bob.EccBytes()+1)
	bob.ExportPublicKey(bobKey)

	aliceSecret := make([]byte, alice.EccBytes())
	if err := alice.ComputeSharedSecret(bobKey, aliceSecret); err != nil {
		t.Fatalf("alice.ComputeSharedSecret: %v", err)
	}
	bobSecret := make([]byte, bob.EccBytes())
	if err := bob.ComputeSharedSecret(aliceKey, bobSecret); err != nil {
		t.Fatalf("bob.ComputeSharedSecret: %v", err)
	}
	if !bytes.Equal(aliceSecret, bobSecret) {
		t.Fatalf("P-384 shared secrets differ")
	}
}
