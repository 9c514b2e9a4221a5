package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	raw := make([]byte, 20)
	for i := range raw {
		raw[i] = byte(i)
	}
	addr := NewAddress(FundPrefix, raw)
	encoded := addr.String()
	if !strings.HasPrefix(encoded, string(FundPrefix)+"1") {
		t.Fatalf("encoded address %q missing prefix", encoded)
	}

	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Prefix() != FundPrefix {
		t.Fatalf("prefix = %q, want %q", decoded.Prefix(), FundPrefix)
	}
	if !bytes.Equal(decoded.Bytes(), raw) {
		t.Fatalf("decoded bytes mismatch")
	}
}

func TestDecodeAddressRejectsGarbage(t *testing.T) {
	if _, err := DecodeAddress("not-bech32"); err == nil {
		t.Fatalf("garbage address accepted")
	}
	if _, err := DecodeAddress(""); err == nil {
		t.Fatalf("empty address accepted")
	}
}

func TestDeriveHandleDeterministic(t *testing.T) {
	var deployer [20]byte
	deployer[0] = 0xAB

	first := DeriveHandle(deployer, 0)
	again := DeriveHandle(deployer, 0)
	if first != again {
		t.Fatalf("derivation is not deterministic")
	}

	second := DeriveHandle(deployer, 1)
	if first == second {
		t.Fatalf("consecutive nonces collided")
	}

	var other [20]byte
	other[0] = 0xCD
	if DeriveHandle(other, 0) == first {
		t.Fatalf("distinct deployers collided")
	}
	if first == ([20]byte{}) {
		t.Fatalf("derived handle is zero")
	}
}

func TestKeyAddress(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	restored, err := PrivateKeyFromBytes(key.Bytes())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if key.PubKey().Address().String() != restored.PubKey().Address().String() {
		t.Fatalf("restored key derives a different address")
	}
}
