package utils

import (
	"errors"
	"net"
	"testing"
)

func TestParseIPv4ConvertsDottedQuad(t *testing.T) {
	// This test validates byte ordering when converting to the integer form.
	addr, err := ParseIPv4("192.168.1.255")
	if err != nil {
		t.Fatalf("expected valid IP, got %v", err)
	}
	if addr != 0xC0A801FF {
		t.Fatalf("expected 0xC0A801FF, got %#x", addr)
	}
	if s := FormatIPv4(addr + 1); s != "192.168.2.0" {
		t.Fatalf("expected incremented IP to be 192.168.2.0, got %s", s)
	}
}

func TestParseIPv4RejectsInvalidInput(t *testing.T) {
	for _, in := range []string{"", "not-an-ip", "256.1.1.1", "10.0.0", "2001:db8::1", " 10.0.0.1", "::ffff:1.2.3.4"} {
		if _, err := ParseIPv4(in); !errors.Is(err, ErrAddressParse) {
			t.Errorf("expected ErrAddressParse for %q, got %v", in, err)
		}
	}
}

func TestFormatIPv4Boundaries(t *testing.T) {
	if s := FormatIPv4(0); s != "0.0.0.0" {
		t.Fatalf("expected 0.0.0.0, got %s", s)
	}
	if s := FormatIPv4(^uint32(0)); s != "255.255.255.255" {
		t.Fatalf("expected 255.255.255.255, got %s", s)
	}
}

func TestMaskPrefix(t *testing.T) {
	ones, err := MaskPrefix("255.255.255.0")
	if err != nil || ones != 24 {
		t.Fatalf("expected /24, got /%d (%v)", ones, err)
	}
	ones, err = MaskPrefix("0.0.0.0")
	if err != nil || ones != 0 {
		t.Fatalf("expected /0, got /%d (%v)", ones, err)
	}
	if _, err := MaskPrefix("255.0.255.0"); err == nil {
		t.Fatalf("expected error for non-canonical netmask")
	}
	if _, err := MaskPrefix("garbage"); !errors.Is(err, ErrAddressParse) {
		t.Fatalf("expected ErrAddressParse for garbage netmask, got %v", err)
	}
}

func TestCIDRSizeCalculatesCorrectly(t *testing.T) {
	// This test checks CIDR size for IPv4 boundaries to avoid off-by-one errors.
	_, ipv4Net, err := net.ParseCIDR("10.0.0.0/24")
	if err != nil {
		t.Fatalf("expected valid CIDR, got %v", err)
	}
	if size := CIDRSize(ipv4Net); size != 256 {
		t.Fatalf("expected /24 to have size 256, got %d", size)
	}

	_, single, err := net.ParseCIDR("10.0.0.5/32")
	if err != nil {
		t.Fatalf("expected valid CIDR, got %v", err)
	}
	if size := CIDRSize(single); size != 1 {
		t.Fatalf("expected /32 to have size 1, got %d", size)
	}
}
