//go:build linux

package gps

import "testing"

func TestOpenSerial_RejectsUnsupportedBaud(t *testing.T) {
	// The rate is validated before the device is touched, so a bogus path is
	// never opened.
	if _, err := openSerial("/dev/does-not-exist", 2400); err == nil {
		t.Fatalf("expected error for unsupported baud")
	}
}

func TestBaudBits_SupportedReceiverRates(t *testing.T) {
	for _, b := range []int{4800, 9600, 38400, 115200} {
		if _, ok := baudBits[b]; !ok {
			t.Errorf("baud %d missing from supported rates", b)
		}
	}
	if _, ok := baudBits[19200]; ok {
		t.Errorf("19200 is not a rate any supported receiver uses")
	}
}
