package snmp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPortBitmap(t *testing.T) {
	bitmap := make([]byte, bitmapLen(10))
	if len(bitmap) != 2 {
		t.Fatalf("bitmapLen(10) = %d, want 2", len(bitmap))
	}
	for _, port := range []int{1, 3, 9} {
		setPortBit(bitmap, port)
	}
	if diff := cmp.Diff([]byte{0xa0, 0x80}, bitmap); diff != "" {
		t.Errorf("bitmap mismatch (-want +got):\n%s", diff)
	}

	for port, want := range map[int]bool{1: true, 2: false, 3: true, 8: false, 9: true, 10: false, 24: false} {
		if got := portBit(bitmap, port); got != want {
			t.Errorf("portBit(%d) = %v, want %v", port, got, want)
		}
	}
}

func TestFormatMAC(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    string
		wantErr bool
	}{
		{name: "raw", in: []byte{0x00, 0x09, 0x5b, 0xaa, 0xbb, 0xcc}, want: "00:09:5b:aa:bb:cc"},
		{name: "text", in: []byte("00:09:5b:aa:bb:cc"), want: "00:09:5b:aa:bb:cc"},
		{name: "bare hex", in: []byte("00095baabbcc"), want: "00:09:5b:aa:bb:cc"},
		{
			name: "hex encoded text",
			in:   []byte("30:30:3a:30:39:3a:35:62:3a:61:61:3a:62:62:3a:63:63"),
			want: "00:09:5b:aa:bb:cc",
		},
		{name: "too short", in: []byte{0x00, 0x09}, wantErr: true},
		{name: "bad hex", in: []byte("zz095baabbcc"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatMAC(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("formatMAC() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("formatMAC() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatUptime(t *testing.T) {
	ticks := uint64(100 * (3*86400 + 4*3600 + 5*60 + 6))
	if got := formatUptime(ticks); got != "3 days, 4:05:06" {
		t.Errorf("formatUptime() = %q", got)
	}
}

func TestLinkStatus(t *testing.T) {
	tests := []struct {
		oper, speed int
		want        string
	}{
		{1, 1000, "1000M"},
		{1, 0, "Up"},
		{2, 1000, "Down"},
		{7, 0, "Other: lowerLayerDown"},
		{42, 0, "Other: 42"},
	}
	for _, tt := range tests {
		if got := linkStatus(tt.oper, tt.speed); got != tt.want {
			t.Errorf("linkStatus(%d, %d) = %q, want %q", tt.oper, tt.speed, got, tt.want)
		}
	}
}

func TestAdminEnabled(t *testing.T) {
	if e := adminEnabled(1); e == nil || !*e {
		t.Errorf("adminEnabled(up) = %v, want true", e)
	}
	if e := adminEnabled(2); e == nil || *e {
		t.Errorf("adminEnabled(down) = %v, want false", e)
	}
	if e := adminEnabled(3); e != nil {
		t.Errorf("adminEnabled(testing) = %v, want nil", *e)
	}
}

func TestDescribeOID(t *testing.T) {
	if got := describeOID(oidDot1qPvid + ".3"); got != "dot1qPvid.3" {
		t.Errorf("describeOID() = %q", got)
	}
	if got := describeOID("1.3.6.1.9.9"); got != "1.3.6.1.9.9" {
		t.Errorf("describeOID() = %q, want it unchanged", got)
	}
}
