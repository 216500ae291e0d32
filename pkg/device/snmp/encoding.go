package snmp

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gosnmp/gosnmp"
)

// Port bitmaps (PortList in Q-BRIDGE-MIB) put bridge port 1 in the most
// significant bit of the first byte.

func bitmapLen(maxPort int) int {
	return (maxPort + 7) / 8
}

func setPortBit(bitmap []byte, port int) {
	bit := port - 1
	bitmap[bit/8] |= 0x80 >> (bit % 8)
}

// portBit reports whether port is set. Ports beyond the bitmap are unset.
func portBit(bitmap []byte, port int) bool {
	bit := port - 1
	if bit/8 >= len(bitmap) {
		return false
	}
	return bitmap[bit/8]>>(7-bit%8)&1 == 1
}

const (
	macRawLen     = 6
	macEncodedLen = macRawLen*2 + macRawLen - 1
	macDoubleLen  = macEncodedLen*2 + macEncodedLen - 1
)

// formatMAC renders dot1dBaseBridgeAddress. Compliant agents return six
// raw bytes; some return the colon separated text instead, and some the
// hex encoding of that text.
func formatMAC(b []byte) (string, error) {
	switch len(b) {
	case macRawLen:
		return colonHex(b), nil
	case macEncodedLen:
		return string(b), nil
	case macRawLen * 2:
		raw, err := hex.DecodeString(string(b))
		if err == nil {
			return colonHex(raw), nil
		}
	case macDoubleLen:
		raw, err := hex.DecodeString(strings.ReplaceAll(string(b), ":", ""))
		if err == nil && len(raw) == macEncodedLen {
			return string(raw), nil
		}
	}
	return "", fmt.Errorf("unsupported MAC address encoding %q", b)
}

func colonHex(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02x", c)
	}
	return strings.Join(parts, ":")
}

// formatUptime renders sysUpTime, which counts hundredths of a second.
func formatUptime(ticks uint64) string {
	secs := ticks / 100
	days := secs / 86400
	secs %= 86400
	return fmt.Sprintf("%d days, %d:%02d:%02d", days, secs/3600, secs/60%60, secs%60)
}

// linkStatus renders ifOperStatus and ifHighSpeed (Mb/s) for display.
func linkStatus(oper, speed int) string {
	switch {
	case oper == ifStatusUp && speed > 0:
		return fmt.Sprintf("%dM", speed)
	case oper == ifStatusUp:
		return "Up"
	case oper == ifStatusDown:
		return "Down"
	}
	if name, ok := ifOperStatusNames[oper]; ok {
		return "Other: " + name
	}
	return fmt.Sprintf("Other: %d", oper)
}

func adminEnabled(admin int) *bool {
	enabled := admin == ifStatusUp
	if admin != ifStatusUp && admin != ifStatusDown {
		return nil
	}
	return &enabled
}

func pduString(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	case nil:
		return ""
	}
	return fmt.Sprint(pdu.Value)
}

func pduBytes(pdu gosnmp.SnmpPDU) []byte {
	switch v := pdu.Value.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	}
	return nil
}

func pduInt(pdu gosnmp.SnmpPDU) int {
	return int(gosnmp.ToBigInt(pdu.Value).Int64())
}

// present reports whether a GET returned a value rather than an exception.
func present(pdu gosnmp.SnmpPDU) bool {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return false
	}
	return true
}
