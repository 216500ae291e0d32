package snmp

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/newtron-network/vlanadmin/pkg/config"
)

const defaultPort = 161

// agent is the part of *gosnmp.GoSNMP the backend uses.
type agent interface {
	Get(oids []string) (*gosnmp.SnmpPacket, error)
	Set(pdus []gosnmp.SnmpPDU) (*gosnmp.SnmpPacket, error)
	BulkWalkAll(rootOid string) ([]gosnmp.SnmpPDU, error)
}

var authProtocols = map[string]gosnmp.SnmpV3AuthProtocol{
	"MD5":    gosnmp.MD5,
	"SHA":    gosnmp.SHA,
	"SHA224": gosnmp.SHA224,
	"SHA256": gosnmp.SHA256,
	"SHA384": gosnmp.SHA384,
	"SHA512": gosnmp.SHA512,
}

var privProtocols = map[string]gosnmp.SnmpV3PrivProtocol{
	"DES":     gosnmp.DES,
	"AES":     gosnmp.AES,
	"AES128":  gosnmp.AES,
	"AES192":  gosnmp.AES192,
	"AES256":  gosnmp.AES256,
	"AES192C": gosnmp.AES192C,
	"AES256C": gosnmp.AES256C,
}

// newSession builds an unconnected gosnmp session from a validated switch
// section. password is the v3 authentication passphrase.
func newSession(sec *config.SwitchConfig, password string, timeout time.Duration) (*gosnmp.GoSNMP, error) {
	host, port, err := splitAddress(sec.Address)
	if err != nil {
		return nil, err
	}
	g := &gosnmp.GoSNMP{
		Target:             host,
		Port:               port,
		Timeout:            timeout,
		Retries:            2,
		MaxOids:            gosnmp.MaxOids,
		MaxRepetitions:     32,
		ExponentialTimeout: true,
	}

	if sec.SNMPVersion() == 2 {
		g.Version = gosnmp.Version2c
		g.Community = sec.Community
		return g, nil
	}

	usm := &gosnmp.UsmSecurityParameters{UserName: sec.Username}
	g.Version = gosnmp.Version3
	g.SecurityModel = gosnmp.UserSecurityModel
	g.MsgFlags = gosnmp.NoAuthNoPriv
	if sec.Auth != "" {
		proto, ok := authProtocols[strings.ToUpper(sec.Auth)]
		if !ok {
			return nil, fmt.Errorf("unknown snmp auth protocol %q", sec.Auth)
		}
		usm.AuthenticationProtocol = proto
		usm.AuthenticationPassphrase = password
		g.MsgFlags = gosnmp.AuthNoPriv
	}
	if sec.Priv != "" {
		proto, ok := privProtocols[strings.ToUpper(sec.Priv)]
		if !ok {
			return nil, fmt.Errorf("unknown snmp priv protocol %q", sec.Priv)
		}
		usm.PrivacyProtocol = proto
		usm.PrivacyPassphrase = sec.PrivPassword
		g.MsgFlags = gosnmp.AuthPriv
	}
	g.SecurityParameters = usm
	return g, nil
}

// splitAddress accepts "host" or "host:port".
func splitAddress(addr string) (string, uint16, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, defaultPort, nil
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("bad port in address %q", addr)
	}
	return host, uint16(port), nil
}
