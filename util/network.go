package util

import (
	"net"
	"strconv"
)

// FormatAddr returns "host:port", bracketing IPv6 literals.
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
