// Package network provides local address discovery and a WebSocket client
// for the remote key protocol.
package network

import (
	"net"
)

// FallbackIP is reported when no outward interface can be determined.
const FallbackIP = "127.0.0.1"

// routeAddr is never contacted; dialing UDP only selects a route.
var routeAddr = "8.8.8.8:80"

// GetLocalIP returns the IPv4 address of the interface used for outbound
// traffic, or FallbackIP when it cannot be determined.
func GetLocalIP() string {
	conn, err := net.Dial("udp4", routeAddr)
	if err != nil {
		return FallbackIP
	}
	defer conn.Close()

	localAddr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || localAddr.IP.To4() == nil || localAddr.IP.IsUnspecified() {
		return FallbackIP
	}
	return localAddr.IP.String()
}

// GetLocalIPs returns all available local IPv4 addresses
func GetLocalIPs() ([]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var ips []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue // interface down
		}
		if iface.Flags&net.FlagLoopback != 0 {
			continue // loopback interface
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() {
				continue
			}
			ip = ip.To4()
			if ip == nil {
				continue // not an ipv4 address
			}
			ips = append(ips, ip.String())
		}
	}
	return ips, nil
}
