package announce

import (
	"fmt"
	"net"

	"github.com/hashicorp/mdns"
)

// ServiceType is the DNS-SD type the web interface is announced under.
const ServiceType = "_http._tcp"

// Config describes what to advertise.
type Config struct {
	// Hostname is used as the instance name and the .local host name.
	Hostname string
	Port     int
	// IPs are the addresses to answer with. When empty the host name is
	// resolved instead.
	IPs []net.IP
	// TXT records appended to the service, e.g. "model=Canon (19200 Baud)".
	TXT []string
}

// Announcer answers mDNS queries for the bridge until shut down.
type Announcer struct {
	server *mdns.Server
}

// Start begins answering queries for the configured service.
func Start(cfg Config) (*Announcer, error) {
	zone, err := newZone(cfg)
	if err != nil {
		return nil, err
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: zone})
	if err != nil {
		return nil, fmt.Errorf("starting mdns responder: %w", err)
	}
	return &Announcer{server: server}, nil
}

func newZone(cfg Config) (*mdns.MDNSService, error) {
	host := cfg.Hostname + ".local."
	svc, err := mdns.NewMDNSService(cfg.Hostname, ServiceType, "", host, cfg.Port, cfg.IPs, cfg.TXT)
	if err != nil {
		return nil, fmt.Errorf("building mdns service for %s: %w", cfg.Hostname, err)
	}
	return svc, nil
}

// Close stops answering queries.
func (a *Announcer) Close() error {
	if a == nil || a.server == nil {
		return nil
	}
	return a.server.Shutdown()
}

// LocalIPs returns the unicast addresses of the non-loopback interfaces
// that are up.
func LocalIPs() []net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}
	var ips []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.IsGlobalUnicast() {
				ips = append(ips, ipnet.IP)
			}
		}
	}
	return ips
}
