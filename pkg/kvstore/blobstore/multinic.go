/*
Copyright 2025 The llm-d Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package blobstore

import (
	"context"
	"net"
	"sync/atomic"

	"k8s.io/klog/v2"
)

// multiNICDialer spreads outgoing connections round-robin across the host's
// non-loopback IPv4 addresses by binding each dial's local address. A failed
// bind falls back to the next interface and finally to the default route.
type multiNICDialer struct {
	ips  []net.IP
	next atomic.Uint64
}

func newMultiNICDialer(ctx context.Context) *multiNICDialer {
	logger := klog.FromContext(ctx).WithName("multi-nic")

	ips := discoverInterfaceIPs()
	if len(ips) == 0 {
		logger.Info("no non-loopback interfaces found, using default route")
	} else {
		for i, ip := range ips {
			logger.Info("discovered interface", "index", i, "ip", ip.String())
		}
	}

	return &multiNICDialer{ips: ips}
}

// discoverInterfaceIPs lists the host's usable IPv4 source addresses.
func discoverInterfaceIPs() []net.IP {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}

	var ips []net.IP
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP.To4()
		if ip == nil || ip.IsLoopback() {
			continue
		}
		ips = append(ips, ip)
	}

	return ips
}

// DialContext binds to the next interface in rotation. Each attempt keeps
// the dial timeout and keepalive tuning of the default dialer.
func (d *multiNICDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	base := net.Dialer{
		Timeout: dialTimeout,
		KeepAliveConfig: net.KeepAliveConfig{
			Enable:   true,
			Idle:     keepAliveIdle,
			Interval: keepAliveInterval,
		},
	}

	if len(d.ips) == 0 {
		return base.DialContext(ctx, network, addr)
	}

	start := d.next.Add(1) - 1
	for attempt := range d.ips {
		ip := d.ips[(start+uint64(attempt))%uint64(len(d.ips))] //nolint:gosec // index arithmetic
		dialer := base
		dialer.LocalAddr = &net.TCPAddr{IP: ip}

		conn, err := dialer.DialContext(ctx, network, addr)
		if err == nil {
			return conn, nil
		}
	}

	// All bound dials failed; let the OS pick the source address.
	return base.DialContext(ctx, network, addr)
}
