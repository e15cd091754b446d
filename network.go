package transmission

import (
	"context"
	"net"
	"strconv"
	"time"
)

// AlwaysOnline never blocks a call.
var AlwaysOnline NetworkChecker = NetworkCheckerFunc(func(context.Context) bool { return true })

// DialChecker treats the daemon as reachable when a TCP connection to it
// can be opened within Timeout.
type DialChecker struct {
	Address string
	Timeout time.Duration
}

// NewDialChecker returns a checker for host:port.
func NewDialChecker(host string, port int, timeout time.Duration) *DialChecker {
	if port == 0 {
		port = DefaultPort
	}
	if timeout <= 0 {
		timeout = time.Second
	}
	return &DialChecker{
		Address: net.JoinHostPort(host, strconv.Itoa(port)),
		Timeout: timeout,
	}
}

func (d *DialChecker) Online(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: d.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.Address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
