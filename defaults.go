package transmission

import "time"

const (
	// DefaultRequestTimeout bounds a single RPC attempt.
	DefaultRequestTimeout = 5 * time.Second

	// DefaultPort is transmission-daemon's RPC port.
	DefaultPort = 9091

	// DefaultRPCPath is the RPC endpoint path.
	DefaultRPCPath = "/transmission/rpc"
)
