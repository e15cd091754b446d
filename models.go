package transmission

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jfxdev/go-transmission/request"
)

// Client is a Transmission RPC client that keeps the daemon's
// anti-CSRF session id and retries once when it goes stale.
type Client struct {
	mu     sync.RWMutex
	config Config
	url    string
	client *http.Client
	logger *slog.Logger

	sessionID string
}

// Config contains runtime client settings and credentials.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	HTTPS    bool
	RPCPath  string

	// RequestTimeout bounds a single attempt.
	RequestTimeout time.Duration

	// Store persists the session id across clients. Defaults to an
	// in-memory store.
	Store TokenStore

	// Network is consulted before every call. Defaults to always online.
	Network NetworkChecker

	// Transport performs the HTTP exchange. Defaults to request.Do.
	Transport Transport

	// OnProtocolViolation is called once for every call that fails because
	// the daemon rejected a session id it had just issued.
	OnProtocolViolation func(*ClientError)

	Logger *slog.Logger
	Debug  bool
}

// TokenStore persists the session id under a well-known key.
// Load returns "" when nothing has been stored yet.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, sessionID string) error
}

// NetworkChecker reports whether the daemon is worth trying at all.
type NetworkChecker interface {
	Online(ctx context.Context) bool
}

// NetworkCheckerFunc adapts a function to NetworkChecker.
type NetworkCheckerFunc func(ctx context.Context) bool

func (f NetworkCheckerFunc) Online(ctx context.Context) bool { return f(ctx) }

// Transport performs one HTTP exchange. It returns an error only when no
// HTTP response was received.
type Transport func(ctx context.Context, method, url string, opts ...request.RequestOption) (*request.Response, error)

// Header is a caller-supplied request header.
type Header = request.Header

// QueryOptions shapes a single RPC call.
type QueryOptions struct {
	Args    map[string]any
	Headers []Header

	// GetSessionID marks a bootstrap call: a 409 resolves the call with the
	// new session id instead of replaying the request.
	GetSessionID bool
}

// Envelope is the RPC request body. A nil Method encodes as null.
type Envelope struct {
	Method    *string        `json:"method"`
	Arguments map[string]any `json:"arguments"`
}

// Response is a decoded daemon reply.
type Response struct {
	Result    string          `json:"result"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Tag       int             `json:"tag,omitempty"`

	// SessionID is the session id delivered with the reply.
	SessionID string `json:"-"`
}

// Reply is the single value delivered by QueryAsync.
type Reply struct {
	Response *Response
	Err      error
}

// AddTorrentOptions configures torrent-add.
type AddTorrentOptions struct {
	// URL is a magnet link or a .torrent URL.
	URL string
	// Data is the base64-encoded content of a .torrent file.
	Data        string
	DownloadDir string
	Paused      bool
}

// AddedTorrent is what torrent-add reports back.
type AddedTorrent struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	HashString string `json:"hashString"`
	Duplicate  bool   `json:"-"`
}

// TorrentStatus is the daemon's tr_torrent_activity.
type TorrentStatus int

const (
	StatusStopped      TorrentStatus = 0
	StatusCheckWait    TorrentStatus = 1
	StatusCheck        TorrentStatus = 2
	StatusDownloadWait TorrentStatus = 3
	StatusDownload     TorrentStatus = 4
	StatusSeedWait     TorrentStatus = 5
	StatusSeed         TorrentStatus = 6
)

func (s TorrentStatus) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusCheckWait:
		return "check-wait"
	case StatusCheck:
		return "checking"
	case StatusDownloadWait:
		return "download-wait"
	case StatusDownload:
		return "downloading"
	case StatusSeedWait:
		return "seed-wait"
	case StatusSeed:
		return "seeding"
	default:
		return "unknown"
	}
}

// Torrent holds the fields requested by LoadTorrents.
type Torrent struct {
	ID             int           `json:"id"`
	Name           string        `json:"name"`
	Status         TorrentStatus `json:"status"`
	IsFinished     bool          `json:"isFinished"`
	IsStalled      bool          `json:"isStalled"`
	PercentDone    float64       `json:"percentDone"`
	DownloadedEver int64         `json:"downloadedEver"`
	SizeWhenDone   int64         `json:"sizeWhenDone"`
	RateDownload   int64         `json:"rateDownload"`
	RateUpload     int64         `json:"rateUpload"`
	ETA            int64         `json:"eta"`
}

// SessionStats is the reply of session-stats.
type SessionStats struct {
	ActiveTorrentCount int            `json:"activeTorrentCount"`
	PausedTorrentCount int            `json:"pausedTorrentCount"`
	TorrentCount       int            `json:"torrentCount"`
	DownloadSpeed      int64          `json:"downloadSpeed"`
	UploadSpeed        int64          `json:"uploadSpeed"`
	CumulativeStats    TransferTotals `json:"cumulative-stats"`
	CurrentStats       TransferTotals `json:"current-stats"`
}

// TransferTotals are the byte and time counters inside SessionStats.
type TransferTotals struct {
	UploadedBytes   int64 `json:"uploadedBytes"`
	DownloadedBytes int64 `json:"downloadedBytes"`
	FilesAdded      int64 `json:"filesAdded"`
	SessionCount    int64 `json:"sessionCount"`
	SecondsActive   int64 `json:"secondsActive"`
}

// SessionInfo is the subset of session-get the client reads.
type SessionInfo struct {
	DownloadDir string `json:"download-dir"`
	Version     string `json:"version"`
	RPCVersion  int    `json:"rpc-version"`
}
