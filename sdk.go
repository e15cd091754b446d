package transmission

import (
	"context"
	"encoding/json"
	"strings"
)

// RPC method names.
const (
	MethodTorrentStart = "torrent-start"
	MethodTorrentStop  = "torrent-stop"
	MethodTorrentAdd   = "torrent-add"
	MethodTorrentGet   = "torrent-get"
	MethodSessionStats = "session-stats"
	MethodSessionGet   = "session-get"
)

const resultSuccess = "success"

// TorrentFields is the field list LoadTorrents asks for.
var TorrentFields = []string{
	"id",
	"name",
	"status",
	"isFinished",
	"isStalled",
	"percentDone",
	"downloadedEver",
	"sizeWhenDone",
	"rateDownload",
	"rateUpload",
	"eta",
}

// call runs a shaped query and checks the daemon's result string.
func (c *Client) call(ctx context.Context, method string, args map[string]any) (*Response, error) {
	resp, err := c.Query(ctx, method, QueryOptions{Args: args})
	if err != nil {
		return nil, err
	}
	if resp.Result != resultSuccess {
		return nil, newRPCFailureError(method, args, resp.Result)
	}
	return resp, nil
}

func (c *Client) decodeArguments(method string, resp *Response, v any) error {
	if err := json.Unmarshal(resp.Arguments, v); err != nil {
		return newDecodeError(method, string(resp.Arguments), err)
	}
	return nil
}

func idsArgs(ids []int) map[string]any {
	args := map[string]any{}
	if len(ids) > 0 {
		args["ids"] = ids
	}
	return args
}

// Start starts the given torrents, or all of them when no id is given.
func (c *Client) Start(ctx context.Context, ids ...int) error {
	_, err := c.call(ctx, MethodTorrentStart, idsArgs(ids))
	return err
}

// Stop stops the given torrents, or all of them when no id is given.
func (c *Client) Stop(ctx context.Context, ids ...int) error {
	_, err := c.call(ctx, MethodTorrentStop, idsArgs(ids))
	return err
}

func addTorrentArgs(opts AddTorrentOptions) map[string]any {
	args := map[string]any{
		"paused":   opts.Paused,
		"metainfo": nil,
	}
	if opts.Data != "" {
		args["metainfo"] = opts.Data
	}
	if opts.URL != "" {
		args["filename"] = opts.URL
	}
	if opts.DownloadDir != "" {
		args["download-dir"] = opts.DownloadDir
	}
	return args
}

// AddTorrent queues a torrent from a URL, a magnet link or metainfo data.
func (c *Client) AddTorrent(ctx context.Context, opts AddTorrentOptions) (*AddedTorrent, error) {
	if opts.URL == "" && opts.Data == "" {
		return nil, newInvalidArgumentError(MethodTorrentAdd, "either a URL or metainfo data is required", nil)
	}
	if strings.HasPrefix(opts.URL, "magnet:") {
		if _, err := ParseMagnetLink(opts.URL); err != nil {
			return nil, newInvalidArgumentError(MethodTorrentAdd, "invalid magnet link", err)
		}
	}

	resp, err := c.call(ctx, MethodTorrentAdd, addTorrentArgs(opts))
	if err != nil {
		return nil, err
	}

	var added struct {
		Added     *AddedTorrent `json:"torrent-added"`
		Duplicate *AddedTorrent `json:"torrent-duplicate"`
	}
	if err := c.decodeArguments(MethodTorrentAdd, resp, &added); err != nil {
		return nil, err
	}

	switch {
	case added.Added != nil:
		return added.Added, nil
	case added.Duplicate != nil:
		added.Duplicate.Duplicate = true
		return added.Duplicate, nil
	default:
		return &AddedTorrent{}, nil
	}
}

// LoadTorrents lists every torrent with the fields in TorrentFields.
func (c *Client) LoadTorrents(ctx context.Context) ([]*Torrent, error) {
	resp, err := c.call(ctx, MethodTorrentGet, map[string]any{"fields": TorrentFields})
	if err != nil {
		return nil, err
	}

	var list struct {
		Torrents []*Torrent `json:"torrents"`
	}
	if err := c.decodeArguments(MethodTorrentGet, resp, &list); err != nil {
		return nil, err
	}
	return list.Torrents, nil
}

// LoadStats returns the daemon's transfer statistics.
func (c *Client) LoadStats(ctx context.Context) (*SessionStats, error) {
	resp, err := c.call(ctx, MethodSessionStats, nil)
	if err != nil {
		return nil, err
	}

	var stats SessionStats
	if err := c.decodeArguments(MethodSessionStats, resp, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetSession returns the session settings the client knows about.
func (c *Client) GetSession(ctx context.Context) (*SessionInfo, error) {
	resp, err := c.call(ctx, MethodSessionGet, nil)
	if err != nil {
		return nil, err
	}

	var info SessionInfo
	if err := c.decodeArguments(MethodSessionGet, resp, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetDefaultDownloadDir returns the daemon's download-dir setting.
func (c *Client) GetDefaultDownloadDir(ctx context.Context) (string, error) {
	info, err := c.GetSession(ctx)
	if err != nil {
		return "", err
	}
	return info.DownloadDir, nil
}

// GetNewSessionID asks the daemon for a session id. When the cached id is
// still valid the daemon answers normally and that id is returned.
func (c *Client) GetNewSessionID(ctx context.Context) (string, error) {
	resp, err := c.Query(ctx, "", QueryOptions{GetSessionID: true})
	if err != nil {
		return "", err
	}
	return resp.SessionID, nil
}
