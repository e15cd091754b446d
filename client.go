package transmission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/jfxdev/go-transmission/request"
	"github.com/jfxdev/go-transmission/tokenstore"
)

// SessionIDHeader carries the anti-CSRF session id in both directions.
const SessionIDHeader = "X-Transmission-Session-Id"

// maxSessionRetries is how many times one call may be replayed after a
// stale session id. A second 409 within the same call is fatal.
const maxSessionRetries = 1

func New(config Config) (*Client, error) {
	if config.Host == "" {
		return nil, errors.New("host is required")
	}
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.RPCPath == "" {
		config.RPCPath = DefaultRPCPath
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	if config.Store == nil {
		config.Store = tokenstore.NewMemoryStore("")
	}
	if config.Network == nil {
		config.Network = AlwaysOnline
	}
	if config.Transport == nil {
		config.Transport = request.Do
	}

	logger := config.Logger
	if logger == nil {
		if config.Debug {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		} else {
			logger = slog.New(slog.DiscardHandler)
		}
	}

	c := &Client{
		config: config,
		url:    buildURL(config),
		client: &http.Client{},
		logger: logger.With(slog.String("component", "transmission")),
	}

	if c.config.OnProtocolViolation == nil {
		c.config.OnProtocolViolation = func(err *ClientError) {
			c.logger.Error("daemon rejected a session id it just issued",
				slog.String("method", err.Method),
				slog.String("error", err.Error()),
			)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.RequestTimeout)
	defer cancel()

	sessionID, err := config.Store.Load(ctx)
	if err != nil {
		c.logger.Warn("failed to load cached session id", slog.String("error", err.Error()))
	}
	c.sessionID = sessionID

	return c, nil
}

func buildURL(config Config) string {
	scheme := "http"
	if config.HTTPS {
		scheme = "https"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		Path:   config.RPCPath,
	}
	return u.String()
}

// URL returns the daemon RPC endpoint.
func (c *Client) URL() string {
	return c.url
}

// SessionID returns the cached session id.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

func (c *Client) setSessionID(ctx context.Context, sessionID string) {
	c.mu.Lock()
	c.sessionID = sessionID
	c.mu.Unlock()

	if err := c.config.Store.Save(ctx, sessionID); err != nil {
		c.logger.Warn("failed to persist session id", slog.String("error", err.Error()))
	}
}

// Query sends one RPC call. An empty method is sent as null, which is how
// a bare session id bootstrap is expressed.
//
// When the daemon answers 409 with a new session id the call is replayed
// once with that id, or, for GetSessionID calls, resolved with it.
func (c *Client) Query(ctx context.Context, method string, opts QueryOptions) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !c.config.Network.Online(ctx) {
		return nil, newNoConnectionError(method)
	}

	args := opts.Args
	if args == nil {
		args = map[string]any{}
	}

	body, err := encodeEnvelope(method, args)
	if err != nil {
		return nil, newInvalidArgumentError(method, "failed to encode request", err)
	}

	logger := c.logger.With(
		slog.String("call_id", uuid.NewString()),
		slog.String("method", methodName(method)),
	)

	for attempt := 0; attempt <= maxSessionRetries; attempt++ {
		sent := c.SessionID()

		resp, err := c.send(ctx, body, sent, opts.Headers)
		if err != nil {
			logger.Error("rpc transport failed",
				slog.Int("attempt", attempt),
				slog.Any("arguments", args),
				slog.String("error", err.Error()),
			)
			return nil, newTransportError(method, args, err)
		}

		issued := resp.Header.Get(SessionIDHeader)

		switch {
		case resp.StatusCode == http.StatusConflict:
			if issued != "" && issued != sent {
				c.setSessionID(ctx, issued)
			}
			if issued == "" || issued == sent || attempt == maxSessionRetries {
				return nil, c.protocolViolation(logger, method, args, sent, attempt)
			}

			logger.Debug("got new session id", slog.String("session_id", issued))

			if opts.GetSessionID {
				return &Response{SessionID: issued}, nil
			}

		case resp.StatusCode < 200 || resp.StatusCode > 299:
			logger.Error("rpc call failed",
				slog.Int("status", resp.StatusCode),
				slog.Any("arguments", args),
				slog.String("body", string(resp.Body)),
			)
			return nil, newDaemonError(method, args, resp.StatusCode, string(resp.Body))

		default:
			c.setSessionID(ctx, issued)
			return decodeResponse(method, resp.Body, issued)
		}
	}

	// The loop always returns: the last attempt turns a 409 into a violation.
	return nil, c.protocolViolation(logger, method, args, c.SessionID(), maxSessionRetries)
}

// QueryAsync is the non-blocking form of Query. The returned channel
// receives exactly one Reply and is then closed. An offline network is
// reported without starting any I/O.
func (c *Client) QueryAsync(ctx context.Context, method string, opts QueryOptions) <-chan Reply {
	out := make(chan Reply, 1)

	if ctx == nil {
		ctx = context.Background()
	}
	if !c.config.Network.Online(ctx) {
		out <- Reply{Err: newNoConnectionError(method)}
		close(out)
		return out
	}

	go func() {
		defer close(out)
		resp, err := c.Query(ctx, method, opts)
		out <- Reply{Response: resp, Err: err}
	}()

	return out
}

func (c *Client) send(ctx context.Context, body []byte, sessionID string, headers []Header) (*request.Response, error) {
	return c.config.Transport(ctx, http.MethodPost, c.url,
		request.WithClient(c.client),
		request.WithTimeout(c.config.RequestTimeout),
		request.WithBasicAuth(c.config.Username, c.config.Password),
		request.WithHeader("Content-Type", "application/json"),
		request.WithHeader(SessionIDHeader, sessionID),
		request.WithHeaders(headers...),
		request.WithBody(body),
	)
}

func (c *Client) protocolViolation(logger *slog.Logger, method string, args map[string]any, sent string, attempt int) *ClientError {
	err := newProtocolViolationError(method, args, sent, attempt)
	logger.Error("daemon re-rejected session id", slog.Int("attempt", attempt), slog.String("session_id", sent))
	c.config.OnProtocolViolation(err)
	return err
}

func encodeEnvelope(method string, args map[string]any) ([]byte, error) {
	envelope := Envelope{Arguments: args}
	if method != "" {
		envelope.Method = &method
	}
	return json.Marshal(envelope)
}

func decodeResponse(method string, body []byte, sessionID string) (*Response, error) {
	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, newDecodeError(method, string(body), err)
	}
	response.SessionID = sessionID
	return &response, nil
}

func methodName(method string) string {
	if method == "" {
		return "<session-id>"
	}
	return method
}

// Close releases the token store when it holds resources.
func (c *Client) Close() error {
	if closer, ok := c.config.Store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("close token store: %w", err)
		}
	}
	return nil
}
