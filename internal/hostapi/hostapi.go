// Package hostapi bootstraps a client session against a webkvm host.
package hostapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/frudas24/webkvm/internal/config"
)

const (
	configPath     = "/api/config"
	channelPath    = "/websocket"
	maxConfigBytes = 64 << 10
	defaultTimeout = 5 * time.Second
)

// ErrStreamDown is returned when the video stream does not answer a snapshot request.
var ErrStreamDown = errors.New("video stream unavailable")

// Client talks to the host HTTP endpoints.
type Client struct {
	HTTP *http.Client
}

// New returns a client with a bounded request timeout.
func New() *Client {
	return &Client{HTTP: &http.Client{Timeout: defaultTimeout}}
}

func (c *Client) http() *http.Client {
	if c == nil || c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

// FetchConfig loads and validates the remote configuration from baseURL.
func (c *Client) FetchConfig(ctx context.Context, baseURL string) (config.Remote, error) {
	endpoint := strings.TrimRight(baseURL, "/") + configPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return config.Remote{}, err
	}
	resp, err := c.http().Do(req)
	if err != nil {
		return config.Remote{}, fmt.Errorf("fetch config: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return config.Remote{}, fmt.Errorf("fetch config: status %d", resp.StatusCode)
	}

	var remote config.Remote
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxConfigBytes)).Decode(&remote); err != nil {
		return config.Remote{}, fmt.Errorf("decode config: %w", err)
	}
	if err := remote.Validate(); err != nil {
		return config.Remote{}, fmt.Errorf("invalid config: %w", err)
	}
	return remote, nil
}

// PingStream checks that the streamer on host:port serves a snapshot.
func (c *Client) PingStream(ctx context.Context, host string, port int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, SnapshotURL(host, port), nil)
	if err != nil {
		return err
	}
	resp, err := c.http().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStreamDown, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrStreamDown, resp.StatusCode)
	}
	return nil
}

func hostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// StreamURL is the MJPEG stream address.
func StreamURL(host string, port int) string {
	u := url.URL{Scheme: "http", Host: hostPort(host, port), Path: "/", RawQuery: "action=stream"}
	return u.String()
}

// SnapshotURL is the single-frame address.
func SnapshotURL(host string, port int) string {
	u := url.URL{Scheme: "http", Host: hostPort(host, port), Path: "/", RawQuery: "action=snapshot"}
	return u.String()
}

// ChannelURL is the control websocket address for the remote config.
func ChannelURL(host string, remote config.Remote) string {
	u := url.URL{Scheme: "ws", Host: hostPort(host, remote.ListenPort), Path: channelPath}
	return u.String()
}
