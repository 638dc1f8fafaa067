package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Kudos.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Pending lists queued notifications in presentation order.
func (c *Client) Pending() (*PendingResponse, error) {
	var resp PendingResponse
	if err := c.client.Call("Kudos.Pending", PendingRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Dismiss acknowledges the showing notification.
func (c *Client) Dismiss(notificationID string) (*DismissResponse, error) {
	var resp DismissResponse
	req := DismissRequest{NotificationID: notificationID}
	if err := c.client.Call("Kudos.Dismiss", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reload forces a full reload from the store.
func (c *Client) Reload() (*ReloadResponse, error) {
	var resp ReloadResponse
	if err := c.client.Call("Kudos.Reload", ReloadRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History retrieves recent presentation journal entries.
func (c *Client) History(limit int) (*HistoryResponse, error) {
	var resp HistoryResponse
	req := HistoryRequest{Limit: limit}
	if err := c.client.Call("Kudos.History", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a test push via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Kudos.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop asks the daemon process to shut down.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Kudos.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
