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

// Status retrieves daemon and worker status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Scribe.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartWorker requests a new worker session.
func (c *Client) StartWorker() (*StartWorkerResponse, error) {
	var resp StartWorkerResponse
	if err := c.client.Call("Scribe.StartWorker", StartWorkerRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StopWorker requests worker shutdown.
func (c *Client) StopWorker() (*StopWorkerResponse, error) {
	var resp StopWorkerResponse
	if err := c.client.Call("Scribe.StopWorker", StopWorkerRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LoadModel requests a model load. An empty name selects the configured
// default.
func (c *Client) LoadModel(model string) (*LoadModelResponse, error) {
	var resp LoadModelResponse
	if err := c.client.Call("Scribe.LoadModel", LoadModelRequest{Model: model}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transcribe requests a transcription for an audio file.
func (c *Client) Transcribe(audioPath string) (*TranscribeResponse, error) {
	var resp TranscribeResponse
	if err := c.client.Call("Scribe.Transcribe", TranscribeRequest{AudioPath: audioPath}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Result retrieves the most recent completed transcription.
func (c *Client) Result() (*ResultResponse, error) {
	var resp ResultResponse
	if err := c.client.Call("Scribe.Result", ResultRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Models lists the known model catalog.
func (c *Client) Models() (*ModelsResponse, error) {
	var resp ModelsResponse
	if err := c.client.Call("Scribe.Models", ModelsRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistoryList returns recent transcriptions, newest first.
func (c *Client) HistoryList(limit int) (*HistoryListResponse, error) {
	var resp HistoryListResponse
	if err := c.client.Call("Scribe.HistoryList", HistoryListRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistoryShow returns one transcription with its full payload.
func (c *Client) HistoryShow(id string) (*HistoryShowResponse, error) {
	var resp HistoryShowResponse
	if err := c.client.Call("Scribe.HistoryShow", HistoryShowRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistoryClear removes all stored transcriptions.
func (c *Client) HistoryClear() (*HistoryClearResponse, error) {
	var resp HistoryClearResponse
	if err := c.client.Call("Scribe.HistoryClear", HistoryClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns buffered log events from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Scribe.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
