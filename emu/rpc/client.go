package rpc

import (
	"net/rpc"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"port51/hw/snapshot"
)

type Client struct {
	client *rpc.Client
}

// NewClient connects to the server on localhost:port, retrying a few times
// while it starts.
func NewClient(port int) (*Client, error) {
	var (
		client *rpc.Client
		err    error
	)
	const maxretries = 5
	for i := range maxretries {
		if client, err = rpc.DialHTTP("tcp", "localhost:"+strconv.Itoa(port)); err == nil {
			break
		}
		modRPC.WarnZ("dial tcp failed").Error("err", err).Int("retry", i).End()
		time.Sleep(250 * time.Millisecond)
	}

	if client == nil {
		return nil, errors.Wrap(err, "dial failed max retries")
	}

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	modRPC.DebugZ("closing rpc client").End()
	return c.client.Close()
}

func (c *Client) PressButton(n uint) error   { return call(c.client, "board.PressButton", n) }
func (c *Client) ReleaseButton(n uint) error { return call(c.client, "board.ReleaseButton", n) }

func (c *Client) WritePort(port string, val uint8) error {
	return call(c.client, "board.WritePort", PortWrite{Port: port, Value: val})
}

func (c *Client) ReadPort(port string) (uint8, error) {
	return request[uint8](c.client, "board.ReadPort", port)
}

func (c *Client) State() (*snapshot.MCU, error) {
	s, err := request[snapshot.MCU](c.client, "board.State", nil)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func call(client *rpc.Client, funcname string, args any) error {
	_, err := request[struct{}](client, funcname, args)
	return err
}

func request[T any](client *rpc.Client, funcname string, args any) (T, error) {
	if args == nil {
		args = &struct{}{}
	}
	var reply T
	if err := client.Call(funcname, args, &reply); err != nil {
		modRPC.ErrorZ("RPC call failed").String("func", funcname).Error("err", err).End()
		return reply, errors.Wrap(err, funcname)
	}
	return reply, nil
}
