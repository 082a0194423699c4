package rpc

import (
	"io"
	"net"
	"net/http"
	"net/rpc"
	"strconv"

	"port51/hw"
	"port51/hw/snapshot"
)

type Board interface {
	PortByName(name string) (*hw.Port, error)
	PressButton(n uint) error
	ReleaseButton(n uint) error
	State() *snapshot.MCU
}

type PortWrite struct {
	Port  string
	Value uint8
}

type boardProxy struct {
	board Board
}

func (bp *boardProxy) PressButton(n uint, _ *struct{}) error   { return bp.board.PressButton(n) }
func (bp *boardProxy) ReleaseButton(n uint, _ *struct{}) error { return bp.board.ReleaseButton(n) }

func (bp *boardProxy) ReadPort(name string, reply *uint8) error {
	p, err := bp.board.PortByName(name)
	if err != nil {
		return err
	}
	*reply = p.Read()
	return nil
}

func (bp *boardProxy) WritePort(args PortWrite, _ *struct{}) error {
	p, err := bp.board.PortByName(args.Port)
	if err != nil {
		return err
	}
	modRPC.DebugZ("write port").String("port", args.Port).Hex8("val", args.Value).End()
	p.Write(args.Value)
	return nil
}

func (bp *boardProxy) State(_ *struct{}, reply *snapshot.MCU) error {
	*reply = *bp.board.State()
	return nil
}

func (bp *boardProxy) IsReady(_ *struct{}, reply *bool) error {
	*reply = true
	return nil
}

type Server struct {
	io.Closer
}

// NewServer serves board on localhost:port. Port 0 picks any free port,
// Addr tells which.
func NewServer(port int, board Board) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("board", &boardProxy{board: board}); err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, srv)

	l, err := net.Listen("tcp", "localhost:"+strconv.Itoa(port))
	if err != nil {
		return nil, err
	}

	modRPC.InfoZ("rpc server listening").String("addr", l.Addr().String()).End()
	go http.Serve(l, mux)
	return &Server{Closer: l}, nil
}

// Port returns the TCP port the server listens on.
func (s *Server) Port() int {
	return s.Closer.(net.Listener).Addr().(*net.TCPAddr).Port
}
