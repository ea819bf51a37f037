package main

import (
	"flag"
	"net"
	"os"
	"path/filepath"

	"github.com/rutgers-cs352/netxfer/filereceiver"
	"github.com/rutgers-cs352/netxfer/internal/endpoint"
	"github.com/rutgers-cs352/netxfer/log"
)

var (
	addr = flag.String("addr", ":9000", "the local address:port to listen on")
	out  = flag.String("out", ".", "the directory to write received files into")
)

func main() {
	flag.Parse()

	local, err := net.ResolveUDPAddr("udp", *addr)
	if err != nil {
		log.Warning.Fatalf("resolve address: %s", err)
	}
	ep, err := endpoint.Bind(local)
	if err != nil {
		log.Warning.Fatalf("bind: %s", err)
	}
	defer ep.Close()

	opener := func(name string) (filereceiver.Sink, error) {
		return os.Create(filepath.Join(*out, name))
	}

	r := filereceiver.New(ep, opener)

	log.Info.Printf("listening on %s", local)
	if err := r.Run(); err != nil {
		log.Warning.Fatalf("receive: %s", err)
	}

	stats := r.Stats()
	log.Info.Printf("received %d bytes (%d duplicates suppressed, %d out-of-order buffered)",
		stats.BytesWritten, stats.DuplicatesSuppressed, stats.OutOfOrderBuffered)
}
