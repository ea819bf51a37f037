package main

import (
	"flag"
	"net"
	"os"
	"time"

	"github.com/rutgers-cs352/netxfer/filesender"
	"github.com/rutgers-cs352/netxfer/internal/endpoint"
	"github.com/rutgers-cs352/netxfer/log"
)

var (
	laddr = flag.String("laddr", ":0", "the local address:port to bind")
	raddr = flag.String("raddr", "127.0.0.1:9000", "the receiver's address:port")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Warning.Fatalln("usage: sender -raddr host:port <file>")
	}
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warning.Fatalf("read file: %s", err)
	}

	local, err := net.ResolveUDPAddr("udp", *laddr)
	if err != nil {
		log.Warning.Fatalf("resolve local address: %s", err)
	}
	remote, err := net.ResolveUDPAddr("udp", *raddr)
	if err != nil {
		log.Warning.Fatalf("resolve receiver address: %s", err)
	}

	ep, err := endpoint.Dial(local, remote)
	if err != nil {
		log.Warning.Fatalf("dial: %s", err)
	}
	defer ep.Close()

	s := filesender.New(ep)

	log.Info.Printf("connecting to %s", remote)
	if err := s.Connect(); err != nil {
		log.Warning.Fatalf("connect: %s", err)
	}
	if err := s.SendFileName(path); err != nil {
		log.Warning.Fatalf("send file name: %s", err)
	}

	start := time.Now()
	if err := s.SendFile(data); err != nil {
		log.Warning.Fatalf("send file: %s", err)
	}
	elapsed := time.Since(start)

	if err := s.Disconnect(); err != nil {
		log.Warning.Printf("disconnect: %s", err)
	}

	stats := s.Stats()
	stats.Elapsed = elapsed
	log.Info.Printf("sent %d bytes in %d packets (%d retransmissions), %.2f Mbps",
		stats.BytesSent, stats.PacketsSent, stats.Retransmissions, stats.ThroughputMbps())
}
