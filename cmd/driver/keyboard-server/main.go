// monsgeek-hid: a host-side driver for Hall-Effect magnetic-switch keyboards
// Copyright (C) 2026
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gRPC server exposing a connected keyboard over the wired/dongle/BLE
// transports.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"monsgeek-hid/internal/config"
	"monsgeek-hid/internal/discovery"
	"monsgeek-hid/internal/driver/device"
	"monsgeek-hid/internal/driver/rpc"
	"monsgeek-hid/internal/events"
	"monsgeek-hid/internal/keyboard"
	"monsgeek-hid/internal/protocol"
	"monsgeek-hid/internal/transport"
)

var (
	listenAddr = flag.String("listen", "", "gRPC listen address (overrides driver config)")
	httpAddr   = flag.String("http", "127.0.0.1:50552", "HTTP status/health listen address, empty to disable")
	bleWindow  = flag.Duration("ble-scan-window", 4*time.Second, "BLE advertisement scan window")
	checksum   = flag.String("checksum", "bit7", "checksum scheme: bit7, bit8, or none")
)

func main() {
	flag.Parse()

	cfg := config.MustLoadDriverConfig()
	addr := *listenAddr
	if addr == "" {
		addr = cfg.GRPCListenAddr
	}

	t, kind, err := openPreferredTransport(cfg)
	if err != nil {
		log.Fatalf("open keyboard transport: %v", err)
	}
	log.Printf("connected over %s transport", kind)

	sub := events.New(t)
	kb := keyboard.New(t, checksumKind(*checksum))
	srv := device.NewKeyboardServer(kb, sub)
	defer srv.Close()

	grpcServer := grpc.NewServer()
	rpc.RegisterKeyboardServiceServer(grpcServer, srv)
	reflection.Register(grpcServer)

	if *httpAddr != "" {
		status := device.NewStatusServer(srv)
		go func() {
			if err := http.ListenAndServe(*httpAddr, status.Handler()); err != nil {
				log.Printf("http status server stopped: %v", err)
			}
		}()
		log.Printf("http status server listening on %s", *httpAddr)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("listen on %s: %v", addr, err)
	}
	log.Printf("keyboard driver gRPC server listening on %s", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutting down driver server...")
		grpcServer.GracefulStop()
	}()

	if err := grpcServer.Serve(listener); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

func checksumKind(name string) protocol.ChecksumKind {
	switch name {
	case "bit8":
		return protocol.ChecksumBit8
	case "none":
		return protocol.ChecksumNone
	default:
		return protocol.ChecksumBit7
	}
}

// openPreferredTransport tries each transport in the configured preference
// order, falling back to the next on failure.
func openPreferredTransport(cfg config.DriverConfig) (transport.Transport, transport.Kind, error) {
	var lastErr error
	for _, pref := range cfg.TransportPreference {
		switch pref {
		case "wired":
			t, err := transport.OpenWired(discovery.VendorID, discovery.ProductWired, 0x01, 0x81)
			if err == nil {
				return t, transport.KindWired, nil
			}
			lastErr = err
		case "dongle":
			t, err := transport.OpenDongle(discovery.VendorID, discovery.ProductDongle, 0x01, 0x81)
			if err == nil {
				return t, transport.KindDongle, nil
			}
			lastErr = err
		case "ble":
			id := cfg.BLEPeripheralID
			if id == "" {
				found, err := discovery.ScanBLE(*bleWindow)
				if err != nil || len(found) == 0 {
					lastErr = fmt.Errorf("ble scan found no peripherals: %w", err)
					continue
				}
				id = found[0].BLEPeriphID
			}
			t, err := transport.OpenBLE(id)
			if err == nil {
				return t, transport.KindBLE, nil
			}
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no transport preference configured")
	}
	return nil, 0, lastErr
}
