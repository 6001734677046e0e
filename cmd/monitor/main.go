// monsgeek-hid: a host-side driver for Hall-Effect magnetic-switch keyboards
// Copyright (C) 2026
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// cmd/monitor is a raw HID diagnostics tool: opens a keyboard's wired or
// dongle USB interface directly (bypassing the flow-control layer) and
// dumps every report exchanged, for debugging new firmware or an unknown
// notification byte.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/gousb"

	"monsgeek-hid/internal/discovery"
	"monsgeek-hid/internal/driver/device"
	"monsgeek-hid/internal/transport"
)

var (
	useDongle = flag.Bool("dongle", false, "open the dongle product id instead of the wired one")
	sendHex   = flag.String("send", "", "hex-encoded report to send once connected, e.g. 08ff0500...")
	traceUSB  = flag.Bool("trace", false, "attach a kprobe USB I/O tracer alongside the dump (requires CAP_BPF)")
	duration  = flag.Duration("for", 10*time.Second, "how long to watch for unsolicited reports")
)

func main() {
	flag.Parse()

	product := gousb.ID(discovery.ProductWired)
	if *useDongle {
		product = gousb.ID(discovery.ProductDongle)
	}

	var t transport.Transport
	var err error
	if *useDongle {
		t, err = transport.OpenDongle(discovery.VendorID, product, 0x01, 0x81)
	} else {
		t, err = transport.OpenWired(discovery.VendorID, product, 0x01, 0x81)
	}
	if err != nil {
		log.Fatalf("open device: %v", err)
	}
	defer t.Close()

	fmt.Printf("connected: kind=%s vid=0x%04x pid=0x%04x\n", t.Kind(), discovery.VendorID, product)

	if *traceUSB {
		tracer, err := device.NewTracer()
		if err != nil {
			fmt.Printf("tracer unavailable: %v\n", err)
		} else {
			defer tracer.Close()
			go watchTrace(tracer)
		}
	}

	if *sendHex != "" {
		report, err := hex.DecodeString(*sendHex)
		if err != nil {
			log.Fatalf("decode --send hex: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		resp, err := t.Exchange(ctx, report)
		if err != nil {
			fmt.Printf("exchange error: %v\n", err)
		} else {
			fmt.Println("response:")
			fmt.Print(hex.Dump(resp))
		}
	}

	fmt.Printf("watching for unsolicited reports for %s...\n", *duration)
	deadline := time.After(*duration)
	for {
		select {
		case <-deadline:
			return
		case ev, ok := <-t.Events():
			if !ok {
				return
			}
			fmt.Println("event:")
			fmt.Print(hex.Dump(ev))
		}
	}
}

func watchTrace(tracer *device.Tracer) {
	for {
		ev, err := tracer.ReadEvent()
		if err != nil {
			fmt.Fprintf(os.Stderr, "tracer: %v\n", err)
			return
		}
		dir := "OUT"
		if ev.Direction == 1 {
			dir = "IN"
		}
		fmt.Printf("[usb] %s ep=0x%02x bytes=%d\n", dir, ev.Endpoint, ev.Bytes)
	}
}
