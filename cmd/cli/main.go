// monsgeek-hid: a host-side driver for Hall-Effect magnetic-switch keyboards
// Copyright (C) 2026
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// cmd/cli is the host-side control surface: a cobra subcommand tree that
// either talks to a running keyboard-server over gRPC (profile, led,
// calibrate, keymap, tui) or opens the transport directly for operations
// the driver doesn't expose yet (macro, triggers).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"monsgeek-hid/internal/cli/ui"
	"monsgeek-hid/internal/discovery"
	"monsgeek-hid/internal/driver/host"
	"monsgeek-hid/internal/driver/rpc"
	"monsgeek-hid/internal/keyboard"
	"monsgeek-hid/internal/protocol"
	"monsgeek-hid/internal/transport"
)

var driverAddr string

func main() {
	root := &cobra.Command{
		Use:   "monsgeek-cli",
		Short: "control surface for monsgeek hall-effect keyboards",
	}
	root.PersistentFlags().StringVar(&driverAddr, "addr", host.DefaultDriverAddress, "keyboard-server gRPC address")

	root.AddCommand(
		tuiCmd(),
		profileCmd(),
		ledCmd(),
		calibrateCmd(),
		keymapCmd(),
		macroCmd(),
		triggersCmd(),
		batteryCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "live key-depth/battery/profile dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := ui.NewModel(driverAddr)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
			return err
		},
	}
}

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "profile", Short: "get or set the active profile"}

	cmd.AddCommand(&cobra.Command{
		Use:  "get",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := host.Dial(driverAddr)
			if err != nil {
				return err
			}
			defer b.Close()
			state, err := b.GetState(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("profile %d\n", state.Profile)
			return nil
		},
	})

	var setTo int
	setCmd := &cobra.Command{
		Use: "set",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := host.Dial(driverAddr)
			if err != nil {
				return err
			}
			defer b.Close()
			return b.SetProfile(context.Background(), byte(setTo))
		},
	}
	setCmd.Flags().IntVar(&setTo, "value", 0, "profile number, 0..3")
	cmd.AddCommand(setCmd)

	return cmd
}

func ledCmd() *cobra.Command {
	var mode, speed, brightness, layer, red, green, blue int
	var dazzle bool

	cmd := &cobra.Command{
		Use:   "led",
		Short: "set the main LED effect parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := host.Dial(driverAddr)
			if err != nil {
				return err
			}
			defer b.Close()
			return b.SetLEDParams(context.Background(), &rpc.SetLEDParamsRequest{
				Mode:          byte(mode),
				InvertedSpeed: byte(speed),
				Brightness:    byte(brightness),
				Layer:         byte(layer),
				Dazzle:        dazzle,
				Red:           byte(red),
				Green:         byte(green),
				Blue:          byte(blue),
			})
		},
	}
	cmd.Flags().IntVar(&mode, "mode", 0, "effect mode")
	cmd.Flags().IntVar(&speed, "speed", 0, "inverted speed, 0=fastest")
	cmd.Flags().IntVar(&brightness, "brightness", 4, "brightness 0..4")
	cmd.Flags().IntVar(&layer, "layer", 0, "layer")
	cmd.Flags().BoolVar(&dazzle, "dazzle", false, "enable dazzle mode")
	cmd.Flags().IntVar(&red, "red", 0, "red 0..255")
	cmd.Flags().IntVar(&green, "green", 0, "green 0..255")
	cmd.Flags().IntVar(&blue, "blue", 0, "blue 0..255")
	return cmd
}

func calibrateCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "calibrate", Short: "start or stop min/max travel calibration"}
	cmd.AddCommand(&cobra.Command{
		Use: "start",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBridgeCalibration(true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use: "stop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBridgeCalibration(false)
		},
	})
	return cmd
}

func withBridgeCalibration(start bool) error {
	b, err := host.Dial(driverAddr)
	if err != nil {
		return err
	}
	defer b.Close()
	return b.SetCalibration(context.Background(), start)
}

func batteryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "battery",
		Short: "query battery level/online/idle state",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := host.Dial(driverAddr)
			if err != nil {
				return err
			}
			defer b.Close()
			status, err := b.GetBatteryStatus(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("level %d online=%t idle=%t\n", status.Level, status.Online, status.Idle)
			return nil
		},
	}
}

func keymapCmd() *cobra.Command {
	var profile, key, layer, cfgType, b1, b2, b3 int

	cmd := &cobra.Command{
		Use:   "keymap",
		Short: "remap one key's assignment",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := host.Dial(driverAddr)
			if err != nil {
				return err
			}
			defer b.Close()
			return b.SetKeyAction(context.Background(), &rpc.SetKeyActionRequest{
				Profile:  byte(profile),
				KeyIndex: byte(key),
				Layer:    byte(layer),
				CfgType:  byte(cfgType),
				B1:       byte(b1),
				B2:       byte(b2),
				B3:       byte(b3),
			})
		},
	}
	cmd.Flags().IntVar(&profile, "profile", 0, "profile number")
	cmd.Flags().IntVar(&key, "key", 0, "matrix key index")
	cmd.Flags().IntVar(&layer, "layer", 0, "0=base, 1=fn")
	cmd.Flags().IntVar(&cfgType, "cfg-type", 1, "config_type byte")
	cmd.Flags().IntVar(&b1, "b1", 0, "config byte 1")
	cmd.Flags().IntVar(&b2, "b2", 0, "config byte 2")
	cmd.Flags().IntVar(&b3, "b3", 0, "config byte 3")
	return cmd
}

// macro and triggers talk to the transport directly: the driver's gRPC
// surface doesn't cover macro pages or per-key actuation yet, and these
// are one-shot configuration commands rather than anything needing a
// long-lived connection.

func macroCmd() *cobra.Command {
	var slot int
	var seq string
	var defaultDelay int

	cmd := &cobra.Command{
		Use:   "macro",
		Short: "program a macro slot from a human-readable step sequence",
		Long:  `Example: monsgeek-cli macro --slot 0 --seq "Ctrl+A(50ms),Ctrl+C"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := protocol.ParseMacroSeq(seq, uint16(defaultDelay))
			if err != nil {
				return fmt.Errorf("parse macro sequence: %w", err)
			}

			kb, closeFn, err := openLocalKeyboard()
			if err != nil {
				return err
			}
			defer closeFn()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return kb.SetMacro(ctx, byte(slot), parsed)
		},
	}
	cmd.Flags().IntVar(&slot, "slot", 0, "macro slot index")
	cmd.Flags().StringVar(&seq, "seq", "", "comma-separated step sequence, e.g. Ctrl+A(50ms),Ctrl+C")
	cmd.Flags().IntVar(&defaultDelay, "default-delay-ms", 20, "delay used for steps without an explicit (Nms)")
	cmd.MarkFlagRequired("seq")
	return cmd
}

func triggersCmd() *cobra.Command {
	var key int
	var actuationMM, deactuationMM float64
	var mode int

	cmd := &cobra.Command{
		Use:   "triggers",
		Short: "set a key's actuation point directly, in millimeters",
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, closeFn, err := openLocalKeyboard()
			if err != nil {
				return err
			}
			defer closeFn()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return kb.SetActuationMM(ctx, byte(key), actuationMM)
		},
	}
	cmd.Flags().IntVar(&key, "key", 0, "matrix key index")
	cmd.Flags().Float64Var(&actuationMM, "actuation-mm", 2.0, "actuation depth in millimeters")
	cmd.Flags().Float64Var(&deactuationMM, "deactuation-mm", 2.2, "deactuation depth in millimeters (reserved)")
	cmd.Flags().IntVar(&mode, "mode", 0, "trigger mode (reserved)")
	return cmd
}

func openLocalKeyboard() (*keyboard.Keyboard, func() error, error) {
	t, err := transport.OpenWired(discovery.VendorID, discovery.ProductWired, 0x01, 0x81)
	if err != nil {
		return nil, nil, fmt.Errorf("open wired keyboard: %w", err)
	}
	kb := keyboard.New(t, protocol.ChecksumBit7)
	return kb, kb.Close, nil
}
