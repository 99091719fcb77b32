// main.go: Producer side of the two-process handshake harness
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

//go:build linux

// eurus-producer creates a fresh shared region, initializes a channel of
// four uint64 slots, waits for a consumer to join, hands it one value
// losslessly and exits once the consumer acknowledges. Run eurus-consumer
// in a second terminal against the same --channel id.
package main

import (
	"errors"
	"os"
	"runtime"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/agilira/eurus"
	"github.com/agilira/eurus/internal/harness"
	"github.com/agilira/eurus/internal/logx"
	"github.com/agilira/eurus/shmem"
)

const (
	channelCapacity = 4
	handoffValue    = uint64(0x2A2A2A2A2A2A2A2A)
)

func main() {
	flags := pflag.NewFlagSet("eurus-producer", pflag.ExitOnError)
	harness.RegisterFlags(flags)
	_ = flags.Parse(os.Args[1:])

	cfg, err := harness.Load(flags)
	if err != nil {
		pflag.PrintDefaults()
		panic(err)
	}
	logger, err := logx.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	page, err := shmem.ParsePageSize(cfg.PageSize)
	if err != nil {
		logger.Fatal("invalid page size", zap.Error(err))
	}

	// Start from a fresh region so the attach path initializes rather
	// than joins a stale channel.
	if err := shmem.Unlink(cfg.Channel, page); err != nil {
		logger.Fatal("unlink failed", zap.Error(err))
	}

	size := eurus.RegionSize[uint64](channelCapacity)
	logger.Info("opening shared region",
		zap.String("channel", cfg.Channel),
		zap.Uint64("size", size),
		zap.Stringer("page_size", page))

	seg, err := shmem.Open(shmem.Config{ID: cfg.Channel, Size: size, PageSize: page})
	if err != nil {
		logger.Fatal("open failed", zap.Error(err))
	}
	defer func() { _ = seg.Close() }()
	seg.Zero()

	producer, err := eurus.NewProducer[uint64](seg.Data, channelCapacity)
	if err != nil {
		logger.Fatal("initialize failed", zap.Error(err))
	}
	logger.Info("channel initialized", zap.Uint64("capacity", channelCapacity))

	// Wait for the consumer to ack its join.
	waitForBeat(producer, logger, "consumer joined")

	for i := 0; i < channelCapacity; i++ {
		if err := producer.PushLossless(handoffValue); err != nil {
			logger.Fatal("push failed", zap.Int("slot", i), zap.Error(err))
		}
	}
	if err := producer.PushLossless(handoffValue); !errors.Is(err, eurus.ErrFull) {
		logger.Fatal("expected full channel", zap.Error(err))
	}

	producer.Sync()
	producer.Beat()
	logger.Info("values published", zap.Uint64("value", handoffValue))

	// Wait for the consumer to ack the message.
	waitForBeat(producer, logger, "consumer acknowledged handoff")

	logger.Info("done", zap.Any("stats", producer.Stats()))
}

// waitForBeat spins until the consumer's heartbeat advances, logging while
// it waits.
func waitForBeat(producer *eurus.Producer[uint64], logger *zap.Logger, msg string) {
	monitor := eurus.NewLivenessMonitor(producer.ConsumerHeartbeat)
	defer monitor.Stop()

	for !monitor.Poll() {
		if monitor.IdleFor() > 5*time.Second {
			logger.Warn("still waiting for consumer",
				zap.Duration("idle", monitor.IdleFor()))
			time.Sleep(time.Second)
			continue
		}
		runtime.Gosched()
	}
	logger.Info(msg)
}
