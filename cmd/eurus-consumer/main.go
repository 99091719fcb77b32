// main.go: Consumer side of the two-process handshake harness
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

//go:build linux

// eurus-consumer joins the channel created by eurus-producer, acknowledges
// the join with a heartbeat, spins on pop until the handoff value arrives
// and acknowledges it with a second heartbeat.
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

const channelCapacity = 4

func main() {
	flags := pflag.NewFlagSet("eurus-consumer", pflag.ExitOnError)
	harness.RegisterFlags(flags)
	flags.Duration("join-timeout", 30*time.Second, "how long to wait for the producer to initialize")
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

	size := eurus.RegionSize[uint64](channelCapacity)
	seg, err := shmem.Open(shmem.Config{ID: cfg.Channel, Size: size, PageSize: page})
	if err != nil {
		logger.Fatal("open failed", zap.Error(err))
	}
	defer func() { _ = seg.Close() }()

	joinTimeout, _ := flags.GetDuration("join-timeout")
	consumer := join(seg.Data, joinTimeout, logger)
	logger.Info("joined channel", zap.Uint64("capacity", channelCapacity))

	// Ack the join.
	consumer.Beat()

	var value uint64
	for {
		v, err := consumer.Pop()
		if err == nil {
			value = v
			break
		}
		if !errors.Is(err, eurus.ErrEmpty) {
			logger.Fatal("pop failed", zap.Error(err))
		}
		runtime.Gosched()
	}
	logger.Info("read value", zap.Uint64("value", value))

	// Ack the message.
	consumer.Beat()
	logger.Info("done", zap.Any("stats", consumer.Stats()))
}

// join retries attach until the producer has initialized the region or the
// timeout elapses.
func join(region []byte, timeout time.Duration, logger *zap.Logger) *eurus.Consumer[uint64] {
	deadline := time.Now().Add(timeout)
	for {
		consumer, err := eurus.NewConsumer[uint64](region, channelCapacity)
		if err == nil {
			return consumer
		}
		if !errors.Is(err, eurus.ErrUninitialized) {
			logger.Fatal("join failed", zap.Error(err))
		}
		if time.Now().After(deadline) {
			logger.Fatal("timed out waiting for producer", zap.Duration("timeout", timeout))
		}
		time.Sleep(10 * time.Millisecond)
	}
}
