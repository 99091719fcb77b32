// heartbeat.go: Time-based liveness tracking over the heartbeat counters
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eurus

import (
	"time"

	"github.com/agilira/go-timecache"
)

// LivenessMonitor turns an endpoint's heartbeat predicate into a time-based
// liveness signal. The heartbeat counters themselves carry no notion of
// time; callers that want "has the peer made progress within the last
// second" wrap the predicate in a monitor and poll it.
//
// Timestamps come from a cached clock so polling from a hot loop stays
// cheap. A monitor is single-threaded like the endpoint it wraps.
//
//	monitor := eurus.NewLivenessMonitor(producer.ConsumerHeartbeat)
//	defer monitor.Stop()
//	for !monitor.Alive(time.Second) {
//		// peer silent for over a second
//	}
type LivenessMonitor struct {
	observe      func() bool
	clock        *timecache.TimeCache
	lastProgress time.Time
}

// NewLivenessMonitor wraps a heartbeat predicate such as
// Producer.ConsumerHeartbeat or Consumer.ProducerHeartbeat. The peer is
// considered current as of the monitor's creation.
func NewLivenessMonitor(observe func() bool) *LivenessMonitor {
	m := &LivenessMonitor{
		observe: observe,
		clock:   timecache.NewWithResolution(time.Millisecond),
	}
	m.lastProgress = m.clock.CachedTime()
	return m
}

// Poll checks the peer's heartbeat once, refreshing the progress timestamp
// when it advanced, and reports whether it did.
func (m *LivenessMonitor) Poll() bool {
	if m.observe() {
		m.lastProgress = m.clock.CachedTime()
		return true
	}
	return false
}

// IdleFor returns how long ago peer progress was last observed.
func (m *LivenessMonitor) IdleFor() time.Duration {
	return m.clock.CachedTime().Sub(m.lastProgress)
}

// Alive polls once and reports whether peer progress was observed within
// window.
func (m *LivenessMonitor) Alive(window time.Duration) bool {
	if m.Poll() {
		return true
	}
	return m.IdleFor() <= window
}

// Stop releases the monitor's clock. The monitor must not be used after.
func (m *LivenessMonitor) Stop() {
	m.clock.Stop()
}
