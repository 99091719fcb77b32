// Package eurus provides a shared-memory single-producer/single-consumer
// inter-process channel, designed, originally, as transport plumbing for
// AGILira services that exchange fixed-size records across process
// boundaries.
//
// Two cooperating processes map the same backing region and exchange values
// through a lock-free ring located after a fixed 768-byte control block.
// The channel offers two delivery disciplines: lossy, where the producer
// never blocks and the consumer detects and skips overwritten values, and
// lossless, where the producer refuses to overwrite unread slots and the
// consumer publishes its progress back. A heartbeat sub-protocol carries
// liveness in both directions independently of data flow.
//
// # Quick Start
//
// The producer initializes a zeroed region; the consumer joins it:
//
//	region, _ := shmem.Open(shmem.Config{
//		ID:   "tickers",
//		Size: eurus.RegionSize[uint64](1024),
//	})
//
//	producer, err := eurus.NewProducer[uint64](region.Data, 1024)
//	if err != nil {
//		log.Fatal(err)
//	}
//	producer.Push(42) // lossy, never blocks
//	producer.Sync()   // publish immediately
//
// In the consuming process:
//
//	consumer, err := eurus.NewConsumer[uint64](region.Data, 1024)
//	if err != nil {
//		log.Fatal(err) // eurus.ErrUninitialized until a producer attaches
//	}
//	for {
//		v, err := consumer.Pop()
//		if errors.Is(err, eurus.ErrEmpty) {
//			continue
//		}
//		// use v
//	}
//
// # Disciplines
//
// Push publishes the local tail once per burst B(N) = max(1, N/4) and never
// inspects the consumer; throughput is traded for publication latency, and
// Sync flushes on demand. PushLossless gates on the consumer's published
// head and returns ErrFull rather than overwrite; PopLossless publishes the
// consumed head so that gate advances. The two disciplines share the ring
// but are not meant to be mixed on one channel.
//
// # Memory model
//
// Slot writes are plain copies ordered before the release-store of the
// tail; slot reads are plain copies validated after an acquire-load of the
// tail. Every hot index lives on its own 128-byte cache line, the region
// must start 128-byte aligned, and the control block layout is bit-exact
// little-endian so differently built peers interoperate or fail loudly
// (ErrCapacityMismatch, ErrCorruption).
//
// No operation blocks on an OS primitive and Empty/Full are returned
// immediately; spinning, yielding or sleeping between attempts is the
// caller's decision.
package eurus
