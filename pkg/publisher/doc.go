// Package publisher publishes event envelopes to the bus while owning the
// lifecycle of the bus connection.
//
// A Publisher connects lazily on first use. Concurrent callers that find it
// disconnected share a single in-flight connection attempt. When the
// connection drops, the publisher forgets it and the next Publish
// reconnects. Publish never returns an error: failures are logged and
// reported as false so request paths can degrade instead of failing.
//
//	pub, err := publisher.New(bus.NewRedisDialer(redisCfg, busCfg),
//		publisher.WithLogger(log),
//	)
//	ok := pub.Publish(ctx, event.TopicUserEvents, env)
package publisher
