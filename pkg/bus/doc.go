// Package bus implements the partitioned event bus on top of Redis Streams.
//
// Each logical topic is split into a fixed number of partition streams named
// "<prefix><topic>:<n>". A record is routed to a partition by hashing its key,
// so records sharing a key are stored, and later consumed, in the order they
// were sent.
//
// Producers are obtained from a Dialer and expose a Done channel that closes
// when the underlying connection is considered lost. Readers use consumer
// groups: every record is delivered to one member of the group and stays
// pending until acknowledged, which gives at-least-once delivery.
//
//	dialer := bus.NewRedisDialer(redisCfg, busCfg)
//	p, err := dialer.Dial(ctx)
//	err = p.Send(ctx, "user-events", bus.Record{Key: "u2", Type: "user.follow", Value: data})
//
//	r, err := bus.NewStreamReader(client, busCfg, "user-events", "post-events")
//	err = r.EnsureGroups(ctx)
//	for _, part := range r.Partitions() {
//		msgs, err := r.Read(ctx, part)
//		// process, then r.Ack(ctx, msg)
//	}
package bus
