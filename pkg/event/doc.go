// Package event defines the envelope carried on the pulse bus and the topic
// taxonomy events are routed by.
//
// An Envelope names what happened (Type), who caused it (ActorID) and which
// entity it happened to (TargetID, TargetType). TargetID doubles as the
// partition key: every event about the same entity lands in the same
// partition and is consumed in publish order.
//
//	env := event.Envelope{
//		EventType:  event.UserFollow,
//		ActorID:    "u1",
//		TargetID:   "u2",
//		TargetType: event.TargetUser,
//		Payload:    map[string]any{"actorUsername": "alice"},
//	}
//	ok := pub.Publish(ctx, event.TopicFor(env.EventType), env)
package event
