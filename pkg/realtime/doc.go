// Package realtime relays notifications to connected clients over WebSocket.
//
// A Bridge serves two ports. The client-facing port is where end users
// connect: a client sends "authenticate" with its user id to join the room
// "user:<id>", or "join" to enter any named room, and then receives a
// "notification" frame for everything published to its rooms. The
// internal-facing port is reserved for trusted producers: each
// "notification" frame it receives is relayed to a room on the client-facing
// port and answered with "notificationReceived" or "notificationError".
//
// All frames are JSON objects of the form {"event": "...", "data": ...}.
//
// Publishing to a room with no members succeeds and delivers to nobody;
// nothing is queued for clients that connect later. A client that cannot
// keep up with its send buffer is disconnected.
//
//	b := realtime.NewBridge(realtime.WithConfig(cfg))
//	clientMux.Handle("/", b.ClientHandler())
//	internalMux.Handle("/", b.ProducerHandler())
//
// Processes that do not own the bridge publish through a ProducerClient:
//
//	pc := realtime.NewProducerClient(cfg.InternalURL, realtime.WithToken(cfg.ProducerToken))
//	delivered, err := pc.PublishToRoom(ctx, realtime.UserRoom("42"), payload)
package realtime
