// Package fanout turns bus events into per-recipient notifications.
//
// A Processor expands one envelope into zero or more candidate
// notifications, consults the relevance gate where the event type calls
// for it, and hands each accepted notification to a Sender, which persists
// it and pushes it to the recipient's room. Recipients are handled
// independently: a failed score or a failed write for one recipient does not
// affect the others.
//
// A Consumer drives a Processor from a bus.Reader. It runs one goroutine per
// partition, so events sharing a target id are processed one at a time and
// in order. Each partition cycles through idle, receiving and processing;
// the current states are available from States.
//
//	proc, _ := fanout.NewProcessor(manager, gate)
//	cons, _ := fanout.NewConsumer(reader, proc, fanout.WithLogger(log))
//	g.Go(cons.Run(ctx))
package fanout
