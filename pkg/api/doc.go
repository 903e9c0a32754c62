// Package api exposes the notifications read model and event ingestion over
// HTTP.
//
// Routes (mounted by NewRouter):
//
//	GET  /api/notifications?userId=&limit=&offset=&read=&type=&since=
//	POST /api/notifications/{id}/read?userId=
//	POST /api/notifications/read-all?userId=
//	POST /api/events
//	GET  /healthz
//	GET  /readyz
//
// Every JSON body uses the same envelope:
//
//	{"data": ..., "meta": {...}, "error": {"code": "...", "message": "..."}}
//
// Marking notifications read publishes notification.read and
// notification.read_all on the notification-events topic. Ingestion
// publishes the posted envelope to the topic of its event type and answers
// 202 with {"published": bool}; a bus outage degrades to published=false
// instead of failing the request.
package api
