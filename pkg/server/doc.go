// Package server exposes diagram sessions over HTTP for the host editor's
// webview.
//
// The editor opens one session per schema file and then pushes events to it:
//
//	POST   /sessions                  {path, schema}   -> {id, graph}
//	GET    /sessions/{id}/graph                        -> graph
//	PUT    /sessions/{id}/schema      schema model     -> graph
//	POST   /sessions/{id}/drag        {id, position}   -> graph
//	POST   /sessions/{id}/group-drag  {group, offset}  -> graph
//	POST   /sessions/{id}/reset                        -> graph
//	DELETE /sessions/{id}
//	GET    /healthz
//
// Session ids are random UUIDs. Every response uses the same envelope:
//
//	{"status": "success", "data": {...}}
//	{"status": "error", "message": "...", "error": "NOT_FOUND"}
//
// Sessions that receive no request for the registry's idle TTL are closed
// by [Registry.Cleanup], which flushes their pending layout writes.
package server
