// Package server serves the site: first paint over HTTP and live
// navigation over a websocket.
//
// # Architecture
//
// A Site holds what every browsing context shares: the route table, the
// parsed view set and the render middleware. From it the server builds an
// engine per context, made of a nav.Controller, a view.Dispatcher and a
// shell.Shell wired together.
//
//   - HTTP GET of any page path runs a headless engine over a
//     nav.MemoryHistory and a view.Buffer, then writes the shell page with
//     the committed markup (404 for NotFound).
//   - GET /ws opens a Session. The engine's history, surface and chrome are
//     backed by the connection, so pushes, content replacement and chrome
//     changes become JSON messages for the thin client.
//   - /client.js, /sw.js and /manifest.webmanifest are embedded and served
//     with ETag revalidation; /assets/ serves an optional directory.
//
// # Session Lifecycle
//
// Each session runs three goroutines:
//   - ReadLoop: decodes client messages and queues them
//   - EventLoop: owns the controller; applies clicks, navigations,
//     back/forward and language changes in arrival order
//   - WriteLoop: sends heartbeat pings
//
// Renders run on the dispatcher's goroutines and write their content
// through the session's serialized writer.
//
// # Messages
//
// Client to server: ready, click, navigate, popstate, lang.
// Server to client: replace, push, replaceState, active, drawer, scroll,
// title, lang, route, load.
package server
