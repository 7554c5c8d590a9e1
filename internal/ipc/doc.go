// Package ipc exposes daemon control over JSON-RPC on a Unix domain socket.
// The scribe CLI is the only intended client; requests and responses are
// plain structs so the wire format stays inspectable with socat.
package ipc
