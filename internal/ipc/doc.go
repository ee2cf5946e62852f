// Package ipc implements the request/response protocol between client
// invocations and the daemon: newline-delimited JSON over a unix domain
// socket, exactly one object per line.
//
// Three message shapes travel on the wire: a request {id, method, params},
// a success response {id, success:true, data}, and an error response
// {id, success:false, error:{code, message}}. The id is a fresh correlation
// token per request; a client matches responses to its outstanding request
// by id and ignores anything else.
//
// A connection serves many sequential requests. Calls are strictly one in
// flight per connection; there is no pipelining.
package ipc
