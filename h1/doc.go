// Package h1 parses, builds and relays HTTP/1.x messages directly over byte
// streams.
//
// Heads are read either eagerly (ReadRequest, ReadResponse) or in two phases:
// raw lines are collected from any mix of streams and literal text first, then
// parsed into fields. Bodies are buffered by Body or forwarded by Relay, framed
// by Content-Length or chunked transfer coding, always under an optional byte
// ceiling.
//
// Nothing is read past the end of a head or body, so a stream may carry several
// messages back to back. Wrap raw connections into a bufio.Reader: the heads are
// read byte by byte.
package h1
