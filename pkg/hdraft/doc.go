// Package hdraft implements the header-compression codec for an early
// HTTP/2.0 draft: the reference-set era that preceded HPACK. It provides
// paired Deflater and Inflater contexts that share a dynamic, byte-budgeted
// header table and a per-block reference set of headers carried forward
// implicitly between blocks.
//
// The codec is oblivious to HTTP semantics, framing, and transport. Callers
// hand it ordered name/value pairs and get back opaque bytes, or vice
// versa; everything else (streams, TLS, the event loop) lives outside this
// package.
package hdraft
