/*
Package transmission is a small client for the transmission-daemon JSON-RPC API.

Highlights:
  - Transparent handling of the X-Transmission-Session-Id handshake: a 409
    refreshes the cached id and the call is replayed once
  - Session id persisted through a pluggable TokenStore (memory, file,
    SQLite, Redis) so a restarted process skips the bootstrap round-trip
  - Structured errors that tell offline, transport, protocol and daemon
    failures apart
  - Typed helpers for the common calls: start, stop, add, list, stats

Quick start:

	import (
	    "context"
	    "log"

	    "github.com/jfxdev/go-transmission"
	)

	func main() {
	    client, err := transmission.New(transmission.Config{
	        Host:     "localhost",
	        Username: "admin",
	        Password: "password",
	    })
	    if err != nil {
	        log.Fatal(err)
	    }
	    defer client.Close()

	    torrents, err := client.LoadTorrents(context.Background())
	    if err != nil {
	        log.Fatal(err)
	    }
	    log.Printf("%d torrents", len(torrents))
	}
*/
package transmission
