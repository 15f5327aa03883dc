/*
Package qbt adds torrents to qBittorrent through its Web API.

A batch may mix magnet/HTTP URLs and local .torrent files. The batch is
validated into an AddDescriptor, rendered into one multipart request per
kind of source, and submitted. When both kinds are present the two requests
are sent concurrently and the caller gets a single error describing which
half, if any, failed.

Quick start:

	import (
	    "context"
	    "log"

	    qbt "github.com/jfxdev/go-qbt-add"
	)

	func main() {
	    client, err := qbt.New(qbt.Config{
	        BaseURL:  "http://localhost:8080",
	        Username: "admin",
	        Password: "password",
	    })
	    if err != nil {
	        log.Fatal(err)
	    }
	    defer client.Close(context.Background())

	    d, err := qbt.NewAddDescriptorBuilder(
	        qbt.URL("magnet:?xt=urn:btih:..."),
	        qbt.RawTorrentFile("/tmp/a.torrent"),
	    ).Category("movies").Paused(true).Build()
	    if err != nil {
	        log.Fatal(err)
	    }

	    if err := client.AddTorrents(context.Background(), d); err != nil {
	        log.Fatal(err)
	    }
	}
*/
package qbt
