// Package app wires the HPIC Pulse dashboard together and owns its
// lifecycle. NewApplication builds every layer in dependency order:
// configuration, structured logging, OpenTelemetry, the snapshot loader and
// its TTL cache, the metric and health services, and finally the chi router
// with its middleware stack and the embedded web UI.
//
// Run starts the HTTP server and blocks until SIGINT or SIGTERM, then
// drains in-flight requests, stops the cache sweeper, and flushes telemetry
// before returning. Construction never calls os.Exit; every failure comes
// back as an error so main decides how loudly to die.
//
//	application, err := app.NewApplication(webFS)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
package app
