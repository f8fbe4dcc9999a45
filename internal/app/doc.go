// Package app wires configuration, observability, services and the HTTP
// router into a runnable server.
//
// # Initialization Flow
//
//  1. Resolve storage paths and create the uploads and logs directories
//  2. Initialize logging and OpenTelemetry providers
//  3. Start the WebSocket hub and the run status broadcaster
//  4. Build the ServiceContainer (layout registry, pipeline, runs, analyses, reports)
//  5. Mount HTTP handlers behind the middleware chain
//
// The command line tools use NewServiceContainer directly and never start a
// server.
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests within
// the configured shutdown timeout, closes WebSocket clients and flushes
// telemetry. Errors are returned to main; the package never calls os.Exit.
package app
