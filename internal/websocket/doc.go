// Package websocket pushes run progress to browser clients.
//
// A Hub fans JSON events out to every connected Client. Pipeline status
// updates arrive through Hub.BroadcastUpdate, which never blocks the caller.
// Handler upgrades HTTP requests on /ws and attaches the connection to the hub.
package websocket
