// Package realtime delivers supporter-table change events to open views.
//
// A single Listener per process holds the LISTEN connection to Postgres and
// publishes every notification into a Hub. Each view subscribes to the Hub
// with a callback that takes no payload: any event means "re-fetch". Pending
// events for one subscription coalesce into a single callback run, which is
// safe because the callback always rebuilds state from a fresh list.
package realtime
