// Package notify turns host lifecycle events into Koraki webhook calls.
//
// Each entry point applies the business filters for its event kind, builds
// one Payload variant and posts it synchronously with the credentials
// currently stored in settings. Delivery failures never reach the caller.
package notify
