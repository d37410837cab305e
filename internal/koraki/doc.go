// Package koraki is the HTTP client for the Koraki API.
//
// It covers the integration endpoints used to link, inspect and unlink a
// site, and the webhook endpoint that receives content notifications. Every
// request authenticates with HTTP Basic credentials built from the
// application's client id and client secret.
package koraki
