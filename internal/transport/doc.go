// Package transport builds the HTTP client used to fetch pages.
//
// By default requests go out directly. A SOCKS5 proxy can be configured,
// and an embedded Tor daemon (via tornago) can be started to provide one.
// The client always has an explicit timeout; no library default is relied on.
package transport
