// Package server provides the HTTP pieces of the Spotify login flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// The first [Middleware] added is the outermost. [Logging] is the only middleware shipped.
//
// [BasicRouter] registers method-qualified [http.ServeMux] patterns. Besides the
// callback it serves a redirect from / to the authorize URL, for terminals where
// the browser cannot be opened.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens
// through an [Exchanger], and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// When the user runs `plx auth spotify`, a temporary HTTP server starts on the configured
// host and port, handles the callback, and shuts down after receiving the token.
package server
