// Package server provides HTTP routing, middleware, and the session-bound
// OAuth web handlers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern. The [BasicRouter] implementation uses
// [http.ServeMux] with method patterns.
//
// # Handlers
//
// [App] carries the handler layer's dependencies and implements the session
// state machine:
//
//	GET  /                → home; authenticated sessions refresh their
//	                        playlist snapshot best-effort
//	GET  /login           → store oauth state, redirect to the external
//	                        authorization URL
//	GET  /callback        → validate state, exchange the code, cache profile
//	                        and playlists in the session
//	GET  /top-tracks      → verbatim top-items JSON; redirects to /login
//	                        without a token
//	GET  /add-playlist    → creation form; redirects to /login without a
//	                        token
//	POST /create-playlist → create, re-fetch playlists, redirect home; 401
//	                        JSON without a token
//
// A session is authenticated exactly when it holds an access token. The
// callback writes token, refresh token and profile in a single session save,
// so the next request observes either the old state or the complete new one.
//
// # Unauthenticated policy
//
// Browser navigations redirect to /login. The create-playlist POST returns
// an explicit 401 instead: redirecting a form submission would silently drop
// the user's input.
package server
