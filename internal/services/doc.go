// Package services wraps the Spotify Web API behind the [Service] interface.
//
// # Design
//
// The service is the only component that talks to the outside world. It is
// deliberately stateless with respect to users: handlers pass the session's
// access token into every call, so one service instance serves every browser
// session.
//
// No call is retried and nothing is cached. Each call reflects upstream
// truth at call time; an expired token is only discovered reactively as an
// [APIError] with status 401.
//
// # Errors
//
// The code-to-token exchange wraps failures in shared.ErrAuthExchange.
// Authenticated calls return [APIError] on any non-2xx response, carrying
// the upstream status and payload.
package services
