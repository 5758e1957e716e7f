// Package services implements the [Catalog] client for the movie catalog API.
//
// # Catalog Client
//
// [CatalogClient] issues exactly one HTTP request per operation against a fixed base URL.
// Protected calls carry the session token as a bearer Authorization header, attached through [oauth2.Token.SetAuthHeader].
// The token is read from the [session.Reader] on every request, so a login or logout takes effect on the next call.
//
// Every request carries an X-Request-ID header (a v4 uuid) that is also written to the debug log.
// An optional [rate.Limiter] paces requests. The client waits for a slot and never retries.
//
// # Error Handling
//
// Failures are returned as [*APIError] values. The Kind field is one of the sentinel errors in the shared package,
// so callers test with [errors.Is]:
//   - [shared.ErrValidationFailed] : register or profile update rejected (400, 409, 422)
//   - [shared.ErrAuthenticationFailed] : login rejected (400, 401, 403)
//   - [shared.ErrUnauthenticated] : no session, or the token was refused (401, 403)
//   - [shared.ErrNotFound] : 404, or an empty body where a single record was expected
//   - [shared.ErrServerError] : 5xx, transport failure, unexpected status or malformed body
//
// # Raw Access
//
// [CatalogClient.Raw] performs an arbitrary request and returns the unvalidated [RawResponse].
// It backs the api debugging command and never maps status codes to errors.
package services
