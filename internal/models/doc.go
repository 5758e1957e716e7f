// Package models defines the catalog and account entities exchanged with the movie catalog API.
//
// The package contains two categories of types:
//
// 1. Catalog records (read-only, fetched per session):
//   - [Movie] : Title, synopsis, cast, release year and rating
//   - [Genre] : Genre name and description
//   - [Director] : Director name, biography and birth/death dates
//
// 2. Account records:
//   - [User] : The profile owned by the server, including favorite movie ids
//   - [Credentials] : Register/login payload
//   - [ProfileEdits] : Full profile replacement payload
//   - [LoginResult] : Token and user returned by a successful login
//   - [Session] : The token and user id held by the session store
//
// Records received from the API implement [Validator]; the catalog client rejects records that fail validation.
package models
