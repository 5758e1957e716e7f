// Package favorites implements the favorites [Controller], the single owner of the signed-in user's favorite movie ids.
//
// # States
//
// A controller starts [Uninitialized]. [Controller.Load] fetches the profile and moves it to [Loaded].
// While at least one toggle awaits the server it reports [Mutating].
// [Controller.Reset] returns it to Uninitialized, and results of calls still in flight are discarded.
//
// # Toggling
//
// [Controller.Toggle] applies the change to the in-memory set before the network call resolves.
// On success the server's echo replaces the set; optimistic changes still pending on other ids are applied on top.
// On failure only the toggled id is rolled back and the error is returned to the caller.
// A second toggle of an id that is still pending fails with [shared.ErrOperationInProgress].
//
// # Notifications
//
// Every transition is published as an [Event] carrying a full snapshot of the set.
// Subscriber channels are buffered; a slow subscriber loses its oldest undelivered events, never the newest.
package favorites
