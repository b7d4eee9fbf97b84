// Package admins is the administrator back-office: server-rendered pages
// to list, add, update, activate, deactivate, reset and delete
// administrator accounts, plus the glue that mounts the public user
// router (index and authentication routes) on the same server.
//
// Request flow:
//   - AdministratorController binds the form, runs the shared sanitize step
//     and the Validator, then calls a lifecycle command handler. Success and
//     business failures end in a flash message and a redirect; validation
//     failures re-render the form with field messages.
//   - Errors are tagged with go-errors. A missing record renders the 404
//     page, any other store failure renders the 503 page.
//
// Storage:
//   - Administrators is a bun store with unique indexes on username and
//     email. Status changes are conditional writes so a record already in
//     the target status is never touched and ErrStatusUnchanged is returned.
//   - Password resets write a marker to the password hash that no password
//     can match, store a PasswordReset request and hand it to a
//     ResetNotifier after commit.
//
// Activity sinks:
//   - ActivitySink receives an event for every lifecycle mutation. Sinks run
//     best-effort, errors are logged.
package admins
