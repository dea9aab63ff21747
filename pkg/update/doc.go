// Package update decides whether a pinned CEF binary version is current.
//
// It does not fetch anything. Callers hand it an already decoded index and
// the pinned version string; the package applies the release selection
// policy and compares the result against the pin.
//
// Selection policy
//   - Entries of the main platform are walked newest-first; the first entry
//     that survives every filter wins.
//   - An entry is skipped when its channel is not exactly the policy channel
//     ("stable"), when any of its files carries the beta marker ("_beta") in
//     its name, or when a required platform does not publish the identical
//     version string.
//
// Version model
//   - Pinned and selected versions are compared as opaque strings; equality
//     is the only thing that decides the outcome.
//   - For messaging only, the numeric MAJOR.MINOR[.PATCH] prefix (everything
//     before the first "+") is compared to tell an upgrade from a downgrade.
package update
