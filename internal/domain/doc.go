// Package domain contains the core learning entities of the service: cards as
// seen by the scheduler, per-user review state, lesson progress and the pure
// merge rules that reconcile progress snapshots coming from several devices.
// It has no knowledge of storage or transport.
package domain
