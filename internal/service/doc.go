// Package service contains the application use cases: the folder and deck
// hierarchy, card management with generated audio, and the language catalog.
//
// Services receive their stores through a store.Transactor and decide the
// transaction boundaries themselves. Work that talks to the speech provider
// always runs outside of a database transaction; the results are written back
// in a short follow-up transaction.
//
// Learning and review sessions live in the session subpackage.
package service
