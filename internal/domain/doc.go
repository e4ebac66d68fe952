// Package domain contains the core business entities, value objects, and
// domain logic of the application: cards and their mastery state, decks,
// the folder hierarchy, languages and the fixed set of learning strategies.
// It is independent of any specific infrastructure or delivery mechanism.
package domain
