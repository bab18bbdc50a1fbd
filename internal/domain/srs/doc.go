// Package srs implements the Leitner scheduler: the level transition applied
// when a card is rated and the rule that picks which card to review next.
// Everything here is pure; callers pass the clock in.
package srs
