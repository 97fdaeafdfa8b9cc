// Package oracle provides the decision sources a ranking session can ask.
//
// Prompt asks a person on a terminal. Table, Sequence and Order answer from
// recorded or scripted data and back the scenario harness, replay and tests.
// Every oracle reports a missing answer as an error wrapping
// engine.ErrNoAnswer.
package oracle
