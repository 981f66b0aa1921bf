/*
Package resilience provides a counted-failure escalator for self-healing
loops.

# Overview

An Escalator watches a stream of consecutive failures and answers each one
with an action. A single alert is raised when the streak reaches AlertAt; at
RecoverAt the caller is told to recover and the streak starts over. Any
success clears the streak.

# Usage

	esc := resilience.New("consumer", resilience.Settings{
		AlertAt:   3,
		RecoverAt: 5,
		OnStateChange: func(name string, from, to resilience.State) {
			log.Printf("escalator %s: %s -> %s", name, from, to)
		},
	})

	attempt, action := esc.Failure()
	switch action {
	case resilience.ActionAlert:
		// warn operators
	case resilience.ActionRecover:
		// reset shared state
	}

# States

	Normal --[AlertAt failures]-> Alerted --[RecoverAt failures]-> Recovering -> Normal
	   ^                             |
	   +----------[success]----------+
*/
package resilience
