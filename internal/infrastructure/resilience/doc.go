/*
Package resilience provides the circuit breaker used by the bridge client.

# Overview

A remote trussfs bridge can disappear or start failing wholesale. The
breaker stops a client from hammering it: after enough transport failures
calls fail fast with ErrCircuitOpen until Timeout passes, then a few trial
calls decide whether to close the circuit again.

Domain failures such as a missing file or a stale handle are answers, not
outages. Settings.IsSuccessful lets the caller count them as successes.

# Usage

	breaker := resilience.New("bridge", resilience.Settings{
		MaxRequests: 2,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool { return !isOutage(err) },
	})

	info, err := resilience.Call(breaker, func() (Info, error) {
		return fetch(ctx)
	})

# States

	Closed --[ReadyToTrip]-> Open --[Timeout]-> Half-Open --[MaxRequests successes]-> Closed
	                                               |
	                                           [failure]
	                                               v
	                                             Open
*/
package resilience
