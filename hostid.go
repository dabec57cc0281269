package optics

import "github.com/google/uuid"

// randomHostID generates a default host identifier when a Poller isn't
// given one explicitly via WithHost. rng is unused here (uuid.New draws
// from crypto/rand internally) but kept as a parameter so a future
// deterministic rng-backed ID scheme can slot in without changing call
// sites.
func randomHostID(rng randSource) string {
	return uuid.New().String()
}
