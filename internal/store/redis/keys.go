package redis

const (
	// KeyPrefixStats is the prefix for every statistics key
	KeyPrefixStats = "timejump:stats:"
	// KeyKindCounters is the hash of decision counts per rule kind
	KeyKindCounters = KeyPrefixStats + "kinds"
	// KeyURLCounters is the hash of decision counts per destination URL
	KeyURLCounters = KeyPrefixStats + "urls"
	// KeyLastDecision holds the JSON encoded most recent decision
	KeyLastDecision = KeyPrefixStats + "last"
)

// KindCountersKey returns the Redis key for the per-kind counters
func KindCountersKey() string {
	return KeyKindCounters
}

// URLCountersKey returns the Redis key for the per-URL counters
func URLCountersKey() string {
	return KeyURLCounters
}

// LastDecisionKey returns the Redis key for the last decision
func LastDecisionKey() string {
	return KeyLastDecision
}
