package redis

const (
	// KeyPrefix namespaces every key this service writes.
	KeyPrefix = "subguard:"
	// KeyCommitments is the hash of commitment id -> JSON record.
	KeyCommitments = KeyPrefix + "commitments"
)

// CommitmentsKey returns the Redis key of the commitment hash.
func CommitmentsKey() string {
	return KeyCommitments
}
