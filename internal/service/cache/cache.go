package cache

import "time"

// BytesCache is a minimal cache API storing raw bytes with TTL. Used
// to memoize forecast and anomaly responses between training runs.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
