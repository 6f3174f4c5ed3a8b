package store

import "time"

// NormalizeTimestamp converts the timestamp representations found in planner
// documents into a single *time.Time. Documents written by different client
// versions carry either a native timestamp, an epoch-milliseconds number, or
// a {seconds, nanoseconds} pair. Returns nil for anything else.
func NormalizeTimestamp(v interface{}) *time.Time {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return &t
	case *time.Time:
		return t
	case int64:
		return fromMillis(t)
	case int:
		return fromMillis(int64(t))
	case float64:
		return fromMillis(int64(t))
	case map[string]interface{}:
		secs, ok := toInt64(t["seconds"])
		if !ok {
			return nil
		}
		nanos, _ := toInt64(t["nanoseconds"])
		ts := time.Unix(secs, nanos)
		return &ts
	default:
		return nil
	}
}

func fromMillis(ms int64) *time.Time {
	if ms <= 0 {
		return nil
	}
	ts := time.UnixMilli(ms)
	return &ts
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
