package dynamodb

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// The store sorts each partition by a single sort key in one fixed
// direction, so the clustering order lives in the key encoding. The
// creation timestamp is inverted (max int64 nanos minus the instant) and
// zero-padded to fixed width: an ascending scan then yields createdAt
// descending with postId ascending as the tiebreaker, matching the
// posts_by_user clustering order.

const keySeparator = "#"

// invertedTimestamp encodes t so later instants sort first.
func invertedTimestamp(t time.Time) string {
	return fmt.Sprintf("%020d", math.MaxInt64-t.UnixNano())
}

// postSortKey builds the posts_by_user sort key: inverted-createdAt,
// then postId.
func postSortKey(createdAt time.Time, postID string) string {
	return invertedTimestamp(createdAt) + keySeparator + postID
}

// encodeStatus escapes the separator inside a caller-supplied status so
// the status component of a composite key never contains a bare "#". A
// status such as "REVIEW#OLD" would otherwise share the begins_with
// prefix of status "REVIEW".
func encodeStatus(status string) string {
	status = strings.ReplaceAll(status, "%", "%25")
	return strings.ReplaceAll(status, keySeparator, "%23")
}

// statusSortKey builds the posts_by_user_status sort key: status
// ascending, then inverted-createdAt, then postId.
func statusSortKey(status string, createdAt time.Time, postID string) string {
	return encodeStatus(status) + keySeparator + invertedTimestamp(createdAt) + keySeparator + postID
}

// statusKeyPrefix bounds one status slice of a partition for
// begins_with queries.
func statusKeyPrefix(status string) string {
	return encodeStatus(status) + keySeparator
}

// timeToAttr stores instants at nanosecond precision so a key rebuilt
// from a read row matches the stored sort key byte for byte.
func timeToAttr(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func attrToTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// QualifiedTable prefixes a logical view name with the namespace.
func QualifiedTable(namespace, table string) string {
	if namespace == "" {
		return table
	}
	return strings.TrimSuffix(namespace, "_") + "_" + table
}
