package store

import "time"

// SnapshotQuery describes one recorded fetch.
type SnapshotQuery struct {
	Profile   string
	QueryKey  string
	Source    string
	Label     string
	StartDate string
	EndDate   string
	FetchedAt time.Time
}

// SnapshotRow is a raw report row as it was returned by the source.
type SnapshotRow struct {
	Position   int
	Dimensions []string
	Metrics    []string
}
