package models

// ContentType identifies one of the parallel content tables. All tables share
// the ContentItem shape; "banned" is special in that its public routes
// aggregate rows from the other tables instead of serving its own.
type ContentType string

const (
	TypeAsian   ContentType = "asian"
	TypeWestern ContentType = "western"
	TypeBanned  ContentType = "banned"
	TypeUnknown ContentType = "unknown"
	TypeVip     ContentType = "vip"
)

// BannedCategory is the sentinel category value that flags a row as belonging
// to the banned aggregation regardless of which table it lives in.
const BannedCategory = "Banned"

var tableNames = map[ContentType]string{
	TypeAsian:   "asian_contents",
	TypeWestern: "western_contents",
	TypeBanned:  "banned_contents",
	TypeUnknown: "unknown_contents",
	TypeVip:     "vip_contents",
}

func (t ContentType) Table() string {
	return tableNames[t]
}

func (t ContentType) Valid() bool {
	_, ok := tableNames[t]
	return ok
}

// AllTypes returns the content types in their canonical order, the order
// cross-table search results are tagged in.
func AllTypes() []ContentType {
	return []ContentType{TypeAsian, TypeWestern, TypeBanned, TypeUnknown, TypeVip}
}

// BannedSources lists the tables scanned by the banned aggregator.
func BannedSources() []ContentType {
	return []ContentType{TypeAsian, TypeWestern}
}
