package domain

type SourceType string

const (
	SourceMedia  SourceType = "MEDIA"
	SourceClub   SourceType = "CLUB"
	SourceThread SourceType = "THREAD"
)

// AggregationScope selects the content an AI feature works on.
// Only one field is honored: thread, then club, then media.
type AggregationScope struct {
	MediaId  *MediaId  `json:"media_id,omitempty"`
	ClubId   *ClubId   `json:"club_id,omitempty"`
	ThreadId *ThreadId `json:"thread_id,omitempty"`
}

// AggregatedContent is built per request and never persisted.
type AggregatedContent struct {
	SourceType  SourceType `json:"source_type"`
	SourceId    int64      `json:"source_id"`
	SourceTitle string     `json:"source_title"`
	Text        string     `json:"-"`
	ItemCount   int        `json:"item_count"`
}
