package workshop

import "encoding/json"

// Tag is one workshop tag as returned by the Steam API.
type Tag struct {
	Tag string `json:"tag"`
}

// FileDetails is the per-item payload of the GetPublishedFileDetails call.
type FileDetails struct {
	PublishedFileID string `json:"publishedfileid"`
	Title           string `json:"title"`
	Tags            []Tag  `json:"tags"`
	TimeUpdated     int64  `json:"time_updated"`
}

// TagNames flattens the tag objects into their names.
func (d FileDetails) TagNames() []string {
	names := make([]string, 0, len(d.Tags))
	for _, t := range d.Tags {
		names = append(names, t.Tag)
	}
	return names
}

// apiResponse is the envelope of the Steam API response.
type apiResponse struct {
	Response struct {
		Result               int           `json:"result"`
		ResultCount          int           `json:"resultcount"`
		PublishedFileDetails []FileDetails `json:"publishedfiledetails"`
	} `json:"response"`
}

// CacheRecord represents the 'workshop_cache' table: one durable row of
// workshop metadata per workshop id, overwritten on every successful fetch.
type CacheRecord struct {
	WorkshopID  string `gorm:"column:workshop_id;primaryKey"`
	Title       string `gorm:"column:title;not null"`
	TagsJSON    string `gorm:"column:tags_json;not null"`
	TimeUpdated int64  `gorm:"column:time_updated;not null"`
	FetchedAt   int64  `gorm:"column:fetched_at;not null;index"`
}

// TableName overrides the table name used by GORM.
func (CacheRecord) TableName() string {
	return "workshop_cache"
}

// Tags decodes the serialized tag list. A corrupt column degrades to an
// empty list rather than failing the enrichment.
func (r CacheRecord) Tags() []string {
	var tags []string
	if err := json.Unmarshal([]byte(r.TagsJSON), &tags); err != nil {
		return nil
	}
	return tags
}
