package workshop

import (
	"encoding/json"
	"fmt"
	"time"

	"twmods/core/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// recentWindow marks content updated within the last 7 days as "hot":
	// it changed recently and is assumed to change again soon.
	recentWindow = 7 * 24 * time.Hour
	// shortTTL applies to hot records.
	shortTTL = 12 * time.Hour
	// longTTL applies to everything else.
	longTTL = 7 * 24 * time.Hour
)

// IsValid reports whether a cached record is still fresh at the given time.
// The TTL depends on how recently the source item was updated: recently
// updated items are cached less aggressively. Expired records are treated as
// absent but never physically deleted.
func IsValid(rec CacheRecord, now time.Time) bool {
	age := now.Unix() - rec.FetchedAt

	ttl := longTTL
	if now.Unix()-rec.TimeUpdated < int64(recentWindow.Seconds()) {
		ttl = shortTTL
	}

	return age <= int64(ttl.Seconds())
}

// Cache is the durable workshop metadata cache backed by a SQL store.
type Cache struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewCache creates the cache and ensures its schema exists.
func NewCache(db *gorm.DB, logger *zap.Logger) (*Cache, error) {
	if err := db.AutoMigrate(&CacheRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate workshop cache schema: %w", err)
	}

	return &Cache{
		db:     db,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Get returns the cached record for a workshop id, or nil when the id is
// unknown or the record has expired.
func (c *Cache) Get(workshopID string) (*CacheRecord, error) {
	var rec CacheRecord
	err := c.db.Where("workshop_id = ?", workshopID).First(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache record %s: %w", workshopID, err)
	}

	if !IsValid(rec, c.now()) {
		return nil, nil
	}

	return &rec, nil
}

// GetBatch returns all still-valid cached records for the given ids.
func (c *Cache) GetBatch(workshopIDs []string) (map[string]CacheRecord, error) {
	result := make(map[string]CacheRecord, len(workshopIDs))
	if len(workshopIDs) == 0 {
		return result, nil
	}

	var recs []CacheRecord
	if err := c.db.Where("workshop_id IN ?", workshopIDs).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to read cache batch: %w", err)
	}

	now := c.now()
	for _, rec := range recs {
		if IsValid(rec, now) {
			result[rec.WorkshopID] = rec
		}
	}

	return result, nil
}

// Set upserts a single record.
func (c *Cache) Set(workshopID string, details FileDetails) error {
	rec := c.recordFrom(workshopID, details, c.now().Unix())
	if err := c.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to upsert cache record %s: %w", workshopID, err)
	}
	return nil
}

// SetBatch upserts all records inside one transaction so a crash mid-write
// cannot leave a partial catalog behind.
func (c *Cache) SetBatch(details map[string]FileDetails) error {
	if len(details) == 0 {
		return nil
	}

	fetchedAt := c.now().Unix()

	err := c.db.Transaction(func(tx *gorm.DB) error {
		for id, d := range details {
			rec := c.recordFrom(id, d, fetchedAt)
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert cache batch: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying store.
func (c *Cache) Close() error {
	return database.Close(c.db)
}

// recordFrom normalizes fetched details into a cache row.
func (c *Cache) recordFrom(workshopID string, details FileDetails, fetchedAt int64) CacheRecord {
	return NewRecord(workshopID, details, fetchedAt)
}

// NewRecord normalizes fetched details into a cache record. Missing titles
// default to "Unknown" and a missing update time to the fetch time. The
// comparison service uses it to merge freshly fetched details over cache
// hits without a read-back.
func NewRecord(workshopID string, details FileDetails, fetchedAt int64) CacheRecord {
	title := details.Title
	if title == "" {
		title = "Unknown"
	}

	timeUpdated := details.TimeUpdated
	if timeUpdated == 0 {
		timeUpdated = fetchedAt
	}

	tags := details.TagNames()
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		// Tag names are plain strings; marshal cannot realistically fail.
		tagsJSON = []byte("[]")
	}

	return CacheRecord{
		WorkshopID:  workshopID,
		Title:       title,
		TagsJSON:    string(tagsJSON),
		TimeUpdated: timeUpdated,
		FetchedAt:   fetchedAt,
	}
}
