package domain

import (
	"strconv"
	"time"
)

// ReadingList is a named, user-curated collection of pages from any number of wikis.
type ReadingList struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	Name        string             `gorm:"type:text;not null" json:"name"`
	Description string             `gorm:"type:text" json:"description"`
	Entries     []ReadingListEntry `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE" json:"entries,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// TableName returns the database table name for ReadingList.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (ReadingList) TableName() string {
	return "reading_lists"
}

// ReadingListEntry is one page saved to a list. Exactly one of Title and
// PageID is meaningful; PageID is used when Title is empty.
type ReadingListEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ListID    uint      `gorm:"not null;index:idx_reading_list_entries_list" json:"list_id"`
	Project   string    `gorm:"type:text;not null" json:"project"`
	Title     string    `gorm:"type:text" json:"title,omitempty"`
	PageID    int64     `json:"pageid,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (ReadingListEntry) TableName() string {
	return "reading_list_entries"
}

// Key returns the lookup key stored in the entry.
func (e ReadingListEntry) Key() PageKey {
	if e.Title == "" && e.PageID != 0 {
		return PageID(e.PageID)
	}
	return PageTitle(e.Title)
}

// Ref converts the entry to a PageRef carrying the entry row id.
func (e ReadingListEntry) Ref() PageRef {
	return PageRef{
		EntryID: strconv.FormatUint(uint64(e.ID), 10),
		Project: e.Project,
		Key:     e.Key(),
	}
}
