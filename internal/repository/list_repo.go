package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/domain"
	"gorm.io/gorm"
)

// ListRepository handles reading list and entry persistence.
type ListRepository struct {
	db *gorm.DB
}

// NewListRepository creates a new ListRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ListRepository: repository instance bound to db.
func NewListRepository(db *gorm.DB) *ListRepository {
	return &ListRepository{db: db}
}

// Create inserts a list together with any entries it carries.
func (r *ListRepository) Create(ctx context.Context, list *domain.ReadingList) error {
	return r.db.WithContext(ctx).Create(list).Error
}

// GetByID retrieves a list without its entries.
// Returns domain.ErrListNotFound when no such list exists.
func (r *ListRepository) GetByID(ctx context.Context, id uint) (*domain.ReadingList, error) {
	var list domain.ReadingList
	if err := r.db.WithContext(ctx).First(&list, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListNotFound
		}
		return nil, err
	}
	return &list, nil
}

// ListEntries returns the entries of a list in insertion order.
func (r *ListRepository) ListEntries(ctx context.Context, listID uint) ([]domain.ReadingListEntry, error) {
	if _, err := r.GetByID(ctx, listID); err != nil {
		return nil, err
	}
	var entries []domain.ReadingListEntry
	if err := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

// AddEntry appends an entry to an existing list.
func (r *ListRepository) AddEntry(ctx context.Context, entry *domain.ReadingListEntry) error {
	if _, err := r.GetByID(ctx, entry.ListID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// DeleteEntry removes an entry from a list. Deleting an absent entry is not an error.
func (r *ListRepository) DeleteEntry(ctx context.Context, listID, entryID uint) error {
	return r.db.WithContext(ctx).
		Where("list_id = ? AND id = ?", listID, entryID).
		Delete(&domain.ReadingListEntry{}).Error
}
