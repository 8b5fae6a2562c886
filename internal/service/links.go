package service

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Victorious-hub/Open-Graph/internal/db"
	"github.com/Victorious-hub/Open-Graph/internal/lock"
	"github.com/Victorious-hub/Open-Graph/internal/models"
)

type (
	Enricher interface {
		Enrich(ctx context.Context, url string) (*models.LinkMetadata, error)
	}

	// LinkUpdate replaces every editable field of a link.
	LinkUpdate struct {
		LinkURL     *string
		Title       *string
		Description *string
		Image       *string
		LinkType    models.LinkType
	}

	LinkFilter struct {
		Page
		Type         *models.LinkType
		CollectionID *uint64
	}

	Links struct {
		db       *gorm.DB
		enricher Enricher
		locker   lock.Locker
		logger   *zap.SugaredLogger
	}
)

func NewLinks(db *gorm.DB, enricher Enricher, locker lock.Locker, l *zap.SugaredLogger) *Links {
	return &Links{
		db:       db,
		enricher: enricher,
		locker:   locker,
		logger:   l,
	}
}

// CreateLink enriches url and stores it for the owner. The per-(owner, url)
// lock is held from the existence check until the row is committed; the
// unique index on (user_id, link_url) still has the final word.
func (s *Links) CreateLink(ctx context.Context, ownerID uint64, url string) (*db.Link, error) {
	unlock, err := s.locker.Lock(ctx, lock.LinkKey(ownerID, url))
	if err != nil {
		return nil, errors.Wrap(err, "acquire link lock")
	}
	defer unlock()

	var count int64
	res := s.db.WithContext(ctx).Model(&db.Link{}).
		Where("user_id = ? AND link_url = ?", ownerID, url).
		Count(&count)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "check link exists")
	}
	if count > 0 {
		return nil, ErrDuplicateLink
	}

	meta, err := s.enricher.Enrich(ctx, url)
	if err != nil {
		s.logger.Infow("link enrichment failed", "user_id", ownerID, "url", url, "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model := db.Link{
		LinkURL:     &url,
		Title:       meta.Title,
		Description: meta.Description,
		Image:       meta.Image,
		LinkType:    meta.LinkType,
		UserID:      ownerID,
	}
	res = s.db.WithContext(ctx).Create(&model)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateLink
		}
		return nil, errors.Wrap(res.Error, "create link")
	}

	s.logger.Infow("link created", "id", model.ID, "user_id", ownerID, "link_type", model.LinkType)
	return &model, nil
}

// UpdateLink overwrites the link fields with upd. It does not re-fetch the page.
func (s *Links) UpdateLink(ctx context.Context, ownerID, linkID uint64, upd LinkUpdate) (*db.Link, error) {
	linkType := upd.LinkType
	if linkType == "" {
		linkType = models.LinkTypeWebsite
	}

	model := db.Link{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedLink(tx, ownerID, linkID, &model); err != nil {
			return err
		}
		if sameURL(model.LinkURL, upd.LinkURL) {
			return ErrDuplicateLink
		}

		res := tx.Model(&db.Link{}).
			Where("id = ? AND user_id = ?", linkID, ownerID).
			Select("link_url", "title", "description", "image", "link_type", "updated_at").
			Updates(db.Link{
				LinkURL:     upd.LinkURL,
				Title:       upd.Title,
				Description: upd.Description,
				Image:       upd.Image,
				LinkType:    linkType,
			})
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return ErrDuplicateLink
			}
			return errors.Wrap(res.Error, "update link")
		}

		return ownedLink(tx, ownerID, linkID, &model)
	})
	if err != nil {
		return nil, err
	}

	return &model, nil
}

// DeleteLink removes the link and its collection memberships.
func (s *Links) DeleteLink(ctx context.Context, ownerID, linkID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedLink(tx, ownerID, linkID, &db.Link{}); err != nil {
			return err
		}
		if res := tx.Where("link_id = ?", linkID).Delete(&db.LinkCollection{}); res.Error != nil {
			return errors.Wrap(res.Error, "delete link memberships")
		}
		if res := tx.Where("id = ? AND user_id = ?", linkID, ownerID).Delete(&db.Link{}); res.Error != nil {
			return errors.Wrap(res.Error, "delete link")
		}
		return nil
	})
}

func (s *Links) GetLink(ctx context.Context, ownerID, linkID uint64) (*db.Link, error) {
	model := db.Link{}
	if err := ownedLink(s.db.WithContext(ctx), ownerID, linkID, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

// ListLinks returns one page of the owner's links and the total number of
// links matching the filter.
func (s *Links) ListLinks(ctx context.Context, ownerID uint64, f LinkFilter) ([]db.Link, int64, error) {
	page := f.Page.normalize()

	where := squirrel.And{squirrel.Eq{"l.user_id": ownerID}}
	if f.Type != nil {
		where = append(where, squirrel.Eq{"l.link_type": *f.Type})
	}
	if f.CollectionID != nil {
		where = append(where, squirrel.Eq{"lc.collection_id": *f.CollectionID})
	}
	pred, args, err := where.ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, "build sql")
	}

	q := s.db.WithContext(ctx).Table("links AS l")
	if f.CollectionID != nil {
		q = q.Joins("JOIN link_collections lc ON lc.link_id = l.id")
	}
	q = q.Where(pred, args...).Session(&gorm.Session{})

	var total int64
	if res := q.Count(&total); res.Error != nil {
		return nil, 0, errors.Wrap(res.Error, "count links")
	}

	links := make([]db.Link, 0)
	res := q.Select("l.*").
		Order("l.id").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&links)
	if res.Error != nil {
		return nil, 0, errors.Wrap(res.Error, "scan")
	}

	return links, total, nil
}

func ownedLink(tx *gorm.DB, ownerID, linkID uint64, dst *db.Link) error {
	res := tx.Where("id = ? AND user_id = ?", linkID, ownerID).First(dst)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(res.Error, "get link")
	}
	return nil
}

func sameURL(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
