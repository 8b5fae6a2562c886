package service

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Victorious-hub/Open-Graph/internal/db"
)

type (
	CollectionInput struct {
		Name        string
		Description string
	}

	Collections struct {
		db     *gorm.DB
		logger *zap.SugaredLogger
	}
)

func NewCollections(db *gorm.DB, l *zap.SugaredLogger) *Collections {
	return &Collections{
		db:     db,
		logger: l,
	}
}

func (s *Collections) CreateCollection(ctx context.Context, ownerID uint64, in CollectionInput) (*db.Collection, error) {
	model := db.Collection{
		Name:        in.Name,
		Description: in.Description,
		UserID:      ownerID,
	}
	if res := s.db.WithContext(ctx).Create(&model); res.Error != nil {
		return nil, errors.Wrap(res.Error, "create collection")
	}
	return &model, nil
}

func (s *Collections) UpdateCollection(ctx context.Context, ownerID, collectionID uint64, in CollectionInput) (*db.Collection, error) {
	model := db.Collection{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedCollection(tx, ownerID, collectionID, &model); err != nil {
			return err
		}
		res := tx.Model(&db.Collection{}).
			Where("id = ? AND user_id = ?", collectionID, ownerID).
			Select("name", "description", "updated_at").
			Updates(db.Collection{Name: in.Name, Description: in.Description})
		if res.Error != nil {
			return errors.Wrap(res.Error, "update collection")
		}
		return ownedCollection(tx, ownerID, collectionID, &model)
	})
	if err != nil {
		return nil, err
	}
	return &model, nil
}

// DeleteCollection removes the collection and its memberships. Member links stay.
func (s *Collections) DeleteCollection(ctx context.Context, ownerID, collectionID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedCollection(tx, ownerID, collectionID, &db.Collection{}); err != nil {
			return err
		}
		if res := tx.Where("collection_id = ?", collectionID).Delete(&db.LinkCollection{}); res.Error != nil {
			return errors.Wrap(res.Error, "delete collection memberships")
		}
		if res := tx.Where("id = ? AND user_id = ?", collectionID, ownerID).Delete(&db.Collection{}); res.Error != nil {
			return errors.Wrap(res.Error, "delete collection")
		}
		return nil
	})
}

func (s *Collections) GetCollection(ctx context.Context, ownerID, collectionID uint64) (*db.Collection, error) {
	model := db.Collection{}
	if err := ownedCollection(s.db.WithContext(ctx), ownerID, collectionID, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

func (s *Collections) ListCollections(ctx context.Context, ownerID uint64, p Page) ([]db.Collection, int64, error) {
	p = p.normalize()
	q := s.db.WithContext(ctx).Model(&db.Collection{}).Where("user_id = ?", ownerID).Session(&gorm.Session{})

	var total int64
	if res := q.Count(&total); res.Error != nil {
		return nil, 0, errors.Wrap(res.Error, "count collections")
	}

	collections := make([]db.Collection, 0)
	if res := q.Order("id").Limit(p.Limit).Offset(p.Offset).Find(&collections); res.Error != nil {
		return nil, 0, errors.Wrap(res.Error, "list collections")
	}
	return collections, total, nil
}

// CreateLinkCollection adds a link to a collection. Both must belong to the owner.
func (s *Collections) CreateLinkCollection(ctx context.Context, ownerID, linkID, collectionID uint64) (*db.LinkCollection, error) {
	model := db.LinkCollection{
		LinkID:       linkID,
		CollectionID: collectionID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedLink(tx, ownerID, linkID, &db.Link{}); err != nil {
			return err
		}
		if err := ownedCollection(tx, ownerID, collectionID, &db.Collection{}); err != nil {
			return err
		}
		if res := tx.Create(&model); res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return ErrDuplicateMembership
			}
			return errors.Wrap(res.Error, "create link collection")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("link added to collection", "link_id", linkID, "collection_id", collectionID, "user_id", ownerID)
	return &model, nil
}

// ListLinkCollections returns memberships whose collection belongs to the owner.
func (s *Collections) ListLinkCollections(ctx context.Context, ownerID uint64, p Page) ([]db.LinkCollection, int64, error) {
	p = p.normalize()

	pred, args, err := squirrel.Eq{"c.user_id": ownerID}.ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, "build sql")
	}
	q := s.db.WithContext(ctx).Table("link_collections AS lc").
		Joins("JOIN collections c ON c.id = lc.collection_id").
		Where(pred, args...).
		Session(&gorm.Session{})

	var total int64
	if res := q.Count(&total); res.Error != nil {
		return nil, 0, errors.Wrap(res.Error, "count link collections")
	}

	memberships := make([]db.LinkCollection, 0)
	res := q.Select("lc.*").
		Order("lc.id").
		Limit(p.Limit).
		Offset(p.Offset).
		Find(&memberships)
	if res.Error != nil {
		return nil, 0, errors.Wrap(res.Error, "scan")
	}
	return memberships, total, nil
}

func ownedCollection(tx *gorm.DB, ownerID, collectionID uint64, dst *db.Collection) error {
	res := tx.Where("id = ? AND user_id = ?", collectionID, ownerID).First(dst)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(res.Error, "get collection")
	}
	return nil
}
