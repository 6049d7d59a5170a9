package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRow is the Postgres shape of a document: path key, parent
// collection for queries, fields as jsonb.
type DocumentRow struct {
	Path       string `gorm:"primaryKey;size:512"`
	Collection string `gorm:"index;size:512"`
	Data       []byte `gorm:"type:jsonb"`
}

func (DocumentRow) TableName() string { return "documents" }

// GormStore adapts a Postgres database to the Store contract. Batches
// ride one transaction; watchers are woken only after commit, so a
// subscription never observes a half-applied batch.
type GormStore struct {
	db  *gorm.DB
	bus *watchBus
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, bus: newWatchBus()}
}

func (g *GormStore) Get(ctx context.Context, path string) (Document, error) {
	var row DocumentRow
	err := g.db.WithContext(ctx).First(&row, "path = ?", path).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Document{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Document{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return rowToDocument(row)
}

func (g *GormStore) List(ctx context.Context, collection string) ([]Document, error) {
	var rows []DocumentRow
	err := g.db.WithContext(ctx).Where("collection = ?", collection).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := rowToDocument(row)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (g *GormStore) QueryWhere(ctx context.Context, collection, field string, equals any) ([]Document, error) {
	var rows []DocumentRow
	err := g.db.WithContext(ctx).
		Where("collection = ? AND data ->> ? = ?", collection, field, fmt.Sprint(equals)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := rowToDocument(row)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (g *GormStore) BatchWrite(ctx context.Context, ops []WriteOp) error {
	if len(ops) == 0 {
		return nil
	}
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			if err := applyOp(tx, op); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	paths := make([]string, len(ops))
	for i, op := range ops {
		paths[i] = op.Path
	}
	g.bus.notify(paths)
	return nil
}

func applyOp(tx *gorm.DB, op WriteOp) error {
	switch op.Kind {
	case OpSet:
		raw, err := json.Marshal(op.Data)
		if err != nil {
			return err
		}
		row := DocumentRow{Path: op.Path, Collection: Collection(op.Path), Data: raw}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"data"}),
		}).Create(&row).Error

	case OpUpdate:
		var row DocumentRow
		if err := tx.First(&row, "path = ?", op.Path).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, op.Path)
			}
			return err
		}
		var data map[string]any
		if err := json.Unmarshal(row.Data, &data); err != nil {
			return err
		}
		for k, v := range op.Data {
			data[k] = v
		}
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		return tx.Model(&DocumentRow{}).Where("path = ?", op.Path).
			Update("data", raw).Error

	case OpDelete:
		return tx.Delete(&DocumentRow{}, "path = ?", op.Path).Error

	default:
		return fmt.Errorf("store: unknown op kind %d", op.Kind)
	}
}

func (g *GormStore) Subscribe(path string) (*Subscription, error) {
	return g.bus.subscribe(path, g.loadSnapshot), nil
}

func (g *GormStore) loadSnapshot(path string) Snapshot {
	snap := Snapshot{Path: path}
	if IsCollection(path) {
		var rows []DocumentRow
		if err := g.db.Where("collection = ?", path).Find(&rows).Error; err != nil {
			return snap
		}
		for _, row := range rows {
			if doc, err := rowToDocument(row); err == nil {
				snap.Docs = append(snap.Docs, doc)
			}
		}
		snap.Exists = len(snap.Docs) > 0
		return snap
	}

	var row DocumentRow
	if err := g.db.First(&row, "path = ?", path).Error; err != nil {
		return snap
	}
	doc, err := rowToDocument(row)
	if err != nil {
		return snap
	}
	snap.Exists = true
	snap.Docs = []Document{doc}
	return snap
}

func rowToDocument(row DocumentRow) (Document, error) {
	var data map[string]any
	if err := json.Unmarshal(row.Data, &data); err != nil {
		return Document{}, fmt.Errorf("%w: corrupt document %s: %v", ErrInconsistent, row.Path, err)
	}
	return Document{Path: row.Path, Data: data}, nil
}
