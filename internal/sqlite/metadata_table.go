package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Novaotic/craft-compass/pkg/types"
)

var _ types.MetadataTable = (*metadataTable)(nil)

type metadataTable struct {
	s *scope
}

const metadataColumns = "id, item_id, key, value"

func scanMetadata(r rowScanner) (*types.Metadata, error) {
	var m types.Metadata
	if err := r.Scan(&m.ID, &m.ItemID, &m.Key, &m.Value); err != nil {
		return nil, err
	}
	return &m, nil
}

func requireItem(q querier, itemID int64) error {
	ok, err := exists(q, "SELECT 1 FROM items WHERE id = ?", itemID)
	if err != nil {
		return fmt.Errorf("checking item existence: %w", err)
	}
	if !ok {
		return types.NotFound(types.EntityItem, itemID)
	}
	return nil
}

// Set creates the pair or replaces its value.
func (mt *metadataTable) Set(itemID int64, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return types.Invalid("key", "is required")
	}
	return mt.s.atomically(func(q querier) error {
		if err := requireItem(q, itemID); err != nil {
			return err
		}
		_, err := q.Exec(
			`INSERT INTO item_metadata (item_id, key, value) VALUES (?, ?, ?)
            ON CONFLICT (item_id, key) DO UPDATE SET value = excluded.value`,
			itemID, key, value,
		)
		if err != nil {
			return fmt.Errorf("setting metadata %q: %w", key, translate(err, types.EntityMetadata, key))
		}
		return nil
	})
}

// Get returns one pair; NotFoundError names the key when it is absent.
func (mt *metadataTable) Get(itemID int64, key string) (*types.Metadata, error) {
	q, err := mt.s.conn()
	if err != nil {
		return nil, err
	}
	m, err := scanMetadata(q.QueryRow(
		"SELECT "+metadataColumns+" FROM item_metadata WHERE item_id = ? AND key = ?", itemID, key,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NotFoundKey(types.EntityMetadata, itemID, key)
	}
	if err != nil {
		return nil, fmt.Errorf("getting metadata %q: %w", key, err)
	}
	return m, nil
}

// ForItem lists an item's pairs ordered by key.
func (mt *metadataTable) ForItem(itemID int64) ([]*types.Metadata, error) {
	q, err := mt.s.conn()
	if err != nil {
		return nil, err
	}
	if err := requireItem(q, itemID); err != nil {
		return nil, err
	}
	rows, err := q.Query(
		"SELECT "+metadataColumns+" FROM item_metadata WHERE item_id = ? ORDER BY key", itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing metadata: %w", err)
	}
	result, err := collect(rows, scanMetadata)
	if err != nil {
		return nil, fmt.Errorf("scanning metadata: %w", err)
	}
	return result, nil
}

// Delete removes one pair. A missing key is not an error.
func (mt *metadataTable) Delete(itemID int64, key string) error {
	q, err := mt.s.conn()
	if err != nil {
		return err
	}
	if _, err := q.Exec("DELETE FROM item_metadata WHERE item_id = ? AND key = ?", itemID, key); err != nil {
		return fmt.Errorf("deleting metadata %q: %w", key, err)
	}
	return nil
}

// DeleteAll removes every pair of an item.
func (mt *metadataTable) DeleteAll(itemID int64) error {
	q, err := mt.s.conn()
	if err != nil {
		return err
	}
	if _, err := q.Exec("DELETE FROM item_metadata WHERE item_id = ?", itemID); err != nil {
		return fmt.Errorf("deleting metadata for item %d: %w", itemID, err)
	}
	return nil
}
