package sanctions

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the database as one indented JSON document. The file is written
// to a sibling temp path and renamed into place so readers never see a
// partial document.
func Save(path string, db Database) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	blob, err := json.MarshalIndent(db, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal database: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Load reads a database document. A missing file is reported with
// os.ErrNotExist so callers can fall back to an empty entity set.
func Load(path string) (Database, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return Database{}, err
	}
	var db Database
	if err := json.Unmarshal(blob, &db); err != nil {
		return Database{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if db.Entities == nil {
		db.Entities = []Entity{}
	}
	if db.RiskDefinitions == nil {
		db.RiskDefinitions = map[string]RiskCountry{}
	}
	for i := range db.Entities {
		normalizeEntity(&db.Entities[i])
	}
	return db, nil
}

// LoadOrEmpty is Load for screening sessions: a missing or unreadable file
// yields an empty database and degraded=true instead of an error.
func LoadOrEmpty(path string) (db Database, degraded bool, err error) {
	db, err = Load(path)
	if err == nil {
		return db, len(db.Entities) == 0, nil
	}
	empty := Database{RiskDefinitions: HighRiskCountries(), Entities: []Entity{}}
	if errors.Is(err, os.ErrNotExist) {
		return empty, true, nil
	}
	return empty, true, err
}

func normalizeEntity(e *Entity) {
	if e.Programs == nil {
		e.Programs = []string{}
	}
	if e.Addresses == nil {
		e.Addresses = []string{}
	}
	if e.ID == "" {
		e.ID = DefaultID
	}
	if e.Name == "" {
		e.Name = DefaultName
	}
}
