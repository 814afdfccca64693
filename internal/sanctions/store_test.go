package sanctions

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func sampleEntities() []Entity {
	return []Entity{
		{
			Source:    SourceOFAC,
			ID:        "36",
			Name:      "Pegah Aluminum Co",
			Type:      "Entity",
			Programs:  []string{"IRAN"},
			Addresses: []string{"Tehran, Iran"},
			Remarks:   " [RISK WARNING: Location match Iran]",
		},
		{
			Source:    SourceOFAC,
			ID:        "N/A",
			Name:      "Unknown",
			Type:      "Vessel",
			Programs:  []string{},
			Addresses: []string{},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", DefaultDatabaseFile)
	db := NewDatabase(sampleEntities(), time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	if err := Save(path, db); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.LastUpdated != "2026-01-02 03:04:05" {
		t.Fatalf("unexpected last_updated %q", got.LastUpdated)
	}
	if !reflect.DeepEqual(got.Entities, db.Entities) {
		t.Fatalf("entities differ after round trip:\n got %#v\nwant %#v", got.Entities, db.Entities)
	}
	if !reflect.DeepEqual(got.RiskDefinitions, db.RiskDefinitions) {
		t.Fatalf("risk definitions differ after round trip")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away, stat err=%v", err)
	}
}

func TestSaveWritesEmptyListsNotNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	db := NewDatabase([]Entity{{Source: SourceOFAC, ID: "1", Name: "X", Type: "Entity", Programs: []string{}, Addresses: []string{}}}, time.Now())
	if err := Save(path, db); err != nil {
		t.Fatalf("Save: %v", err)
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(blob), "null") {
		t.Fatalf("expected no null fields, got %s", blob)
	}
}

func TestLoadOrEmptyMissingFileIsDegraded(t *testing.T) {
	db, degraded, err := LoadOrEmpty(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadOrEmpty: %v", err)
	}
	if !degraded {
		t.Fatal("expected degraded mode for missing database")
	}
	if len(db.Entities) != 0 {
		t.Fatalf("expected empty entity set, got %d", len(db.Entities))
	}
}

func TestLoadOrEmptyCorruptFileReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	db, degraded, err := LoadOrEmpty(path)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !degraded || len(db.Entities) != 0 {
		t.Fatal("expected empty degraded database alongside the error")
	}
}

func TestLoadFillsMissingListFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	raw := `{"last_updated":"x","entities":[{"source":"US_OFAC","name":"A"}]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	db, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	e := db.Entities[0]
	if e.ID != DefaultID || e.Programs == nil || e.Addresses == nil {
		t.Fatalf("expected defaults on load, got %#v", e)
	}
}
