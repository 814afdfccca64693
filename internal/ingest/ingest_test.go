package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/joelkehle/sanctionguard/internal/sanctions"
)

const sampleFeed = `<?xml version="1.0" standalone="yes"?>
<sdnList xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns="http://tempuri.org/sdnList.xsd">
  <publshInformation><Publish_Date>10/01/2026</Publish_Date></publshInformation>
  <sdnEntry>
    <uid>36</uid>
    <lastName>PEGAH ALUMINUM CO</lastName>
    <sdnType>Entity</sdnType>
    <programList><program>IRAN</program><program>NPWMD</program></programList>
    <addressList>
      <address><uid>25</uid><city>Tehran</city><country>Iran</country></address>
      <address><uid>26</uid><city>Isfahan</city><country>Iran</country></address>
    </addressList>
  </sdnEntry>
  <sdnEntry>
    <uid>173</uid>
    <firstName>Jane</firstName>
    <lastName>DOE</lastName>
    <sdnType>Individual</sdnType>
    <remarks>DOB 1970</remarks>
    <addressList>
      <address><country>France</country></address>
    </addressList>
  </sdnEntry>
  <sdnEntry>
    <uid>200</uid>
    <firstName>Solo</firstName>
  </sdnEntry>
  <sdnEntry>
  </sdnEntry>
</sdnList>`

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	f := NewFetcher(zap.NewNop(), WithTempDir(t.TempDir()))
	return NewBuilder(f, zap.NewNop())
}

func writeFeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sdn.xml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write feed: %v", err)
	}
	return path
}

func TestBuildFromFileExtractsEntities(t *testing.T) {
	b := newTestBuilder(t)
	db, err := b.BuildFromFile(context.Background(), writeFeed(t, sampleFeed))
	if err != nil {
		t.Fatalf("BuildFromFile: %v", err)
	}
	if len(db.Entities) != 4 {
		t.Fatalf("expected 4 entities, got %d", len(db.Entities))
	}
	if len(db.RiskDefinitions) != 8 {
		t.Fatalf("expected 8 risk definitions, got %d", len(db.RiskDefinitions))
	}

	pegah := db.Entities[0]
	if pegah.Name != "PEGAH ALUMINUM CO" {
		t.Fatalf("name with last only: %q", pegah.Name)
	}
	if pegah.Source != sanctions.SourceOFAC || pegah.ID != "36" || pegah.Type != "Entity" {
		t.Fatalf("unexpected header fields: %+v", pegah)
	}
	if got := strings.Join(pegah.Programs, ","); got != "IRAN,NPWMD" {
		t.Fatalf("programs: %q", got)
	}
	if got := strings.Join(pegah.Addresses, "|"); got != "Tehran, Iran|Isfahan, Iran" {
		t.Fatalf("addresses: %q", got)
	}
	if n := strings.Count(pegah.Remarks, "[RISK WARNING: Location match Iran]"); n != 2 {
		t.Fatalf("expected two warnings, got %d in %q", n, pegah.Remarks)
	}

	doe := db.Entities[1]
	if doe.Name != "DOE, Jane" {
		t.Fatalf("name with both parts: %q", doe.Name)
	}
	if doe.Remarks != "DOB 1970" {
		t.Fatalf("remarks should be untouched for non-risk country: %q", doe.Remarks)
	}
	if len(doe.Addresses) != 1 || doe.Addresses[0] != "France" {
		t.Fatalf("blank city should trim separator: %v", doe.Addresses)
	}

	if db.Entities[2].Name != "Solo" {
		t.Fatalf("name with first only: %q", db.Entities[2].Name)
	}

	empty := db.Entities[3]
	if empty.Name != sanctions.DefaultName || empty.ID != sanctions.DefaultID || empty.Type != sanctions.DefaultType {
		t.Fatalf("defaults not applied: %+v", empty)
	}
	if empty.Programs == nil || empty.Addresses == nil {
		t.Fatal("list fields must be present")
	}
}

func TestAddressWithoutCountryDefaultsToUnknown(t *testing.T) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(`<sdnEntry><lastName>X</lastName><addressList><address><city>Paris</city></address></addressList></sdnEntry>`); err != nil {
		t.Fatalf("read: %v", err)
	}
	e := extractEntity(doc.Root(), sanctions.HighRiskCountries())
	if len(e.Addresses) != 1 || e.Addresses[0] != "Paris, Unknown" {
		t.Fatalf("addresses: %v", e.Addresses)
	}
}

func TestFieldTextDefaults(t *testing.T) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(`<root><a> value </a><b></b></root>`); err != nil {
		t.Fatalf("read: %v", err)
	}
	root := doc.Root()
	cases := []struct {
		tag, def, want string
	}{
		{"a", "d", "value"},
		{"b", "d", "d"},
		{"missing", "d", "d"},
	}
	for _, tc := range cases {
		if got := fieldText(root, tc.tag, tc.def); got != tc.want {
			t.Fatalf("fieldText(%q) = %q, want %q", tc.tag, got, tc.want)
		}
	}
	if got := fieldText(nil, "a", "d"); got != "d" {
		t.Fatalf("nil parent: %q", got)
	}
}

func TestStripNamespaces(t *testing.T) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(`<ns:root xmlns:ns="urn:x"><ns:child><ns:leaf>v</ns:leaf></ns:child></ns:root>`); err != nil {
		t.Fatalf("read: %v", err)
	}
	StripNamespaces(doc.Root())
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		if el.Space != "" {
			t.Fatalf("element %s kept namespace %q", el.Tag, el.Space)
		}
		for _, c := range el.ChildElements() {
			walk(c)
		}
	}
	walk(doc.Root())
}

func TestBuildToFileDownloadsAndPersists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	tmpDir := t.TempDir()
	var last Progress
	f := NewFetcher(zap.NewNop(), WithTempDir(tmpDir), WithProgress(func(p Progress) { last = p }))
	b := NewBuilder(f, zap.NewNop())

	out := filepath.Join(t.TempDir(), sanctions.DefaultDatabaseFile)
	db, err := b.BuildToFile(context.Background(), srv.URL, out)
	if err != nil {
		t.Fatalf("BuildToFile: %v", err)
	}
	if len(db.Entities) != 4 {
		t.Fatalf("expected 4 entities, got %d", len(db.Entities))
	}
	if last.Total != int64(len(sampleFeed)) || last.Received != last.Total {
		t.Fatalf("unexpected final progress %+v", last)
	}

	loaded, err := sanctions.Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Entities) != 4 || loaded.LastUpdated == "" {
		t.Fatalf("persisted document incomplete: %+v", loaded)
	}

	left, _ := os.ReadDir(tmpDir)
	if len(left) != 0 {
		t.Fatalf("temp feed not removed: %v", left)
	}
}

func TestDownloadWithoutContentLengthIsIndeterminate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleFeed[:100]))
		w.(http.Flusher).Flush()
		_, _ = w.Write([]byte(sampleFeed[100:]))
	}))
	defer srv.Close()

	var seen []Progress
	f := NewFetcher(zap.NewNop(), WithTempDir(t.TempDir()), WithProgress(func(p Progress) { seen = append(seen, p) }))
	path, err := f.Download(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer os.Remove(path)

	if len(seen) == 0 {
		t.Fatal("expected progress callbacks")
	}
	for _, p := range seen {
		if _, ok := p.Percent(); ok {
			t.Fatalf("progress should be indeterminate: %+v", p)
		}
	}
	if seen[len(seen)-1].Received != int64(len(sampleFeed)) {
		t.Fatalf("received %d bytes", seen[len(seen)-1].Received)
	}
}

func TestBuildToFileFailsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	tmpDir := t.TempDir()
	f := NewFetcher(zap.NewNop(), WithTempDir(tmpDir))
	b := NewBuilder(f, zap.NewNop())
	out := filepath.Join(t.TempDir(), "out.json")

	_, err := b.BuildToFile(context.Background(), srv.URL, out)
	if !errors.Is(err, ErrFetchStatus) {
		t.Fatalf("expected ErrFetchStatus, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("output file should not exist, stat err=%v", statErr)
	}
	left, _ := os.ReadDir(tmpDir)
	if len(left) != 0 {
		t.Fatalf("temp files left behind: %v", left)
	}
}

func TestProgressPercent(t *testing.T) {
	if pct, ok := (Progress{Received: 50, Total: 200}).Percent(); !ok || pct != 25 {
		t.Fatalf("got %v %v", pct, ok)
	}
	if _, ok := (Progress{Received: 50, Total: -1}).Percent(); ok {
		t.Fatal("unknown total must be indeterminate")
	}
}
