package storage

import (
	"errors"
	"os"
	"testing"
)

type doc struct {
	Names []string `json:"names"`
}

func TestJSONStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewJSONStore[doc](dir+"/nested", "doc.json")
	if err != nil {
		t.Fatal(err)
	}

	if s.Exists() {
		t.Fatal("file should not exist before Save")
	}
	empty, err := s.Load()
	if err != nil || len(empty.Names) != 0 {
		t.Fatalf("Load on missing file = %+v, %v", empty, err)
	}

	if err := s.Save(doc{Names: []string{"Alien"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(s.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file left behind")
	}

	got, err := s.Load()
	if err != nil || len(got.Names) != 1 || got.Names[0] != "Alien" {
		t.Fatalf("Load = %+v, %v", got, err)
	}
}

func TestJSONStoreUpdate(t *testing.T) {
	s, err := NewJSONStore[doc](t.TempDir(), "doc.json")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Update(func(d *doc) error {
		d.Names = append(d.Names, "Heat")
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	if err := s.Update(func(d *doc) error {
		d.Names = nil
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Update error = %v", err)
	}

	got, _ := s.Load()
	if len(got.Names) != 1 || got.Names[0] != "Heat" {
		t.Fatalf("failed Update should not write, got %+v", got)
	}
}
