package db

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestClampLimit(t *testing.T) {
	tests := map[int]int{-1: 50, 0: 50, 1: 1, 200: 200, 10000: 500}
	for in, want := range tests {
		if got := clampLimit(in); got != want {
			t.Errorf("clampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestNewDatabaseClientRequiresURL(t *testing.T) {
	if _, err := NewDatabaseClient(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty DATABASE_URL")
	}
}

func TestArchiveSchemaScriptRecordsVersion(t *testing.T) {
	b, err := schemaFS.ReadFile(schemaScript)
	if err != nil || len(b) == 0 {
		t.Fatalf("%s not embedded: %v", schemaScript, err)
	}
	want := fmt.Sprintf("INSERT INTO docfields_meta (version) VALUES (%d)", schemaVersion)
	if !strings.Contains(string(b), want) {
		t.Fatalf("%s does not record schema version %d", schemaScript, schemaVersion)
	}
}

func TestSaveExtractionResultRejectsNil(t *testing.T) {
	c := &DatabaseClient{}
	if err := c.SaveExtractionResult(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
}
