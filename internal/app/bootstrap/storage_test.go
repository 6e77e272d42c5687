// internal/app/bootstrap/storage_test.go
package bootstrap

import (
	"context"
	"testing"

	"github.com/dalemusser/waffle/pantry/storage"
)

func TestNewStorageLocal(t *testing.T) {
	store, err := newStorage(context.Background(), AppConfig{
		StorageType:      "local",
		StorageLocalPath: t.TempDir(),
		StorageLocalURL:  "/files",
	})
	if err != nil {
		t.Fatalf("newStorage: %v", err)
	}
	if _, ok := store.(*storage.Local); !ok {
		t.Fatalf("expected *storage.Local, got %T", store)
	}
}

func TestNewStorageUnknownType(t *testing.T) {
	if _, err := newStorage(context.Background(), AppConfig{StorageType: "ftp"}); err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}
