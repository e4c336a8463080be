//go:build integration

package mongo

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/timeslice/pkg/store"
	"github.com/matzehuels/timeslice/pkg/store/storetest"
)

// Run with: TIMESLICE_MONGO_URI=mongodb://localhost:27017 go test -tags integration ./pkg/store/mongo/
func TestContract(t *testing.T) {
	uri := os.Getenv("TIMESLICE_MONGO_URI")
	if uri == "" {
		t.Skip("TIMESLICE_MONGO_URI not set")
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		db := "timeslice_test_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")
		s, err := Open(ctx, Config{URI: uri, Database: db})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		t.Cleanup(func() {
			cleanup, err := Open(ctx, Config{URI: uri, Database: db})
			if err != nil {
				return
			}
			_ = cleanup.db.Drop(ctx)
			_ = cleanup.Close()
		})
		return s
	})
}
