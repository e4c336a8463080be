package mongo

import (
	"context"
	"testing"
)

func TestOpenRequiresDatabase(t *testing.T) {
	if _, err := Open(context.Background(), Config{URI: "mongodb://localhost:27017"}); err == nil {
		t.Error("Open without a database name should fail")
	}
}
