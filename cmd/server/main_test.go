package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/slconcert/theatre-system/internal/pkg/config"
)

func TestOpenStore_Memory(t *testing.T) {
	ctx := context.Background()
	db, closeDB, err := openStore(ctx, &config.Config{StoreDriver: config.DriverMemory}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	defer closeDB()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
