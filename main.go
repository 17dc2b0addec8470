package main

import (
	"context"
	"log"
	"os"

	"github.com/stevemurr/shoplist/config"
	"github.com/stevemurr/shoplist/session"
	"github.com/stevemurr/shoplist/store"
)

func main() {
	log.SetPrefix("[shoplist] ")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	s, err := store.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create store (backend=%s): %v", cfg.Backend, err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	log.Printf("Shopping list starting (store=%s)", cfg.Backend)

	sess := session.New(s, os.Stdin, os.Stdout, session.WithTimeout(cfg.Timeout))
	// A failed load is already reported; the session carries on empty.
	_ = sess.Open(ctx)
	if err := sess.Run(ctx); err != nil {
		log.Printf("session ended: %v", err)
	}
}
