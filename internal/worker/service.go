// Package worker keeps the Redis read caches in step with Postgres by
// consuming note events off Kafka.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "notebazaar/internal/kafka"
	"notebazaar/internal/market"
	"notebazaar/internal/redisx"
)

type Service struct {
	Notes       *market.NotesRepo
	Users       *market.UsersRepo
	Redis       *redis.Client
	ServiceName string
}

// HandleEvent is the consumer handler for both note topics.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// Dedup by event id so redelivery does not redo work.
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case market.EventNoteListed:
		p, err := kafkax.UnwrapPayload[market.NoteListedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.refreshCatalog(ctx, p.Seller)

	case market.EventNotePurchased:
		p, err := kafkax.UnwrapPayload[market.NotePurchasedPayload](env.Payload)
		if err != nil {
			return err
		}
		if err := s.refreshCatalog(ctx, p.Seller); err != nil {
			return err
		}
		return s.refreshSellerStats(ctx, p.Seller)

	default:
		return nil // ignore
	}
}

// refreshCatalog rebuilds the full catalog cache and, when the seller is
// known, their per-seller listing cache.
func (s *Service) refreshCatalog(ctx context.Context, seller string) error {
	all, err := s.Notes.List(ctx, "")
	if err != nil {
		return err
	}
	b, err := json.Marshal(all)
	if err != nil {
		return err
	}
	if err := s.Redis.Set(ctx, redisx.KeyCatalogAll, b, redisx.TTLCatalogCache).Err(); err != nil {
		return err
	}

	if seller == "" {
		return nil
	}
	own, err := s.Notes.List(ctx, seller)
	if err != nil {
		return err
	}
	b, err = json.Marshal(own)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(redisx.KeyCatalogSeller, seller)
	return s.Redis.Set(ctx, key, b, redisx.TTLCatalogCache).Err()
}

func (s *Service) refreshSellerStats(ctx context.Context, seller string) error {
	if seller == "" {
		return nil
	}
	u, err := s.Users.GetByUsername(ctx, seller)
	if err != nil {
		log.Printf("seller stats: %v", err)
		return nil // stale stats are not worth a redelivery
	}

	b, err := json.Marshal(market.SellerStats{Username: u.Username, Balance: u.Balance, Sold: u.Sold})
	if err != nil {
		return err
	}
	key := fmt.Sprintf(redisx.KeySellerStats, seller)
	return s.Redis.Set(ctx, key, b, redisx.TTLSellerStats).Err()
}
