package redisx

import "time"

const (
	// Catalog cache: catalog:all -> JSON array of notes, newest first.
	KeyCatalogAll = "catalog:all"

	// Per-seller listing cache: catalog:seller:{username}.
	KeyCatalogSeller = "catalog:seller:%s"

	// Seller dashboard numbers: seller_stats:{username} -> {"balance":..,"sold":..}
	KeySellerStats = "seller_stats:%s"

	// Dedup event processing in the worker: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCatalogCache = 5 * time.Minute
	TTLSellerStats  = 5 * time.Minute
	TTLDedup        = 48 * time.Hour
)
