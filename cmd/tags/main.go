// Command tags dumps the merchant classification stores as JSON, for
// reviewing automatic tags and reclassifying untagged merchants by hand.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/Paulkm2006/hust-ledger-back/internal/config"
	"github.com/Paulkm2006/hust-ledger-back/internal/kv"
	"github.com/Paulkm2006/hust-ledger-back/internal/logger"
)

type entry struct {
	MerchantID string `json:"mercacc"`
	Value      string `json:"tag"`
}

func main() {
	untagged := flag.Bool("untagged", false, "dump the untagged-merchant store instead of assigned tags")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	url := cfg.TagsRedisURL
	if *untagged {
		url = cfg.UntaggedRedisURL
	}

	ctx := context.Background()
	store, err := kv.NewRedis(ctx, url)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect store")
	}
	defer store.Close()

	keys, err := store.Keys(ctx, "*")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to enumerate merchants")
	}

	entries := make([]entry, 0, len(keys))
	for _, key := range keys {
		val, err := store.Get(ctx, key)
		if err != nil {
			log.Fatal().Err(err).Str("merchant", key).Msg("failed to read merchant")
		}
		entries = append(entries, entry{MerchantID: key, Value: val})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		log.Fatal().Err(err).Msg("failed to encode output")
	}
}
