// Package dataset loads the two public CSV snapshots that feed HPIC Pulse
// and caches them in memory.
//
// This package contains two main components:
//
// Loader: Resolves each snapshot by probing candidate paths (public-data
// directory first, then the base data directory), parses the CSV into typed
// domain records, and reports failures through the shared error taxonomy:
// a missing file is a NOT_FOUND error, a bad header or cell is a PARSING
// error naming the file and the offending row and column.
//
// Store: A TTL cache over the Loader keyed by dataset name. Reads check
// expiry before reuse, concurrent loads of the same dataset are collapsed
// with singleflight, and a background sweep drops expired entries. The
// store keeps hit/miss counters and per-dataset freshness for the health
// and info endpoints.
//
// Example usage:
//
//	loader := dataset.NewLoader(paths, logger)
//	store := dataset.NewStore(loader, cfg.Data.CacheTTL, cfg.Data.CacheSweepInterval, logger, metrics)
//	defer store.Stop()
//
//	records, err := store.MembershipTimeline(ctx)
//	if err != nil {
//	    // *errors.AppError carrying the taxonomy type
//	}
package dataset
