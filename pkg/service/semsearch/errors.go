package semsearch

import "github.com/m-mizutani/goerr/v2"

// ErrNotIndexed is returned by Search when no chunks have been stored yet.
// Callers should run indexing before querying.
var ErrNotIndexed = goerr.New("knowledge base is not indexed")
