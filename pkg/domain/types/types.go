package types

import "github.com/m-mizutani/goerr/v2"

// Version is the application version, overridden at build time via ldflags
var Version = "dev"

// ErrCacheMiss is returned by cache stores when no record exists for a key
var ErrCacheMiss = goerr.New("cache miss")
