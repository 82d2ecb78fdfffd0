package encoder

import "github.com/m-mizutani/goerr/v2"

// ErrUnavailable is returned while the encoder's circuit breaker rejects calls
var ErrUnavailable = goerr.New("text encoder unavailable")
