/*
Package ratelimit provides pluggable request rate limiting.

Four interchangeable strategies (fixed window, sliding window, token bucket,
leaky bucket) run over a swappable key-value store. A Limiter binds one
Config and one store.Store; middleware composes limiters around HTTP
handlers with per-route configuration, layered limits and skip predicates.

	mem := store.NewMemoryStore()
	defer mem.Close()

	limiter, err := ratelimit.New(ratelimit.Config{
	    Strategy:  ratelimit.TokenBucket,
	    Quota:     100,
	    Window:    time.Minute,
	    Namespace: "api",
	}, mem)
	if err != nil {
	    log.Fatal(err)
	}

	http.Handle("/api/", middleware.Handler(limiter)(apiHandler))

Store failures fail open: requests are allowed and a warning is logged, so
an infrastructure outage never blocks legitimate traffic.
*/
package ratelimit
