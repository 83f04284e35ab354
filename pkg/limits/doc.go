// Package limits provides per-caller request rate limiting for the
// evaluation surface.
//
// Each caller gets a token bucket: requests consume one token, tokens
// refill at a configured sustained rate, and the bucket capacity bounds
// bursts. Bucket state can optionally be persisted to SQLite so that
// limits survive restarts.
package limits
