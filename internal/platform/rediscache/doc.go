// Package rediscache caches the leaderboard snapshot in Redis so
// repeated reads between task mutations skip the aggregate query.
package rediscache
