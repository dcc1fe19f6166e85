package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"

	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// TrackResolver turns a query or URL into playable tracks. Two resolvers
// exist (a generic search/stream one and a playlist-oriented one); the
// engine is agnostic to which produced a track.
type TrackResolver interface {
	// Resolve returns the tracks matching the query in order. An empty
	// slice means "nothing found" and is not an error.
	Resolve(ctx context.Context, query string, requester snowflake.ID) ([]*domain.Track, error)

	// ResolveSimilar returns one track similar to the given one, used for
	// autoplay continuation. Returns nil (no error) when nothing similar
	// can be found.
	ResolveSimilar(ctx context.Context, last *domain.Track) (*domain.Track, error)
}
