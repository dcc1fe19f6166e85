package infrastructure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"

	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// searchPrefix is the relay node's search source selector for plain text
// queries.
const searchPrefix = "ytsearch:"

// SearchResolver resolves plain text queries and single-track URLs through
// the relay node's REST loader. Playlist URLs are not expanded here; see
// PlaylistResolver.
type SearchResolver struct {
	link disgolink.Client
}

func NewSearchResolver(link disgolink.Client) *SearchResolver {
	return &SearchResolver{link: link}
}

// Resolve loads the query and returns at most one track: the URL's track,
// or the best search match. An empty result is not an error.
func (r *SearchResolver) Resolve(ctx context.Context, query string, requester snowflake.ID) ([]*domain.Track, error) {
	if !isURL(query) {
		query = searchPrefix + query
	}

	result, err := loadTracks(ctx, r.link, query)
	if err != nil {
		return nil, err
	}

	switch data := result.Data.(type) {
	case lavalink.Track:
		return []*domain.Track{convertLavalinkTrack(data, requester)}, nil

	case lavalink.Search:
		if len(data) == 0 {
			return nil, nil
		}
		return []*domain.Track{convertLavalinkTrack(data[0], requester)}, nil

	case lavalink.Playlist:
		// A playlist URL handed to the search path plays its first entry.
		if len(data.Tracks) == 0 {
			return nil, nil
		}
		return []*domain.Track{convertLavalinkTrack(data.Tracks[0], requester)}, nil

	case lavalink.Exception:
		return nil, fmt.Errorf("failed to load %q: %s", query, data.Message)

	default:
		return nil, nil
	}
}

// ResolveSimilar searches for a track related to the given one, for
// autoplay continuation. Returns nil when nothing usable comes back.
func (r *SearchResolver) ResolveSimilar(ctx context.Context, last *domain.Track) (*domain.Track, error) {
	if last == nil {
		return nil, nil
	}

	query := searchPrefix + strings.TrimSpace(last.Artist+" "+last.Title+" mix")

	result, err := loadTracks(ctx, r.link, query)
	if err != nil {
		return nil, err
	}

	search, ok := result.Data.(lavalink.Search)
	if !ok {
		return nil, nil
	}

	// Skip results that are the track we just played.
	for _, candidate := range search {
		track := convertLavalinkTrack(candidate, 0)
		if track.SourceURL != "" && track.SourceURL == last.SourceURL {
			continue
		}
		return track, nil
	}
	return nil, nil
}

func loadTracks(ctx context.Context, link disgolink.Client, query string) (*lavalink.LoadResult, error) {
	node := link.BestNode()
	if node == nil {
		return nil, fmt.Errorf("no available Lavalink node")
	}

	result, err := node.LoadTracks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}
	return result, nil
}

func convertLavalinkTrack(track lavalink.Track, requester snowflake.ID) *domain.Track {
	info := track.Info

	uri := ""
	if info.URI != nil {
		uri = *info.URI
	}

	return &domain.Track{
		ID:          domain.NewTrackID(),
		Title:       info.Title,
		Artist:      info.Author,
		SourceURL:   uri,
		StreamURL:   uri,
		Encoded:     track.Encoded,
		Duration:    time.Duration(info.Length) * time.Millisecond,
		IsStream:    info.IsStream,
		RequesterID: requester,
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

var _ ports.TrackResolver = (*SearchResolver)(nil)
