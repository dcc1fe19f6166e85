package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"

	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// PlaylistResolver expands playlist URLs into their full track list through
// the relay node's REST loader. Non-playlist queries resolve to nothing.
type PlaylistResolver struct {
	link disgolink.Client
}

func NewPlaylistResolver(link disgolink.Client) *PlaylistResolver {
	return &PlaylistResolver{link: link}
}

func (r *PlaylistResolver) Resolve(ctx context.Context, query string, requester snowflake.ID) ([]*domain.Track, error) {
	if !isURL(query) {
		return nil, nil
	}

	result, err := loadTracks(ctx, r.link, query)
	if err != nil {
		return nil, err
	}

	playlist, ok := result.Data.(lavalink.Playlist)
	if !ok {
		if exception, isExc := result.Data.(lavalink.Exception); isExc {
			return nil, fmt.Errorf("failed to load %q: %s", query, exception.Message)
		}
		return nil, nil
	}

	tracks := make([]*domain.Track, 0, len(playlist.Tracks))
	for _, track := range playlist.Tracks {
		tracks = append(tracks, convertLavalinkTrack(track, requester))
	}

	slog.Debug("expanded playlist", "name", playlist.Info.Name, "tracks", len(tracks))

	return tracks, nil
}

// ResolveSimilar is not meaningful for playlists.
func (r *PlaylistResolver) ResolveSimilar(_ context.Context, _ *domain.Track) (*domain.Track, error) {
	return nil, nil
}

// QueryResolver routes a query to the playlist resolver when it looks like
// a playlist URL and to the search resolver otherwise. The engine stays
// agnostic to which resolver produced a track.
type QueryResolver struct {
	search   ports.TrackResolver
	playlist ports.TrackResolver
}

func NewQueryResolver(search, playlist ports.TrackResolver) *QueryResolver {
	return &QueryResolver{search: search, playlist: playlist}
}

func (r *QueryResolver) Resolve(ctx context.Context, query string, requester snowflake.ID) ([]*domain.Track, error) {
	if isPlaylistURL(query) {
		tracks, err := r.playlist.Resolve(ctx, query, requester)
		if err != nil || len(tracks) > 0 {
			return tracks, err
		}
		// Fall through: a URL that did not expand may still be a single track.
	}
	return r.search.Resolve(ctx, query, requester)
}

func (r *QueryResolver) ResolveSimilar(ctx context.Context, last *domain.Track) (*domain.Track, error) {
	return r.search.ResolveSimilar(ctx, last)
}

func isPlaylistURL(s string) bool {
	return isURL(s) && (strings.Contains(s, "list=") || strings.Contains(s, "/playlist") || strings.Contains(s, "/sets/"))
}

var (
	_ ports.TrackResolver = (*PlaylistResolver)(nil)
	_ ports.TrackResolver = (*QueryResolver)(nil)
)
