package discord

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/yunolabs/yuno/internal/discord"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestSession(t *testing.T, rt roundTripFunc) *discordgo.Session {
	t.Helper()
	s, err := discordgo.New("Bot test-token")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if rt != nil {
		s.Client = &http.Client{Transport: rt}
	}
	return s
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestGetUserVoiceChannelID_UsesStateCacheFirst(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected REST call: %s %s", req.Method, req.URL.String())
		return nil, nil
	})
	if err := s.State.GuildAdd(&discordgo.Guild{
		ID: "guild-1",
		VoiceStates: []*discordgo.VoiceState{
			{GuildID: "guild-1", ChannelID: "vc-1", UserID: "user-1"},
		},
	}); err != nil {
		t.Fatalf("failed to add guild to state: %v", err)
	}

	c := &Client{session: s}
	channelID, err := c.GetUserVoiceChannelID("guild-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID != "vc-1" {
		t.Fatalf("expected vc-1, got %q", channelID)
	}
}

func TestGetUserVoiceChannelID_FallsBackToRESTWhenStateIsCold(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		if !strings.HasSuffix(req.URL.Path, "/guilds/guild-1/voice-states/user-1") {
			t.Fatalf("unexpected request path: %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK,
			`{"guild_id":"guild-1","channel_id":"vc-rest","user_id":"user-1","session_id":"x","deaf":false,"mute":false,"self_deaf":false,"self_mute":false,"self_video":false,"suppress":false}`,
		), nil
	})

	c := &Client{session: s}
	channelID, err := c.GetUserVoiceChannelID("guild-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID != "vc-rest" {
		t.Fatalf("expected vc-rest, got %q", channelID)
	}
}

func TestGetUserVoiceChannelID_ReturnsEmptyOnRESTNotFound(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"message":"Unknown Voice State","code":10065}`), nil
	})

	c := &Client{session: s}
	channelID, err := c.GetUserVoiceChannelID("guild-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID != "" {
		t.Fatalf("expected empty channel id, got %q", channelID)
	}
}

func TestListVoiceChannelParticipants_DeduplicatesAndFiltersChannel(t *testing.T) {
	s := newTestSession(t, nil)
	if err := s.State.GuildAdd(&discordgo.Guild{
		ID: "guild-1",
		VoiceStates: []*discordgo.VoiceState{
			{GuildID: "guild-1", ChannelID: "vc-1", UserID: "user-1"},
			{GuildID: "guild-1", ChannelID: "vc-1", UserID: "user-1"},
			{GuildID: "guild-1", ChannelID: "vc-1", UserID: "user-2"},
			{GuildID: "guild-1", ChannelID: "vc-2", UserID: "user-3"},
		},
	}); err != nil {
		t.Fatalf("failed to add guild to state: %v", err)
	}

	c := &Client{session: s}
	participants, err := c.ListVoiceChannelParticipants("guild-1", "vc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(participants) != 2 {
		t.Fatalf("expected 2 participants, got %d: %+v", len(participants), participants)
	}
}

func TestBanUser_TranslatesPurgeWindowToDays(t *testing.T) {
	cases := []struct {
		purge time.Duration
		want  int
	}{
		{purge: 0, want: 0},
		{purge: time.Hour, want: 1},
		{purge: 24 * time.Hour, want: 1},
		{purge: 72 * time.Hour, want: 3},
	}
	for _, tc := range cases {
		var gotDays int
		s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
			if req.Method != http.MethodPut {
				t.Fatalf("unexpected method: %s", req.Method)
			}
			if raw := req.URL.Query().Get("delete_message_days"); raw != "" {
				days, err := strconv.Atoi(raw)
				if err != nil {
					t.Fatalf("invalid delete_message_days %q: %v", raw, err)
				}
				gotDays = days
			}
			return jsonResponse(http.StatusNoContent, ""), nil
		})

		c := &Client{session: s}
		if err := c.BanUser("guild-1", "user-1", "reason", tc.purge); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotDays != tc.want {
			t.Fatalf("purge %s: expected %d days, got %d", tc.purge, tc.want, gotDays)
		}
	}
}

func TestWrapRESTError_MapsStatusCodes(t *testing.T) {
	forbidden := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}
	if !errors.Is(wrapRESTError(forbidden), discordpkg.ErrPermissionDenied) {
		t.Fatal("expected 403 to map to permission denied")
	}

	notFound := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
	if !errors.Is(wrapRESTError(notFound), discordpkg.ErrNotFound) {
		t.Fatal("expected 404 to map to not found")
	}

	serverErr := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusInternalServerError}}
	wrapped := wrapRESTError(serverErr)
	if errors.Is(wrapped, discordpkg.ErrPermissionDenied) || errors.Is(wrapped, discordpkg.ErrNotFound) {
		t.Fatal("expected 500 to stay unmapped")
	}

	plain := errors.New("dial tcp: connection refused")
	if wrapRESTError(plain) != plain {
		t.Fatal("expected non-REST errors to pass through unchanged")
	}

	if wrapRESTError(nil) != nil {
		t.Fatal("expected nil to stay nil")
	}
}

func TestDeleteMessage_SurfacesPermissionDenied(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusForbidden, `{"message":"Missing Permissions","code":50013}`), nil
	})

	c := &Client{session: s}
	err := c.DeleteMessage("chan-1", "msg-1")
	if !errors.Is(err, discordpkg.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}
