// Package voice owns the Discord session and the single active audio
// stream. It exposes the narrow surface the playback controller needs:
// join-or-reuse, play, pause, resume, stop, disconnect.
package voice

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jukevox/jukevox/internal/config"
)

type Client struct {
	cfg *config.Config

	// connected mirrors vc != nil so the interface thread can poll
	// connectivity without contending on mu, which Play holds across
	// the blocking stream open.
	connected atomic.Bool

	mu      sync.Mutex
	session *discordgo.Session
	vc      *discordgo.VoiceConnection
	cur     *streamSession
}

func NewClient(cfg *config.Config) *Client {
	return &Client{cfg: cfg}
}

// Run opens the Discord gateway session and blocks until ctx is done.
// Meant to run on its own goroutine next to the interface loop.
func (c *Client) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + c.cfg.DiscordToken)
	if err != nil {
		return err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("discord connected", "user", s.State.User.Username)
	})

	if err := dg.Open(); err != nil {
		return err
	}
	defer dg.Close()

	c.mu.Lock()
	c.session = dg
	c.mu.Unlock()

	<-ctx.Done()

	c.Disconnect()
	return nil
}

// Join connects to the configured voice channel, or to whichever channel
// currently holds the target user, reusing an existing connection.
func (c *Client) Join(ctx context.Context) error {
	c.mu.Lock()
	s := c.session
	if c.vc != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if s == nil {
		return errors.New("discord session not ready")
	}

	guildID, channelID, err := c.findTarget(s)
	if err != nil {
		return err
	}

	vc, err := s.ChannelVoiceJoin(ctx, guildID, channelID, false, true)
	if err != nil {
		return err
	}
	// Prevents the panic in Kill() when channels are closed.
	if vc.OpusSend == nil {
		vc.OpusSend = make(chan []byte, 2)
	}
	if vc.OpusRecv == nil {
		vc.OpusRecv = make(chan *discordgo.Packet, 2)
	}

	c.mu.Lock()
	c.vc = vc
	c.mu.Unlock()
	c.connected.Store(true)

	slog.Info("joined voice channel", "guild", guildID, "channel", channelID)
	return nil
}

// findTarget resolves which channel to join: an explicit VOICE_CHANNEL_ID
// wins; otherwise the channel the target user is sitting in.
func (c *Client) findTarget(s *discordgo.Session) (guildID, channelID string, err error) {
	for _, g := range s.State.Guilds {
		if c.cfg.VoiceChannelID != "" {
			for _, ch := range g.Channels {
				if ch.ID == c.cfg.VoiceChannelID && ch.Type == discordgo.ChannelTypeGuildVoice {
					return g.ID, ch.ID, nil
				}
			}
			continue
		}
		if c.cfg.TargetUserID != "" {
			for _, vs := range g.VoiceStates {
				if vs.UserID == c.cfg.TargetUserID {
					return g.ID, vs.ChannelID, nil
				}
			}
		}
	}
	return "", "", errors.New("target user not in voice or channel not found")
}

// Connected is polled by the presentation timer every tick; it must
// never block on mu.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

func (c *Client) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur != nil && c.cur.alive() && !c.cur.isPaused()
}

func (c *Client) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur != nil && c.cur.alive() && c.cur.isPaused()
}

// Play replaces whatever is currently streaming with streamURL.
func (c *Client) Play(ctx context.Context, streamURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	vc := c.vc
	if vc == nil {
		return errors.New("not connected")
	}
	c.stopCurrentLocked()

	sess, err := startStreamSession(ctx, vc, streamURL)
	if err != nil {
		return err
	}
	c.cur = sess
	return nil
}

func (c *Client) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return
	}
	c.cur.setPaused(true)
	if c.vc != nil {
		_ = c.vc.Speaking(false)
	}
}

func (c *Client) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return
	}
	c.cur.setPaused(false)
	if c.vc != nil {
		_ = c.vc.Speaking(true)
	}
}

func (c *Client) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopCurrentLocked()
	if c.vc != nil {
		_ = c.vc.Speaking(false)
	}
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	c.stopCurrentLocked()
	vc := c.vc
	c.vc = nil
	c.mu.Unlock()
	c.connected.Store(false)

	if vc != nil {
		_ = safeDisconnect(vc)
	}
}

// stopCurrentLocked stops the active stream session. Caller must hold
// c.mu; the lock is released while waiting for the sender to exit.
func (c *Client) stopCurrentLocked() {
	if c.cur == nil {
		return
	}
	sess := c.cur
	c.cur = nil

	sess.cancel()

	done := sess.doneCh
	c.mu.Unlock()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
	c.mu.Lock()
}

// safeDisconnect disconnects a voice connection with proper cleanup.
func safeDisconnect(vc *discordgo.VoiceConnection) error {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("voice disconnect panic recovered", "panic", r)
		}
	}()

	// Ensure channels exist so Kill() cannot close nil channels.
	if vc.OpusSend == nil {
		vc.OpusSend = make(chan []byte, 2)
	}
	if vc.OpusRecv == nil {
		vc.OpusRecv = make(chan *discordgo.Packet, 2)
	}

	_ = vc.Speaking(false)

	// Small delay to let pending operations complete.
	time.Sleep(150 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return vc.Disconnect(ctx)
}
