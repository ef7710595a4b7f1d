package voice

import (
	"bufio"
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
)

// streamSession owns one decode-encode-send pipeline. It ends on its
// own at end of input or when cancelled; doneCh closes either way.
type streamSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	pcm    *pcmStream
	enc    *opusEncoder
	doneCh chan struct{}

	paused atomic.Bool
	ended  atomic.Bool
}

func startStreamSession(ctx context.Context, vc *discordgo.VoiceConnection, inputURL string) (*streamSession, error) {
	sessCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	pcm, err := startPCMStream(sessCtx, inputURL)
	if err != nil {
		cancel()
		return nil, err
	}
	enc, err := newOpusEncoder()
	if err != nil {
		pcm.Close()
		cancel()
		return nil, err
	}

	sess := &streamSession{
		ctx:    sessCtx,
		cancel: cancel,
		pcm:    pcm,
		enc:    enc,
		doneCh: make(chan struct{}),
	}

	go sess.sendLoop(vc)

	return sess, nil
}

func (s *streamSession) alive() bool {
	return !s.ended.Load()
}

func (s *streamSession) isPaused() bool {
	return s.paused.Load()
}

// setPaused gates the sender. While paused no PCM is read, so the
// decoder blocks on the pipe instead of running ahead.
func (s *streamSession) setPaused(v bool) {
	s.paused.Store(v)
}

func isVoiceReady(vc *discordgo.VoiceConnection) bool {
	if vc == nil {
		return false
	}
	if vc.OpusSend == nil {
		vc.OpusSend = make(chan []byte, 2)
	}
	if vc.OpusRecv == nil {
		vc.OpusRecv = make(chan *discordgo.Packet, 2)
	}
	return vc.OpusSend != nil
}

func (s *streamSession) sendLoop(vc *discordgo.VoiceConnection) {
	defer func() {
		s.ended.Store(true)
		s.enc.Close()
		s.pcm.Close()
		s.cancel()
		close(s.doneCh)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && !isVoiceReady(vc) {
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
	if !isVoiceReady(vc) {
		return
	}

	_ = vc.Speaking(true)
	defer vc.Speaking(false)

	r := bufio.NewReaderSize(s.pcm.Output(), 128*1024)
	framePCM := make([]byte, s.enc.FrameBytes())

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		if s.paused.Load() {
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(50 * time.Millisecond):
			}
			continue
		}

		if _, err := io.ReadFull(r, framePCM); err != nil {
			// EOF means the track finished; partial frames are dropped.
			return
		}

		var outPkt []byte
		if err := s.enc.EncodeFrame(framePCM, func(pkt []byte) error {
			outPkt = append(outPkt[:0], pkt...)
			return nil
		}); err != nil {
			return
		}
		if len(outPkt) == 0 {
			continue
		}

		<-ticker.C
		select {
		case <-s.ctx.Done():
			return
		case vc.OpusSend <- outPkt:
		case <-time.After(200 * time.Millisecond):
			// Gateway stalled; drop the session rather than block.
			return
		}
	}
}
