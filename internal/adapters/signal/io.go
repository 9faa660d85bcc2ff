package signal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dkeye/Parlor/internal/app"
	"github.com/dkeye/Parlor/internal/core"
	"github.com/dkeye/Parlor/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, sid domain.SessionID, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump set deadline")
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("ping failed")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sid domain.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		// the relay must hear about every disconnect, even during shutdown
		if err := ctl.Relay.Dispatch(context.WithoutCancel(ctx), app.Disconnect(sid)); err != nil {
			log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("disconnect not delivered")
		}
		c.Close()
		cancel()
	}()

	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	if err := c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait)); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			logReadError(sid, err)
			return
		}
		ev, err := decodeEvent(sid, data)
		if err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("frame ignored")
			continue
		}
		if err := ctl.Relay.Dispatch(ctx, ev); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("dispatch failed")
			return
		}
	}
}

func logReadError(sid domain.SessionID, err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("frame exceeded read limit")
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived),
		errors.Is(err, io.EOF):
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("client disconnected")
	default:
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
	}
}

var errUnknownEvent = errors.New("unknown event")

// decodeEvent turns one inbound frame into a relay event.
func decodeEvent(sid domain.SessionID, data []byte) (app.Event, error) {
	env, err := core.Decode(data)
	if err != nil {
		return app.Event{}, err
	}

	switch env.Event {
	case core.EventCreateRoom:
		return app.CreateRoom(sid, env.String(0), env.String(1), env.String(2)), nil
	case core.EventJoinRoom:
		return app.JoinRoom(sid, env.String(0), env.String(1), env.String(2)), nil
	case core.EventChatMessage:
		return app.Chat(sid, env.String(0)), nil
	case core.EventFileUpload:
		var up domain.FileUpload
		ok, err := env.Object(0, &up)
		if err != nil {
			return app.Event{}, err
		}
		if !ok {
			return app.FileUpload(sid, nil), nil
		}
		return app.FileUpload(sid, &up), nil
	case core.EventTyping:
		return app.Typing(sid, env.String(0)), nil
	case core.EventStopTyping:
		return app.StopTyping(sid, env.String(0)), nil
	default:
		return app.Event{}, fmt.Errorf("%w: %q", errUnknownEvent, env.Event)
	}
}
