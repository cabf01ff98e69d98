package control

import (
	"context"
	"fmt"
	"time"

	"streamwall/internal/core/domain"
	"streamwall/pkg/tracing"

	"go.uber.org/zap"
)

// dispatch routes a gated action to its handler. The switch is exhaustive
// over the action variants; ParseAction guarantees nothing else arrives here.
func (s *Server) dispatch(ctx context.Context, c *client, env domain.ActionEnvelope, act domain.Action) {
	ctx, span := tracing.TraceAction(ctx, act.Type(), string(c.identity.Role))
	defer span.End()

	start := time.Now()
	var result map[string]interface{}
	var err error

	switch a := act.(type) {
	case *domain.SetListeningView:
		err = s.wall.SetListeningView(a.ViewIdx)
	case *domain.SetViewBackgroundListening:
		err = s.wall.SetViewBackgroundListening(a.ViewIdx, a.Listening)
	case *domain.SetViewBlurred:
		err = s.wall.SetViewBlurred(a.ViewIdx, a.Blurred)
	case *domain.ReloadView:
		err = s.wall.ReloadView(a.ViewIdx)
	case *domain.Browse:
		err = s.wall.Browse(a.URL)
	case *domain.DevTools:
		err = s.wall.OpenDevTools(a.ViewIdx)

	case *domain.RotateStream:
		err = s.streams.RotateStream(ctx, a.URL, a.Rotation)
	case *domain.UpdateCustomStream:
		err = s.streams.UpdateCustomStream(ctx, a.URL, a.Data)
	case *domain.DeleteCustomStream:
		err = s.streams.DeleteCustomStream(ctx, a.URL)

	case *domain.SetStreamCensored:
		if s.delay == nil {
			err = fmt.Errorf("streamdelay is not configured")
		} else {
			err = s.delay.SetCensored(ctx, a.IsCensored)
		}
	case *domain.SetStreamRunning:
		if s.delay == nil {
			err = fmt.Errorf("streamdelay is not configured")
		} else {
			err = s.delay.SetStreamRunning(ctx, a.IsStreamRunning)
		}

	case *domain.CreateInvite:
		var token *domain.Token
		token, err = s.tokens.CreateInvite(ctx, a.Name, a.Role)
		if err == nil {
			result = map[string]interface{}{
				"name":   token.Name,
				"secret": token.Secret,
			}
		}
	case *domain.DeleteToken:
		err = s.tokens.DeleteToken(ctx, a.TokenID)

	default:
		err = domain.ErrUnknownAction
	}

	if s.metrics != nil {
		s.metrics.ActionProcessed(act.Type(), err)
		s.metrics.ObserveActionDuration(act.Type(), time.Since(start).Seconds())
	}

	if err != nil {
		tracing.RecordError(ctx, err)
		s.logger.Warn("action failed",
			zap.String("conn_id", c.id),
			zap.String("action", act.Type()),
			zap.Error(err))
		s.respond(c, env.ID, map[string]interface{}{"error": err.Error()})
		return
	}

	if result == nil {
		result = map[string]interface{}{}
	}
	s.respond(c, env.ID, result)
}
