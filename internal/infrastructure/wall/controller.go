// Package wall adapts display-plane commands for the process rendering the
// wall. The server itself renders nothing; this controller tracks the
// view-level flags the commands imply and reports them back as the per-view
// display state, so control clients observe the effect of their commands
// even when the renderer attaches elsewhere.
package wall

import (
	"encoding/json"
	"sync"

	"streamwall/internal/core/ports"

	"go.uber.org/zap"
)

type viewFlags struct {
	Listening           bool `json:"listening"`
	BackgroundListening bool `json:"backgroundListening"`
	Blurred             bool `json:"blurred"`
}

type Controller struct {
	logger *zap.Logger

	mu     sync.Mutex
	views  map[int]*viewFlags
	report func(map[int]json.RawMessage)
}

// NewController creates a controller that publishes display-state snapshots
// through report after every command.
func NewController(report func(map[int]json.RawMessage), logger *zap.Logger) ports.WallController {
	return &Controller{
		logger: logger,
		views:  make(map[int]*viewFlags),
		report: report,
	}
}

func (c *Controller) SetListeningView(viewIdx *int) error {
	c.mu.Lock()
	for _, v := range c.views {
		v.Listening = false
	}
	if viewIdx != nil {
		c.flagsLocked(*viewIdx).Listening = true
	}
	c.mu.Unlock()

	if viewIdx != nil {
		c.logger.Info("listening view set", zap.Int("view_idx", *viewIdx))
	} else {
		c.logger.Info("listening stopped")
	}
	c.publish()
	return nil
}

func (c *Controller) SetViewBackgroundListening(viewIdx int, listening bool) error {
	c.mu.Lock()
	c.flagsLocked(viewIdx).BackgroundListening = listening
	c.mu.Unlock()

	c.logger.Info("background listening changed",
		zap.Int("view_idx", viewIdx),
		zap.Bool("listening", listening))
	c.publish()
	return nil
}

func (c *Controller) SetViewBlurred(viewIdx int, blurred bool) error {
	c.mu.Lock()
	c.flagsLocked(viewIdx).Blurred = blurred
	c.mu.Unlock()

	c.logger.Info("view blur changed",
		zap.Int("view_idx", viewIdx),
		zap.Bool("blurred", blurred))
	c.publish()
	return nil
}

func (c *Controller) ReloadView(viewIdx int) error {
	c.logger.Info("view reload requested", zap.Int("view_idx", viewIdx))
	return nil
}

func (c *Controller) Browse(url string) error {
	c.logger.Info("browse requested", zap.String("url", url))
	return nil
}

func (c *Controller) OpenDevTools(viewIdx int) error {
	c.logger.Info("devtools requested", zap.Int("view_idx", viewIdx))
	return nil
}

func (c *Controller) flagsLocked(viewIdx int) *viewFlags {
	v, ok := c.views[viewIdx]
	if !ok {
		v = &viewFlags{}
		c.views[viewIdx] = v
	}
	return v
}

func (c *Controller) publish() {
	if c.report == nil {
		return
	}

	c.mu.Lock()
	states := make(map[int]json.RawMessage, len(c.views))
	for idx, v := range c.views {
		data, err := json.Marshal(v)
		if err != nil {
			continue
		}
		states[idx] = data
	}
	c.mu.Unlock()

	c.report(states)
}
