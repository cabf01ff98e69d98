package ports

import (
	"context"

	"streamwall/internal/core/domain"
)

type TokenService interface {
	CreateInvite(ctx context.Context, name string, role domain.Role) (*domain.Token, error)
	RedeemInvite(ctx context.Context, secret string) (*domain.Token, error)
	ValidateSession(ctx context.Context, secret string) (*domain.Identity, error)
	DeleteToken(ctx context.Context, tokenID string) error
	AuthState(ctx context.Context) (*domain.AuthState, error)
	OnChange(fn func())
}

type StreamService interface {
	Streams(ctx context.Context) ([]domain.Stream, error)
	SetPolledStreams(ctx context.Context, streams []domain.Stream) error
	UpdateCustomStream(ctx context.Context, url string, data domain.Stream) error
	DeleteCustomStream(ctx context.Context, url string) error
	RotateStream(ctx context.Context, url string, rotation int) error
}

type StateService interface {
	Snapshot() domain.Snapshot
	Subscribe() <-chan domain.Snapshot
	SetStreams(streams []domain.Stream)
	SetViewStates(views []domain.ViewState)
	SetDelayStatus(status *domain.DelayStatus)
	SetAuthState(auth *domain.AuthState)
}

// WallController forwards display-plane commands to the process rendering
// the wall. The server does not render anything itself.
type WallController interface {
	SetListeningView(viewIdx *int) error
	SetViewBackgroundListening(viewIdx int, listening bool) error
	SetViewBlurred(viewIdx int, blurred bool) error
	ReloadView(viewIdx int) error
	Browse(url string) error
	OpenDevTools(viewIdx int) error
}

// DelayService talks to the external streamdelay process.
type DelayService interface {
	Status(ctx context.Context) (*domain.DelayStatus, error)
	SetCensored(ctx context.Context, censored bool) error
	SetStreamRunning(ctx context.Context, running bool) error
}

// StreamSource fetches published stream lists from a remote data source.
type StreamSource interface {
	Fetch(ctx context.Context) ([]domain.Stream, error)
}
