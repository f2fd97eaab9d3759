package responder

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/smartie/internal/exchange"
	"github.com/ziadkadry99/smartie/internal/location"
	"github.com/ziadkadry99/smartie/internal/transcript"
)

// DefaultErrorText is shown in place of an answer when anything goes wrong.
const DefaultErrorText = "Oops! An error has occurred."

// Target is the part of a transcript the Responder settles.
type Target interface {
	ResolvePlaceholder(id, answer string) bool
	FailPlaceholder(id, errText string) bool
}

// Recorder stores the outcome of each exchange.
type Recorder interface {
	Record(ctx context.Context, ex exchange.Exchange) error
}

// Turn is everything needed to answer one submission.
type Turn struct {
	SessionID     string
	PlaceholderID string
	// Snapshot is the transcript as it stood right after the user's
	// message and its placeholder were appended.
	Snapshot []transcript.Message
	Location location.Coordinates
	Target   Target
}

// Options configures a Responder.
type Options struct {
	ErrorText string
	Recorder  Recorder
	Logger    *zap.Logger
}

// Responder sends the latest question of a turn to the answer endpoint
// and settles the turn's placeholder with the result.
type Responder struct {
	asker     Asker
	errorText string
	recorder  Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a Responder.
func New(asker Asker, opts Options) *Responder {
	if opts.ErrorText == "" {
		opts.ErrorText = DefaultErrorText
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Responder{
		asker:     asker,
		errorText: opts.ErrorText,
		recorder:  opts.Recorder,
		logger:    opts.Logger,
		now:       time.Now,
	}
}

// ErrorText returns the message shown to users on failure.
func (r *Responder) ErrorText() string { return r.errorText }

// Respond issues exactly one request for the turn. On success the
// placeholder is resolved with the answer; on any failure it is replaced
// by the fixed error text and the underlying error is logged and returned.
func (r *Responder) Respond(ctx context.Context, turn Turn) error {
	start := r.now()

	answer, err := r.ask(ctx, turn)
	elapsed := r.now().Sub(start)

	log := r.logger.With(
		zap.String("session_id", turn.SessionID),
		zap.String("placeholder_id", turn.PlaceholderID),
		zap.Duration("elapsed", elapsed),
	)

	ex := exchange.Exchange{
		ID:          turn.PlaceholderID,
		SessionID:   turn.SessionID,
		HasLocation: !turn.Location.Empty(),
		DurationMS:  elapsed.Milliseconds(),
	}

	if err != nil {
		log.Warn("answer request failed", zap.Error(err))
		turn.Target.FailPlaceholder(turn.PlaceholderID, r.errorText)

		ex.Outcome = exchange.OutcomeFailed
		ex.Detail = failureKind(err)
		var se *StatusError
		if errors.As(err, &se) {
			ex.Status = se.Code
		}
		r.record(ctx, ex)
		return err
	}

	if !turn.Target.ResolvePlaceholder(turn.PlaceholderID, answer) {
		log.Warn("placeholder already settled, dropping answer")
	} else {
		log.Debug("answer received", zap.Int("answer_len", len(answer)))
	}

	ex.Outcome = exchange.OutcomeAnswered
	r.record(ctx, ex)
	return nil
}

func (r *Responder) ask(ctx context.Context, turn Turn) (string, error) {
	last, ok := transcript.LastOf(turn.Snapshot, transcript.RoleUser)
	if !ok {
		return "", ErrNoQuestion
	}

	return r.asker.Ask(ctx, Question{
		Question:  last.Text,
		Latitude:  turn.Location.Latitude,
		Longitude: turn.Location.Longitude,
	})
}

// failureKind classifies err for the exchange log. Response bodies and
// upstream messages only go to the logger.
func failureKind(err error) string {
	var se *StatusError
	var ne net.Error
	switch {
	case errors.As(err, &se):
		return exchange.DetailStatus
	case errors.Is(err, ErrMissingAnswer):
		return exchange.DetailMissingAnswer
	case errors.Is(err, ErrNoQuestion):
		return exchange.DetailNoQuestion
	case errors.Is(err, ErrDecode):
		return exchange.DetailDecode
	case errors.Is(err, context.Canceled):
		return exchange.DetailCanceled
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &ne) && ne.Timeout():
		return exchange.DetailTimeout
	default:
		return exchange.DetailTransport
	}
}

func (r *Responder) record(ctx context.Context, ex exchange.Exchange) {
	if r.recorder == nil {
		return
	}
	// The turn's context may already be done; recording must still happen.
	if err := r.recorder.Record(context.WithoutCancel(ctx), ex); err != nil {
		r.logger.Warn("recording exchange failed", zap.String("exchange_id", ex.ID), zap.Error(err))
	}
}
