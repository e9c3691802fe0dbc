package editor

import (
	"context"
	"errors"

	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/model"
)

// Persister is the backend as the pipeline sees it. Every failure, network
// or backend-reported, comes back as an error.
type Persister interface {
	Create(ctx context.Context, payload any) error
	Update(ctx context.Context, id string, payload any) error
}

// Pipeline validates a session's draft, shapes it for the backend and
// persists it with a single call.
type Pipeline[D any] struct {
	schema  *Schema[D]
	persist Persister
}

func NewPipeline[D any](schema *Schema[D], persist Persister) *Pipeline[D] {
	return &Pipeline[D]{schema: schema, persist: persist}
}

// Run submits s. A session that is already submitting is left as it is
// and ErrSubmitInFlight is returned without calling the backend. Field
// errors and backend failures are part of the Outcome, not the error.
func (p *Pipeline[D]) Run(ctx context.Context, s *Session[D], user model.UserID) (Outcome, error) {
	draft, recordID, fieldErrs, err := s.beginSubmit()
	if err != nil {
		return Outcome{Status: s.Status()}, err
	}
	if fieldErrs != nil {
		return Outcome{Status: StatusIdle, FieldErrors: fieldErrs}, nil
	}

	payload := p.schema.Payload(draft, user)

	log := editorLogger.With().
		Str("session", string(s.ID())).
		Str("kind", string(p.schema.Kind)).
		Str("record", recordID).
		Logger()

	if recordID == "" {
		err = p.persist.Create(ctx, payload)
	} else {
		err = p.persist.Update(ctx, recordID, payload)
	}

	if err != nil {
		log.Error().Err(err).Msg("Submission failed")
		s.finishSubmit(submitError(err))
		return Outcome{Status: StatusError, Error: submitError(err).Error()}, nil
	}

	log.Info().Msg("Submission succeeded")
	s.finishSubmit(nil)
	return Outcome{Status: StatusSuccess, Redirect: p.schema.Redirect}, nil
}

// submitError keeps backend messages and hides context errors behind a
// generic one.
func submitError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errors.New(config.ErrBackendUnavailable)
	}
	return err
}
