package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yuvan-1166/crm-sub000/internal/crm/domain"
	"github.com/Yuvan-1166/crm-sub000/internal/crm/repository"
	"github.com/Yuvan-1166/crm-sub000/internal/crm/signals"
	"github.com/Yuvan-1166/crm-sub000/internal/events"
	"github.com/Yuvan-1166/crm-sub000/platform/apperr"

	"github.com/google/uuid"
)

// TrackEngagement is the automatic LEAD→MQL transition driven by a marketing
// tracking token. A token that matches no contact, or a contact no longer in
// LEAD, is a silent idempotent no-op, never an error: marketing events replay.
func (s *Service) TrackEngagement(ctx context.Context, token string) (TransitionResult, error) {
	var result TransitionResult
	fx := &commitEffects{}

	err := s.store.Transact(ctx, func(tx TxStore) error {
		contact, err := tx.GetContactByTokenForUpdate(ctx, token)
		if errors.Is(err, repository.ErrNotFound) {
			result = TransitionResult{Applied: false}
			return nil
		}
		if err != nil {
			return err
		}

		result = TransitionResult{
			ContactID: contact.ID,
			OldStatus: contact.Status,
			NewStatus: contact.Status,
			Applied:   false,
		}
		if contact.Status != domain.StatusLead {
			return nil
		}

		if err := tx.IncrementInterestScore(ctx, contact.ID); err != nil {
			return err
		}
		if err := tx.UpdateContactStatus(ctx, contact.ID, domain.StatusMQL); err != nil {
			return err
		}
		if err := tx.AppendHistory(ctx, contact.ID, domain.StatusLead, domain.StatusMQL, nil); err != nil {
			return err
		}

		result.NewStatus = domain.StatusMQL
		result.Applied = true
		fx.events = append(fx.events, events.ContactStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			ContactID: contact.ID,
			OldStatus: domain.StatusLead,
			NewStatus: domain.StatusMQL,
		})
		return nil
	})
	if err != nil {
		return TransitionResult{}, err
	}

	if result.Applied {
		s.log.Transition(result.ContactID.String(), string(result.OldStatus), string(result.NewStatus), "system")
		s.runEffects(ctx, fx)
	}
	return result, nil
}

// PromoteToMQL is the manual LEAD→MQL transition performed by an employee.
func (s *Service) PromoteToMQL(ctx context.Context, contactID uuid.UUID, actorID uuid.UUID) (TransitionResult, error) {
	return s.transition(ctx, contactID, &actorID, func(ctx context.Context, tx TxStore, contact repository.Contact, fx *commitEffects) (TransitionResult, error) {
		if contact.Status != domain.StatusLead {
			return TransitionResult{}, apperr.InvalidState(
				"only LEAD can be promoted to MQL",
				string(contact.Status), string(domain.StatusLead),
			)
		}
		return TransitionResult{NewStatus: domain.StatusMQL, Applied: true}, nil
	})
}

// QualifyToSQL is the MQL→SQL transition, gated on the average MQL-stage
// session rating. The gate is re-evaluated inside the transaction so the
// decision reflects the ratings as of commit time.
func (s *Service) QualifyToSQL(ctx context.Context, contactID uuid.UUID, actorID uuid.UUID) (TransitionResult, error) {
	return s.transition(ctx, contactID, &actorID, func(ctx context.Context, tx TxStore, contact repository.Contact, fx *commitEffects) (TransitionResult, error) {
		if contact.Status != domain.StatusMQL {
			return TransitionResult{}, apperr.InvalidState(
				"only MQL can be qualified to SQL",
				string(contact.Status), string(domain.StatusMQL),
			)
		}

		rating, err := signals.QualificationRating(ctx, tx, contact.ID)
		if err != nil {
			return TransitionResult{}, err
		}
		if rating < domain.QualificationGate {
			return TransitionResult{}, apperr.GateUnsatisfied("not qualified", rating, domain.QualificationGate)
		}

		return TransitionResult{NewStatus: domain.StatusSQL, Applied: true}, nil
	})
}

// OpenOpportunity is the SQL→OPPORTUNITY transition. It creates the contact's
// OPEN opportunity; a second concurrent attempt loses either on the row lock
// re-check or on the partial unique index, both surfacing as a conflict.
func (s *Service) OpenOpportunity(ctx context.Context, contactID uuid.UUID, actorID *uuid.UUID, expectedValueCents int64) (TransitionResult, error) {
	return s.transition(ctx, contactID, actorID, func(ctx context.Context, tx TxStore, contact repository.Contact, fx *commitEffects) (TransitionResult, error) {
		if contact.Status != domain.StatusSQL {
			return TransitionResult{}, apperr.InvalidState(
				"only SQL can be converted to an opportunity",
				string(contact.Status), string(domain.StatusSQL),
			)
		}

		open, err := tx.HasOpenOpportunity(ctx, contact.ID)
		if err != nil {
			return TransitionResult{}, err
		}
		if open {
			return TransitionResult{}, apperr.Conflict("an open opportunity already exists for this contact")
		}

		opp, err := tx.InsertOpportunity(ctx, contact.ID, expectedValueCents)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return TransitionResult{}, apperr.Conflict("an open opportunity already exists for this contact")
			}
			return TransitionResult{}, err
		}

		if contact.AssignedEmployeeID != nil {
			if err := s.enqueueInApp(ctx, tx, fx, contact, "opportunity_opened",
				fmt.Sprintf("Opportunity opened for %s %s", contact.FirstName, contact.LastName)); err != nil {
				return TransitionResult{}, err
			}
		}

		fx.events = append(fx.events, events.OpportunityOpened{
			BaseEvent:          events.NewBaseEvent(),
			ContactID:          contact.ID,
			OpportunityID:      opp.ID,
			ExpectedValueCents: opp.ExpectedValueCents,
			OpenedBy:           actorID,
		})
		return TransitionResult{NewStatus: domain.StatusOpportunity, Applied: true, OpportunityID: &opp.ID}, nil
	})
}

// WinOpportunity is the OPPORTUNITY→CUSTOMER transition: it closes the OPEN
// opportunity as WON and creates its single immutable deal.
func (s *Service) WinOpportunity(ctx context.Context, contactID uuid.UUID, actorID *uuid.UUID, dealValueCents int64) (TransitionResult, error) {
	return s.transition(ctx, contactID, actorID, func(ctx context.Context, tx TxStore, contact repository.Contact, fx *commitEffects) (TransitionResult, error) {
		opp, err := s.openOpportunityFor(ctx, tx, contact)
		if err != nil {
			return TransitionResult{}, err
		}

		hasDeal, err := tx.HasDeal(ctx, opp.ID)
		if err != nil {
			return TransitionResult{}, err
		}
		if hasDeal {
			return TransitionResult{}, apperr.Conflict("a deal already exists for this opportunity")
		}

		deal, err := tx.InsertDeal(ctx, opp.ID, dealValueCents, actorID)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return TransitionResult{}, apperr.Conflict("a deal already exists for this opportunity")
			}
			return TransitionResult{}, err
		}
		if err := tx.CloseOpportunity(ctx, opp.ID, domain.OpportunityWon, nil); err != nil {
			return TransitionResult{}, err
		}

		if contact.AssignedEmployeeID != nil {
			if err := s.enqueueInApp(ctx, tx, fx, contact, "deal_closed",
				fmt.Sprintf("Deal closed for %s %s", contact.FirstName, contact.LastName)); err != nil {
				return TransitionResult{}, err
			}
		}
		if contact.Email != nil && *contact.Email != "" {
			outboxID, err := tx.EnqueueSideEffect(ctx, repository.SideEffectParams{
				ContactID: contact.ID,
				Kind:      SideEffectDealWonEmail,
				Payload: map[string]any{
					"email":          *contact.Email,
					"firstName":      contact.FirstName,
					"dealValueCents": deal.DealValueCents,
				},
			})
			if err != nil {
				return TransitionResult{}, err
			}
			fx.outboxIDs = append(fx.outboxIDs, outboxID)
		}

		fx.events = append(fx.events, events.OpportunityWon{
			BaseEvent:      events.NewBaseEvent(),
			ContactID:      contact.ID,
			OpportunityID:  opp.ID,
			DealID:         deal.ID,
			DealValueCents: deal.DealValueCents,
			ClosedBy:       actorID,
		})
		return TransitionResult{
			NewStatus:     domain.StatusCustomer,
			Applied:       true,
			OpportunityID: &opp.ID,
			DealID:        &deal.ID,
		}, nil
	})
}

// LoseOpportunity is the OPPORTUNITY→DORMANT transition: it closes the OPEN
// opportunity as LOST with a reason.
func (s *Service) LoseOpportunity(ctx context.Context, contactID uuid.UUID, actorID *uuid.UUID, reason string) (TransitionResult, error) {
	return s.transition(ctx, contactID, actorID, func(ctx context.Context, tx TxStore, contact repository.Contact, fx *commitEffects) (TransitionResult, error) {
		opp, err := s.openOpportunityFor(ctx, tx, contact)
		if err != nil {
			return TransitionResult{}, err
		}

		var reasonPtr *string
		if reason != "" {
			reasonPtr = &reason
		}
		if err := tx.CloseOpportunity(ctx, opp.ID, domain.OpportunityLost, reasonPtr); err != nil {
			return TransitionResult{}, err
		}

		fx.events = append(fx.events, events.OpportunityLost{
			BaseEvent:     events.NewBaseEvent(),
			ContactID:     contact.ID,
			OpportunityID: opp.ID,
			Reason:        reason,
			ClosedBy:      actorID,
		})
		return TransitionResult{NewStatus: domain.StatusDormant, Applied: true, OpportunityID: &opp.ID}, nil
	})
}

// PromoteToEvangelist is the CUSTOMER→EVANGELIST transition, gated on the
// average feedback rating. actorID is nil when triggered by the system after
// a feedback insert.
func (s *Service) PromoteToEvangelist(ctx context.Context, contactID uuid.UUID, actorID *uuid.UUID) (TransitionResult, error) {
	return s.transition(ctx, contactID, actorID, func(ctx context.Context, tx TxStore, contact repository.Contact, fx *commitEffects) (TransitionResult, error) {
		if contact.Status != domain.StatusCustomer {
			return TransitionResult{}, apperr.InvalidState(
				"only CUSTOMER can be promoted to EVANGELIST",
				string(contact.Status), string(domain.StatusCustomer),
			)
		}

		rating, err := signals.EvangelistRating(ctx, tx, contact.ID)
		if err != nil {
			return TransitionResult{}, err
		}
		if rating < domain.EvangelistGate {
			return TransitionResult{}, apperr.GateUnsatisfied("not eligible", rating, domain.EvangelistGate)
		}

		return TransitionResult{NewStatus: domain.StatusEvangelist, Applied: true}, nil
	})
}

// Deactivate is the administrative transition to DORMANT from any
// non-terminal status. An OPEN opportunity, if present, is closed LOST with
// the same reason so the one-open-opportunity bookkeeping stays consistent.
func (s *Service) Deactivate(ctx context.Context, contactID uuid.UUID, actorID uuid.UUID, reason string) (TransitionResult, error) {
	return s.transition(ctx, contactID, &actorID, func(ctx context.Context, tx TxStore, contact repository.Contact, fx *commitEffects) (TransitionResult, error) {
		if domain.IsTerminal(contact.Status) {
			return TransitionResult{}, apperr.InvalidState(
				"contact is in a terminal status",
				string(contact.Status), string(domain.StatusDormant),
			)
		}

		opp, err := tx.GetOpenOpportunityForUpdate(ctx, contact.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return TransitionResult{}, err
		}
		if err == nil {
			var reasonPtr *string
			if reason != "" {
				reasonPtr = &reason
			}
			if err := tx.CloseOpportunity(ctx, opp.ID, domain.OpportunityLost, reasonPtr); err != nil {
				return TransitionResult{}, err
			}
		}

		return TransitionResult{NewStatus: domain.StatusDormant, Applied: true}, nil
	})
}

// transitionFn validates the requested transition against the locked contact
// and returns the result skeleton. The surrounding transition helper writes
// the status, appends history and publishes the status-changed event.
type transitionFn func(ctx context.Context, tx TxStore, contact repository.Contact, fx *commitEffects) (TransitionResult, error)

func (s *Service) transition(ctx context.Context, contactID uuid.UUID, actorID *uuid.UUID, fn transitionFn) (TransitionResult, error) {
	var result TransitionResult
	fx := &commitEffects{}

	err := s.store.Transact(ctx, func(tx TxStore) error {
		contact, err := tx.GetContactForUpdate(ctx, contactID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("contact not found")
		}
		if err != nil {
			return err
		}

		result, err = fn(ctx, tx, contact, fx)
		if err != nil {
			return err
		}
		result.ContactID = contact.ID
		result.OldStatus = contact.Status

		if !domain.CanTransition(contact.Status, result.NewStatus) {
			return apperr.InvalidState(
				"transition not allowed from current status",
				string(contact.Status), string(result.NewStatus),
			)
		}

		if err := tx.UpdateContactStatus(ctx, contact.ID, result.NewStatus); err != nil {
			return err
		}
		if err := tx.AppendHistory(ctx, contact.ID, contact.Status, result.NewStatus, actorID); err != nil {
			return err
		}

		fx.events = append(fx.events, events.ContactStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			ContactID: contact.ID,
			OldStatus: contact.Status,
			NewStatus: result.NewStatus,
			ChangedBy: actorID,
		})
		return nil
	})
	if err != nil {
		s.log.TransitionRejected(contactID.String(), "", err)
		return TransitionResult{}, err
	}

	actor := "system"
	if actorID != nil {
		actor = actorID.String()
	}
	s.log.Transition(result.ContactID.String(), string(result.OldStatus), string(result.NewStatus), actor)
	s.runEffects(ctx, fx)
	return result, nil
}

// openOpportunityFor resolves the locked OPEN opportunity for a contact in
// OPPORTUNITY status.
func (s *Service) openOpportunityFor(ctx context.Context, tx TxStore, contact repository.Contact) (repository.Opportunity, error) {
	if contact.Status != domain.StatusOpportunity {
		return repository.Opportunity{}, apperr.InvalidState(
			"contact has no open opportunity",
			string(contact.Status), string(domain.StatusOpportunity),
		)
	}

	opp, err := tx.GetOpenOpportunityForUpdate(ctx, contact.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Opportunity{}, apperr.InvalidState(
			"opportunity is not open",
			string(contact.Status), string(domain.StatusOpportunity),
		)
	}
	if err != nil {
		return repository.Opportunity{}, err
	}
	return opp, nil
}

func (s *Service) enqueueInApp(ctx context.Context, tx TxStore, fx *commitEffects, contact repository.Contact, kind, title string) error {
	outboxID, err := tx.EnqueueSideEffect(ctx, repository.SideEffectParams{
		ContactID: contact.ID,
		Kind:      SideEffectInApp,
		Payload: map[string]string{
			"employeeId": contact.AssignedEmployeeID.String(),
			"kind":       kind,
			"title":      title,
		},
	})
	if err != nil {
		return err
	}
	fx.outboxIDs = append(fx.outboxIDs, outboxID)
	return nil
}
