package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/notify"
	"github.com/granaevo/granaevo-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// GoalService handles goal (meta) business logic
type GoalService struct {
	sessions       *SessionManager
	notifier       notify.GoalNotifier
	eventPublisher websocket.EventPublisher
	now            func() time.Time
}

// NewGoalService creates a new GoalService
func NewGoalService(sessions *SessionManager, notifier notify.GoalNotifier) *GoalService {
	if notifier == nil {
		notifier = notify.NoOpNotifier{}
	}
	return &GoalService{
		sessions: sessions,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *GoalService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *GoalService) publishEvent(accountID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(accountID, event)
	}
}

// GoalInput contains input for creating or editing a goal
type GoalInput struct {
	Description string
	Target      decimal.Decimal
}

// GoalMovementInput contains input for a contribution or withdrawal
type GoalMovementInput struct {
	ProfileID int32
	Amount    decimal.Decimal
	Date      time.Time
	Reason    string
}

// GoalMovementResult is the goal after the movement plus the transaction recorded for it
type GoalMovementResult struct {
	Goal        domain.GoalView    `json:"goal"`
	Transaction domain.Transaction `json:"transaction"`
}

// RemoveGoalResult reports what a goal removal changed
type RemoveGoalResult struct {
	GoalID              int32 `json:"goalId"`
	ClearedTransactions int   `json:"clearedTransactions"`
}

// ListGoals returns every goal of the account with its computed progress
func (s *GoalService) ListGoals(ctx context.Context, accountID uuid.UUID) ([]domain.GoalView, error) {
	var views []domain.GoalView
	err := s.sessions.Read(ctx, accountID, func(st *domain.AccountState) error {
		views = make([]domain.GoalView, 0, len(st.Goals))
		for i := range st.Goals {
			views = append(views, st.Goals[i].View())
		}
		return nil
	})
	return views, err
}

// CreateGoal validates input and adds a goal with the next sequential id
func (s *GoalService) CreateGoal(ctx context.Context, accountID uuid.UUID, input GoalInput) (domain.Outcome[domain.GoalView], error) {
	var view domain.GoalView
	err := s.sessions.Update(ctx, accountID, func(tx *AccountTx) error {
		g, err := tx.State.CreateGoal(input.Description, input.Target, s.now())
		if err != nil {
			return err
		}
		view = g.View()
		return nil
	})

	out, err := toOutcome(view, err)
	if out.IsOK() {
		log.Info().Str("account_id", accountID.String()).Int32("goal_id", view.ID).Msg("Goal created")
		s.publishEvent(accountID, websocket.GoalCreated(view))
	}
	return out, err
}

// EditGoal changes description and target of an existing goal
func (s *GoalService) EditGoal(ctx context.Context, accountID uuid.UUID, id int32, input GoalInput) (domain.Outcome[domain.GoalView], error) {
	var view domain.GoalView
	var completed bool
	err := s.sessions.Update(ctx, accountID, func(tx *AccountTx) error {
		existing, err := tx.State.Goal(id)
		if err != nil {
			return err
		}
		wasCompleted := existing.Status() == domain.GoalStatusCompleted
		g, err := tx.State.EditGoal(id, input.Description, input.Target)
		if err != nil {
			return err
		}
		view = g.View()
		completed = !wasCompleted && view.Status == domain.GoalStatusCompleted
		return nil
	})

	out, err := toOutcome(view, err)
	if out.IsOK() {
		s.publishEvent(accountID, websocket.GoalUpdated(view))
		if completed {
			s.goalCompleted(ctx, accountID, view)
		}
	}
	return out, err
}

// RemoveGoal deletes a goal after explicit confirmation. Transactions that
// referenced it are kept with their metaId cleared.
func (s *GoalService) RemoveGoal(ctx context.Context, accountID uuid.UUID, id int32, confirmed bool) (domain.Outcome[RemoveGoalResult], error) {
	result := RemoveGoalResult{GoalID: id}
	err := s.sessions.Update(ctx, accountID, func(tx *AccountTx) error {
		if _, err := tx.State.Goal(id); err != nil {
			return err
		}
		if !confirmed {
			return domain.ErrConfirmationRequired
		}

		for _, p := range tx.State.Profiles {
			data, err := tx.ProfileData(p.ID)
			if IsMalformed(err) {
				log.Warn().
					Err(err).
					Str("account_id", accountID.String()).
					Int32("profile_id", p.ID).
					Msg("Skipping malformed profile while clearing goal references")
				continue
			}
			if err != nil {
				return err
			}
			if n := data.ClearGoalReference(id); n > 0 {
				result.ClearedTransactions += n
				tx.Touch(p.ID)
			}
		}

		return tx.State.RemoveGoal(id)
	})

	out, err := toOutcome(result, err)
	if out.IsOK() {
		log.Info().
			Str("account_id", accountID.String()).
			Int32("goal_id", id).
			Int("cleared_transactions", result.ClearedTransactions).
			Msg("Goal removed")
		s.publishEvent(accountID, websocket.GoalDeleted(result))
	}
	return out, err
}

// Contribute adds money to a goal and records it as a "reserva" expense on the contributing profile
func (s *GoalService) Contribute(ctx context.Context, accountID uuid.UUID, id int32, input GoalMovementInput) (domain.Outcome[GoalMovementResult], error) {
	return s.move(ctx, accountID, id, input, func(g *domain.Goal, date time.Time) error {
		return g.Contribute(input.Amount, date)
	}, domain.TransactionTypeExpense, domain.CategoryGoalContribution)
}

// Withdraw takes money out of a goal and records it as a "retirada_reserva" income
func (s *GoalService) Withdraw(ctx context.Context, accountID uuid.UUID, id int32, input GoalMovementInput) (domain.Outcome[GoalMovementResult], error) {
	return s.move(ctx, accountID, id, input, func(g *domain.Goal, date time.Time) error {
		return g.Withdraw(input.Amount, date, input.Reason)
	}, domain.TransactionTypeIncome, domain.CategoryGoalWithdrawal)
}

func (s *GoalService) move(
	ctx context.Context,
	accountID uuid.UUID,
	id int32,
	input GoalMovementInput,
	apply func(*domain.Goal, time.Time) error,
	txType domain.TransactionType,
	category string,
) (domain.Outcome[GoalMovementResult], error) {
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}

	var result GoalMovementResult
	var completed bool
	err := s.sessions.Update(ctx, accountID, func(tx *AccountTx) error {
		g, err := tx.State.Goal(id)
		if err != nil {
			return err
		}
		if _, err := tx.State.Profile(input.ProfileID); err != nil {
			return err
		}
		wasCompleted := g.Status() == domain.GoalStatusCompleted

		if err := apply(g, date); err != nil {
			return err
		}

		description := g.Description
		if txType == domain.TransactionTypeIncome && input.Reason != "" {
			description = g.Description + ": " + input.Reason
		}
		goalID := g.ID
		record, err := domain.NewTransaction(input.ProfileID, domain.TransactionInput{
			Type:        txType,
			Category:    category,
			Description: description,
			Amount:      input.Amount,
			Date:        date,
			MetaID:      &goalID,
		})
		if err != nil {
			return err
		}

		data, err := tx.ProfileData(input.ProfileID)
		if err != nil {
			return err
		}
		data.Append(record)
		tx.Touch(input.ProfileID)

		result = GoalMovementResult{Goal: g.View(), Transaction: record}
		completed = !wasCompleted && result.Goal.Status == domain.GoalStatusCompleted
		return nil
	})

	out, err := toOutcome(result, err)
	if out.IsOK() {
		s.publishEvent(accountID, websocket.GoalUpdated(result.Goal))
		s.publishEvent(accountID, websocket.TransactionCreated(result.Transaction))
		if completed {
			s.goalCompleted(ctx, accountID, result.Goal)
		}
	}
	return out, err
}

func (s *GoalService) goalCompleted(ctx context.Context, accountID uuid.UUID, view domain.GoalView) {
	log.Info().
		Str("account_id", accountID.String()).
		Int32("goal_id", view.ID).
		Str("saved", view.Saved.StringFixed(2)).
		Msg("Goal completed")

	s.publishEvent(accountID, websocket.GoalCompleted(view))

	msg := notify.NewGoalCompletedMessage(accountID, view.ID, view.Description, view.Target, view.Saved)
	if err := s.notifier.NotifyGoalCompleted(ctx, msg); err != nil {
		log.Error().Err(err).Int32("goal_id", view.ID).Msg("Failed to publish goal completed notification")
	}
}

// Reconcile lists goals whose saved value disagrees with their contribution
// and withdrawal history
func (s *GoalService) Reconcile(ctx context.Context, accountID uuid.UUID) ([]domain.GoalDiscrepancy, error) {
	out := []domain.GoalDiscrepancy{}
	err := s.sessions.Read(ctx, accountID, func(st *domain.AccountState) error {
		for i := range st.Goals {
			g := &st.Goals[i]
			diff := g.Reconcile()
			if diff.IsZero() {
				continue
			}
			out = append(out, domain.GoalDiscrepancy{
				GoalID:      g.ID,
				Description: g.Description,
				Saved:       g.Saved,
				Expected:    g.ExpectedSaved(),
				Difference:  diff,
			})
		}
		return nil
	})
	if len(out) > 0 {
		log.Warn().Str("account_id", accountID.String()).Int("count", len(out)).Msg("Goal reconciliation found discrepancies")
	}
	return out, err
}
