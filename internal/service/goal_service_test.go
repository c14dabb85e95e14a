package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type goalFixture struct {
	store     *testutil.MockStore
	svc       *GoalService
	notifier  *testutil.MockGoalNotifier
	publisher *testutil.RecordingPublisher
	accountID uuid.UUID
}

func newGoalFixture(t *testing.T) *goalFixture {
	t.Helper()
	store, sessions, accountID := seedAccount(t, "Ana", "Bia")
	notifier := &testutil.MockGoalNotifier{}
	publisher := &testutil.RecordingPublisher{}

	svc := NewGoalService(sessions, notifier)
	svc.SetEventPublisher(publisher)
	svc.now = func() time.Time { return testNow }

	return &goalFixture{store: store, svc: svc, notifier: notifier, publisher: publisher, accountID: accountID}
}

func (f *goalFixture) createGoal(t *testing.T, description, target string) domain.GoalView {
	t.Helper()
	out, err := f.svc.CreateGoal(context.Background(), f.accountID, GoalInput{Description: description, Target: mustDec(target)})
	require.NoError(t, err)
	require.True(t, out.IsOK(), "create goal: %s", out.Message)
	return out.Value
}

func TestGoalService_CreateGoal_AssignsSequentialIDs(t *testing.T) {
	f := newGoalFixture(t)

	first := f.createGoal(t, "  Viagem  ", "1000")
	second := f.createGoal(t, "Carro", "50000")

	assert.Equal(t, int32(1), first.ID)
	assert.Equal(t, "Viagem", first.Description)
	assert.Equal(t, int32(2), second.ID)
	assert.Equal(t, "0.0", first.Progress.StringFixed(1))
	assert.Equal(t, domain.ProgressColorRed, first.Color)
	assert.Equal(t, domain.GoalStatusActive, first.Status)
	assert.Equal(t, []string{"goal.created", "goal.created"}, f.publisher.Types())
	assert.Equal(t, int32(3), f.store.State(f.accountID).NextGoalID)
}

func TestGoalService_CreateGoal_InvalidInputKeepsCounter(t *testing.T) {
	f := newGoalFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input GoalInput
		code  string
	}{
		{"empty description", GoalInput{Description: "   ", Target: mustDec("100")}, "description_required"},
		{"zero target", GoalInput{Description: "Viagem", Target: mustDec("0")}, "invalid_target"},
		{"negative target", GoalInput{Description: "Viagem", Target: mustDec("-5")}, "invalid_target"},
		{"three decimals", GoalInput{Description: "Viagem", Target: mustDec("10.005")}, "invalid_target"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.svc.CreateGoal(ctx, f.accountID, tt.input)
			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeInvalid, out.Kind)
			assert.Equal(t, tt.code, out.Code)
		})
	}

	goals, err := f.svc.ListGoals(ctx, f.accountID)
	require.NoError(t, err)
	assert.Empty(t, goals)
	assert.Equal(t, 0, f.store.StateSaves)
	assert.Empty(t, f.publisher.Events)

	assert.Equal(t, int32(1), f.createGoal(t, "Viagem", "1000").ID)
}

func TestGoalService_ViagemReachesTarget(t *testing.T) {
	f := newGoalFixture(t)
	ctx := context.Background()
	goal := f.createGoal(t, "Viagem", "1000")

	out, err := f.svc.Contribute(ctx, f.accountID, goal.ID, GoalMovementInput{ProfileID: 1, Amount: mustDec("700"), Date: day(2024, 3, 10)})
	require.NoError(t, err)
	require.True(t, out.IsOK())
	assert.Equal(t, "70.0", out.Value.Goal.Progress.StringFixed(1))
	assert.Equal(t, domain.ProgressColorYellow, out.Value.Goal.Color)
	assert.Equal(t, domain.GoalStatusActive, out.Value.Goal.Status)
	assert.Empty(t, f.notifier.Messages)

	tx := out.Value.Transaction
	assert.Equal(t, domain.TransactionTypeExpense, tx.Type)
	assert.Equal(t, domain.CategoryGoalContribution, tx.Category)
	require.NotNil(t, tx.MetaID)
	assert.Equal(t, goal.ID, *tx.MetaID)

	out, err = f.svc.Contribute(ctx, f.accountID, goal.ID, GoalMovementInput{ProfileID: 2, Amount: mustDec("300"), Date: day(2024, 4, 2)})
	require.NoError(t, err)
	require.True(t, out.IsOK())
	assert.Equal(t, "100.0", out.Value.Goal.Progress.StringFixed(1))
	assert.Equal(t, domain.ProgressColorGreen, out.Value.Goal.Color)
	assert.Equal(t, domain.GoalStatusCompleted, out.Value.Goal.Status)
	assert.Equal(t, "1000.00", out.Value.Goal.Saved.StringFixed(2))
	assert.Equal(t, "700.00", out.Value.Goal.Monthly["2024-03"].StringFixed(2))
	assert.Equal(t, "300.00", out.Value.Goal.Monthly["2024-04"].StringFixed(2))

	assert.Contains(t, f.publisher.Types(), "goal.completed")
	require.Len(t, f.notifier.Messages, 1)
	assert.Equal(t, f.accountID, f.notifier.Messages[0].AccountID)
	assert.Equal(t, "Viagem", f.notifier.Messages[0].Description)

	assert.Len(t, f.store.Transactions(f.accountID, 1), 1)
	assert.Len(t, f.store.Transactions(f.accountID, 2), 1)

	// further contributions do not re-announce completion
	_, err = f.svc.Contribute(ctx, f.accountID, goal.ID, GoalMovementInput{ProfileID: 1, Amount: mustDec("50")})
	require.NoError(t, err)
	assert.Len(t, f.notifier.Messages, 1)
}

func TestGoalService_NotifierFailureDoesNotFailContribution(t *testing.T) {
	f := newGoalFixture(t)
	f.notifier.Err = errors.New("broker down")
	goal := f.createGoal(t, "Celular", "100")

	out, err := f.svc.Contribute(context.Background(), f.accountID, goal.ID, GoalMovementInput{ProfileID: 1, Amount: mustDec("100")})
	require.NoError(t, err)
	require.True(t, out.IsOK())
	assert.Equal(t, domain.GoalStatusCompleted, out.Value.Goal.Status)
	assert.Contains(t, f.publisher.Types(), "goal.completed")
}

func TestGoalService_Withdraw(t *testing.T) {
	f := newGoalFixture(t)
	ctx := context.Background()
	goal := f.createGoal(t, "Reserva de emergência", "5000")

	_, err := f.svc.Contribute(ctx, f.accountID, goal.ID, GoalMovementInput{ProfileID: 1, Amount: mustDec("800")})
	require.NoError(t, err)

	t.Run("more than saved", func(t *testing.T) {
		out, err := f.svc.Withdraw(ctx, f.accountID, goal.ID, GoalMovementInput{ProfileID: 1, Amount: mustDec("800.01")})
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeInvalid, out.Kind)
		assert.Equal(t, "insufficient_saved", out.Code)
	})

	t.Run("records income", func(t *testing.T) {
		out, err := f.svc.Withdraw(ctx, f.accountID, goal.ID, GoalMovementInput{
			ProfileID: 2, Amount: mustDec("200"), Date: day(2024, 3, 15), Reason: "conserto do carro",
		})
		require.NoError(t, err)
		require.True(t, out.IsOK())

		assert.Equal(t, "600.00", out.Value.Goal.Saved.StringFixed(2))
		require.Len(t, out.Value.Goal.Withdrawals, 1)
		assert.Equal(t, "conserto do carro", out.Value.Goal.Withdrawals[0].Reason)

		tx := out.Value.Transaction
		assert.Equal(t, domain.TransactionTypeIncome, tx.Type)
		assert.Equal(t, domain.CategoryGoalWithdrawal, tx.Category)
		assert.Equal(t, "Reserva de emergência: conserto do carro", tx.Description)
		assert.Equal(t, int32(2), tx.ProfileID)
	})

	discrepancies, err := f.svc.Reconcile(ctx, f.accountID)
	require.NoError(t, err)
	assert.Empty(t, discrepancies)
}

func TestGoalService_MovementErrors(t *testing.T) {
	f := newGoalFixture(t)
	ctx := context.Background()
	goal := f.createGoal(t, "Viagem", "1000")

	out, err := f.svc.Contribute(ctx, f.accountID, 42, GoalMovementInput{ProfileID: 1, Amount: mustDec("10")})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNotFound, out.Kind)

	out, err = f.svc.Contribute(ctx, f.accountID, goal.ID, GoalMovementInput{ProfileID: 9, Amount: mustDec("10")})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNotFound, out.Kind)
	assert.Equal(t, "profile_not_found", out.Code)

	out, err = f.svc.Contribute(ctx, f.accountID, goal.ID, GoalMovementInput{ProfileID: 1, Amount: mustDec("0")})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeInvalid, out.Kind)

	goals, err := f.svc.ListGoals(ctx, f.accountID)
	require.NoError(t, err)
	assert.True(t, goals[0].Saved.IsZero())
	assert.Empty(t, f.store.Transactions(f.accountID, 1))
}

func TestGoalService_EditGoal(t *testing.T) {
	f := newGoalFixture(t)
	ctx := context.Background()
	goal := f.createGoal(t, "Viagem", "1000")
	_, err := f.svc.Contribute(ctx, f.accountID, goal.ID, GoalMovementInput{ProfileID: 1, Amount: mustDec("500")})
	require.NoError(t, err)

	out, err := f.svc.EditGoal(ctx, f.accountID, goal.ID, GoalInput{Description: "Viagem ao Chile", Target: mustDec("500")})
	require.NoError(t, err)
	require.True(t, out.IsOK())
	assert.Equal(t, "Viagem ao Chile", out.Value.Description)
	assert.Equal(t, domain.GoalStatusCompleted, out.Value.Status)
	assert.Len(t, f.notifier.Messages, 1)

	missing, err := f.svc.EditGoal(ctx, f.accountID, 99, GoalInput{Description: "x", Target: mustDec("1")})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNotFound, missing.Kind)
}

func TestGoalService_RemoveGoal_ClearsOnlyMetaID(t *testing.T) {
	f := newGoalFixture(t)
	ctx := context.Background()
	viagem := f.createGoal(t, "Viagem", "1000")
	carro := f.createGoal(t, "Carro", "30000")

	_, err := f.svc.Contribute(ctx, f.accountID, viagem.ID, GoalMovementInput{ProfileID: 1, Amount: mustDec("100"), Date: day(2024, 3, 1)})
	require.NoError(t, err)
	_, err = f.svc.Contribute(ctx, f.accountID, viagem.ID, GoalMovementInput{ProfileID: 2, Amount: mustDec("50"), Date: day(2024, 3, 2)})
	require.NoError(t, err)
	_, err = f.svc.Contribute(ctx, f.accountID, carro.ID, GoalMovementInput{ProfileID: 1, Amount: mustDec("75"), Date: day(2024, 3, 3)})
	require.NoError(t, err)
	before := f.store.Transactions(f.accountID, 1)

	unconfirmed, err := f.svc.RemoveGoal(ctx, f.accountID, viagem.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeInvalid, unconfirmed.Kind)
	assert.Equal(t, "confirmation_required", unconfirmed.Code)

	out, err := f.svc.RemoveGoal(ctx, f.accountID, viagem.ID, true)
	require.NoError(t, err)
	require.True(t, out.IsOK())
	assert.Equal(t, 2, out.Value.ClearedTransactions)

	after := f.store.Transactions(f.accountID, 1)
	require.Len(t, after, 2)
	assert.Nil(t, after[0].MetaID)
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.True(t, before[0].Amount.Equal(after[0].Amount))
	assert.Equal(t, before[0].Category, after[0].Category)
	assert.Equal(t, before[0].Date, after[0].Date)
	require.NotNil(t, after[1].MetaID)
	assert.Equal(t, carro.ID, *after[1].MetaID)

	bia := f.store.Transactions(f.accountID, 2)
	require.Len(t, bia, 1)
	assert.Nil(t, bia[0].MetaID)

	goals, err := f.svc.ListGoals(ctx, f.accountID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, carro.ID, goals[0].ID)

	again, err := f.svc.RemoveGoal(ctx, f.accountID, viagem.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNotFound, again.Kind)

	// ids are never reused
	assert.Equal(t, int32(3), f.createGoal(t, "Casa", "100000").ID)
}

func TestGoalService_RemoveGoal_SkipsMalformedProfile(t *testing.T) {
	f := newGoalFixture(t)
	ctx := context.Background()
	goal := f.createGoal(t, "Viagem", "1000")
	_, err := f.svc.Contribute(ctx, f.accountID, goal.ID, GoalMovementInput{ProfileID: 1, Amount: mustDec("10")})
	require.NoError(t, err)
	f.store.PutProfileDocument(f.accountID, 2, []byte(`{`))

	out, err := f.svc.RemoveGoal(ctx, f.accountID, goal.ID, true)
	require.NoError(t, err)
	require.True(t, out.IsOK())
	assert.Equal(t, 1, out.Value.ClearedTransactions)
	assert.Equal(t, []byte(`{`), mustRaw(t, f.store, f.accountID, 2))
}

func TestGoalService_Reconcile_FindsDrift(t *testing.T) {
	f := newGoalFixture(t)
	ctx := context.Background()
	goal := f.createGoal(t, "Viagem", "1000")
	_, err := f.svc.Contribute(ctx, f.accountID, goal.ID, GoalMovementInput{ProfileID: 1, Amount: mustDec("100")})
	require.NoError(t, err)

	st := f.store.State(f.accountID)
	st.Goals[0].Saved = mustDec("130")
	f.store.PutState(st)
	f.svc.sessions.Close(f.accountID)

	out, err := f.svc.Reconcile(ctx, f.accountID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, goal.ID, out[0].GoalID)
	assert.Equal(t, "100.00", out[0].Expected.StringFixed(2))
	assert.Equal(t, "30.00", out[0].Difference.StringFixed(2))
}
