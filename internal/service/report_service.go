package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// ReportService runs the aggregation pipeline and owns the account's view filter
type ReportService struct {
	sessions       *SessionManager
	eventPublisher websocket.EventPublisher
	now            func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(sessions *SessionManager) *ReportService {
	return &ReportService{sessions: sessions, now: time.Now}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ReportService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ReportService) publishEvent(accountID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(accountID, event)
	}
}

// ReportReadyPayload is the summary pushed when a report has been computed
type ReportReadyPayload struct {
	Mode  domain.ReportMode `json:"mode"`
	Scope domain.Scope      `json:"scope"`
	Month int               `json:"month"`
	Year  int               `json:"year"`
	Count int               `json:"count"`
}

// Build runs Aggregate, then either the period filter and metrics (combined
// mode) or a per-profile split of the raw sequences (comparison mode).
// The account lock is held for the whole run so documents are read consistently.
func (s *ReportService) Build(ctx context.Context, accountID uuid.UUID, req domain.ReportRequest) (domain.Outcome[*domain.Report], error) {
	var out domain.Outcome[*domain.Report]
	err := s.sessions.Read(ctx, accountID, func(st *domain.AccountState) error {
		filter := st.Filter
		if req.Filter != nil {
			filter = *req.Filter
		}

		profiles := st.Profiles
		if len(req.ProfileIDs) > 0 {
			selected, err := st.ProfilesByID(req.ProfileIDs)
			if err != nil {
				out, _ = domain.OutcomeFromError[*domain.Report](err)
				return nil
			}
			profiles = selected
		}

		var err error
		out, err = s.build(ctx, accountID, profiles, filter, req.Range)
		return err
	})
	if err != nil {
		return domain.Outcome[*domain.Report]{}, err
	}

	if out.IsOK() {
		r := out.Value
		count := len(r.Transactions)
		if r.Mode == domain.ReportModeComparison {
			count = 0
			for _, p := range r.Comparison {
				count += len(p.Transactions)
			}
		}
		s.publishEvent(accountID, websocket.ReportReady(ReportReadyPayload{
			Mode:  r.Mode,
			Scope: r.Filter.Scope,
			Month: r.Filter.Month,
			Year:  r.Filter.Year,
			Count: count,
		}))
	}
	return out, nil
}

func (s *ReportService) build(ctx context.Context, accountID uuid.UUID, profiles []domain.Profile, filter domain.Filter, period *domain.PeriodRange) (domain.Outcome[*domain.Report], error) {
	aggregated, err := Aggregate(ctx, s.sessions.Store(), accountID, profiles, filter.Scope)
	if err != nil {
		return domain.Outcome[*domain.Report]{}, err
	}
	if !aggregated.IsOK() {
		return domain.Recast[*domain.Report](aggregated), nil
	}

	report := &domain.Report{
		Mode:        filter.Mode(),
		Filter:      filter,
		GeneratedAt: s.now().UTC(),
	}

	if report.Mode == domain.ReportModeComparison {
		report.Comparison = SplitByProfile(profiles, aggregated.Value)
		return domain.Ok(report), nil
	}

	var inPeriod domain.Outcome[[]domain.AggregatedTransaction]
	if period != nil {
		report.Range = period
		inPeriod = FilterByRange(aggregated.Value, period.From, period.To)
	} else {
		inPeriod = FilterByMonth(aggregated.Value, filter.Month, filter.Year)
	}
	if !inPeriod.IsOK() {
		log.Debug().
			Str("account_id", accountID.String()).
			Str("code", inPeriod.Code).
			Msg("Report has no data for period")
		return domain.Recast[*domain.Report](inPeriod), nil
	}

	combined := ComputeMetrics(inPeriod.Value)
	report.Transactions = inPeriod.Value
	report.Combined = &combined
	report.PerProfile = ComputeProfileMetrics(profiles, inPeriod.Value)
	return domain.Ok(report), nil
}

// GetFilter returns the account's stored filter
func (s *ReportService) GetFilter(ctx context.Context, accountID uuid.UUID) (domain.Filter, error) {
	var f domain.Filter
	err := s.sessions.Read(ctx, accountID, func(st *domain.AccountState) error {
		f = st.Filter
		return nil
	})
	return f, err
}

// SetFilter validates and stores the account's filter
func (s *ReportService) SetFilter(ctx context.Context, accountID uuid.UUID, filter domain.Filter) (domain.Outcome[domain.Filter], error) {
	err := s.sessions.Update(ctx, accountID, func(tx *AccountTx) error {
		if err := filter.Validate(); err != nil {
			return err
		}
		tx.State.Filter = filter
		return nil
	})

	out, err := toOutcome(filter, err)
	if out.IsOK() {
		s.publishEvent(accountID, websocket.FilterUpdated(filter))
	}
	return out, err
}
