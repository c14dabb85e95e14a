package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// ProfileDocumentLoader reads raw profile documents
type ProfileDocumentLoader interface {
	LoadProfileDocument(ctx context.Context, accountID uuid.UUID, profileID int32) ([]byte, error)
}

// CheckScope validates the profile selection against the view scope
func CheckScope(scope domain.Scope, count int) error {
	switch scope {
	case domain.ScopeIndividual:
		if count != 1 {
			return domain.ErrIndividualRequiresOne
		}
	case domain.ScopeCasal:
		if count != 2 {
			return domain.ErrCasalRequiresTwo
		}
	case domain.ScopeFamilia:
	default:
		return domain.ErrInvalidScope
	}
	return nil
}

// Aggregate merges the transactions of the selected profiles, tagging each
// with the profile it came from. Profiles keep selection order and each
// profile's transactions keep stored order. A missing or malformed document
// counts as an empty profile. Only store failures are returned as errors.
func Aggregate(ctx context.Context, loader ProfileDocumentLoader, accountID uuid.UUID, profiles []domain.Profile, scope domain.Scope) (domain.Outcome[[]domain.AggregatedTransaction], error) {
	if len(profiles) == 0 {
		return domain.Empty[[]domain.AggregatedTransaction](domain.ReasonNoProfiles, "Nenhum perfil selecionado."), nil
	}
	if err := CheckScope(scope, len(profiles)); err != nil {
		out, _ := domain.OutcomeFromError[[]domain.AggregatedTransaction](err)
		return out, nil
	}

	merged := make([]domain.AggregatedTransaction, 0)
	for _, p := range profiles {
		data, err := loadProfileData(ctx, loader, accountID, p.ID)
		if err != nil {
			return domain.Outcome[[]domain.AggregatedTransaction]{}, err
		}
		for _, tx := range data.Transactions {
			tx.ProfileID = p.ID
			merged = append(merged, domain.AggregatedTransaction{
				Transaction: tx,
				ProfileName: p.Name,
			})
		}
	}

	if len(merged) == 0 {
		return domain.Empty[[]domain.AggregatedTransaction](domain.ReasonNoTransactions, "Nenhuma transação cadastrada."), nil
	}
	return domain.Ok(merged), nil
}

// loadProfileData reads a document for aggregation. Malformed content is
// logged and treated as empty.
func loadProfileData(ctx context.Context, loader ProfileDocumentLoader, accountID uuid.UUID, profileID int32) (*domain.ProfileData, error) {
	raw, err := loader.LoadProfileDocument(ctx, accountID, profileID)
	if err != nil {
		return nil, fmt.Errorf("load profile %d: %w", profileID, err)
	}
	data, err := domain.DecodeProfileData(raw)
	if errors.Is(err, domain.ErrMalformedDocument) {
		log.Warn().
			Err(err).
			Str("account_id", accountID.String()).
			Int32("profile_id", profileID).
			Msg("Malformed profile document, treating as empty")
		return data, nil
	}
	return data, err
}

// SplitByProfile groups aggregated transactions per profile, in profile order
func SplitByProfile(profiles []domain.Profile, txs []domain.AggregatedTransaction) []domain.ProfileTransactions {
	index := make(map[int32]int, len(profiles))
	out := make([]domain.ProfileTransactions, len(profiles))
	for i, p := range profiles {
		index[p.ID] = i
		out[i] = domain.ProfileTransactions{
			ProfileID:    p.ID,
			ProfileName:  p.Name,
			Transactions: []domain.AggregatedTransaction{},
		}
	}
	for _, tx := range txs {
		if i, ok := index[tx.ProfileID]; ok {
			out[i].Transactions = append(out[i].Transactions, tx)
		}
	}
	return out
}
