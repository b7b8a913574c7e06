package reference

import (
	"context"
	"strings"

	"github.com/def-himani/mediflow/internal/platform/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Insurances(ctx context.Context) ([]Insurance, error) {
	out, err := s.repo.ListInsurances(ctx)
	if err != nil {
		return nil, apperr.Storage("insurances", err)
	}
	return out, nil
}

func (s *Service) Pharmacies(ctx context.Context) ([]Pharmacy, error) {
	out, err := s.repo.ListPharmacies(ctx)
	if err != nil {
		return nil, apperr.Storage("pharmacies", err)
	}
	return out, nil
}

func (s *Service) Specializations(ctx context.Context) ([]Specialization, error) {
	out, err := s.repo.ListSpecializations(ctx)
	if err != nil {
		return nil, apperr.Storage("specializations", err)
	}
	return out, nil
}

func (s *Service) Medications(ctx context.Context) ([]Medication, error) {
	out, err := s.repo.ListMedications(ctx)
	if err != nil {
		return nil, apperr.Storage("medications", err)
	}
	return out, nil
}

func (s *Service) Physicians(ctx context.Context, specializationID *int64) ([]Physician, error) {
	if specializationID != nil && *specializationID <= 0 {
		return nil, apperr.Validation("Invalid specialization_id")
	}
	out, err := s.repo.ListPhysicians(ctx, specializationID)
	if err != nil {
		return nil, apperr.Storage("physicians", err)
	}
	return out, nil
}

// ResolveMedication returns the id of the medication referenced by id, or by
// name when id is zero. ok is false when no such medication exists.
func (s *Service) ResolveMedication(ctx context.Context, id int64, name string) (int64, bool, error) {
	name = strings.TrimSpace(name)
	if id <= 0 && name == "" {
		return 0, false, nil
	}
	med, ok, err := s.repo.FindMedication(ctx, id, name)
	if err != nil {
		return 0, false, apperr.Storage("resolve medication", err)
	}
	if !ok {
		return 0, false, nil
	}
	return med.ID, true, nil
}
