package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/coach-core/internal/domain"
	"alcyxob/coach-core/internal/logger"
	"alcyxob/coach-core/internal/repository"
)

const (
	ProgramSourceSetup        = "setup"
	ProgramSourceManual       = "manual"
	ProgramSourceWeeklyReview = "weekly_review"
)

type ProgramService interface {
	// GetActiveProgram returns nil, nil when the user has no active program. Store errors
	// are returned unmodified.
	GetActiveProgram(ctx context.Context, userID primitive.ObjectID) (*domain.Program, error)
	GetProgramHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.Program, error)
	// GetNextVersion returns latest+1, or 1 for a user without programs.
	GetNextVersion(ctx context.Context, userID primitive.ObjectID) (int, error)
	// SaveProgramVersion appends a new active version and supersedes the previous ones.
	SaveProgramVersion(ctx context.Context, userID primitive.ObjectID, document, source string) (*domain.Program, error)
	GetActiveUsers(ctx context.Context) ([]primitive.ObjectID, error)
}

type programService struct {
	programRepo repository.ProgramRepository
	log         *logger.Logger
}

func NewProgramService(programRepo repository.ProgramRepository, log *logger.Logger) ProgramService {
	return &programService{programRepo: programRepo, log: log}
}

func (s *programService) GetActiveProgram(ctx context.Context, userID primitive.ObjectID) (*domain.Program, error) {
	program, err := s.programRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return program, nil
}

func (s *programService) GetProgramHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.Program, error) {
	return s.programRepo.ListByUser(ctx, userID)
}

func (s *programService) GetNextVersion(ctx context.Context, userID primitive.ObjectID) (int, error) {
	latest, err := s.programRepo.GetLatestVersion(ctx, userID)
	if err != nil {
		return 0, err
	}
	return latest + 1, nil
}

func (s *programService) SaveProgramVersion(ctx context.Context, userID primitive.ObjectID, document, source string) (*domain.Program, error) {
	document = strings.TrimSpace(document)
	if document == "" {
		return nil, validationErr("document", "program document is empty")
	}
	if source == "" {
		source = ProgramSourceManual
	}
	version, err := s.GetNextVersion(ctx, userID)
	if err != nil {
		return nil, err
	}

	program := &domain.Program{
		UserID:   userID,
		Version:  version,
		Document: document,
		Status:   domain.ProgramActive,
		Source:   source,
	}
	if _, err := s.programRepo.Create(ctx, program); err != nil {
		return nil, err
	}
	if err := s.programRepo.SupersedeActive(ctx, userID, program.ID); err != nil {
		return nil, err
	}
	s.log.Info("program version saved", "user_id", userID.Hex(), "version", version, "source", source)
	return program, nil
}

func (s *programService) GetActiveUsers(ctx context.Context) ([]primitive.ObjectID, error) {
	return s.programRepo.DistinctActiveUsers(ctx)
}
