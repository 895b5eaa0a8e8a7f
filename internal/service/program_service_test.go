package service

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/coach-core/internal/domain"
	"alcyxob/coach-core/internal/logger"
)

func TestProgramService_Versioning(t *testing.T) {
	ctx := context.Background()
	repo := &fakeProgramRepo{}
	svc := NewProgramService(repo, logger.Nop())
	user := primitive.NewObjectID()

	if p, err := svc.GetActiveProgram(ctx, user); err != nil || p != nil {
		t.Fatalf("GetActiveProgram() = %v, %v; want nil, nil", p, err)
	}
	if v, _ := svc.GetNextVersion(ctx, user); v != 1 {
		t.Fatalf("GetNextVersion() = %d, want 1", v)
	}

	first, err := svc.SaveProgramVersion(ctx, user, threeDayProgram, ProgramSourceSetup)
	if err != nil {
		t.Fatalf("SaveProgramVersion() error = %v", err)
	}
	second, err := svc.SaveProgramVersion(ctx, user, "# Deload\n", "")
	if err != nil {
		t.Fatalf("SaveProgramVersion() error = %v", err)
	}
	if first.Version != 1 || second.Version != 2 {
		t.Fatalf("versions = %d, %d; want 1, 2", first.Version, second.Version)
	}
	if second.Source != ProgramSourceManual {
		t.Errorf("default source = %q, want %q", second.Source, ProgramSourceManual)
	}

	active, err := svc.GetActiveProgram(ctx, user)
	if err != nil || active == nil || active.Version != 2 {
		t.Fatalf("GetActiveProgram() = %+v, %v; want version 2", active, err)
	}

	history, err := svc.GetProgramHistory(ctx, user)
	if err != nil {
		t.Fatalf("GetProgramHistory() error = %v", err)
	}
	if len(history) != 2 || history[0].Version != 2 || history[1].Status != domain.ProgramSuperseded {
		t.Errorf("history = %+v, want v2 first and v1 superseded", history)
	}

	users, _ := svc.GetActiveUsers(ctx)
	if len(users) != 1 || users[0] != user {
		t.Errorf("GetActiveUsers() = %v, want [%s]", users, user.Hex())
	}
}

func TestProgramService_RejectsEmptyDocument(t *testing.T) {
	svc := NewProgramService(&fakeProgramRepo{}, logger.Nop())
	_, err := svc.SaveProgramVersion(context.Background(), primitive.NewObjectID(), "  \n ", ProgramSourceManual)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "document" {
		t.Fatalf("SaveProgramVersion() error = %v, want document ValidationError", err)
	}
}

func TestActiveLookups_PropagateStoreErrors(t *testing.T) {
	ctx := context.Background()
	user := primitive.NewObjectID()
	storeErr := errors.New("connection reset by peer")
	failing := map[primitive.ObjectID]error{user: storeErr}

	tests := []struct {
		name   string
		lookup func() (found bool, err error)
	}{
		{
			name: "active program",
			lookup: func() (bool, error) {
				p, err := NewProgramService(&fakeProgramRepo{fail: failing}, logger.Nop()).GetActiveProgram(ctx, user)
				return p != nil, err
			},
		},
		{
			name: "latest profile",
			lookup: func() (bool, error) {
				p, err := NewProfileService(&fakeProfileRepo{fail: failing}, logger.Nop()).GetLatestProfile(ctx, user)
				return p != nil, err
			},
		},
		{
			name: "next profile version",
			lookup: func() (bool, error) {
				v, err := NewProfileService(&fakeProfileRepo{fail: failing}, logger.Nop()).GetNextVersion(ctx, user)
				return v != 0, err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := tt.lookup()
			if !errors.Is(err, storeErr) {
				t.Errorf("got error %v, want %v", err, storeErr)
			}
			if found {
				t.Errorf("got a result alongside the store error, want none")
			}
		})
	}
}
