package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"alcyxob/coach-core/internal/completion"
	"alcyxob/coach-core/internal/repository"
	"alcyxob/coach-core/internal/service"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &service.ValidationError{Field: "minutes", Message: "must be positive"}, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("apply: %w", &service.ValidationError{Message: "bad"}), http.StatusBadRequest},
		{"session", service.ErrSessionNotFound, http.StatusNotFound},
		{"event", fmt.Errorf("start: %w", service.ErrEventNotFound), http.StatusNotFound},
		{"program", service.ErrProgramNotFound, http.StatusNotFound},
		{"store not found", repository.ErrNotFound, http.StatusNotFound},
		{"generation", &service.GenerationError{Op: "generate_workout", Reason: "no json"}, http.StatusBadGateway},
		{"timeout", repository.ErrTimeout, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestCommandRequest_Command(t *testing.T) {
	idx, reps, load := 2, 8, 40.0

	tests := []struct {
		name    string
		req     CommandRequest
		want    completion.CommandType
		wantErr bool
	}{
		{name: "complete set", req: CommandRequest{Type: completion.CmdCompleteSet, SetIndex: &idx, ActualReps: &reps, ActualLoad: &load, LoadUnit: "kg"}, want: completion.CmdCompleteSet},
		{name: "complete set without index", req: CommandRequest{Type: completion.CmdCompleteSet}, wantErr: true},
		{name: "skip", req: CommandRequest{Type: completion.CmdSkipExercise, Reason: "shoulder"}, want: completion.CmdSkipExercise},
		{name: "unskip", req: CommandRequest{Type: completion.CmdUnskipExercise}, want: completion.CmdUnskipExercise},
		{name: "note", req: CommandRequest{Type: completion.CmdSetNote, Text: "felt easy"}, want: completion.CmdSetNote},
		{name: "unknown", req: CommandRequest{Type: "jump"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := tt.req.Command()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Command() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if cmd.Type() != tt.want {
				t.Errorf("type = %s, want %s", cmd.Type(), tt.want)
			}
			if set, ok := cmd.(completion.CompleteSet); ok && (set.Index != idx || *set.Reps != reps || set.Unit != "kg") {
				t.Errorf("complete set = %+v", set)
			}
		})
	}
}
