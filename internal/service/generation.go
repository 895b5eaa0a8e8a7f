package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"alcyxob/coach-core/internal/domain"
	"alcyxob/coach-core/internal/llm"
)

const workoutSystemPrompt = `You are a strength and conditioning coach. Reply with a single JSON object and nothing else.
The object has "title", "estimated_duration_min", "focus" (list of strings) and "exercises".
Each exercise has "exercise_name", "exercise_type" (one of reps, hold, duration, intervals),
"muscles_utilized", "goals_addressed", "equipment", "reasoning" and the fields of its type:
reps: "sets", "reps" (list, one per set), "load_each" (list), "load_unit", "rest_seconds";
hold: "hold_duration_sec" (list); duration: "duration_min"; intervals: "rounds", "work_sec", "rest_seconds".`

const replacementSystemPrompt = `You are a strength and conditioning coach. Reply with a single JSON object describing ONE exercise and nothing else.
Use the fields "exercise_name", "exercise_type", "muscles_utilized", "goals_addressed", "equipment", "reasoning"
and the type-specific fields (reps: sets, reps, load_each, load_unit, rest_seconds; hold: hold_duration_sec;
duration: duration_min; intervals: rounds, work_sec, rest_seconds).`

// WorkoutRequest is the input for generating a full workout instance.
type WorkoutRequest struct {
	PlannedSession *domain.PlannedSession
	RequestText    string
	UserContext    string
	WeightsProfile string
}

// ReplacementRequest asks for an exercise that fills the same slot as Original.
type ReplacementRequest struct {
	Original       domain.Exercise
	Reason         string
	OtherExercises []string
	WeightsProfile string
}

// WorkoutGenerator turns prompts into raw, unvalidated exercise documents. Callers normalize
// the result.
type WorkoutGenerator interface {
	GenerateWorkout(ctx context.Context, req WorkoutRequest) (map[string]any, error)
	GenerateReplacement(ctx context.Context, req ReplacementRequest) (map[string]any, error)
}

type llmWorkoutGenerator struct {
	client llm.Client
}

func NewWorkoutGenerator(client llm.Client) WorkoutGenerator {
	return &llmWorkoutGenerator{client: client}
}

func (g *llmWorkoutGenerator) GenerateWorkout(ctx context.Context, req WorkoutRequest) (map[string]any, error) {
	var b strings.Builder
	if ps := req.PlannedSession; ps != nil {
		fmt.Fprintf(&b, "Planned session: day %d, %q, %d minutes, %s intensity.\n", ps.DayNumber, ps.Name, ps.DurationMin, ps.Intensity)
	}
	if req.RequestText != "" {
		fmt.Fprintf(&b, "User request: %s\n", req.RequestText)
	}
	if req.UserContext != "" {
		fmt.Fprintf(&b, "\nAbout the user:\n%s\n", req.UserContext)
	}
	if req.WeightsProfile != "" {
		fmt.Fprintf(&b, "\n%s\n", req.WeightsProfile)
	}
	if b.Len() == 0 {
		b.WriteString("Build a balanced full-body workout of about 45 minutes.\n")
	}

	out, err := g.client.GenerateText(ctx, workoutSystemPrompt, b.String())
	if err != nil {
		return nil, generationErr("generate_workout", "model call failed", err)
	}
	doc := llm.ExtractJSON(out)
	if doc == nil {
		return nil, generationErr("generate_workout", "output is not a JSON object", nil)
	}
	if _, ok := doc["exercises"]; !ok {
		return nil, generationErr("generate_workout", "output has no exercises", nil)
	}
	return doc, nil
}

func (g *llmWorkoutGenerator) GenerateReplacement(ctx context.Context, req ReplacementRequest) (map[string]any, error) {
	original, err := json.Marshal(req.Original)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Replace this exercise with a different one of type %q that trains the same muscles and fits the same slot:\n%s\n",
		req.Original.ExerciseType, original)
	if req.Reason != "" {
		fmt.Fprintf(&b, "Reason for the swap: %s\n", req.Reason)
	}
	if len(req.OtherExercises) > 0 {
		fmt.Fprintf(&b, "Do not pick any of: %s\n", strings.Join(req.OtherExercises, ", "))
	}
	if req.WeightsProfile != "" {
		fmt.Fprintf(&b, "\n%s\n", req.WeightsProfile)
	}

	out, err := g.client.GenerateText(ctx, replacementSystemPrompt, b.String())
	if err != nil {
		return nil, generationErr("swap_exercise", "model call failed", err)
	}
	doc := llm.ExtractJSON(out)
	if doc == nil {
		return nil, generationErr("swap_exercise", "output is not a JSON object", nil)
	}
	// Some models wrap the exercise as {"exercise": {...}}.
	if inner, ok := doc["exercise"].(map[string]any); ok {
		doc = inner
	}
	return doc, nil
}
