package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"alcyxob/coach-core/internal/config"
	"alcyxob/coach-core/internal/domain"
	"alcyxob/coach-core/internal/llm"
	"alcyxob/coach-core/internal/logger"
	"alcyxob/coach-core/internal/observability"
	"alcyxob/coach-core/internal/repository"
	"alcyxob/coach-core/internal/storage"
)

// ReasonNoSessions skips a review for a week without sessions. A missing program reuses
// ReasonNoActiveProgram.
const ReasonNoSessions = "no_sessions"

const rewriteSystemPrompt = `You are an experienced strength coach maintaining a client's training program.
Rewrite the program in markdown using the past week's results. Keep the same overall structure:
a title heading, a line stating how many days per week to train (for example "train **3** days per week"),
and a "## Training Sessions" section with one "### Day N: Name" heading per session followed by
"Duration: N min" and "Intensity: low|moderate|high". Progress loads where sets were completed with
confidence, back off where sessions were skipped or pain was reported. Return only the program.`

var markdownHeadingRe = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+\S`)

type ReviewResult struct {
	UserID     primitive.ObjectID `json:"user_id"`
	Skipped    bool               `json:"skipped"`
	Reason     string             `json:"reason,omitempty"`
	Program    *domain.Program    `json:"program,omitempty"`
	Calendar   *RegenerateResult  `json:"calendar,omitempty"`
	ArchiveKey string             `json:"archive_key,omitempty"`
}

type BatchResult struct {
	BatchID    string    `json:"batch_id"`
	Total      int       `json:"total"`
	Succeeded  int       `json:"succeeded"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// ReviewRunView is a review run with a temporary download link to its archived artifacts.
type ReviewRunView struct {
	domain.ReviewRun
	ArchiveURL string `json:"archiveUrl,omitempty"`
}

type SweepResult struct {
	Total       int `json:"total"`
	Regenerated int `json:"regenerated"`
	Unchanged   int `json:"unchanged"`
	Failed      int `json:"failed"`
}

type ReviewService interface {
	// RunWeeklyReview rewrites the user's program from this week's results. Users without
	// sessions this week, or without an active program, are skipped before any model call.
	RunWeeklyReview(ctx context.Context, userID primitive.ObjectID) (*ReviewResult, error)
	// RewriteProgram returns the new program document. Empty output or output without a
	// heading is a GenerationError.
	RewriteProgram(ctx context.Context, current *domain.Program, weekSummaries []domain.SessionStats, weekly domain.WeeklyStats, weightsProfile string) (string, error)
	GetActiveUsers(ctx context.Context) ([]primitive.ObjectID, error)
	// RunWeeklyBatch reviews every active user, isolating failures per user.
	RunWeeklyBatch(ctx context.Context) (*BatchResult, error)
	// CatchUpSweep runs the catch-up check for every active user.
	CatchUpSweep(ctx context.Context) (*SweepResult, error)
	// ListRuns returns the user's most recent review runs, newest first.
	ListRuns(ctx context.Context, userID primitive.ObjectID, limit int64) ([]ReviewRunView, error)
}

type reviewService struct {
	programService  ProgramService
	profileService  ProfileService
	statsService    StatsService
	calendarService CalendarService
	reviewRunRepo   repository.ReviewRunRepository
	client          llm.Client
	archive         storage.ArchiveStorage
	cfg             config.ReviewConfig
	log             *logger.Logger
}

func NewReviewService(
	programService ProgramService,
	profileService ProfileService,
	statsService StatsService,
	calendarService CalendarService,
	reviewRunRepo repository.ReviewRunRepository,
	client llm.Client,
	archive storage.ArchiveStorage,
	cfg config.ReviewConfig,
	log *logger.Logger,
) ReviewService {
	if archive == nil {
		archive = storage.Disabled()
	}
	return &reviewService{
		programService:  programService,
		profileService:  profileService,
		statsService:    statsService,
		calendarService: calendarService,
		reviewRunRepo:   reviewRunRepo,
		client:          client,
		archive:         archive,
		cfg:             cfg,
		log:             log,
	}
}

func (s *reviewService) GetActiveUsers(ctx context.Context) ([]primitive.ObjectID, error) {
	return s.programService.GetActiveUsers(ctx)
}

func (s *reviewService) RunWeeklyReview(ctx context.Context, userID primitive.ObjectID) (*ReviewResult, error) {
	return s.runUser(ctx, userID, "")
}

func (s *reviewService) runUser(ctx context.Context, userID primitive.ObjectID, batchID string) (result *ReviewResult, err error) {
	ctx, span := observability.Tracer().Start(ctx, "review.run_user")
	span.SetAttributes(attribute.String("user.id", userID.Hex()), attribute.String("batch.id", batchID))
	weekStart, weekEnd := s.statsService.GetCurrentWeekBounds()
	run := &domain.ReviewRun{UserID: userID, BatchID: batchID, WeekStart: weekStart}
	defer func() {
		switch {
		case err != nil:
			run.Status = domain.ReviewFailed
			if run.Reason == "" {
				run.Reason = err.Error()
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case result.Skipped:
			run.Status = domain.ReviewSkipped
			run.Reason = result.Reason
		default:
			run.Status = domain.ReviewSucceeded
		}
		s.recordRun(context.WithoutCancel(ctx), run)
		span.End()
	}()

	report, err := s.statsService.CollectWeek(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	if len(report.Sessions) == 0 {
		return &ReviewResult{UserID: userID, Skipped: true, Reason: ReasonNoSessions}, nil
	}

	program, err := s.programService.GetActiveProgram(ctx, userID)
	if err != nil {
		return nil, err
	}
	if program == nil {
		return &ReviewResult{UserID: userID, Skipped: true, Reason: ReasonNoActiveProgram}, nil
	}

	profile, err := s.profileService.GetLatestProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	profileText, _ := FormatProfileForPrompt(profile)

	prompt := buildRewritePrompt(program, report.SessionStats, report.Weekly, profileText)
	document, raw, err := s.rewrite(ctx, prompt)
	if err != nil {
		return nil, err
	}

	saved, err := s.programService.SaveProgramVersion(ctx, userID, document, ProgramSourceWeeklyReview)
	if err != nil {
		return nil, err
	}
	run.ProgramVersion = saved.Version

	calendar, err := s.calendarService.RegenerateWeeklyCalendar(ctx, userID, saved.Document, saved.Version)
	if err != nil {
		run.Reason = "calendar regeneration failed: " + err.Error()
		return nil, err
	}

	result = &ReviewResult{UserID: userID, Program: saved, Calendar: calendar}
	if key, ok := s.archiveArtifacts(ctx, userID, weekStart, prompt, raw); ok {
		result.ArchiveKey = key
		run.ArchiveKey = key
	}
	return result, nil
}

func (s *reviewService) RewriteProgram(ctx context.Context, current *domain.Program, weekSummaries []domain.SessionStats, weekly domain.WeeklyStats, weightsProfile string) (string, error) {
	if current == nil {
		return "", ErrProgramNotFound
	}
	document, _, err := s.rewrite(ctx, buildRewritePrompt(current, weekSummaries, weekly, weightsProfile))
	return document, err
}

// rewrite calls the model and validates the result; raw is the unmodified model output.
func (s *reviewService) rewrite(ctx context.Context, prompt string) (document, raw string, err error) {
	ctx, span := observability.Tracer().Start(ctx, "review.rewrite_program")
	defer span.End()

	raw, err = s.client.GenerateText(ctx, rewriteSystemPrompt, prompt)
	if err != nil {
		return "", "", generationErr("rewrite_program", "model call failed", err)
	}
	document = llm.StripCodeFences(raw)
	if document == "" {
		return "", raw, generationErr("rewrite_program", "model returned an empty program", nil)
	}
	if !markdownHeadingRe.MatchString(document) {
		return "", raw, generationErr("rewrite_program", "program has no heading", nil)
	}
	return document, raw, nil
}

func buildRewritePrompt(current *domain.Program, sessions []domain.SessionStats, weekly domain.WeeklyStats, weightsProfile string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Current program (version %d)\n\n%s\n\n", current.Version, current.Document)

	fmt.Fprintf(&b, "## Week of %s\n\n", weekly.WeekStart.Format("2006-01-02"))
	fmt.Fprintf(&b, "- Sessions planned: %d, completed: %d, skipped: %d\n", weekly.SessionsPlanned, weekly.SessionsCompleted, weekly.SessionsSkipped)
	fmt.Fprintf(&b, "- Exercises completed: %d of %d\n", weekly.CompletedExercises, weekly.TotalExercises)
	fmt.Fprintf(&b, "- Sets: %d, reps: %d, volume: %.0f\n", weekly.TotalSets, weekly.TotalReps, weekly.TotalVolume)
	fmt.Fprintf(&b, "- Cardio minutes: %.0f, training minutes: %d\n", weekly.CardioTimeMin, weekly.TotalWorkoutMin)
	if weekly.AvgEnergyRating != nil {
		fmt.Fprintf(&b, "- Average energy: %.1f\n", *weekly.AvgEnergyRating)
	} else {
		b.WriteString("- Average energy: unknown\n")
	}
	fmt.Fprintf(&b, "- Pain flags: %d\n\n", weekly.PainFlags)

	if len(sessions) > 0 {
		b.WriteString("## Sessions\n\n")
		for _, st := range sessions {
			name := st.SessionName
			if name == "" {
				name = "Session"
			}
			fmt.Fprintf(&b, "- %s: %d/%d exercises, %d skipped, %d sets, %d reps, volume %.0f", name,
				st.CompletedExercises, st.TotalExercises, st.SkippedExercises, st.TotalSets, st.TotalReps, st.TotalVolume)
			if st.WorkoutDurationMin != nil {
				fmt.Fprintf(&b, ", %d min", *st.WorkoutDurationMin)
			}
			if st.PainFlags > 0 {
				fmt.Fprintf(&b, ", %d pain flags", st.PainFlags)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if weightsProfile != "" {
		fmt.Fprintf(&b, "## Weights profile\n\n%s\n", weightsProfile)
	} else {
		b.WriteString("## Weights profile\n\nNo weights profile yet.\n")
	}
	return b.String()
}

// archiveArtifacts stores prompt and raw output. Failures are logged and never fail the review.
func (s *reviewService) archiveArtifacts(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, prompt, raw string) (string, bool) {
	key := path.Join("reviews", userID.Hex(), weekStart.Format("2006-01-02"), uuid.NewString()+".md")
	body := "# Prompt\n\n" + prompt + "\n\n# Model output\n\n" + raw + "\n"
	if err := s.archive.PutObject(ctx, key, "text/markdown; charset=utf-8", []byte(body)); err != nil {
		if errors.Is(err, storage.ErrArchiveDisabled) {
			s.log.Debug("review archive skipped", "user_id", userID.Hex(), "reason", "storage disabled")
			return "", false
		}
		s.log.Warn("review archive failed", "user_id", userID.Hex(), "key", key, "error", err)
		return "", false
	}
	return key, true
}

func (s *reviewService) recordRun(ctx context.Context, run *domain.ReviewRun) {
	if _, err := s.reviewRunRepo.Create(ctx, run); err != nil {
		s.log.Warn("failed to record review run", "user_id", run.UserID.Hex(), "status", run.Status, "error", err)
	}
}

func (s *reviewService) ListRuns(ctx context.Context, userID primitive.ObjectID, limit int64) ([]ReviewRunView, error) {
	runs, err := s.reviewRunRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	views := make([]ReviewRunView, 0, len(runs))
	for _, run := range runs {
		view := ReviewRunView{ReviewRun: run}
		if run.ArchiveKey != "" {
			url, err := s.archive.GeneratePresignedDownloadURL(ctx, run.ArchiveKey, storage.DefaultPresignedURLExpiry)
			if err != nil {
				s.log.Warn("failed to presign review archive", "user_id", userID.Hex(), "key", run.ArchiveKey, "error", err)
			} else {
				view.ArchiveURL = url
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *reviewService) concurrency() int {
	if s.cfg.Concurrency < 1 {
		return 1
	}
	return s.cfg.Concurrency
}

func (s *reviewService) userContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.UserTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.UserTimeout)
}

func (s *reviewService) RunWeeklyBatch(ctx context.Context) (*BatchResult, error) {
	users, err := s.GetActiveUsers(ctx)
	if err != nil {
		return nil, err
	}
	result := &BatchResult{BatchID: uuid.NewString(), Total: len(users), StartedAt: time.Now().UTC()}
	log := s.log.With("batch_id", result.BatchID)
	log.Info("weekly review batch started", "users", len(users))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())
	for _, userID := range users {
		g.Go(func() error {
			uctx, cancel := s.userContext(gctx)
			defer cancel()

			res, err := s.runUser(uctx, userID, result.BatchID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Failed++
				log.Error("weekly review failed", "user_id", userID.Hex(), "outcome", "failed", "error", err)
			case res.Skipped:
				result.Skipped++
				log.Info("weekly review skipped", "user_id", userID.Hex(), "outcome", "skipped", "reason", res.Reason)
			default:
				result.Succeeded++
				log.Info("weekly review done", "user_id", userID.Hex(), "outcome", "succeeded", "program_version", res.Program.Version)
			}
			// Per-user failures never cancel the rest of the batch.
			return nil
		})
	}
	_ = g.Wait()

	result.FinishedAt = time.Now().UTC()
	log.Info("weekly review batch finished",
		"total", result.Total,
		"succeeded", result.Succeeded,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duration", result.FinishedAt.Sub(result.StartedAt).String(),
	)
	return result, nil
}

func (s *reviewService) CatchUpSweep(ctx context.Context) (*SweepResult, error) {
	users, err := s.GetActiveUsers(ctx)
	if err != nil {
		return nil, err
	}
	result := &SweepResult{Total: len(users)}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())
	for _, userID := range users {
		g.Go(func() error {
			uctx, cancel := s.userContext(gctx)
			defer cancel()

			res, err := s.calendarService.CheckAndRunCatchUpReview(uctx, userID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Failed++
				s.log.Error("catch-up check failed", "user_id", userID.Hex(), "error", err)
			case res.Regenerated:
				result.Regenerated++
				s.log.Info("catch-up regenerated calendar", "user_id", userID.Hex(), "reason", res.Reason, "created", res.Calendar.Created)
			default:
				result.Unchanged++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info("catch-up sweep finished", "total", result.Total, "regenerated", result.Regenerated, "unchanged", result.Unchanged, "failed", result.Failed)
	return result, nil
}
