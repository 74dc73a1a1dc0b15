package analytics

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/tapqyr/analytics/store"
)

// ErrInvalidArgument is returned for caller errors such as an inverted period.
var ErrInvalidArgument = errors.New("invalid argument")

// DefaultSimilarUsersConcurrency bounds how many candidate users are loaded at once.
const DefaultSimilarUsersConcurrency = 8

// Store is the interface for store operations needed by the analytics service.
type Store interface {
	ListTodos(ctx context.Context, find *store.FindTodo) ([]*store.Todo, error)
	CountTodos(ctx context.Context, find *store.FindTodo) (int64, error)
	ListTodoCompletionCounts(ctx context.Context) ([]*store.TodoCompletionCount, error)
	GetUser(ctx context.Context, find *store.FindUser) (*store.User, error)
	ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error)
	CountUsers(ctx context.Context, find *store.FindUser) (int64, error)
	GetUserMemory(ctx context.Context, find *store.FindUserMemory) (*store.UserMemory, error)
}

type service struct {
	store       Store
	now         func() time.Time
	loc         *time.Location
	concurrency int
}

// Option configures the analytics service.
type Option func(*service)

// WithClock overrides the wall clock used for growth windows, weeks and registration age.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the calendar location for weekdays and weeks.
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithConcurrency bounds the similar users fan-out.
func WithConcurrency(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService creates a new analytics service.
func NewService(store Store, opts ...Option) Service {
	s := &service{
		store:       store,
		now:         time.Now,
		loc:         time.UTC,
		concurrency: DefaultSimilarUsersConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) GetGrowthMetrics(ctx context.Context) (*GrowthMetrics, error) {
	windows := NewGrowthWindows(s.now())

	countSince := func(start time.Time) (int64, error) {
		end := windows.Now
		return s.store.CountUsers(ctx, &store.FindUser{CreatedAfter: &start, CreatedBefore: &end})
	}

	daily, err := countSince(windows.DayStart)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count daily new users")
	}
	weekly, err := countSince(windows.WeekStart)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count weekly new users")
	}
	monthly, err := countSince(windows.MonthStart)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count monthly new users")
	}
	total, err := s.store.CountUsers(ctx, &store.FindUser{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count users")
	}
	return BuildGrowthMetrics(daily, weekly, monthly, total), nil
}

func (s *service) GetCompletionRates(ctx context.Context) ([]*UserCompletionRate, error) {
	rows, err := s.store.ListTodoCompletionCounts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list todo completion counts")
	}
	if len(rows) == 0 {
		return []*UserCompletionRate{}, nil
	}

	users, err := s.store.ListUsers(ctx, &store.FindUser{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	userMap := make(map[string]*store.User, len(users))
	for _, user := range users {
		userMap[user.ID] = user
	}
	return BuildCompletionRates(rows, userMap), nil
}

func (s *service) GetActivityPatterns(ctx context.Context, userID string) (*FeatureSummary, error) {
	todos, err := s.store.ListTodos(ctx, &store.FindTodo{UserID: &userID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list todos of user %s", userID)
	}
	return ExtractFeatures(todos, s.loc), nil
}

func (s *service) GetEngagementMetrics(ctx context.Context, userID string) (*EngagementMetrics, error) {
	user, err := s.store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get user %s", userID)
	}
	if user == nil {
		return BuildEngagementMetrics(nil, 0, nil, s.now(), s.loc), nil
	}

	totalTodos, err := s.store.CountTodos(ctx, &store.FindTodo{UserID: &userID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to count todos of user %s", userID)
	}
	memory, err := s.store.GetUserMemory(ctx, &store.FindUserMemory{UserID: &userID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get memory of user %s", userID)
	}
	return BuildEngagementMetrics(user, totalTodos, memory, s.now(), s.loc), nil
}

func (s *service) GetTodoAnalytics(ctx context.Context, start, end time.Time) (*TodoAnalytics, error) {
	if end.Before(start) {
		return nil, errors.Wrapf(ErrInvalidArgument, "start %s is after end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	todos, err := s.store.ListTodos(ctx, &store.FindTodo{CreatedAfter: &start, CreatedBefore: &end})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list todos in period")
	}
	return BuildTodoAnalytics(ExtractFeatures(todos, s.loc)), nil
}

func (s *service) GetWeeklyReport(ctx context.Context, userID string) (*WeeklyReport, error) {
	week := WeekOf(s.now(), s.loc)

	weekTodos, err := s.listUserTodosBetween(ctx, userID, week)
	if err != nil {
		return nil, err
	}
	allTodos, err := s.store.ListTodos(ctx, &store.FindTodo{UserID: &userID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list todos of user %s", userID)
	}

	var prevWeekTodos []*store.Todo
	if len(allTodos) > 0 {
		prevWeekTodos, err = s.listUserTodosBetween(ctx, userID, week.Previous())
		if err != nil {
			return nil, err
		}
	}
	return BuildWeeklyReport(userID, week, weekTodos, prevWeekTodos, allTodos), nil
}

func (s *service) listUserTodosBetween(ctx context.Context, userID string, week Week) ([]*store.Todo, error) {
	start, end := week.Start, week.End
	todos, err := s.store.ListTodos(ctx, &store.FindTodo{UserID: &userID, CreatedAfter: &start, CreatedBefore: &end})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list todos of user %s between %s and %s", userID, start.Format(dateLayout), end.Format(dateLayout))
	}
	return todos, nil
}

func (s *service) GetSimilarUsers(ctx context.Context, userID string) ([]*SimilarUser, error) {
	subject, err := s.GetActivityPatterns(ctx, userID)
	if err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx, &store.FindUser{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	candidates := make([]*store.User, 0, len(users))
	for _, user := range users {
		if user.ID != userID {
			candidates = append(candidates, user)
		}
	}

	matches := make([]*SimilarUser, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, candidate := range candidates {
		g.Go(func() error {
			features, err := s.GetActivityPatterns(gctx, candidate.ID)
			if err != nil {
				return err
			}
			similarity := Score(subject, features)
			if !IsSimilar(similarity.Score) {
				return nil
			}
			matches[i] = &SimilarUser{
				UserID:          candidate.ID,
				UserName:        candidate.Name,
				SimilarityScore: similarity.Score,
				SharedPatterns:  SharedPatterns{SharedMostActiveDay: similarity.SharedMostActiveDay},
				MatchedPatterns: similarity.MatchedPatterns,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]*SimilarUser, 0, len(matches))
	for _, match := range matches {
		if match != nil {
			result = append(result, match)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].SimilarityScore != result[j].SimilarityScore {
			return result[i].SimilarityScore > result[j].SimilarityScore
		}
		return result[i].UserID < result[j].UserID
	})

	slog.Debug("computed similar users",
		slog.String("user_id", userID),
		slog.Int("candidates", len(candidates)),
		slog.Int("matches", len(result)))
	return result, nil
}

func (s *service) GetComprehensiveAnalytics(ctx context.Context, userID string) (*ComprehensiveAnalytics, error) {
	result := &ComprehensiveAnalytics{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		patterns, err := s.GetActivityPatterns(gctx, userID)
		result.TaskAnalytics = patterns
		return err
	})
	g.Go(func() error {
		engagement, err := s.GetEngagementMetrics(gctx, userID)
		result.EngagementMetrics = engagement
		return err
	})
	g.Go(func() error {
		report, err := s.GetWeeklyReport(gctx, userID)
		result.WeeklyReport = report
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
