// Package seed loads demo data for a user: a small catalog of common foods,
// a goal, two weeks of weights and a week of meals. Running it twice does
// not duplicate anything.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/logging"
	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/server/nutrition"
	"github.com/dmitrijs2005/fitmacro/internal/server/services"
	"github.com/dmitrijs2005/fitmacro/internal/timex"
)

type Users interface {
	Lookup(ctx context.Context, userName string) (*models.User, error)
}

type Catalog interface {
	CreateManual(ctx context.Context, userID string, in services.FoodInput) (*models.FoodItem, error)
	Search(ctx context.Context, q models.FoodSearch) ([]*models.FoodItem, error)
}

type Diary interface {
	Log(ctx context.Context, userID string, in services.NewEntry) (*models.DiaryEntry, error)
	Day(ctx context.Context, userID string, day time.Time) (*models.DayDiary, error)
}

type Goals interface {
	GoalFor(ctx context.Context, userID string, day time.Time) (*models.Goal, error)
	SetGoal(ctx context.Context, userID string, in services.GoalInput) (*models.Goal, error)
}

type Weights interface {
	Log(ctx context.Context, userID, date string, kg float64) (*models.WeightLog, error)
}

// Food is a catalog row with values per 100 g.
type Food struct {
	Name                     string
	Kcal, Protein, Fat, Carb float64
}

type portion struct {
	food  string
	grams float64
}

var Foods = []Food{
	{"Куриная грудка", 165, 31, 3.6, 0},
	{"Рис отварной", 130, 2.7, 0.3, 28},
	{"Брокколи", 34, 2.8, 0.4, 7},
	{"Овсянка", 389, 16.9, 6.9, 66},
	{"Банан", 89, 1.1, 0.3, 23},
	{"Яйцо куриное", 157, 12.7, 11.5, 0.7},
	{"Творог 5%", 121, 16, 5, 3},
	{"Хлеб цельнозерновой", 247, 13, 4.2, 41},
	{"Лосось", 208, 20, 12, 0},
	{"Авокадо", 160, 2, 15, 9},
}

var mealPlan = []struct {
	meal     models.MealType
	portions []portion
}{
	{models.Breakfast, []portion{{"Овсянка", 100}, {"Банан", 120}, {"Яйцо куриное", 100}}},
	{models.Lunch, []portion{{"Куриная грудка", 150}, {"Рис отварной", 200}, {"Брокколи", 150}}},
	{models.Dinner, []portion{{"Лосось", 150}, {"Брокколи", 100}, {"Авокадо", 50}}},
	{models.Snack, []portion{{"Творог 5%", 200}, {"Хлеб цельнозерновой", 50}}},
}

const (
	weightDays   = 14
	mealDays     = 7
	startWeight  = 75.0
	targetWeight = 70.0
	weightStep   = 0.05
)

// Report counts what a run created.
type Report struct {
	Foods   int
	Goal    bool
	Weights int
	Entries int
}

type Seeder struct {
	users   Users
	catalog Catalog
	diary   Diary
	goals   Goals
	weights Weights
	logger  logging.Logger
	now     func() time.Time
}

func NewSeeder(u Users, c Catalog, d Diary, g Goals, w Weights, l logging.Logger) *Seeder {
	return &Seeder{users: u, catalog: c, diary: d, goals: g, weights: w, logger: l, now: time.Now}
}

// Seed fills the demo data for userName. The user must exist.
func (s *Seeder) Seed(ctx context.Context, userName string) (*Report, error) {
	user, err := s.users.Lookup(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("user %q not found, create it first", userName)
		}
		return nil, err
	}

	rep := &Report{}
	today := timex.Day(s.now())

	foods, err := s.seedFoods(ctx, user.ID, rep)
	if err != nil {
		return nil, err
	}
	if err := s.seedGoal(ctx, user.ID, today, rep); err != nil {
		return nil, err
	}
	if err := s.seedWeights(ctx, user.ID, today, rep); err != nil {
		return nil, err
	}
	if err := s.seedMeals(ctx, user.ID, today, foods, rep); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "seed finished", "user", userName,
		"foods", rep.Foods, "goal", rep.Goal, "weights", rep.Weights, "entries", rep.Entries)
	return rep, nil
}

// seedFoods returns food ids by name, creating missing items.
func (s *Seeder) seedFoods(ctx context.Context, userID string, rep *Report) (map[string]string, error) {
	ids := make(map[string]string, len(Foods))
	for _, f := range Foods {
		found, err := s.catalog.Search(ctx, models.FoodSearch{Query: f.Name, Limit: 100})
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", f.Name, err)
		}
		for _, item := range found {
			if strings.EqualFold(item.Name, f.Name) {
				ids[f.Name] = item.ID
				break
			}
		}
		if _, ok := ids[f.Name]; ok {
			continue
		}

		item, err := s.catalog.CreateManual(ctx, userID, services.FoodInput{
			Name:    f.Name,
			Per100g: nutrition.Totals{Kcal: f.Kcal, Protein: f.Protein, Fat: f.Fat, Carb: f.Carb},
		})
		if err != nil {
			return nil, fmt.Errorf("create %q: %w", f.Name, err)
		}
		ids[f.Name] = item.ID
		rep.Foods++
	}
	return ids, nil
}

func (s *Seeder) seedGoal(ctx context.Context, userID string, today time.Time, rep *Report) error {
	_, err := s.goals.GoalFor(ctx, userID, today)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNoGoalDefined) {
		return err
	}

	protein, fat, carb := 150.0, 60.0, 180.0
	start, target := startWeight, targetWeight
	_, err = s.goals.SetGoal(ctx, userID, services.GoalInput{
		StartDate:    timex.FormatDate(today.AddDate(0, 0, -weightDays)),
		EndDate:      timex.FormatDate(today.AddDate(0, 0, 30)),
		DailyKcal:    1800,
		DailyProtein: &protein,
		DailyFat:     &fat,
		DailyCarb:    &carb,
		StartWeight:  &start,
		TargetWeight: &target,
	})
	if err != nil {
		return fmt.Errorf("set goal: %w", err)
	}
	rep.Goal = true
	return nil
}

// seedWeights logs a slow decline over the last two weeks.
func (s *Seeder) seedWeights(ctx context.Context, userID string, today time.Time, rep *Report) error {
	for i := 0; i < weightDays; i++ {
		day := today.AddDate(0, 0, i-(weightDays-1))
		kg := startWeight - float64(i)*weightStep
		if _, err := s.weights.Log(ctx, userID, timex.FormatDate(day), kg); err != nil {
			return fmt.Errorf("log weight: %w", err)
		}
		rep.Weights++
	}
	return nil
}

// seedMeals logs the meal plan for each of the last days that has no entries yet.
func (s *Seeder) seedMeals(ctx context.Context, userID string, today time.Time, foods map[string]string, rep *Report) error {
	for i := 0; i < mealDays; i++ {
		day := today.AddDate(0, 0, i-(mealDays-1))

		existing, err := s.diary.Day(ctx, userID, day)
		if err != nil {
			return err
		}
		if !existing.Totals.IsZero() {
			continue
		}

		for _, m := range mealPlan {
			for _, p := range m.portions {
				_, err := s.diary.Log(ctx, userID, services.NewEntry{
					FoodID:   foods[p.food],
					Quantity: p.grams,
					Unit:     string(nutrition.Gram),
					Meal:     m.meal,
					Date:     timex.FormatDate(day),
				})
				if err != nil {
					return fmt.Errorf("log %s: %w", p.food, err)
				}
				rep.Entries++
			}
		}
	}
	return nil
}
