package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/server/charts"
	"github.com/dmitrijs2005/fitmacro/internal/server/nutrition"
	"github.com/dmitrijs2005/fitmacro/internal/timex"
)

// toStatus maps domain errors to gRPC codes.
func toStatus(err error) error {
	var (
		verr *common.ValidationError
		uerr *common.UnsupportedUnitError
		ierr *common.ImportError
	)
	switch {
	case errors.As(err, &ierr):
		return status.Error(codes.Unavailable, err.Error())
	case errors.As(err, &verr), errors.As(err, &uerr):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrRefreshTokenExpired), errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrNoGoalDefined):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func stringField(in *structpb.Struct, name string) string {
	return in.GetFields()[name].GetStringValue()
}

func totalsValue(t nutrition.Totals) map[string]any {
	t = t.Round(2)
	return map[string]any{"kcal": t.Kcal, "protein": t.Protein, "fat": t.Fat, "carb": t.Carb}
}

func (s *GRPCServer) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	s.logger.Info(ctx, "Registration request")

	user, err := s.users.Register(ctx, stringField(in, "username"), stringField(in, "password"))
	if err != nil {
		s.logger.Warn(ctx, "registration failed", "error", err)
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "username", user.UserName)
	return structpb.NewStruct(map[string]any{"id": user.ID, "username": user.UserName})
}

func (s *GRPCServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	tokens, err := s.users.Login(ctx, stringField(in, "username"), stringField(in, "password"))
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]any{"access_token": tokens.AccessToken, "refresh_token": tokens.RefreshToken})
}

func (s *GRPCServer) RefreshToken(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	tokens, err := s.users.RefreshToken(ctx, stringField(in, "refresh_token"))
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]any{"access_token": tokens.AccessToken, "refresh_token": tokens.RefreshToken})
}

// DailySummary returns the day's totals and, when a goal is set, the
// comparison against it.
func (s *GRPCServer) DailySummary(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, ok := userIDFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	day := timex.Day(s.now())
	if v := stringField(in, "date"); v != "" {
		d, err := timex.ParseDate(v)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "date must be YYYY-MM-DD")
		}
		day = d
	}

	total, err := s.aggregator.DailyTotal(ctx, userID, day)
	if err != nil {
		return nil, toStatus(err)
	}

	out := map[string]any{
		"date":   total.Day,
		"totals": totalsValue(total.Totals),
		"goal":   nil,
	}

	cmp, err := s.goals.Compare(ctx, userID, day)
	switch {
	case errors.Is(err, common.ErrNoGoalDefined):
	case err != nil:
		return nil, toStatus(err)
	default:
		out["goal"] = map[string]any{"id": cmp.Goal.ID, "daily_kcal": cmp.Goal.DailyKcal}
		out["target"] = totalsValue(cmp.Target)
		out["delta"] = totalsValue(cmp.Delta)
		out["progress"] = map[string]any{
			"kcal": cmp.Progress.Kcal, "protein": cmp.Progress.Protein,
			"fat": cmp.Progress.Fat, "carb": cmp.Progress.Carb,
		}
	}

	return structpb.NewStruct(out)
}

// CalorieSeries returns the kcal points of the dashboard and the goal line
// value, if a goal is set.
func (s *GRPCServer) CalorieSeries(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, ok := userIDFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	days := int(in.GetFields()["days"].GetNumberValue())
	d, err := s.dashboards.Dashboard(ctx, userID, s.now(), days)
	if err != nil {
		return nil, toStatus(err)
	}

	kcal, _ := d.Find(nutrition.MetricKcal)
	points := make([]any, 0, len(kcal.Points))
	for _, p := range kcal.Points {
		points = append(points, map[string]any{"date": p.Date, "value": p.Value})
	}

	out := map[string]any{"from": d.From, "to": d.To, "points": points, "goal": nil}
	if line, ok := d.Find(charts.GoalMetric + nutrition.MetricKcal); ok && len(line.Points) > 0 {
		out["goal"] = line.Points[0].Value
	}
	return structpb.NewStruct(out)
}
