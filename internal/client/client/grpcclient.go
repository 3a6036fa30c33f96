package client

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/fitmacro/internal/client/models"
	"github.com/dmitrijs2005/fitmacro/internal/common"
	pb "github.com/dmitrijs2005/fitmacro/internal/proto"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *pb.ReportsClient
	health      healthpb.HealthClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

// accessTokenInterceptor attaches the access token to every call. When the
// server reports it as expired the pair is refreshed once and the call retried.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	access, refresh := s.Tokens()
	if access == "" || method == pb.RefreshTokenMethod {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refresh == "" {
		return err
	}

	in, _ := structpb.NewStruct(map[string]any{"refresh_token": refresh})
	out, err := s.client.RefreshToken(ctx, in)
	if err != nil {
		return err
	}
	access = out.GetFields()["access_token"].GetStringValue()
	s.SetTokens(access, out.GetFields()["refresh_token"].GetStringValue())

	// tokens refreshed, retrying with the new access token
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

func NewFitMacroClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(extra ...grpc.DialOption) error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, extra...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewReportsClient(conn)
	s.health = healthpb.NewHealthClient(conn)
	return nil
}

func (s *GRPCClient) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken, s.refreshToken = accessToken, refreshToken
}

func (s *GRPCClient) Tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) Register(ctx context.Context, userName string, password []byte) (string, error) {
	in, err := structpb.NewStruct(map[string]any{"username": userName, "password": string(password)})
	if err != nil {
		return "", err
	}

	out, err := s.client.Register(ctx, in)
	if err != nil {
		return "", s.mapError(err)
	}
	return out.GetFields()["id"].GetStringValue(), nil
}

func (s *GRPCClient) Login(ctx context.Context, userName string, password []byte) (string, string, error) {
	in, err := structpb.NewStruct(map[string]any{"username": userName, "password": string(password)})
	if err != nil {
		return "", "", err
	}

	out, err := s.client.Login(ctx, in)
	if err != nil {
		return "", "", s.mapError(err)
	}

	access := out.GetFields()["access_token"].GetStringValue()
	refresh := out.GetFields()["refresh_token"].GetStringValue()
	s.SetTokens(access, refresh)
	return access, refresh, nil
}

// Ping asks the standard health service whether Reports is serving.
func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: pb.ServiceName})
	if err != nil {
		return s.mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) DailySummary(ctx context.Context, date string) (*models.Summary, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	if date != "" {
		in.Fields["date"] = structpb.NewStringValue(date)
	}

	out, err := s.client.DailySummary(ctx, in)
	if err != nil {
		return nil, s.mapError(err)
	}

	f := out.GetFields()
	sum := &models.Summary{
		Date:   f["date"].GetStringValue(),
		Totals: macrosFrom(f["totals"]),
	}
	if goal := f["goal"].GetStructValue(); goal != nil {
		kcal := goal.GetFields()["daily_kcal"].GetNumberValue()
		target, delta := macrosFrom(f["target"]), macrosFrom(f["delta"])
		p := f["progress"].GetStructValue().GetFields()
		sum.GoalKcal = &kcal
		sum.Target = &target
		sum.Delta = &delta
		sum.Progress = &models.Progress{
			Kcal:    int(p["kcal"].GetNumberValue()),
			Protein: int(p["protein"].GetNumberValue()),
			Fat:     int(p["fat"].GetNumberValue()),
			Carb:    int(p["carb"].GetNumberValue()),
		}
	}
	return sum, nil
}

func (s *GRPCClient) CalorieSeries(ctx context.Context, days int) (*models.CalorieSeries, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	if days > 0 {
		in.Fields["days"] = structpb.NewNumberValue(float64(days))
	}

	out, err := s.client.CalorieSeries(ctx, in)
	if err != nil {
		return nil, s.mapError(err)
	}

	f := out.GetFields()
	series := &models.CalorieSeries{From: f["from"].GetStringValue(), To: f["to"].GetStringValue()}
	for _, v := range f["points"].GetListValue().GetValues() {
		p := v.GetStructValue().GetFields()
		series.Points = append(series.Points, models.Point{Date: p["date"].GetStringValue(), Value: p["value"].GetNumberValue()})
	}
	if g, ok := f["goal"].GetKind().(*structpb.Value_NumberValue); ok {
		v := g.NumberValue
		series.Goal = &v
	}
	return series, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func macrosFrom(v *structpb.Value) models.Macros {
	f := v.GetStructValue().GetFields()
	return models.Macros{
		Kcal:    f["kcal"].GetNumberValue(),
		Protein: f["protein"].GetNumberValue(),
		Fat:     f["fat"].GetNumberValue(),
		Carb:    f["carb"].GetNumberValue(),
	}
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
