package grpc

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	pb "github.com/dmitrijs2005/fitmacro/internal/proto"
)

func TestInterceptor_UnprotectedAllowsWithoutToken(t *testing.T) {
	s := newTestServer()

	info := &grpc.UnaryServerInfo{FullMethod: pb.LoginMethod}
	handlerCalled := false
	h := func(ctx context.Context, req any) (any, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled {
		t.Fatal("handler was not called")
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: pb.DailySummaryMethod}

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != "missing token" {
		t.Fatalf("expected 'missing token', got %q", status.Convert(err).Message())
	}
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer()

	md := metadata.New(map[string]string{common.AccessTokenHeaderName: "not-a-valid-jwt"})
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: pb.CalorieSeriesMethod}

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called for invalid token")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(ctx, nil, info, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
}

func TestInterceptor_ValidToken_SetsUserID(t *testing.T) {
	s := newTestServer()

	md := metadata.New(map[string]string{common.AccessTokenHeaderName: goodToken})
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: pb.DailySummaryMethod}

	var gotFromCtx any
	h := func(ctx context.Context, req any) (any, error) {
		gotFromCtx = ctx.Value(UserIDKey)
		return "ok", nil
	}

	if _, err := s.accessTokenInterceptor(ctx, nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFromCtx != testUserID {
		t.Fatalf("user id not propagated in context: got %v want %v", gotFromCtx, testUserID)
	}
}
