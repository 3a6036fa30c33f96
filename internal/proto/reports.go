// Package proto declares the fitmacro.v1.Reports gRPC service without
// generated code: every method takes and returns a google.protobuf.Struct.
// reports.proto in this directory is the matching service definition.
//
// Message shapes (field names are JSON-style keys of the Struct):
//
//	Register      {username, password}      -> {id, username}
//	Login         {username, password}      -> {access_token, refresh_token}
//	RefreshToken  {refresh_token}           -> {access_token, refresh_token}
//	DailySummary  {date?}                   -> {date, totals, goal?, target?, delta?, progress?}
//	CalorieSeries {days?}                   -> {from, to, points: [{date, value}], goal?}
//
// totals, target and delta are {kcal, protein, fat, carb}.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "fitmacro.v1.Reports"

const (
	RegisterMethod      = "/" + ServiceName + "/Register"
	LoginMethod         = "/" + ServiceName + "/Login"
	RefreshTokenMethod  = "/" + ServiceName + "/RefreshToken"
	DailySummaryMethod  = "/" + ServiceName + "/DailySummary"
	CalorieSeriesMethod = "/" + ServiceName + "/CalorieSeries"
)

// ReportsServer is the server API of fitmacro.v1.Reports.
type ReportsServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RefreshToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DailySummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CalorieSeries(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(ReportsServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ReportsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ReportsServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ReportsServiceDesc is the grpc.ServiceDesc for fitmacro.v1.Reports.
var ReportsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReportsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(RegisterMethod, ReportsServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(LoginMethod, ReportsServer.Login)},
		{MethodName: "RefreshToken", Handler: unaryHandler(RefreshTokenMethod, ReportsServer.RefreshToken)},
		{MethodName: "DailySummary", Handler: unaryHandler(DailySummaryMethod, ReportsServer.DailySummary)},
		{MethodName: "CalorieSeries", Handler: unaryHandler(CalorieSeriesMethod, ReportsServer.CalorieSeries)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "reports.proto",
}

func RegisterReportsServer(s grpc.ServiceRegistrar, srv ReportsServer) {
	s.RegisterService(&ReportsServiceDesc, srv)
}

// ReportsClient is the client API of fitmacro.v1.Reports.
type ReportsClient struct {
	cc grpc.ClientConnInterface
}

func NewReportsClient(cc grpc.ClientConnInterface) *ReportsClient {
	return &ReportsClient{cc: cc}
}

func (c *ReportsClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReportsClient) Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RegisterMethod, in, opts...)
}

func (c *ReportsClient) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, LoginMethod, in, opts...)
}

func (c *ReportsClient) RefreshToken(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RefreshTokenMethod, in, opts...)
}

func (c *ReportsClient) DailySummary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, DailySummaryMethod, in, opts...)
}

func (c *ReportsClient) CalorieSeries(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CalorieSeriesMethod, in, opts...)
}
