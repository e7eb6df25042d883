package proto

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"FastEvaluate/engine"
	"FastEvaluate/logger"
	"FastEvaluate/monitor"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Server struct {
	UnimplementedEvaluateServiceServer
	pool *engine.Pool

	closeOnce sync.Once
	// CloseChannel is closed when a client asks the process to stop.
	CloseChannel chan struct{}
}

func NewServer(pool *engine.Pool) *Server {
	return &Server{
		pool:         pool,
		CloseChannel: make(chan struct{}),
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, engine.ErrPoolClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, engine.ErrUnregistered), errors.Is(err, engine.ErrNotStarted):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func (s *Server) Evaluate(ctx context.Context, req *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	monitor.GRPCTotal.Inc()
	res := s.pool.Submit(ctx, req.GetValue())
	if res.Err != nil {
		return nil, toStatus(res.Err)
	}
	return wrapperspb.Bytes(res.Data), nil
}

func (s *Server) CheckExtension(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	monitor.GRPCTotal.Inc()
	info, err := structpb.NewStruct(engine.Describe(s.pool.Backend(), s.pool.Workers()))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return info, nil
}

func (s *Server) Shutdown(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error) {
	monitor.GRPCTotal.Inc()
	logger.Log().Warn("shutdown requested over gRPC")
	s.closeOnce.Do(func() {
		close(s.CloseChannel)
	})
	return &emptypb.Empty{}, nil
}

// msgOverhead covers the BytesValue framing around a request.
const msgOverhead = 1 << 10

// Serve registers the evaluate and health services on a new grpc.Server and
// serves lis in the background.
func Serve(lis net.Listener, srv *Server) *grpc.Server {
	s := grpc.NewServer(
		grpc.MaxRecvMsgSize(engine.MaxRequestBytes+msgOverhead),
		grpc.MaxSendMsgSize(engine.MaxRequestBytes+msgOverhead),
	)
	RegisterEvaluateServiceServer(s, srv)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(EvaluateService_ServiceDesc.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	go func() {
		logger.Log().Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
		if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Log().Error("gRPC server stopped", zap.Error(err))
		}
	}()
	return s
}

func StartGRPCServer(port int, srv *Server) (*grpc.Server, error) {
	addr := fmt.Sprintf(":%d", port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return Serve(lis, srv), nil
}
