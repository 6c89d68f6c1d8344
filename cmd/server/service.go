package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/napolitain/lob-optimizer/internal/constraint"
	"github.com/napolitain/lob-optimizer/internal/converter"
	"github.com/napolitain/lob-optimizer/internal/solver"
	"github.com/napolitain/lob-optimizer/internal/units"
)

const serviceName = "lob.Optimizer"

// OptimizerServer is the lob.Optimizer service
type OptimizerServer interface {
	Search(context.Context, *converter.SearchRequest) (*converter.SearchResponse, error)
	Units(context.Context, *converter.UnitsRequest) (*converter.UnitsResponse, error)
}

// server is used to implement OptimizerServer
type server struct {
	catalog *units.Catalog
	engine  *solver.Engine
}

func newServer(cat *units.Catalog, opts ...solver.Option) *server {
	return &server{catalog: cat, engine: solver.NewEngine(opts...)}
}

// Search implements the Search RPC. A search that fails part way still
// answers with the compositions found so far and the failure in Error.
func (s *server) Search(ctx context.Context, in *converter.SearchRequest) (*converter.SearchResponse, error) {
	logger := zerolog.Ctx(ctx)

	req, err := converter.ToRequest(*in, s.catalog)
	if err != nil {
		return nil, toStatus(err)
	}

	found, err := s.engine.Search(ctx, req)
	if err != nil && len(found) == 0 {
		return nil, toStatus(err)
	}
	resp := converter.ToResponse(req, found, err)
	logger.Info().
		Str("mode", resp.Mode).
		Str("target", resp.Target).
		Int("results", len(resp.Compositions)).
		Msg("search done")
	return resp, nil
}

// Units implements the Units RPC
func (s *server) Units(ctx context.Context, _ *converter.UnitsRequest) (*converter.UnitsResponse, error) {
	return converter.FromCatalog(s.catalog), nil
}

func toStatus(err error) error {
	switch {
	case eris.Is(err, solver.ErrInvalidRequest),
		eris.Is(err, constraint.ErrParse),
		eris.Is(err, constraint.ErrInvalidBound),
		eris.Is(err, constraint.ErrInvalidReference),
		eris.Is(err, units.ErrUnknownUnit):
		return status.Error(codes.InvalidArgument, err.Error())
	case eris.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case eris.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// loggingInterceptor tags each call with a request id and hands a child
// logger to the handler through the context
func loggingInterceptor(base zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		logger := base.With().Str("request_id", uuid.NewString()).Str("method", info.FullMethod).Logger()
		logger.Debug().Msg("request received")

		resp, err := handler(logger.WithContext(ctx), req)
		if err != nil {
			logger.Warn().Err(err).Msg("request failed")
		}
		return resp, err
	}
}

func searchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(converter.SearchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OptimizerServer).Search(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Search"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OptimizerServer).Search(ctx, req.(*converter.SearchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func unitsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(converter.UnitsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OptimizerServer).Units(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Units"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OptimizerServer).Units(ctx, req.(*converter.UnitsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var optimizerServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*OptimizerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Search", Handler: searchHandler},
		{MethodName: "Units", Handler: unitsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lob/optimizer",
}

func registerOptimizerServer(s *grpc.Server, srv OptimizerServer) {
	s.RegisterService(&optimizerServiceDesc, srv)
}

// optimizerClient calls lob.Optimizer over a connection using the JSON codec
type optimizerClient struct {
	cc grpc.ClientConnInterface
}

func (c *optimizerClient) Search(ctx context.Context, in *converter.SearchRequest, opts ...grpc.CallOption) (*converter.SearchResponse, error) {
	out := new(converter.SearchResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Search", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *optimizerClient) Units(ctx context.Context, in *converter.UnitsRequest, opts ...grpc.CallOption) (*converter.UnitsResponse, error) {
	out := new(converter.UnitsResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Units", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
