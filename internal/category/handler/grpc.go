package handler

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/category"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/rpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const CategoryServiceName = "marketplace.catalog.v1.CategoryService"

type CategoryServiceServer interface {
	GetCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListChildren(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var CategoryServiceDesc = grpc.ServiceDesc{
	ServiceName: CategoryServiceName,
	HandlerType: (*CategoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(CategoryServiceName, "GetCategory", func(srv interface{}, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(CategoryServiceServer).GetCategory(ctx, in)
		}),
		rpc.Unary(CategoryServiceName, "ListChildren", func(srv interface{}, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(CategoryServiceServer).ListChildren(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketplace/catalog/v1/category.proto",
}

var _ CategoryServiceServer = (*CategoryGRPCHandler)(nil)

type CategoryGRPCHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryGRPCHandler(uc category.UseCase, log logger.ZapLogger) *CategoryGRPCHandler {
	return &CategoryGRPCHandler{uc: uc, logger: log}
}

func RegisterCategoryServiceServer(s grpc.ServiceRegistrar, srv CategoryServiceServer) {
	s.RegisterService(&CategoryServiceDesc, srv)
}

func (h *CategoryGRPCHandler) GetCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	code := rpc.String(req, "category_code")
	if code == "" {
		return nil, status.Error(codes.InvalidArgument, "category_code is required")
	}

	body, err := categoryDetail(ctx, h.uc, code)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return rpc.ToStruct(body)
}

func (h *CategoryGRPCHandler) ListChildren(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	code := rpc.String(req, "category_code")
	if code == "" {
		return nil, status.Error(codes.InvalidArgument, "category_code is required")
	}

	body, err := childrenOf(ctx, h.uc, code)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return rpc.ToStruct(body)
}

func (h *CategoryGRPCHandler) toStatus(err error) error {
	if _, ok := apperror.As(err); !ok {
		h.logger.Error("category rpc failed", zap.Error(err))
	}
	return apperror.ToGRPC(err)
}
