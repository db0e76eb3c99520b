package handler

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/formschema"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/rpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const SellerPortalServiceName = "marketplace.sellerportal.v1.SellerPortalService"

type SellerPortalServiceServer interface {
	GetFormSchema(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ValidateSubmission(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var SellerPortalServiceDesc = grpc.ServiceDesc{
	ServiceName: SellerPortalServiceName,
	HandlerType: (*SellerPortalServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(SellerPortalServiceName, "GetFormSchema", func(srv interface{}, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(SellerPortalServiceServer).GetFormSchema(ctx, in)
		}),
		rpc.Unary(SellerPortalServiceName, "ValidateSubmission", func(srv interface{}, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(SellerPortalServiceServer).ValidateSubmission(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketplace/sellerportal/v1/seller_portal.proto",
}

var _ SellerPortalServiceServer = (*FormSchemaGRPCHandler)(nil)

type FormSchemaGRPCHandler struct {
	uc     formschema.UseCase
	logger logger.ZapLogger
}

func NewFormSchemaGRPCHandler(uc formschema.UseCase, log logger.ZapLogger) *FormSchemaGRPCHandler {
	return &FormSchemaGRPCHandler{uc: uc, logger: log}
}

func RegisterSellerPortalServiceServer(s grpc.ServiceRegistrar, srv SellerPortalServiceServer) {
	s.RegisterService(&SellerPortalServiceDesc, srv)
}

func (h *FormSchemaGRPCHandler) GetFormSchema(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	code := rpc.String(req, "category_code")
	if code == "" {
		return nil, status.Error(codes.InvalidArgument, "category_code is required")
	}

	schema, err := h.uc.GetSchema(ctx, code)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return rpc.ToStruct(map[string]interface{}{"form_schema": schema})
}

func (h *FormSchemaGRPCHandler) ValidateSubmission(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	code := rpc.String(req, "category_code")
	if code == "" {
		return nil, status.Error(codes.InvalidArgument, "category_code is required")
	}

	cleaned, err := h.uc.ValidateSubmission(ctx, code, rpc.Object(req, "data"))
	if err != nil {
		return nil, h.toStatus(err)
	}
	return rpc.ToStruct(map[string]interface{}{"valid": true, "data": cleaned})
}

func (h *FormSchemaGRPCHandler) toStatus(err error) error {
	if _, ok := apperror.As(err); !ok {
		h.logger.Error("seller portal rpc failed", zap.Error(err))
	}
	return apperror.ToGRPC(err)
}
