package grpc

// proto.go hand-writes what protoc-gen-go-grpc would emit for
// homelead.wizard.v1.WizardService. Messages are the application dto types,
// carried by the JSON codec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ctateo21/homelead/internal/application/dto"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "homelead.wizard.v1.WizardService"

// WizardServiceServer is the server API for WizardService.
type WizardServiceServer interface {
	SubmitStep(context.Context, *dto.SubmitStepRequest) (*dto.SessionResponse, error)
	SaveDraft(context.Context, *dto.SaveDraftRequest) (*dto.SessionResponse, error)
	GoBack(context.Context, *dto.GoBackRequest) (*dto.SessionResponse, error)
	GetSession(context.Context, *dto.GetSessionRequest) (*dto.SessionResponse, error)
	ComputeProfile(context.Context, *dto.ComputeProfileRequest) (*dto.ProfileResponse, error)
	VerifyIncome(context.Context, *dto.VerifyRequest) (*dto.VerificationResponse, error)
	mustEmbedUnimplementedWizardServiceServer()
}

// UnimplementedWizardServiceServer provides forward-compatible default implementations.
type UnimplementedWizardServiceServer struct{}

func (UnimplementedWizardServiceServer) SubmitStep(context.Context, *dto.SubmitStepRequest) (*dto.SessionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SubmitStep not implemented")
}
func (UnimplementedWizardServiceServer) SaveDraft(context.Context, *dto.SaveDraftRequest) (*dto.SessionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SaveDraft not implemented")
}
func (UnimplementedWizardServiceServer) GoBack(context.Context, *dto.GoBackRequest) (*dto.SessionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GoBack not implemented")
}
func (UnimplementedWizardServiceServer) GetSession(context.Context, *dto.GetSessionRequest) (*dto.SessionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetSession not implemented")
}
func (UnimplementedWizardServiceServer) ComputeProfile(context.Context, *dto.ComputeProfileRequest) (*dto.ProfileResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ComputeProfile not implemented")
}
func (UnimplementedWizardServiceServer) VerifyIncome(context.Context, *dto.VerifyRequest) (*dto.VerificationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method VerifyIncome not implemented")
}
func (UnimplementedWizardServiceServer) mustEmbedUnimplementedWizardServiceServer() {}

// RegisterWizardServiceServer registers srv with the gRPC server.
func RegisterWizardServiceServer(s grpclib.ServiceRegistrar, srv WizardServiceServer) {
	s.RegisterService(&wizardServiceDesc, srv)
}

var wizardServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WizardServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "SubmitStep", Handler: unaryHandler("SubmitStep", func(s WizardServiceServer, ctx context.Context, in *dto.SubmitStepRequest) (*dto.SessionResponse, error) {
			return s.SubmitStep(ctx, in)
		})},
		{MethodName: "SaveDraft", Handler: unaryHandler("SaveDraft", func(s WizardServiceServer, ctx context.Context, in *dto.SaveDraftRequest) (*dto.SessionResponse, error) {
			return s.SaveDraft(ctx, in)
		})},
		{MethodName: "GoBack", Handler: unaryHandler("GoBack", func(s WizardServiceServer, ctx context.Context, in *dto.GoBackRequest) (*dto.SessionResponse, error) {
			return s.GoBack(ctx, in)
		})},
		{MethodName: "GetSession", Handler: unaryHandler("GetSession", func(s WizardServiceServer, ctx context.Context, in *dto.GetSessionRequest) (*dto.SessionResponse, error) {
			return s.GetSession(ctx, in)
		})},
		{MethodName: "ComputeProfile", Handler: unaryHandler("ComputeProfile", func(s WizardServiceServer, ctx context.Context, in *dto.ComputeProfileRequest) (*dto.ProfileResponse, error) {
			return s.ComputeProfile(ctx, in)
		})},
		{MethodName: "VerifyIncome", Handler: unaryHandler("VerifyIncome", func(s WizardServiceServer, ctx context.Context, in *dto.VerifyRequest) (*dto.VerificationResponse, error) {
			return s.VerifyIncome(ctx, in)
		})},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "homelead/wizard/v1/wizard.proto",
}

// unaryHandler adapts a typed method to grpc.MethodDesc, decoding the
// request and running the interceptor chain.
func unaryHandler[Req, Resp any](
	method string,
	call func(WizardServiceServer, context.Context, *Req) (*Resp, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(WizardServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(WizardServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
