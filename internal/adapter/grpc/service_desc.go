package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "signage.user.v1.UserService"

// Full method names, as seen by interceptors.
const (
	MethodCreateUser = "/" + ServiceName + "/CreateUser"
	MethodGetUser    = "/" + ServiceName + "/GetUser"
	MethodLogin      = "/" + ServiceName + "/Login"
)

// UserService is the server API for signage.user.v1.UserService.
type UserService interface {
	CreateUser(context.Context, *CreateUserRequest) (*CreateUserResponse, error)
	GetUser(context.Context, *GetUserRequest) (*GetUserResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
}

// RegisterUserService registers srv on s.
func RegisterUserService(s grpc.ServiceRegistrar, srv UserService) {
	s.RegisterService(&userServiceDesc, srv)
}

var userServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateUser", Handler: unaryHandler(MethodCreateUser, UserService.CreateUser)},
		{MethodName: "GetUser", Handler: unaryHandler(MethodGetUser, UserService.GetUser)},
		{MethodName: "Login", Handler: unaryHandler(MethodLogin, UserService.Login)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "signage/user/v1/user.json",
}

// unaryHandler adapts a typed UserService method to grpc.MethodDesc.
func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(UserService, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(UserService), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(UserService), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// UserServiceClient is the client API for signage.user.v1.UserService.
type UserServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewUserServiceClient creates a client that speaks the JSON codec.
func NewUserServiceClient(cc grpc.ClientConnInterface) *UserServiceClient {
	return &UserServiceClient{cc: cc}
}

// CreateUser calls UserService.CreateUser.
func (c *UserServiceClient) CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*CreateUserResponse, error) {
	out := new(CreateUserResponse)
	if err := c.invoke(ctx, MethodCreateUser, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser calls UserService.GetUser.
func (c *UserServiceClient) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*GetUserResponse, error) {
	out := new(GetUserResponse)
	if err := c.invoke(ctx, MethodGetUser, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// Login calls UserService.Login.
func (c *UserServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	out := new(LoginResponse)
	if err := c.invoke(ctx, MethodLogin, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}
