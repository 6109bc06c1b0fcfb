package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Full method names, used by interceptors.
const (
	JournalService_Register_FullMethodName          = "/journal.v1.JournalService/Register"
	JournalService_Login_FullMethodName             = "/journal.v1.JournalService/Login"
	JournalService_ListUsers_FullMethodName         = "/journal.v1.JournalService/ListUsers"
	JournalService_CreateMessage_FullMethodName     = "/journal.v1.JournalService/CreateMessage"
	JournalService_UpdateMessage_FullMethodName     = "/journal.v1.JournalService/UpdateMessage"
	JournalService_GetMessage_FullMethodName        = "/journal.v1.JournalService/GetMessage"
	JournalService_Subscribe_FullMethodName         = "/journal.v1.JournalService/Subscribe"
	JournalService_AddComment_FullMethodName        = "/journal.v1.JournalService/AddComment"
	JournalService_UploadMedia_FullMethodName       = "/journal.v1.JournalService/UploadMedia"
	JournalService_GetMediaMetadata_FullMethodName  = "/journal.v1.JournalService/GetMediaMetadata"
	JournalService_RegisterPushToken_FullMethodName = "/journal.v1.JournalService/RegisterPushToken"
)

// JournalServiceClient is the client API for JournalService.
type JournalServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	ListUsers(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ListUsersResponse, error)
	CreateMessage(ctx context.Context, in *CreateMessageRequest, opts ...grpc.CallOption) (*CreateMessageResponse, error)
	UpdateMessage(ctx context.Context, in *UpdateMessageRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetMessage(ctx context.Context, in *GetMessageRequest, opts ...grpc.CallOption) (*Message, error)
	Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[UpsertEvent], error)
	AddComment(ctx context.Context, in *AddCommentRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	UploadMedia(ctx context.Context, in *UploadMediaRequest, opts ...grpc.CallOption) (*UploadMediaResponse, error)
	GetMediaMetadata(ctx context.Context, in *GetMediaMetadataRequest, opts ...grpc.CallOption) (*MediaMetadata, error)
	RegisterPushToken(ctx context.Context, in *RegisterPushTokenRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type journalServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewJournalServiceClient wraps a connection. Every call is sent with the
// JSON content-subtype.
func NewJournalServiceClient(cc grpc.ClientConnInterface) JournalServiceClient {
	return &journalServiceClient{cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(Codec)}, opts...)
}

func (c *journalServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	out := new(AuthResponse)
	if err := c.cc.Invoke(ctx, JournalService_Register_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *journalServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	out := new(AuthResponse)
	if err := c.cc.Invoke(ctx, JournalService_Login_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *journalServiceClient) ListUsers(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ListUsersResponse, error) {
	out := new(ListUsersResponse)
	if err := c.cc.Invoke(ctx, JournalService_ListUsers_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *journalServiceClient) CreateMessage(ctx context.Context, in *CreateMessageRequest, opts ...grpc.CallOption) (*CreateMessageResponse, error) {
	out := new(CreateMessageResponse)
	if err := c.cc.Invoke(ctx, JournalService_CreateMessage_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *journalServiceClient) UpdateMessage(ctx context.Context, in *UpdateMessageRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, JournalService_UpdateMessage_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *journalServiceClient) GetMessage(ctx context.Context, in *GetMessageRequest, opts ...grpc.CallOption) (*Message, error) {
	out := new(Message)
	if err := c.cc.Invoke(ctx, JournalService_GetMessage_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *journalServiceClient) Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[UpsertEvent], error) {
	stream, err := c.cc.NewStream(ctx, &JournalService_ServiceDesc.Streams[0], JournalService_Subscribe_FullMethodName, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[SubscribeRequest, UpsertEvent]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *journalServiceClient) AddComment(ctx context.Context, in *AddCommentRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, JournalService_AddComment_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *journalServiceClient) UploadMedia(ctx context.Context, in *UploadMediaRequest, opts ...grpc.CallOption) (*UploadMediaResponse, error) {
	out := new(UploadMediaResponse)
	if err := c.cc.Invoke(ctx, JournalService_UploadMedia_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *journalServiceClient) GetMediaMetadata(ctx context.Context, in *GetMediaMetadataRequest, opts ...grpc.CallOption) (*MediaMetadata, error) {
	out := new(MediaMetadata)
	if err := c.cc.Invoke(ctx, JournalService_GetMediaMetadata_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *journalServiceClient) RegisterPushToken(ctx context.Context, in *RegisterPushTokenRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, JournalService_RegisterPushToken_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// JournalServiceServer is the server API for JournalService.
type JournalServiceServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	ListUsers(context.Context, *emptypb.Empty) (*ListUsersResponse, error)
	CreateMessage(context.Context, *CreateMessageRequest) (*CreateMessageResponse, error)
	UpdateMessage(context.Context, *UpdateMessageRequest) (*emptypb.Empty, error)
	GetMessage(context.Context, *GetMessageRequest) (*Message, error)
	Subscribe(*SubscribeRequest, JournalService_SubscribeServer) error
	AddComment(context.Context, *AddCommentRequest) (*emptypb.Empty, error)
	UploadMedia(context.Context, *UploadMediaRequest) (*UploadMediaResponse, error)
	GetMediaMetadata(context.Context, *GetMediaMetadataRequest) (*MediaMetadata, error)
	RegisterPushToken(context.Context, *RegisterPushTokenRequest) (*emptypb.Empty, error)
}

// JournalService_SubscribeServer is the server side of the Subscribe stream.
type JournalService_SubscribeServer = grpc.ServerStreamingServer[UpsertEvent]

// UnimplementedJournalServiceServer can be embedded for forward compatibility.
type UnimplementedJournalServiceServer struct{}

func (UnimplementedJournalServiceServer) Register(context.Context, *RegisterRequest) (*AuthResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedJournalServiceServer) Login(context.Context, *LoginRequest) (*AuthResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedJournalServiceServer) ListUsers(context.Context, *emptypb.Empty) (*ListUsersResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListUsers not implemented")
}
func (UnimplementedJournalServiceServer) CreateMessage(context.Context, *CreateMessageRequest) (*CreateMessageResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateMessage not implemented")
}
func (UnimplementedJournalServiceServer) UpdateMessage(context.Context, *UpdateMessageRequest) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method UpdateMessage not implemented")
}
func (UnimplementedJournalServiceServer) GetMessage(context.Context, *GetMessageRequest) (*Message, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetMessage not implemented")
}
func (UnimplementedJournalServiceServer) Subscribe(*SubscribeRequest, JournalService_SubscribeServer) error {
	return status.Errorf(codes.Unimplemented, "method Subscribe not implemented")
}
func (UnimplementedJournalServiceServer) AddComment(context.Context, *AddCommentRequest) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AddComment not implemented")
}
func (UnimplementedJournalServiceServer) UploadMedia(context.Context, *UploadMediaRequest) (*UploadMediaResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method UploadMedia not implemented")
}
func (UnimplementedJournalServiceServer) GetMediaMetadata(context.Context, *GetMediaMetadataRequest) (*MediaMetadata, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetMediaMetadata not implemented")
}
func (UnimplementedJournalServiceServer) RegisterPushToken(context.Context, *RegisterPushTokenRequest) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RegisterPushToken not implemented")
}

// RegisterJournalServiceServer registers srv on s.
func RegisterJournalServiceServer(s grpc.ServiceRegistrar, srv JournalServiceServer) {
	s.RegisterService(&JournalService_ServiceDesc, srv)
}

// unaryHandler builds a grpc.MethodDesc handler for a typed unary method.
func unaryHandler[Req any, Res any](fullMethod string, call func(JournalServiceServer, context.Context, *Req) (*Res, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(JournalServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(JournalServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _JournalService_Subscribe_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(SubscribeRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(JournalServiceServer).Subscribe(m, &grpc.GenericServerStream[SubscribeRequest, UpsertEvent]{ServerStream: stream})
}

// JournalService_ServiceDesc is the grpc.ServiceDesc for JournalService.
var JournalService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "journal.v1.JournalService",
	HandlerType: (*JournalServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(JournalService_Register_FullMethodName, JournalServiceServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(JournalService_Login_FullMethodName, JournalServiceServer.Login)},
		{MethodName: "ListUsers", Handler: unaryHandler(JournalService_ListUsers_FullMethodName, JournalServiceServer.ListUsers)},
		{MethodName: "CreateMessage", Handler: unaryHandler(JournalService_CreateMessage_FullMethodName, JournalServiceServer.CreateMessage)},
		{MethodName: "UpdateMessage", Handler: unaryHandler(JournalService_UpdateMessage_FullMethodName, JournalServiceServer.UpdateMessage)},
		{MethodName: "GetMessage", Handler: unaryHandler(JournalService_GetMessage_FullMethodName, JournalServiceServer.GetMessage)},
		{MethodName: "AddComment", Handler: unaryHandler(JournalService_AddComment_FullMethodName, JournalServiceServer.AddComment)},
		{MethodName: "UploadMedia", Handler: unaryHandler(JournalService_UploadMedia_FullMethodName, JournalServiceServer.UploadMedia)},
		{MethodName: "GetMediaMetadata", Handler: unaryHandler(JournalService_GetMediaMetadata_FullMethodName, JournalServiceServer.GetMediaMetadata)},
		{MethodName: "RegisterPushToken", Handler: unaryHandler(JournalService_RegisterPushToken_FullMethodName, JournalServiceServer.RegisterPushToken)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       _JournalService_Subscribe_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "journal.v1",
}
