package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "spotqueue.v1.SpotQueueService"

// SpotQueueServer is the RPC surface. Requests and responses are
// google.protobuf.Struct documents so clients need no generated stubs.
type SpotQueueServer interface {
	GetCenter(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListCenters(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RefreshDirectory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	BookTicket(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CancelTicket(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetTicket(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListTickets(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateNotificationLeadTime(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	VerifyTicketPass(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(SpotQueueServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SpotQueueServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SpotQueueServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var SpotQueueServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SpotQueueServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("GetCenter", SpotQueueServer.GetCenter),
		unaryHandler("ListCenters", SpotQueueServer.ListCenters),
		unaryHandler("RefreshDirectory", SpotQueueServer.RefreshDirectory),
		unaryHandler("BookTicket", SpotQueueServer.BookTicket),
		unaryHandler("CancelTicket", SpotQueueServer.CancelTicket),
		unaryHandler("GetTicket", SpotQueueServer.GetTicket),
		unaryHandler("ListTickets", SpotQueueServer.ListTickets),
		unaryHandler("UpdateNotificationLeadTime", SpotQueueServer.UpdateNotificationLeadTime),
		unaryHandler("VerifyTicketPass", SpotQueueServer.VerifyTicketPass),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterSpotQueueServer(s grpc.ServiceRegistrar, srv SpotQueueServer) {
	s.RegisterService(&SpotQueueServiceDesc, srv)
}
