package grpc

import (
	"context"
	"math"

	"github.com/vogiaan1904/spotqueue/internal/models"
	"github.com/vogiaan1904/spotqueue/internal/service"
	"github.com/vogiaan1904/spotqueue/pkg/logger"
	resp "github.com/vogiaan1904/spotqueue/pkg/response"
	"github.com/vogiaan1904/spotqueue/pkg/util"
	"google.golang.org/protobuf/types/known/structpb"
)

type grpcService struct {
	svc service.QueueService
	l   logger.Logger
}

func NewGrpcService(svc service.QueueService, l logger.Logger) SpotQueueServer {
	return &grpcService{
		svc: svc,
		l:   l,
	}
}

func (s *grpcService) GetCenter(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := stringField(req, "center_id")
	if id == "" {
		return nil, resp.ParseGRPCError(errCenterIDRequired)
	}

	c, err := s.svc.GetCenter(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "GetCenter", err)
	}

	return s.reply(ctx, map[string]any{"center": centerFields(c)})
}

func (s *grpcService) ListCenters(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cs := s.svc.ListCenters(ctx)
	items := make([]any, 0, len(cs))
	for _, c := range cs {
		items = append(items, centerFields(c))
	}

	return s.reply(ctx, map[string]any{"centers": items})
}

func (s *grpcService) RefreshDirectory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.svc.RefreshDirectory(ctx); err != nil {
		return nil, s.fail(ctx, "RefreshDirectory", err)
	}

	return s.reply(ctx, map[string]any{"centers": len(s.svc.ListCenters(ctx))})
}

func (s *grpcService) BookTicket(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	lead, err := intField(req, "notify_before_minutes")
	if err != nil {
		return nil, resp.ParseGRPCError(err)
	}
	in := service.BookTicketInput{
		CenterID:            stringField(req, "center_id"),
		NotifyBeforeMinutes: lead,
	}
	if in.CenterID == "" {
		return nil, resp.ParseGRPCError(errCenterIDRequired)
	}
	if in.NotifyBeforeMinutes < 0 {
		return nil, resp.ParseGRPCError(errInvalidLeadTime)
	}

	out, err := s.svc.BookTicket(ctx, in)
	if err != nil {
		return nil, s.fail(ctx, "BookTicket", err)
	}

	return s.reply(ctx, map[string]any{
		"ticket":          ticketFields(out.Ticket),
		"pass":            out.Pass,
		"pass_expires_at": util.TimeToISO8601Str(out.PassExpiresAt),
		"queue_length":    out.QueueLength,
	})
}

func (s *grpcService) CancelTicket(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := stringField(req, "ticket_id")
	if id == "" {
		return nil, resp.ParseGRPCError(errTicketIDRequired)
	}

	t, err := s.svc.CancelTicket(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "CancelTicket", err)
	}

	return s.reply(ctx, map[string]any{"ticket": ticketFields(t)})
}

func (s *grpcService) GetTicket(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := stringField(req, "ticket_id")
	if id == "" {
		return nil, resp.ParseGRPCError(errTicketIDRequired)
	}

	t, err := s.svc.GetTicket(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "GetTicket", err)
	}

	return s.reply(ctx, map[string]any{"ticket": ticketFields(t)})
}

func (s *grpcService) ListTickets(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	out := s.svc.ListTickets(ctx)

	return s.reply(ctx, map[string]any{
		"active":  ticketList(out.Active),
		"history": ticketList(out.History),
	})
}

func (s *grpcService) UpdateNotificationLeadTime(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := stringField(req, "ticket_id")
	if id == "" {
		return nil, resp.ParseGRPCError(errTicketIDRequired)
	}

	lead, err := intField(req, "notify_before_minutes")
	if err != nil {
		return nil, resp.ParseGRPCError(err)
	}

	t, err := s.svc.UpdateNotificationLeadTime(ctx, id, lead)
	if err != nil {
		return nil, s.fail(ctx, "UpdateNotificationLeadTime", err)
	}

	return s.reply(ctx, map[string]any{"ticket": ticketFields(t)})
}

func (s *grpcService) VerifyTicketPass(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	v, err := s.svc.VerifyTicketPass(ctx, stringField(req, "pass"))
	if err != nil {
		return nil, s.fail(ctx, "VerifyTicketPass", err)
	}

	return s.reply(ctx, map[string]any{
		"ticket":     ticketFields(v.Ticket),
		"expires_at": util.TimeToISO8601Str(v.Claims.ExpiresAt),
	})
}

func (s *grpcService) fail(ctx context.Context, method string, err error) error {
	s.l.Warnf(ctx, "delivery.grpc.%s: %v", method, err)
	return resp.ParseGRPCError(s.mapGRPCError(err))
}

func (s *grpcService) reply(ctx context.Context, fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		s.l.Errorf(ctx, "delivery.grpc.reply: %v", err)
		return nil, resp.ParseGRPCError(err)
	}
	return out, nil
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

// intField reads an optional whole number. A missing field reads as zero.
func intField(req *structpb.Struct, key string) (int, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, nil
	}
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, errInvalidNumber
	}
	n := nv.NumberValue
	if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
		return 0, errInvalidNumber
	}
	return int(n), nil
}

func centerFields(c models.ServiceCenter) map[string]any {
	return map[string]any{
		"id":                         c.ID,
		"name":                       c.Name,
		"location":                   c.Location,
		"queue_length":               c.QueueLength,
		"wait_time_estimate_minutes": c.WaitTimeEstimateMinutes,
		"operating_hours":            c.OperatingHours,
	}
}

func ticketFields(t models.QueueTicket) map[string]any {
	return map[string]any{
		"id":                          t.ID,
		"center_id":                   t.CenterID,
		"center_name":                 t.CenterName,
		"ticket_number":               t.TicketNumber,
		"estimated_wait_time_minutes": t.EstimatedWaitTimeMinutes,
		"status":                      string(t.Status),
		"notify_before_minutes":       t.NotifyBeforeMinutes,
		"created_at":                  util.TimeToISO8601Str(t.CreatedAt),
		"updated_at":                  util.TimeToISO8601Str(t.UpdatedAt),
	}
}

func ticketList(ts []models.QueueTicket) []any {
	out := make([]any, 0, len(ts))
	for _, t := range ts {
		out = append(out, ticketFields(t))
	}
	return out
}
