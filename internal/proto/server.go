package proto

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Victorious-hub/Open-Graph/internal/auth"
	"github.com/Victorious-hub/Open-Graph/internal/config"
	"github.com/Victorious-hub/Open-Graph/internal/db"
	"github.com/Victorious-hub/Open-Graph/internal/models"
	"github.com/Victorious-hub/Open-Graph/internal/service"
)

type (
	Authenticator interface {
		Authenticate(ctx context.Context, accessToken string) (*db.User, error)
	}

	BookmarkerServerImpl struct {
		users       Authenticator
		links       *service.Links
		collections *service.Collections
		logger      *zap.SugaredLogger
	}

	userIDKey struct{}
)

func NewGRPCServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	users *service.Users,
	links *service.Links,
	collections *service.Collections,
	logger *zap.SugaredLogger,
) *BookmarkerServerImpl {
	instance := NewBookmarkerServer(users, links, collections, logger)
	grpcServer := instance.NewServer()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", cfg.Host+":"+cfg.GRPCPort)
			if err != nil {
				return errors.Wrap(err, "failed to listen")
			}
			go func() {
				if err := grpcServer.Serve(lis); err != nil {
					logger.Errorw("failed to serve", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping GRPC server.")
			grpcServer.GracefulStop()
			return nil
		},
	})

	return instance
}

func NewBookmarkerServer(users Authenticator, links *service.Links, collections *service.Collections, logger *zap.SugaredLogger) *BookmarkerServerImpl {
	return &BookmarkerServerImpl{
		users:       users,
		links:       links,
		collections: collections,
		logger:      logger,
	}
}

// NewServer returns a grpc.Server with the service and auth interceptor registered.
func (s *BookmarkerServerImpl) NewServer() *grpc.Server {
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(s.authInterceptor))
	RegisterBookmarkerServer(grpcServer, s)
	return grpcServer
}

func (s *BookmarkerServerImpl) authInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get("authorization")
	if len(values) == 0 || !strings.HasPrefix(values[0], "Bearer ") {
		return nil, status.Error(codes.Unauthenticated, "authentication credentials were not provided")
	}

	user, err := s.users.Authenticate(ctx, strings.TrimPrefix(values[0], "Bearer "))
	if err != nil {
		return nil, s.toStatus(info.FullMethod, err)
	}

	return handler(context.WithValue(ctx, userIDKey{}, user.ID), req)
}

func (s *BookmarkerServerImpl) ListLinks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	filter := service.LinkFilter{Page: pageFrom(fields)}
	if v, ok := fields["type"]; ok {
		t := models.LinkType(v.GetStringValue())
		if !t.Valid() {
			return nil, status.Error(codes.InvalidArgument, "invalid type")
		}
		filter.Type = &t
	}
	if v, ok := fields["collection_id"]; ok {
		id := uint64(v.GetNumberValue())
		filter.CollectionID = &id
	}

	links, total, err := s.links.ListLinks(ctx, userID(ctx), filter)
	if err != nil {
		return nil, s.toStatus("ListLinks", err)
	}

	results := make([]interface{}, len(links))
	for i := range links {
		results[i] = linkFields(&links[i])
	}
	return listStruct(filter.Page, total, results)
}

func (s *BookmarkerServerImpl) GetLink(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, ok := req.GetFields()["id"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	link, err := s.links.GetLink(ctx, userID(ctx), uint64(id.GetNumberValue()))
	if err != nil {
		return nil, s.toStatus("GetLink", err)
	}

	out, err := structpb.NewStruct(linkFields(link))
	if err != nil {
		return nil, s.toStatus("GetLink", err)
	}
	return out, nil
}

func (s *BookmarkerServerImpl) ListCollections(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	page := pageFrom(req.GetFields())

	colls, total, err := s.collections.ListCollections(ctx, userID(ctx), page)
	if err != nil {
		return nil, s.toStatus("ListCollections", err)
	}

	results := make([]interface{}, len(colls))
	for i := range colls {
		results[i] = map[string]interface{}{
			"id":          colls[i].ID,
			"name":        colls[i].Name,
			"description": colls[i].Description,
			"created_at":  colls[i].CreatedAt.UTC().Format(time.RFC3339),
			"updated_at":  colls[i].UpdatedAt.UTC().Format(time.RFC3339),
		}
	}
	return listStruct(page, total, results)
}

func (s *BookmarkerServerImpl) toStatus(method string, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.Errorw("rpc failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}

func userID(ctx context.Context) uint64 {
	id, _ := ctx.Value(userIDKey{}).(uint64)
	return id
}

func pageFrom(fields map[string]*structpb.Value) service.Page {
	p := service.Page{Limit: service.DefaultLimit}
	if v, ok := fields["limit"]; ok && v.GetNumberValue() > 0 {
		p.Limit = int(v.GetNumberValue())
	}
	if p.Limit > service.MaxLimit {
		p.Limit = service.MaxLimit
	}
	if v, ok := fields["offset"]; ok && v.GetNumberValue() > 0 {
		p.Offset = int(v.GetNumberValue())
	}
	return p
}

func listStruct(page service.Page, total int64, results []interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(map[string]interface{}{
		"limit":   page.Limit,
		"offset":  page.Offset,
		"count":   total,
		"results": results,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func linkFields(l *db.Link) map[string]interface{} {
	return map[string]interface{}{
		"id":          l.ID,
		"link_url":    optional(l.LinkURL),
		"title":       optional(l.Title),
		"description": optional(l.Description),
		"image":       optional(l.Image),
		"link_type":   string(l.LinkType),
		"created_at":  l.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":  l.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func optional(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
