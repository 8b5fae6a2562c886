package proto

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Victorious-hub/Open-Graph/internal/auth"
	"github.com/Victorious-hub/Open-Graph/internal/config"
	"github.com/Victorious-hub/Open-Graph/internal/db"
	"github.com/Victorious-hub/Open-Graph/internal/lock"
	"github.com/Victorious-hub/Open-Graph/internal/models"
	"github.com/Victorious-hub/Open-Graph/internal/service"
)

type staticEnricher struct{}

func (staticEnricher) Enrich(ctx context.Context, url string) (*models.LinkMetadata, error) {
	title := "title of " + url
	return &models.LinkMetadata{Title: &title, LinkType: models.LinkTypeArticle}, nil
}

type fixture struct {
	client *BookmarkerClient
	links  *service.Links
	colls  *service.Collections
	tokens *auth.Manager
	alice  *db.User
	bob    *db.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := db.Open(&config.Config{
		DBType:         config.DBTypeSQLite,
		DBName:         ":memory:",
		DBMaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	l := zap.NewNop().Sugar()
	tokens := auth.NewManager("secret", time.Minute, time.Hour)
	users := service.NewUsers(gdb, tokens, &config.Config{}, l)
	links := service.NewLinks(gdb, staticEnricher{}, lock.NewLocalLocker(), l)
	colls := service.NewCollections(gdb, l)

	alice := db.User{Email: "alice@example.com", Password: "x", IsActive: true}
	require.NoError(t, gdb.Create(&alice).Error)
	bob := db.User{Email: "bob@example.com", Password: "x", IsActive: true}
	require.NoError(t, gdb.Create(&bob).Error)

	lis := bufconn.Listen(1024 * 1024)
	grpcServer := NewBookmarkerServer(users, links, colls, l).NewServer()
	go func() {
		_ = grpcServer.Serve(lis)
	}()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &fixture{
		client: NewBookmarkerClient(conn),
		links:  links,
		colls:  colls,
		tokens: tokens,
		alice:  &alice,
		bob:    &bob,
	}
}

func (f *fixture) ctxFor(t *testing.T, user *db.User) context.Context {
	t.Helper()
	pair, err := f.tokens.IssuePair(user.ID)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+pair.Access)
}

func mustStruct(t *testing.T, m map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestBookmarker(t *testing.T) {
	f := newFixture(t)
	bg := context.Background()

	link, err := f.links.CreateLink(bg, f.alice.ID, "https://example.com/a")
	require.NoError(t, err)
	_, err = f.links.CreateLink(bg, f.alice.ID, "https://example.com/b")
	require.NoError(t, err)
	_, err = f.colls.CreateCollection(bg, f.alice.ID, service.CollectionInput{Name: "reading"})
	require.NoError(t, err)

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := f.client.ListLinks(bg, mustStruct(t, nil))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))

		ctx := metadata.AppendToOutgoingContext(bg, "authorization", "Bearer garbage")
		_, err = f.client.ListLinks(ctx, mustStruct(t, nil))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("list links", func(t *testing.T) {
		resp, err := f.client.ListLinks(f.ctxFor(t, f.alice), mustStruct(t, map[string]interface{}{"limit": 1}))
		require.NoError(t, err)
		got := resp.AsMap()
		assert.Equal(t, float64(2), got["count"])
		assert.Equal(t, float64(1), got["limit"])
		assert.Len(t, got["results"], 1)
	})

	t.Run("list links by type", func(t *testing.T) {
		resp, err := f.client.ListLinks(f.ctxFor(t, f.alice), mustStruct(t, map[string]interface{}{"type": "book"}))
		require.NoError(t, err)
		assert.Equal(t, float64(0), resp.AsMap()["count"])

		_, err = f.client.ListLinks(f.ctxFor(t, f.alice), mustStruct(t, map[string]interface{}{"type": "podcast"}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("get link", func(t *testing.T) {
		resp, err := f.client.GetLink(f.ctxFor(t, f.alice), mustStruct(t, map[string]interface{}{"id": link.ID}))
		require.NoError(t, err)
		got := resp.AsMap()
		assert.Equal(t, "https://example.com/a", got["link_url"])
		assert.Equal(t, "title of https://example.com/a", got["title"])
		assert.Nil(t, got["image"])
		assert.Equal(t, "article", got["link_type"])
	})

	t.Run("ownership", func(t *testing.T) {
		_, err := f.client.GetLink(f.ctxFor(t, f.bob), mustStruct(t, map[string]interface{}{"id": link.ID}))
		assert.Equal(t, codes.NotFound, status.Code(err))

		resp, err := f.client.ListCollections(f.ctxFor(t, f.bob), mustStruct(t, nil))
		require.NoError(t, err)
		assert.Equal(t, float64(0), resp.AsMap()["count"])
	})

	t.Run("list collections", func(t *testing.T) {
		resp, err := f.client.ListCollections(f.ctxFor(t, f.alice), mustStruct(t, nil))
		require.NoError(t, err)
		got := resp.AsMap()
		assert.Equal(t, float64(1), got["count"])
		results := got["results"].([]interface{})
		require.Len(t, results, 1)
		assert.Equal(t, "reading", results[0].(map[string]interface{})["name"])
	})
}
