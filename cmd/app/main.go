package main

import (
	"go.uber.org/fx"

	"github.com/Victorious-hub/Open-Graph/internal/auth"
	"github.com/Victorious-hub/Open-Graph/internal/config"
	"github.com/Victorious-hub/Open-Graph/internal/db"
	"github.com/Victorious-hub/Open-Graph/internal/enrich"
	"github.com/Victorious-hub/Open-Graph/internal/lock"
	"github.com/Victorious-hub/Open-Graph/internal/logger"
	"github.com/Victorious-hub/Open-Graph/internal/proto"
	"github.com/Victorious-hub/Open-Graph/internal/service"
	"github.com/Victorious-hub/Open-Graph/internal/transport"
)

func main() {
	fx.New(
		config.Module,
		logger.Module,
		db.Module,
		lock.Module,
		enrich.Module,
		auth.Module,
		service.Module,
		transport.Module,
		proto.Module,
		fx.Invoke(func(*transport.HTTPServer, *proto.BookmarkerServerImpl) {}),
	).Run()
}
