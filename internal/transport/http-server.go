package transport

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Victorious-hub/Open-Graph/internal/config"
	"github.com/Victorious-hub/Open-Graph/internal/db"
	"github.com/Victorious-hub/Open-Graph/internal/service"
)

const (
	userLocalsKey = "user"
	censored      = "$censored"
)

type (
	CustomValidator struct {
		validator *validator.Validate
	}

	HTTPServer struct {
		app         *fiber.App
		users       *service.Users
		links       *service.Links
		collections *service.Collections
		validator   *CustomValidator
		logger      *zap.SugaredLogger
	}
)

func NewHTTPServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	users *service.Users,
	links *service.Links,
	collections *service.Collections,
	logger *zap.SugaredLogger,
) *HTTPServer {
	instance := NewHandler(users, links, collections, prometheus.DefaultRegisterer, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				if err := instance.app.Listen(listen); err != nil {
					logger.Fatalw("shutting down the server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return instance.app.ShutdownWithContext(ctx)
		},
	})

	return instance
}

// RequestContext makes c.UserContext() the fasthttp request context, which is
// canceled when the server shuts down. fasthttp does not report client
// disconnects, so a hung-up client does not cancel it.
func RequestContext(c *fiber.Ctx) error {
	c.SetUserContext(c.Context())
	return c.Next()
}

// NewHandler builds the routed fiber app without binding a listener.
func NewHandler(
	users *service.Users,
	links *service.Links,
	collections *service.Collections,
	reg prometheus.Registerer,
	logger *zap.SugaredLogger,
) *HTTPServer {
	instance := HTTPServer{
		users:       users,
		links:       links,
		collections: collections,
		validator:   &CustomValidator{validator: validator.New()},
		logger:      logger,
	}

	e := fiber.New(fiber.Config{
		ErrorHandler:          instance.ErrorHandler,
		DisableStartupMessage: true,
	})

	e.Use(recover.New())
	e.Use(RequestContext)
	e.Use(cors.New())
	e.Use(fiberlogger.New())
	e.Use(instance.BodyLogger)

	prom := fiberprometheus.NewWithRegistry(reg, "bookmarker", "http", "", nil)
	prom.RegisterAt(e, "/metrics")
	e.Use(prom.Middleware)

	e.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	api := e.Group("/api/v1")

	usersG := api.Group("/users")
	usersG.Post("", instance.UserCreate)
	usersG.Post("/authenticate", instance.UserAuthenticate)
	usersG.Post("/token/refresh", instance.UserTokenRefresh)
	usersG.Put("/password", instance.AuthMiddleware, instance.UserPasswordChange)
	usersG.Post("/password-reset", instance.AuthMiddleware, instance.UserPasswordReset)
	usersG.Post("/password-reset-new/:token", instance.AuthMiddleware, instance.UserPasswordNew)

	linksG := api.Group("/links", instance.AuthMiddleware)
	linksG.Post("", instance.LinkCreate)
	linksG.Get("/list", instance.LinkList)
	linksG.Get("/:id", instance.LinkGet)
	linksG.Delete("/delete/:id", instance.LinkDelete)
	linksG.Put("/update/:id", instance.LinkUpdate)

	collectionsG := api.Group("/collections", instance.AuthMiddleware)
	collectionsG.Post("", instance.CollectionCreate)
	collectionsG.Get("/list", instance.CollectionList)
	collectionsG.Post("/link", instance.LinkCollectionCreate)
	collectionsG.Get("/link/list", instance.LinkCollectionList)
	collectionsG.Get("/:id", instance.CollectionGet)
	collectionsG.Put("/update/:id", instance.CollectionUpdate)
	collectionsG.Delete("/delete/:id", instance.CollectionDelete)

	e.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not found.")
	})

	instance.app = e
	return &instance
}

func (s *HTTPServer) App() *fiber.App {
	return s.app
}

func (s *HTTPServer) AuthMiddleware(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if header == "" || token == header {
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication credentials were not provided.")
	}

	user, err := s.users.Authenticate(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(userLocalsKey, user)
	return c.Next()
}

// BodyLogger logs request bodies at debug level with passwords censored.
func (s *HTTPServer) BodyLogger(c *fiber.Ctx) error {
	if s.logger.Desugar().Core().Enabled(zapcore.DebugLevel) && len(c.Body()) > 0 {
		s.logger.Debugw("request body",
			"method", c.Method(),
			"path", c.Path(),
			"body", string(censorBody(c.Body())),
		)
	}
	return c.Next()
}

////////

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (s *HTTPServer) BindAndValidate(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := s.validator.Validate(v); err != nil {
		return err
	}
	return nil
}

func GetUserFromContext(c *fiber.Ctx) (*db.User, error) {
	user, ok := c.Locals(userLocalsKey).(*db.User)
	if !ok || user == nil {
		return nil, errors.New("no user found in context")
	}
	return user, nil
}

func GetParam(c *fiber.Ctx, name string) (string, error) {
	value := c.Params(name)
	if value == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return value, nil
}

func GetAndParseParam(c *fiber.Ctx, name string) (uint64, error) {
	v, e := GetParam(c, name)
	if e != nil {
		return 0, e
	}
	vv, e := strconv.ParseUint(v, 10, 64)
	if e != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return vv, nil
}

// censorBody masks every field whose name mentions a password. Bodies that
// are not JSON objects are returned unchanged.
func censorBody(body []byte) []byte {
	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err != nil {
		return body
	}
	censorMap(m)
	out, err := json.Marshal(m)
	if err != nil {
		return body
	}
	return out
}

func censorMap(m map[string]interface{}) {
	for k, v := range m {
		if strings.Contains(strings.ToLower(k), "password") {
			m[k] = censored
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			censorMap(nested)
		}
	}
}
