package http

import (
	"context"
	"slices"
	"time"

	"github.com/dkeye/Rendezvous/internal/adapters/signal"
	"github.com/dkeye/Rendezvous/internal/app"
	"github.com/dkeye/Rendezvous/internal/app/stats"
	"github.com/dkeye/Rendezvous/internal/config"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

const (
	sessionName    = "RendezvousSessions"
	clientTokenKey = "client_token"
	clientTokenTTL = 3600 * 24 * 7
)

// RoomDirectory is the read side of the coordinator the HTTP API needs.
type RoomDirectory interface {
	RoomInfo(id domain.RoomID) (app.RoomInfo, bool)
	RoomCount() int
}

// ConnCounter reports live signalling sockets.
type ConnCounter interface {
	Active() int
}

type Deps struct {
	Rooms      RoomDirectory
	Conns      ConnCounter
	Visits     stats.VisitCounter
	Signal     *signal.SignalWSController
	ICEServers []webrtc.ICEServer
	StartedAt  time.Time
}

// ClientTokenMiddleware pins a random token to the cookie session so
// anonymous visits can be deduplicated.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

func corsConfig(origins []string) cors.Config {
	cc := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
		cc.AllowCredentials = true
	}
	return cc
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: clientTokenTTL, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	h := &handlers{deps: deps}
	if h.deps.StartedAt.IsZero() {
		h.deps.StartedAt = time.Now()
	}

	r.GET("/health", h.health)
	r.POST("/track-visit", h.trackVisit)

	api := r.Group("/api")
	api.GET("/ice", h.ice)
	api.GET("/rooms/:id", h.room)
	api.GET("/ws/signal", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString(clientTokenKey)).Msg("ws signal endpoint hit")
		deps.Signal.HandleSignal(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Strs("cors", cfg.CORSOrigins).Msg("router setup")
	return r
}
