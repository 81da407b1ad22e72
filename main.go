package main

import (
	"time"

	"github.com/ryouko/microblog/config"
	"github.com/ryouko/microblog/models"
	"github.com/ryouko/microblog/routes"
	"github.com/ryouko/microblog/services"
	"github.com/ryouko/microblog/session"
	"github.com/ryouko/microblog/store"
	"github.com/ryouko/microblog/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	// An unreachable database aborts startup inside InitDatabase.
	db := config.InitDatabase(&models.User{}, &models.Post{})

	avatars, err := utils.NewLetterAvatarRenderer()
	if err != nil {
		utils.Sugar.Fatalf("avatar renderer init failed: %v", err)
	}

	users := store.NewUserStore(db)
	posts := store.NewPostStore(db)
	sessions := session.NewStore(utils.GetRedis(), time.Duration(cfg.SessionTTLHours)*time.Hour)
	identity := services.NewIdentityService(users, sessions, avatars)
	feed := services.NewFeedService(posts)

	r := routes.SetupRouter(routes.Deps{
		Users:    users,
		Posts:    posts,
		Sessions: sessions,
		Identity: identity,
		Feed:     feed,
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
