package main

import (
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/middleware"
	"app/internal/server"
	"app/internal/token"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// .envはあれば読む（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}
	if err := gormDB.AutoMigrate(&model.Business{}); err != nil {
		log.Fatal(err)
	}

	//Repository（GORM実装）生成
	businessRepo := infraRepo.NewBusinessRepository(gormDB)

	//トークン発行・検証
	tokens := token.NewManager(token.Config{
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		AccessExpiry:  cfg.AccessTokenExpiry,
		RefreshExpiry: cfg.RefreshTokenExpiry,
	})

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := usecase.NewBcryptPasswordHasher(bcrypt.DefaultCost)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(businessRepo, tokens, hasher, validator.NewAuthValidator())

	//Handler生成
	authH := handler.NewAuthHandler(authUC)

	//アクセストークンガード
	authGuard := middleware.AuthJWT(tokens, businessRepo)

	//Server起動
	e := server.New(cfg, authH, authGuard)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
