package main

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dufie-skincare/storefront-backend/internal/cart"
	"github.com/dufie-skincare/storefront-backend/internal/checkout"
	"github.com/dufie-skincare/storefront-backend/internal/config"
	"github.com/dufie-skincare/storefront-backend/internal/giftset"
	"github.com/dufie-skincare/storefront-backend/internal/logger"
	"github.com/dufie-skincare/storefront-backend/internal/order"
	"github.com/dufie-skincare/storefront-backend/internal/payment"
	"github.com/dufie-skincare/storefront-backend/internal/product"
	"github.com/dufie-skincare/storefront-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.New(cfg.Env, cfg.LogLevel)
	defer log.Sync()

	db := mustOpenDB(cfg.DatabaseURL, log)
	defer db.Close()
	ensureSchema(db, log)

	gateway, err := payment.NewStripeGateway(payment.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		SiteURL:       cfg.SiteURL,
	}, log)
	if err != nil {
		log.Fatal("payment gateway", zap.Error(err))
	}

	blacklist := newBlacklist(cfg, log)

	userService := user.NewService(user.NewPostgresRepository(db))
	productService := product.NewService(product.NewPostgresRepository(db))
	giftSetService := giftset.NewService(giftset.NewPostgresRepository(db), productService)
	cartService := cart.NewService(cart.NewPostgresRepository(db))
	orderService := order.NewService(order.NewPostgresRepository(db))
	checkoutService := checkout.NewService(cartService, orderService, gateway, log)

	userHandler := user.NewHandler(userService, blacklist, []byte(cfg.JWTSecret), log)
	productHandler := product.NewHandler(productService, log)
	giftSetHandler := giftset.NewHandler(giftSetService, log)
	cartHandler := cart.NewHandler(cartService, log)
	orderHandler := order.NewHandler(orderService, log)
	checkoutHandler := checkout.NewHandler(checkoutService, gateway, log)

	app := fiber.New()
	setupCORS(app)

	// routes mounted before the JWT middleware stay public
	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	giftSetHandler.RegisterPublicRoutes(app)
	checkoutHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))
	app.Use(user.BlacklistMiddleware(blacklist))

	userHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	checkoutHandler.RegisterProtectedRoutes(app)

	log.Info("starting server", zap.String("addr", cfg.Addr))
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Stripe-Signature",
	}))
}

func newBlacklist(cfg config.Config, log *zap.Logger) user.TokenBlacklist {
	if cfg.RedisAddr == "" {
		log.Info("token blacklist using in-process store")
		return user.NewMemoryBlacklist()
	}
	bl, err := user.NewRedisBlacklist(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatal("redis blacklist", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	log.Info("token blacklist using redis", zap.String("addr", cfg.RedisAddr))
	return bl
}

func mustOpenDB(dbURL string, log *zap.Logger) *sql.DB {
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		log.Fatal("ping database", zap.Error(err))
	}
	return db
}

func ensureSchema(db *sql.DB, log *zap.Logger) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC NOT NULL CHECK (price >= 0),
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			image_url TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS gift_sets (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			set_price NUMERIC NOT NULL CHECK (set_price >= 0),
			original_price NUMERIC NOT NULL CHECK (original_price >= 0),
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			image_url TEXT NOT NULL DEFAULT '',
			product_ids UUID[] NOT NULL DEFAULT '{}'
		)`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			product_id UUID REFERENCES products(id),
			gift_set_id UUID REFERENCES gift_sets(id),
			quantity INT NOT NULL CHECK (quantity > 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CHECK ((product_id IS NULL) <> (gift_set_id IS NULL))
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS cart_items_user_product
			ON cart_items (user_id, product_id) WHERE product_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS cart_items_user_gift_set
			ON cart_items (user_id, gift_set_id) WHERE gift_set_id IS NOT NULL`,
		`CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			order_date TIMESTAMPTZ NOT NULL DEFAULT now(),
			status TEXT NOT NULL,
			total_price NUMERIC NOT NULL CHECK (total_price >= 0),
			shipping_location TEXT NOT NULL DEFAULT '',
			payment_method TEXT NOT NULL DEFAULT '',
			payment_session_id TEXT NOT NULL DEFAULT '',
			items JSONB NOT NULL DEFAULT '[]'
		)`,
		`CREATE INDEX IF NOT EXISTS orders_user_date ON orders (user_id, order_date DESC)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS orders_payment_session
			ON orders (payment_session_id) WHERE payment_session_id <> ''`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatal("ensure schema", zap.Error(err))
		}
	}
}
