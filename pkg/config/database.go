package config

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	connectTimeout = 10 * time.Second
	closeTimeout   = 5 * time.Second

	// sessions are the only PostgreSQL traffic
	postgresMaxOpenConns = 10
	postgresMaxIdleConns = 5
)

// DB holds the database connections: MongoDB for the community data,
// PostgreSQL for login sessions
type DB struct {
	Postgres *gorm.DB
	Mongo    *mongo.Client
	mongoDB  string
}

// InitDB connects to both stores named by cfg. Nothing is left open on failure.
func InitDB(ctx context.Context, cfg *Config) (*DB, error) {
	mongoClient, err := connectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	postgresDB, err := connectPostgres(cfg.PostgresURL)
	if err != nil {
		disconnectMongo(mongoClient)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	return &DB{Postgres: postgresDB, Mongo: mongoClient, mongoDB: cfg.MongoDB}, nil
}

// Database returns the configured MongoDB database
func (db *DB) Database() *mongo.Database {
	return db.Mongo.Database(db.mongoDB)
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(connectTimeout))
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		disconnectMongo(client)
		return nil, err
	}

	log.Info().Msg("Successfully connected to MongoDB!")
	return client, nil
}

func connectPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(postgresMaxOpenConns)
	sqlDB.SetMaxIdleConns(postgresMaxIdleConns)
	if err = sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info().Msg("Successfully connected to PostgreSQL!")
	return db, nil
}

func disconnectMongo(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("Error closing MongoDB connection")
		return
	}
	log.Info().Msg("MongoDB connection closed.")
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.Postgres != nil {
		if sqlDB, err := db.Postgres.DB(); err != nil {
			log.Error().Err(err).Msg("Error getting SQL DB from GORM")
		} else if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing PostgreSQL connection")
		} else {
			log.Info().Msg("PostgreSQL connection closed.")
		}
	}
	if db.Mongo != nil {
		disconnectMongo(db.Mongo)
	}
}
