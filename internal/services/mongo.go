package services

import (
	"context"
	"crypto/tls"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/watchnext/backend/internal/logging"
)

// ConnectMongo opens and pings a client. Atlas occasionally fails TLS
// negotiation unless TLS 1.2 is forced.
func ConnectMongo(ctx context.Context, mongoURI, dbName string) (*mongo.Client, *mongo.Database, error) {
	if mongoURI == "" || dbName == "" {
		return nil, nil, ErrBadInput
	}

	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI).SetTLSConfig(tlsCfg))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}

	logging.Info().Str("db", dbName).Msg("MongoDB connected")
	return client, client.Database(dbName), nil
}
