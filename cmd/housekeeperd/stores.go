package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/livecart/housekeeper/internal/config"
	"github.com/livecart/housekeeper/internal/docstore"
	"github.com/livecart/housekeeper/internal/docstore/firestore"
	"github.com/livecart/housekeeper/internal/docstore/kvdoc"
	"github.com/livecart/housekeeper/internal/kv"
	"github.com/livecart/housekeeper/internal/kv/oxia"
	"github.com/livecart/housekeeper/internal/metrics"
	"github.com/livecart/housekeeper/internal/objectstore"
	"github.com/livecart/housekeeper/internal/objectstore/gcs"
	"github.com/livecart/housekeeper/internal/objectstore/minio"
	"github.com/livecart/housekeeper/internal/objectstore/s3"
)

// openDocStore connects the configured document database and wraps it with
// operation metrics.
func openDocStore(ctx context.Context, cfg config.DatabaseConfig, reg prometheus.Registerer) (docstore.Store, error) {
	var store docstore.Store

	switch cfg.Backend {
	case config.DatabaseFirestore:
		fs, err := firestore.New(ctx, firestore.Config{
			ProjectID:       cfg.ProjectID,
			DatabaseID:      cfg.DatabaseID,
			CredentialsFile: cfg.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		store = fs

	case config.DatabaseOxia:
		ox, err := oxia.New(ctx, oxia.Config{
			ServiceAddress: cfg.OxiaEndpoint,
			Namespace:      cfg.OxiaNamespace,
			RequestTimeout: time.Duration(cfg.OxiaRequestTimeoutMs) * time.Millisecond,
		})
		if err != nil {
			return nil, err
		}
		kvStore := kv.NewInstrumentedStore(ox, metrics.NewKVMetricsWithRegistry(reg))
		var opts []kvdoc.Option
		if cfg.KeyRoot != "" {
			opts = append(opts, kvdoc.WithRoot(cfg.KeyRoot))
		}
		store = kvdoc.New(kvStore, opts...)

	case config.DatabaseMemory:
		store = kvdoc.New(kv.NewInstrumentedStore(kv.NewMemoryStore(), metrics.NewKVMetricsWithRegistry(reg)))

	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Backend)
	}

	return docstore.NewInstrumentedStore(store, metrics.NewDocStoreMetricsWithRegistry(reg)), nil
}

// openObjectStore connects the configured bucket and wraps it with metrics.
func openObjectStore(ctx context.Context, cfg config.ObjectStoreConfig, reg prometheus.Registerer) (objectstore.Store, error) {
	var store objectstore.Store

	switch cfg.Backend {
	case config.ObjectStoreGCS:
		g, err := gcs.New(ctx, gcs.Config{
			Bucket:          cfg.Bucket,
			CredentialsFile: cfg.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		store = g

	case config.ObjectStoreS3:
		s, err := s3.New(ctx, s3.Config{
			Bucket:          cfg.Bucket,
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			AccessKeyID:     cfg.AccessKey,
			SecretAccessKey: cfg.SecretKey,
			UsePathStyle:    cfg.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		store = s

	case config.ObjectStoreMinIO:
		m, err := minio.New(minio.Config{
			Endpoint:        cfg.Endpoint,
			Bucket:          cfg.Bucket,
			AccessKeyID:     cfg.AccessKey,
			SecretAccessKey: cfg.SecretKey,
			Region:          cfg.Region,
			UseSSL:          cfg.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		store = m

	case config.ObjectStoreMemory:
		store = objectstore.NewMemoryStore()

	default:
		return nil, fmt.Errorf("unknown object store backend %q", cfg.Backend)
	}

	return objectstore.NewInstrumentedStore(store, metrics.NewObjectStoreMetricsWithRegistry(reg)), nil
}
