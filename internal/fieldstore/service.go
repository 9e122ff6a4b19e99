// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package fieldstore

import (
	"context"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/loreforge/loreforge/internal/observability"
	"github.com/loreforge/loreforge/internal/realm"
)

// ServiceConfig holds dependencies for Service.
type ServiceConfig struct {
	DefinitionRepo DefinitionRepository
	ValueRepo      ValueRepository
	Transactor     realm.Transactor

	// Metrics is optional; nil records nothing.
	Metrics *observability.Metrics
}

// Service applies field payloads against the declared definitions.
type Service struct {
	defs    DefinitionRepository
	values  ValueRepository
	tx      realm.Transactor
	metrics *observability.Metrics
}

// NewService creates a Service with the given configuration.
func NewService(cfg ServiceConfig) *Service {
	return &Service{defs: cfg.DefinitionRepo, values: cfg.ValueRepo, tx: cfg.Transactor, metrics: cfg.Metrics}
}

// Apply writes a raw field payload against a resource in one
// transaction. Keys with no matching definition are ignored. A value
// that resolves to empty deletes the stored row; no tombstones.
func (s *Service) Apply(ctx context.Context, worldID ulid.ULID, kind realm.ResourceKind, resourceID ulid.ULID, payload map[string]any) error {
	if len(payload) == 0 {
		return nil
	}
	defs, err := s.defs.ListForWorld(ctx, worldID, kind)
	if err != nil {
		return oops.With("world_id", worldID.String()).Wrap(err)
	}
	byKey := make(map[string]Definition, len(defs))
	for _, def := range defs {
		byKey[def.Key] = def
	}

	// Deterministic application order regardless of map iteration.
	keys := make([]string, 0, len(payload))
	for key := range payload {
		if _, ok := byKey[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	now := time.Now().UTC()
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		for _, key := range keys {
			def := byKey[key]
			cols, empty, err := Assign(def.Type, payload[key])
			if err != nil {
				return oops.With("field_key", key).Wrap(err)
			}
			if empty {
				if err := s.values.Delete(ctx, def.ID, resourceID); err != nil {
					return oops.With("field_key", key).Wrap(err)
				}
				continue
			}
			v := &Value{FieldID: def.ID, ResourceID: resourceID, Columns: cols, UpdatedAt: now}
			if err := s.values.Upsert(ctx, v); err != nil {
				return oops.With("field_key", key).Wrap(err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		for _, key := range keys {
			s.metrics.FieldWritesTotal.WithLabelValues(string(byKey[key].Type)).Inc()
		}
	}
	return nil
}

// List returns the stored values of a resource.
func (s *Service) List(ctx context.Context, resourceID ulid.ULID) ([]Value, error) {
	values, err := s.values.ListForResource(ctx, resourceID)
	if err != nil {
		return nil, oops.With("resource_id", resourceID.String()).Wrap(err)
	}
	return values, nil
}
