// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loreforge/loreforge/pkg/errutil"
)

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "://not-a-url")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "DB_CONFIG_INVALID")
}
