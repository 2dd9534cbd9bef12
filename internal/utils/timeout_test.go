package utils_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylemate/platform/internal/utils"
)

func TestWithDBTimeout(t *testing.T) {
	t.Run("Applies Default Deadline", func(t *testing.T) {
		ctx, cancel := utils.WithDBTimeout(context.Background())
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.InDelta(t, utils.DefaultDBTimeout.Seconds(), time.Until(deadline).Seconds(), 1)
	})

	t.Run("Keeps Sooner Parent Deadline", func(t *testing.T) {
		parent, parentCancel := context.WithTimeout(context.Background(), time.Second)
		defer parentCancel()

		ctx, cancel := utils.WithDBTimeout(parent)
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.LessOrEqual(t, time.Until(deadline), time.Second)
	})
}
