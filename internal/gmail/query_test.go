package gmail_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/lumen/internal/gmail"
)

func TestQuery(t *testing.T) {
	now := time.Date(2024, 11, 15, 12, 0, 0, 0, time.UTC)

	t.Run("FirstRunLooksBackAWeek", func(t *testing.T) {
		q := gmail.Query(time.Time{}, now)
		assert.True(t, strings.HasPrefix(q, "is:unread after:2024/11/08 ("), q)
	})

	t.Run("SinceLastCheck", func(t *testing.T) {
		last := time.Unix(1731650000, 0)
		q := gmail.Query(last, now)
		assert.True(t, strings.HasPrefix(q, "is:unread after:1731650000 ("), q)
	})

	q := gmail.Query(time.Time{}, now)
	for _, kw := range []string{"payment OR transaction", "UPI", `"payment confirmation"`, `"Rs."`, `"₹"`} {
		assert.Contains(t, q, kw)
	}

	assert.True(t, strings.HasSuffix(q, ")"))
}
