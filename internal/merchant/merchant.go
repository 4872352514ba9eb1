package merchant

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/lumen/internal/account"
)

var (
	ErrNotFound  = errors.New("merchant not found")
	ErrEmptyName = errors.New("merchant name is empty")
)

// Merchant is a deduplicated counterparty identity owned by one account.
type Merchant struct {
	ID             uuid.UUID
	Owner          account.Owner
	NormalizedName string   // dedup key within the owner
	NameVariants   []string // raw spellings seen, append-only
	CreatedAt      time.Time
}

func (m *Merchant) HasVariant(v string) bool {
	for _, existing := range m.NameVariants {
		if existing == v {
			return true
		}
	}

	return false
}

// Normalize trims, lowercases and collapses inner whitespace.
func Normalize(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}
