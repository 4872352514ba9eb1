package account

import (
	"errors"
	"fmt"
)

// Type distinguishes the two kinds of account that can own records.
type Type string

const (
	TypeConsumer Type = "consumer"
	TypeBusiness Type = "business"
)

var ErrInvalidOwner = errors.New("invalid owner")

// Owner is the account every record of an ingestion event is attributed to.
type Owner struct {
	ID   int64
	Type Type
}

func (o Owner) Validate() error {
	if o.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidOwner)
	}

	switch o.Type {
	case TypeConsumer, TypeBusiness:
		return nil
	}

	return fmt.Errorf("%w: unknown type %q", ErrInvalidOwner, o.Type)
}

func (o Owner) IsZero() bool {
	return o.ID == 0 && o.Type == ""
}

func (o Owner) String() string {
	return fmt.Sprintf("%s:%d", o.Type, o.ID)
}

// Columns splits the owner into the mutually exclusive consumer/business foreign keys.
func (o Owner) Columns() (consumerID, businessID *int64) {
	id := o.ID
	if o.Type == TypeBusiness {
		return nil, &id
	}

	return &id, nil
}

// FromColumns is the inverse of Columns.
func FromColumns(consumerID, businessID *int64) Owner {
	if businessID != nil {
		return Owner{ID: *businessID, Type: TypeBusiness}
	}

	if consumerID != nil {
		return Owner{ID: *consumerID, Type: TypeConsumer}
	}

	return Owner{}
}
