package cart

import (
	"context"

	"github.com/medicart/medicart-backend/pkg/types"
	"github.com/medicart/medicart-backend/pkg/userstore"
)

// RecordSyncer mirrors the cart onto the remote user record. Satisfied by
// *userstore.Client.
type RecordSyncer interface {
	GetByEmail(ctx context.Context, email string) (*userstore.UserRecord, error)
	UpdateCart(ctx context.Context, userID int64, cart []types.CartLine) error
}

// Subscriber receives the current cart snapshot on subscribe and after every
// mutation, synchronously and in mutation order.
type Subscriber func(lines []types.CartLine)
