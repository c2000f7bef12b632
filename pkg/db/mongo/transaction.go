package mongo

import (
	"context"
	"errors"
	"fmt"
	apperrors "staybook/pkg/errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// TransactionFunc runs inside a session. ctx is a mongo.SessionContext at
// runtime; repositories must pass it through untouched so their operations
// join the transaction.
type TransactionFunc func(ctx context.Context) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

// maxCommitTime bounds a single commit attempt. Booking transactions touch
// one guard document and one booking.
const maxCommitTime = 5 * time.Second

type mongoTransactionManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
	}
}

// ExecuteTransaction runs fn with snapshot reads and majority writes. The
// driver re-runs fn when the commit fails with a transient transaction error
// such as a write conflict, so fn must be safe to repeat.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority()).
		SetMaxCommitTime(ptr(maxCommitTime))

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, txnOpts)

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		if isTransientTxnError(err) {
			return apperrors.Transient("Concurrent update, please retry", err)
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// isTransientTxnError reports a conflict the driver gave up retrying, such
// as a write conflict on a hot room guard.
func isTransientTxnError(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorLabel("TransientTransactionError") ||
			se.HasErrorLabel("UnknownTransactionCommitResult") ||
			se.HasErrorCode(112) // WriteConflict
	}
	return false
}

func ptr[T any](v T) *T { return &v }
