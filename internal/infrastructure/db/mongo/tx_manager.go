package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxManager implements ports.TxManager with multi-document transactions.
// The deployment must be a replica set or sharded cluster.
type TxManager struct {
	client *mongo.Client
}

func NewTxManager(client *mongo.Client) *TxManager {
	return &TxManager{client: client}
}

// RunInTx hands fn a session context; repository calls made with it join the
// transaction. Transient errors are retried by the driver.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := m.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
