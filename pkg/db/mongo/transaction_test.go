package mongo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsTransientTxnError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transient label", mongo.CommandError{Labels: []string{"TransientTransactionError"}}, true},
		{"unknown commit result", mongo.CommandError{Labels: []string{"UnknownTransactionCommitResult"}}, true},
		{"write conflict code", mongo.CommandError{Code: 112, Name: "WriteConflict"}, true},
		{"wrapped", fmt.Errorf("commit: %w", mongo.CommandError{Code: 112}), true},
		{"other server error", mongo.CommandError{Code: 11000}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransientTxnError(tt.err))
		})
	}
}
