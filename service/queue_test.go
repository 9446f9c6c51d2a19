package service

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"balloting-backend/errors"
	"balloting-backend/models"
)

func TestQueueProcessorOrder(t *testing.T) {
	admin, member1, member2 := newTestAccount(t), newTestAccount(t), newTestAccount(t)
	bs := newTestService(t, admin.address)

	qp := NewQueueProcessor(bs, 8, 0)
	qp.Start()
	defer qp.Stop()

	ctx := context.Background()
	results := []<-chan *ProcessingResult{
		qp.Submit(ctx, admin.sign(t, models.OpRegisterMember, member1.address, 1)),
		qp.Submit(ctx, admin.sign(t, models.OpRegisterMember, member2.address, 2)),
		qp.Submit(ctx, member1.sign(t, models.OpNominateMember, member2.address, 1)),
		qp.Submit(ctx, admin.sign(t, models.OpStartVoting, common.Address{}, 3)),
		qp.Submit(ctx, member1.sign(t, models.OpVote, member2.address, 2)),
	}

	for i, ch := range results {
		result := <-ch
		require.NoError(t, result.Err)
		require.Equal(t, uint64(i+1), result.Receipt.BlockIndex)
	}

	receipt, err := qp.Execute(ctx, admin.sign(t, models.OpEndVoting, common.Address{}, 4))
	require.NoError(t, err)
	require.Equal(t, member2.address, receipt.Winner)
}

func TestQueueProcessorFull(t *testing.T) {
	admin, member1 := newTestAccount(t), newTestAccount(t)
	bs := newTestService(t, admin.address)

	// not started, so nothing drains the queue
	qp := NewQueueProcessor(bs, 1, 0)

	ctx := context.Background()
	first := qp.Submit(ctx, admin.sign(t, models.OpRegisterMember, member1.address, 1))

	result := <-qp.Submit(ctx, admin.sign(t, models.OpStartVoting, common.Address{}, 2))
	require.ErrorIs(t, result.Err, errors.QueueFull)

	// Stop drains what was queued
	qp.Stop()
	result = <-first
	require.NoError(t, result.Err)
	require.True(t, bs.Member(member1.address).Registered)

	result = <-qp.Submit(ctx, admin.sign(t, models.OpStartVoting, common.Address{}, 3))
	require.ErrorIs(t, result.Err, errors.QueueStopped)
}

func TestQueueProcessorRejections(t *testing.T) {
	admin, member1 := newTestAccount(t), newTestAccount(t)
	bs := newTestService(t, admin.address)

	qp := NewQueueProcessor(bs, 4, 0)
	qp.Start()
	defer qp.Stop()

	_, err := qp.Execute(context.Background(), member1.sign(t, models.OpStartVoting, common.Address{}, 1))
	require.ErrorIs(t, err, errors.Unauthorized)
	require.False(t, bs.VotingActive())
}
