package service

import (
	"context"

	"Community_Graph/internal/model"
	"Community_Graph/internal/pkg"
	"Community_Graph/internal/repository/mysql"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	defaultOutboxBatch = 200
	maxOutboxRetry     = 5
)

type Sender func(ctx context.Context, ob *model.SocialOutbox) error

// OutboxRelayer 从 social_outbox 读取关系事件并投递
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	sender    Sender
}

func NewOutboxRelayer(db *gorm.DB, batchSize int, sender Sender) *OutboxRelayer {
	if batchSize <= 0 {
		batchSize = defaultOutboxBatch
	}
	return &OutboxRelayer{
		repo:      &mysql.OutboxRepository{DB: db},
		batchSize: batchSize,
		sender:    sender,
	}
}

// DrainOnce 投递一批，返回成功条数。失败的记录累加重试次数，超过上限后不再投递
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	rows, err := r.repo.List(ctx, r.batchSize, maxOutboxRetry)
	if err != nil {
		log.Error().Err(err).Msg("outbox query failed")
		return 0
	}
	sent := 0
	for i := range rows {
		ob := &rows[i]
		if err := r.sender(ctx, ob); err != nil {
			pkg.OutboxRelayed.WithLabelValues("failed").Inc()
			log.Warn().Err(err).Uint64("outbox", ob.ID).Int("retry", ob.Retry+1).Msg("outbox send failed")
			if err := r.repo.RetryUpdate(ctx, ob.ID); err != nil {
				log.Error().Err(err).Uint64("outbox", ob.ID).Msg("outbox retry update failed")
			}
			continue
		}
		if err := r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			log.Error().Err(err).Uint64("outbox", ob.ID).Msg("outbox success update failed")
			continue
		}
		pkg.OutboxRelayed.WithLabelValues("sent").Inc()
		sent++
	}
	return sent
}

// KafkaSender 以被关注者 id 作为 key 投递到 kafka
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.SocialOutbox) error {
		return p.SendEvent(ctx, ob.FollowingID, ob.EventType, []byte(ob.Payload))
	}
}

// LogSender 未配置 kafka 时只打印
func LogSender(_ context.Context, ob *model.SocialOutbox) error {
	log.Info().
		Str("event", ob.EventType).
		Uint64("follower", ob.FollowerID).
		Uint64("following", ob.FollowingID).
		Msg("social event")
	return nil
}
