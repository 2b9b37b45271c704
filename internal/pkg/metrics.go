package pkg

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GraphTransitions 关系图操作次数，按操作和结果统计
	GraphTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "community_graph_transitions_total",
		Help: "Follow graph operations by operation and result",
	}, []string{"op", "result"})

	// CounterUpdates 计数账本的扇出次数
	CounterUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "community_counter_updates_total",
		Help: "Counter ledger applications by event type and direction",
	}, []string{"event", "direction"})

	OutboxRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "community_outbox_relayed_total",
		Help: "Social outbox rows relayed by result",
	}, []string{"result"})

	ReconcileCorrections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "community_reconcile_corrections_total",
		Help: "Follower/following counters corrected by the reconciler",
	})
)
