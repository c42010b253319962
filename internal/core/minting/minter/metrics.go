// Package minter 铸造门面的监控指标
package minter

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// purchasesTotal 购买成功总数
	purchasesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mintforge",
		Subsystem: "minting",
		Name:      "purchases_total",
		Help:      "Total number of successful token purchases",
	})

	// purchaseFailuresTotal 购买失败总数（按错误类别）
	purchaseFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mintforge",
			Subsystem: "minting",
			Name:      "purchase_failures_total",
			Help:      "Total number of failed purchase attempts by reason class",
		},
		[]string{"reason"},
	)

	// revenuesWithdrawnTotal 收益提取成功总数
	revenuesWithdrawnTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mintforge",
		Subsystem: "minting",
		Name:      "revenues_withdrawn_total",
		Help:      "Total number of successful revenue withdrawals",
	})

	// reclaimsTotal 超额结算取回成功总数
	reclaimsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mintforge",
		Subsystem: "minting",
		Name:      "reclaims_total",
		Help:      "Total number of successful excess settlement reclaims",
	})

	// reentrancyRejectionsTotal 被重入闩锁拒绝的调用总数
	reentrancyRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mintforge",
		Subsystem: "minting",
		Name:      "reentrancy_rejections_total",
		Help:      "Total number of calls rejected by the re-entrancy latch",
	})

	// custodiedAmount 各项目托管总额的粗粒度观测（浮点近似，仅用于监控）
	custodiedAmount = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mintforge",
		Subsystem: "minting",
		Name:      "purchase_payment_units",
		Help:      "Observed purchase payment amounts in minor currency units (approximate)",
		Buckets:   prometheus.ExponentialBuckets(1e15, 10, 8),
	})
)

func init() {
	prometheus.MustRegister(
		purchasesTotal,
		purchaseFailuresTotal,
		revenuesWithdrawnTotal,
		reclaimsTotal,
		reentrancyRejectionsTotal,
		custodiedAmount,
	)
}

// observePayment 观测一次购买托管金额
// 金额超出float64精度时只影响监控读数，不影响账本
func observePayment(payment *big.Int) {
	f, _ := new(big.Float).SetInt(payment).Float64()
	custodiedAmount.Observe(f)
}
