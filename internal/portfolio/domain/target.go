package domain

import "github.com/shopspring/decimal"

// Target 目标配置，只读参考数据
type Target struct {
	Ticker string
	Name   string
	Sector string
	// TargetWeight 按百分比存储（30 表示 30%），与实际权重同口径直接相减。
	// 从小数口径（0.30）的旧数据导入时需先乘 100。
	TargetWeight decimal.Decimal
	TargetValue  decimal.Decimal
	TargetShares decimal.Decimal
	Priority     int
}
