package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/alphaview/internal/marketdata/domain"
)

// DailyPriceModel MySQL 日线价格表映射
type DailyPriceModel struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
	Ticker    string          `gorm:"column:ticker;type:varchar(16);uniqueIndex:uk_ticker_date;not null;comment:标的"`
	PriceDate time.Time       `gorm:"column:price_date;type:date;uniqueIndex:uk_ticker_date;index;not null"`
	Open      decimal.Decimal `gorm:"column:open;type:decimal(32,18);not null"`
	High      decimal.Decimal `gorm:"column:high;type:decimal(32,18);not null"`
	Low       decimal.Decimal `gorm:"column:low;type:decimal(32,18);not null"`
	Close     decimal.Decimal `gorm:"column:close;type:decimal(32,18);not null"`
	AdjClose  decimal.Decimal `gorm:"column:adj_close;type:decimal(32,18);not null"`
	Volume    int64           `gorm:"column:volume;not null"`
}

func (DailyPriceModel) TableName() string { return "daily_prices" }

func toPriceModel(p *domain.DailyPrice) *DailyPriceModel {
	if p == nil {
		return nil
	}
	return &DailyPriceModel{
		Ticker:    p.Ticker,
		PriceDate: p.PriceDate,
		Open:      p.Open,
		High:      p.High,
		Low:       p.Low,
		Close:     p.Close,
		AdjClose:  p.AdjClose,
		Volume:    p.Volume,
	}
}

func toPrice(m *DailyPriceModel) *domain.DailyPrice {
	if m == nil {
		return nil
	}
	return &domain.DailyPrice{
		Ticker:    m.Ticker,
		PriceDate: m.PriceDate,
		Open:      m.Open,
		High:      m.High,
		Low:       m.Low,
		Close:     m.Close,
		AdjClose:  m.AdjClose,
		Volume:    m.Volume,
	}
}
