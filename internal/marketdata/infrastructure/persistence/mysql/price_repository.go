package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wyfcoding/alphaview/internal/marketdata/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type priceRepository struct {
	db *gorm.DB
}

// NewPriceRepository 创建日线价格仓储实例
func NewPriceRepository(db *gorm.DB) domain.PriceRepository {
	return &priceRepository{db: db}
}

func (r *priceRepository) Series(ctx context.Context, ticker string, from, to time.Time) ([]*domain.DailyPrice, error) {
	var models []*DailyPriceModel
	err := r.db.WithContext(ctx).
		Where("ticker = ? AND price_date >= ? AND price_date <= ?", ticker, from, to).
		Order("price_date asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	prices := make([]*domain.DailyPrice, len(models))
	for i, m := range models {
		prices[i] = toPrice(m)
	}
	return prices, nil
}

func (r *priceRepository) Latest(ctx context.Context, ticker string) (*domain.DailyPrice, error) {
	var model DailyPriceModel
	err := r.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Order("price_date desc").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toPrice(&model), nil
}

func (r *priceRepository) LatestBatch(ctx context.Context, tickers []string) (map[string]*domain.DailyPrice, error) {
	result := make(map[string]*domain.DailyPrice, len(tickers))
	if len(tickers) == 0 {
		return result, nil
	}

	// 子查询取每个 ticker 的最新交易日
	var models []*DailyPriceModel
	sub := r.db.Model(&DailyPriceModel{}).
		Select("ticker, MAX(price_date) AS price_date").
		Where("ticker IN ?", tickers).
		Group("ticker")
	err := r.db.WithContext(ctx).
		Joins("JOIN (?) latest ON daily_prices.ticker = latest.ticker AND daily_prices.price_date = latest.price_date", sub).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	for _, m := range models {
		result[m.Ticker] = toPrice(m)
	}
	return result, nil
}

func (r *priceRepository) DateRange(ctx context.Context) (time.Time, time.Time, error) {
	// 表为空时 MIN/MAX 为 NULL，用 NullTime 接住并返回零值时间
	var bounds struct {
		Earliest sql.NullTime
		Latest   sql.NullTime
	}
	err := r.db.WithContext(ctx).
		Model(&DailyPriceModel{}).
		Select("MIN(price_date) AS earliest, MAX(price_date) AS latest").
		Scan(&bounds).Error
	return bounds.Earliest.Time, bounds.Latest.Time, err
}

func (r *priceRepository) Save(ctx context.Context, price *domain.DailyPrice) error {
	model := toPriceModel(price)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticker"}, {Name: "price_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "adj_close", "volume", "updated_at"}),
		}).
		Create(model).Error
}
