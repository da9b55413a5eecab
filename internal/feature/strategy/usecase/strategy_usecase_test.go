package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogentity "strategy_backend/internal/feature/catalog/domain/entity"
	catalogusecase "strategy_backend/internal/feature/catalog/usecase"
	"strategy_backend/internal/feature/strategy/domain/entity"
)

// mockStrategyRepository はテスト用のStrategyRepositoryモック実装です。
type mockStrategyRepository struct {
	findByIDFunc       func(ctx context.Context, id uint) (*entity.Strategy, error)
	findByNameFunc     func(ctx context.Context, name string) (*entity.Strategy, error)
	findPageFunc       func(ctx context.Context, page, size int) (*entity.Page, error)
	saveFunc           func(ctx context.Context, s *entity.Strategy) error
	deleteFunc         func(ctx context.Context, s *entity.Strategy) error
	addStatisticFunc   func(ctx context.Context, row *entity.StatisticRow) error
	findStatisticsFunc func(ctx context.Context, strategyID uint) ([]entity.StatisticRow, error)
}

func (m *mockStrategyRepository) FindByID(ctx context.Context, id uint) (*entity.Strategy, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockStrategyRepository) FindByName(ctx context.Context, name string) (*entity.Strategy, error) {
	return m.findByNameFunc(ctx, name)
}

func (m *mockStrategyRepository) FindPage(ctx context.Context, page, size int) (*entity.Page, error) {
	return m.findPageFunc(ctx, page, size)
}

func (m *mockStrategyRepository) Save(ctx context.Context, s *entity.Strategy) error {
	return m.saveFunc(ctx, s)
}

func (m *mockStrategyRepository) Delete(ctx context.Context, s *entity.Strategy) error {
	return m.deleteFunc(ctx, s)
}

func (m *mockStrategyRepository) AddStatistic(ctx context.Context, row *entity.StatisticRow) error {
	return m.addStatisticFunc(ctx, row)
}

func (m *mockStrategyRepository) FindStatistics(ctx context.Context, strategyID uint) ([]entity.StatisticRow, error) {
	return m.findStatisticsFunc(ctx, strategyID)
}

// mockCatalogLookup はテスト用のCatalogLookupモック実装です。
type mockCatalogLookup struct {
	getByIDFunc func(ctx context.Context, id uint) (*catalogentity.Entry, error)
}

func (m *mockCatalogLookup) GetByID(ctx context.Context, id uint) (*catalogentity.Entry, error) {
	return m.getByIDFunc(ctx, id)
}

func activeEntry(id uint) *catalogentity.Entry {
	return &catalogentity.Entry{ID: id, Name: "entry", IsActive: catalogentity.FlagActive}
}

func inactiveEntry(id uint) *catalogentity.Entry {
	return &catalogentity.Entry{ID: id, Name: "entry", IsActive: catalogentity.FlagInactive}
}

func happyLookup() *mockCatalogLookup {
	return &mockCatalogLookup{
		getByIDFunc: func(ctx context.Context, id uint) (*catalogentity.Entry, error) {
			return activeEntry(id), nil
		},
	}
}

func TestStrategyUsecase_Create(t *testing.T) {
	input := StrategyInput{
		Name:          "Trend Follower",
		Description:   "Momentum strategy",
		TradingTypeID: 1,
		AssetClassID:  2,
	}

	t.Run("creates a strategy with valid references", func(t *testing.T) {
		var saved *entity.Strategy
		repo := &mockStrategyRepository{
			findByNameFunc: func(ctx context.Context, name string) (*entity.Strategy, error) {
				return nil, ErrStrategyNotFound
			},
			saveFunc: func(ctx context.Context, s *entity.Strategy) error {
				s.ID = 10
				saved = s
				return nil
			},
		}

		uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())
		s, err := uc.Create(context.Background(), input)

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, uint(10), s.ID)
		assert.Equal(t, "Trend Follower", saved.Name)
		assert.Equal(t, uint(1), saved.TradingTypeID)
		assert.Equal(t, uint(2), saved.AssetClassID)
	})

	t.Run("rejects a taken name", func(t *testing.T) {
		repo := &mockStrategyRepository{
			findByNameFunc: func(ctx context.Context, name string) (*entity.Strategy, error) {
				return &entity.Strategy{ID: 3, Name: name}, nil
			},
			saveFunc: func(ctx context.Context, s *entity.Strategy) error {
				t.Fatal("Save should not be called when the name is taken")
				return nil
			},
		}

		uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())
		_, err := uc.Create(context.Background(), input)

		assert.ErrorIs(t, err, ErrStrategyNameTaken)
	})

	t.Run("rejects a missing trading type", func(t *testing.T) {
		tradingTypes := &mockCatalogLookup{
			getByIDFunc: func(ctx context.Context, id uint) (*catalogentity.Entry, error) {
				return nil, catalogusecase.ErrEntryNotFound
			},
		}

		uc := NewStrategyUsecase(&mockStrategyRepository{}, tradingTypes, happyLookup())
		_, err := uc.Create(context.Background(), input)

		assert.ErrorIs(t, err, ErrCatalogRefMissing)
	})

	t.Run("rejects a deactivated asset class", func(t *testing.T) {
		assetClasses := &mockCatalogLookup{
			getByIDFunc: func(ctx context.Context, id uint) (*catalogentity.Entry, error) {
				return inactiveEntry(id), nil
			},
		}

		uc := NewStrategyUsecase(&mockStrategyRepository{}, happyLookup(), assetClasses)
		_, err := uc.Create(context.Background(), input)

		assert.ErrorIs(t, err, ErrCatalogRefMissing)
	})

	t.Run("propagates constraint violations from the store", func(t *testing.T) {
		repo := &mockStrategyRepository{
			findByNameFunc: func(ctx context.Context, name string) (*entity.Strategy, error) {
				return nil, ErrStrategyNotFound
			},
			saveFunc: func(ctx context.Context, s *entity.Strategy) error {
				return ErrStrategyNameTaken
			},
		}

		uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())
		_, err := uc.Create(context.Background(), input)

		assert.ErrorIs(t, err, ErrStrategyNameTaken)
	})
}

func TestStrategyUsecase_Update(t *testing.T) {
	existing := func() *entity.Strategy {
		return &entity.Strategy{
			ID:            5,
			Name:          "Old Name",
			TradingTypeID: 1,
			AssetClassID:  2,
		}
	}

	t.Run("keeping the own name skips the duplicate check", func(t *testing.T) {
		repo := &mockStrategyRepository{
			findByIDFunc: func(ctx context.Context, id uint) (*entity.Strategy, error) {
				return existing(), nil
			},
			findByNameFunc: func(ctx context.Context, name string) (*entity.Strategy, error) {
				t.Fatal("FindByName should not be called when the name is unchanged")
				return nil, nil
			},
			saveFunc: func(ctx context.Context, s *entity.Strategy) error { return nil },
		}

		uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())
		s, err := uc.Update(context.Background(), 5, StrategyInput{
			Name: "Old Name", Description: "updated", TradingTypeID: 1, AssetClassID: 2,
		})

		require.NoError(t, err)
		assert.Equal(t, "updated", s.Description)
	})

	t.Run("renaming onto another strategy fails", func(t *testing.T) {
		repo := &mockStrategyRepository{
			findByIDFunc: func(ctx context.Context, id uint) (*entity.Strategy, error) {
				return existing(), nil
			},
			findByNameFunc: func(ctx context.Context, name string) (*entity.Strategy, error) {
				return &entity.Strategy{ID: 9, Name: name}, nil
			},
		}

		uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())
		_, err := uc.Update(context.Background(), 5, StrategyInput{
			Name: "Taken", TradingTypeID: 1, AssetClassID: 2,
		})

		assert.ErrorIs(t, err, ErrStrategyNameTaken)
	})

	t.Run("unknown strategy yields not found", func(t *testing.T) {
		repo := &mockStrategyRepository{
			findByIDFunc: func(ctx context.Context, id uint) (*entity.Strategy, error) {
				return nil, ErrStrategyNotFound
			},
		}

		uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())
		_, err := uc.Update(context.Background(), 99, StrategyInput{Name: "x", TradingTypeID: 1, AssetClassID: 2})

		assert.ErrorIs(t, err, ErrStrategyNotFound)
	})
}

func TestStrategyUsecase_AddStatistic(t *testing.T) {
	found := func(ctx context.Context, id uint) (*entity.Strategy, error) {
		return &entity.Strategy{ID: id}, nil
	}

	t.Run("appends a valid row", func(t *testing.T) {
		repo := &mockStrategyRepository{
			findByIDFunc: found,
			addStatisticFunc: func(ctx context.Context, row *entity.StatisticRow) error {
				row.ID = 1
				return nil
			},
		}

		uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())
		row, err := uc.AddStatistic(context.Background(), 5, StatisticInput{
			PeriodStart: "2026-01-01",
			PeriodEnd:   "2026-01-31",
			NetProfit:   1234.5,
			WinRate:     0.61,
			TradeCount:  42,
		})

		require.NoError(t, err)
		assert.Equal(t, uint(5), row.StrategyID)
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), row.PeriodStart)
	})

	t.Run("rejects an inverted period", func(t *testing.T) {
		repo := &mockStrategyRepository{findByIDFunc: found}

		uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())
		_, err := uc.AddStatistic(context.Background(), 5, StatisticInput{
			PeriodStart: "2026-02-01",
			PeriodEnd:   "2026-01-01",
		})

		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		repo := &mockStrategyRepository{findByIDFunc: found}

		uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())
		_, err := uc.AddStatistic(context.Background(), 5, StatisticInput{
			PeriodStart: "01/02/2026",
			PeriodEnd:   "2026-03-01",
		})

		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("unknown strategy yields not found", func(t *testing.T) {
		repo := &mockStrategyRepository{
			findByIDFunc: func(ctx context.Context, id uint) (*entity.Strategy, error) {
				return nil, ErrStrategyNotFound
			},
		}

		uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())
		_, err := uc.AddStatistic(context.Background(), 99, StatisticInput{
			PeriodStart: "2026-01-01",
			PeriodEnd:   "2026-01-31",
		})

		assert.ErrorIs(t, err, ErrStrategyNotFound)
	})
}

func TestStrategyUsecase_ExportStatisticsCSV(t *testing.T) {
	t.Run("writes header and rows in period order", func(t *testing.T) {
		repo := &mockStrategyRepository{
			findByIDFunc: func(ctx context.Context, id uint) (*entity.Strategy, error) {
				return &entity.Strategy{ID: id}, nil
			},
			findStatisticsFunc: func(ctx context.Context, strategyID uint) ([]entity.StatisticRow, error) {
				return []entity.StatisticRow{
					{
						StrategyID:  strategyID,
						PeriodStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
						PeriodEnd:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
						NetProfit:   1500.5,
						MaxDrawdown: 230.25,
						WinRate:     0.6123,
						TradeCount:  42,
					},
					{
						StrategyID:  strategyID,
						PeriodStart: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
						PeriodEnd:   time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
						NetProfit:   -320,
						MaxDrawdown: 510.1,
						WinRate:     0.48,
						TradeCount:  37,
					},
				}, nil
			},
		}

		uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())

		var buf bytes.Buffer
		err := uc.ExportStatisticsCSV(context.Background(), 5, &buf)

		require.NoError(t, err)
		want := "period_start,period_end,net_profit,max_drawdown,win_rate,trade_count\n" +
			"2026-01-01,2026-01-31,1500.50,230.25,0.6123,42\n" +
			"2026-02-01,2026-02-28,-320.00,510.10,0.4800,37\n"
		assert.Equal(t, want, buf.String())
	})

	t.Run("empty statistics still write the header", func(t *testing.T) {
		repo := &mockStrategyRepository{
			findByIDFunc: func(ctx context.Context, id uint) (*entity.Strategy, error) {
				return &entity.Strategy{ID: id}, nil
			},
			findStatisticsFunc: func(ctx context.Context, strategyID uint) ([]entity.StatisticRow, error) {
				return nil, nil
			},
		}

		uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())

		var buf bytes.Buffer
		err := uc.ExportStatisticsCSV(context.Background(), 5, &buf)

		require.NoError(t, err)
		assert.Equal(t, "period_start,period_end,net_profit,max_drawdown,win_rate,trade_count\n", buf.String())
	})

	t.Run("unknown strategy yields not found", func(t *testing.T) {
		repo := &mockStrategyRepository{
			findByIDFunc: func(ctx context.Context, id uint) (*entity.Strategy, error) {
				return nil, ErrStrategyNotFound
			},
		}

		uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())
		err := uc.ExportStatisticsCSV(context.Background(), 99, &bytes.Buffer{})

		assert.ErrorIs(t, err, ErrStrategyNotFound)
	})
}

func TestStrategyUsecase_Delete(t *testing.T) {
	t.Run("deletes an existing strategy", func(t *testing.T) {
		var deleted *entity.Strategy
		repo := &mockStrategyRepository{
			findByIDFunc: func(ctx context.Context, id uint) (*entity.Strategy, error) {
				return &entity.Strategy{ID: id}, nil
			},
			deleteFunc: func(ctx context.Context, s *entity.Strategy) error {
				deleted = s
				return nil
			},
		}

		uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())
		err := uc.Delete(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, uint(7), deleted.ID)
	})

	t.Run("unknown strategy yields not found", func(t *testing.T) {
		repo := &mockStrategyRepository{
			findByIDFunc: func(ctx context.Context, id uint) (*entity.Strategy, error) {
				return nil, ErrStrategyNotFound
			},
		}

		uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())
		err := uc.Delete(context.Background(), 99)

		assert.ErrorIs(t, err, ErrStrategyNotFound)
	})
}

func TestStrategyUsecase_List(t *testing.T) {
	repo := &mockStrategyRepository{
		findPageFunc: func(ctx context.Context, page, size int) (*entity.Page, error) {
			assert.Equal(t, 2, page)
			assert.Equal(t, 20, size)
			return &entity.Page{Page: page, Size: size}, nil
		},
	}

	uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())
	p, err := uc.List(context.Background(), 2, 20)

	require.NoError(t, err)
	assert.Equal(t, 2, p.Page)
}

func TestStrategyUsecase_Statistics_RepoError(t *testing.T) {
	boom := errors.New("db down")
	repo := &mockStrategyRepository{
		findByIDFunc: func(ctx context.Context, id uint) (*entity.Strategy, error) {
			return &entity.Strategy{ID: id}, nil
		},
		findStatisticsFunc: func(ctx context.Context, strategyID uint) ([]entity.StatisticRow, error) {
			return nil, boom
		},
	}

	uc := NewStrategyUsecase(repo, happyLookup(), happyLookup())
	_, err := uc.Statistics(context.Background(), 5)

	assert.ErrorIs(t, err, boom)
}
