package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var carCols = []string{"id", "agent_id", "brand", "model", "year", "color", "license_plate", "fuel_type", "transmission", "seats", "price_per_day_cents", "guarantee_price_cents", "category", "images", "is_available", "average_rating", "created_at", "updated_at"}

func TestCarRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewCarRepository(db)
	ctx := context.Background()

	car := &domain.Car{
		AgentID: 4, Brand: "Toyota", Model: "Corolla", Year: 2022, Color: "White",
		LicensePlate: "123-TUN-456", FuelType: "Petrol", Transmission: "Manual", Seats: 5,
		PricePerDay: 10000, GuaranteePrice: 5000, Category: "Sedan",
		Images: []string{"cars/a.jpg"}, IsAvailable: true,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO cars").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

		err := repo.Create(ctx, car)
		assert.NoError(t, err)
		assert.Equal(t, int64(11), car.ID)
	})

	t.Run("DuplicatePlate", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO cars").
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

		err := repo.Create(ctx, car)
		assert.ErrorIs(t, err, domain.ErrLicensePlateTaken)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	})
}

func TestCarRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewCarRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(carCols).
			AddRow(11, 4, "Toyota", "Corolla", 2022, "White", "123-TUN-456", "Petrol", "Manual", 5, 10000, 5000, "Sedan", "{cars/a.jpg,cars/b.jpg}", true, "4.50", time.Now(), time.Now())
		mock.ExpectQuery("SELECT (.+) FROM cars WHERE id = \\$1").
			WithArgs(int64(11)).
			WillReturnRows(rows)

		car, err := repo.GetByID(ctx, 11)
		require.NoError(t, err)
		assert.Equal(t, "Toyota", car.Brand)
		assert.Equal(t, domain.Money(10000), car.PricePerDay)
		assert.Equal(t, []string{"cars/a.jpg", "cars/b.jpg"}, car.Images)
		assert.InDelta(t, 4.5, car.AverageRating, 0.001)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM cars WHERE id = \\$1").
			WithArgs(int64(12)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 12)
		assert.ErrorIs(t, err, domain.ErrCarNotFound)
	})
}

func TestCarRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewCarRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM cars WHERE is_available = TRUE AND category = \\$1 AND price_per_day_cents <= \\$2 AND \\(brand ILIKE \\$3 OR model ILIKE \\$3\\) ORDER BY created_at DESC").
		WithArgs("SUV", int64(20000), "%kia%").
		WillReturnRows(sqlmock.NewRows(carCols))

	cars, err := repo.List(context.Background(), domain.CarFilter{Category: "SUV", MaxPrice: 20000, Search: "kia"})
	assert.NoError(t, err)
	assert.Empty(t, cars)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarRepository_SetAvailability(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewCarRepository(db)

	mock.ExpectExec("UPDATE cars SET is_available").
		WithArgs(true, sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.SetAvailability(context.Background(), 3, true))

	mock.ExpectExec("UPDATE cars SET is_available").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.SetAvailability(context.Background(), 4, true), domain.ErrCarNotFound)
}
