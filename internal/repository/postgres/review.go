package postgres

import (
	"context"
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository"
)

type reviewRepository struct {
	db DBTX
}

func NewReviewRepository(db DBTX) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `id, user_id, car_id, rental_id, rating, COALESCE(comment, ''), is_approved, review_date, updated_at`

func scanReview(row rowScanner) (*domain.Review, error) {
	rv := &domain.Review{}
	if err := row.Scan(&rv.ID, &rv.UserID, &rv.CarID, &rv.RentalID, &rv.Rating, &rv.Comment, &rv.IsApproved, &rv.ReviewDate, &rv.UpdatedAt); err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *reviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `INSERT INTO reviews (user_id, car_id, rental_id, rating, comment, is_approved, review_date, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now().UTC()
	rv.ReviewDate = now
	rv.UpdatedAt = now

	logger.DatabaseCall("INSERT", "reviews", "userID", rv.UserID, "carID", rv.CarID)
	err := r.db.QueryRowContext(ctx, query, rv.UserID, rv.CarID, rv.RentalID, rv.Rating, nullString(rv.Comment), rv.IsApproved, rv.ReviewDate, rv.UpdatedAt).Scan(&rv.ID)
	logger.DatabaseResult("INSERT", 1, err, "reviewID", rv.ID)
	return mapError(err, nil, domain.Conflict("rental already reviewed"))
}

func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	rv, err := scanReview(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, domain.ErrReviewNotFound, nil)
	}
	return rv, nil
}

func (r *reviewRepository) Update(ctx context.Context, rv *domain.Review) error {
	query := `UPDATE reviews SET rating=$1, comment=$2, is_approved=$3, updated_at=$4 WHERE id=$5`
	rv.UpdatedAt = time.Now().UTC()

	logger.DatabaseCall("UPDATE", "reviews", "reviewID", rv.ID)
	res, err := r.db.ExecContext(ctx, query, rv.Rating, nullString(rv.Comment), rv.IsApproved, rv.UpdatedAt, rv.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "reviewID", rv.ID)
		return err
	}
	n, err := expectAffected(res, domain.ErrReviewNotFound)
	logger.DatabaseResult("UPDATE", n, err, "reviewID", rv.ID)
	return err
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	logger.DatabaseCall("DELETE", "reviews", "reviewID", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err, "reviewID", id)
		return err
	}
	n, err := expectAffected(res, domain.ErrReviewNotFound)
	logger.DatabaseResult("DELETE", n, err, "reviewID", id)
	return err
}

func (r *reviewRepository) ListByCar(ctx context.Context, carID int64, approvedOnly bool) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE car_id = $1`
	if approvedOnly {
		query += ` AND is_approved = TRUE`
	}
	query += ` ORDER BY review_date DESC`
	return r.list(ctx, query, carID)
}

func (r *reviewRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE user_id = $1 ORDER BY review_date DESC`, userID)
}

func (r *reviewRepository) ListPending(ctx context.Context) ([]domain.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE is_approved = FALSE ORDER BY review_date`)
}

// AverageRating averages approved reviews of carID, rounded to two decimals.
// A car without approved reviews rates 0.
func (r *reviewRepository) AverageRating(ctx context.Context, carID int64) (float64, error) {
	query := `SELECT COALESCE(ROUND(AVG(rating)::numeric, 2), 0)::float8 FROM reviews WHERE car_id = $1 AND is_approved = TRUE`

	logger.DatabaseCall("SELECT", "reviews", "carID", carID, "aggregate", "avg")
	var avg float64
	err := r.db.QueryRowContext(ctx, query, carID).Scan(&avg)
	logger.DatabaseResult("SELECT", 1, err, "average", avg)
	return avg, err
}

func (r *reviewRepository) list(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	logger.DatabaseCall("SELECT", "reviews")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *rv)
	}
	logger.DatabaseResult("SELECT", int64(len(reviews)), rows.Err())
	return reviews, rows.Err()
}
