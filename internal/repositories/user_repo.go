package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"campusBack/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO users (student_number, name, email, password, course, year_level, role, created_at) VALUES (?,?,?,?,?,?,?,NOW())`,
		user.StudentNumber, user.Name, user.Email, user.Password, user.Course, user.YearLevel, user.Role)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return models.User{}, models.ErrDuplicateEmail
		}
		return models.User{}, err
	}
	id, _ := res.LastInsertId()
	user.ID = int(id)
	user.Password = ""
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.DB.QueryRowContext(ctx, `SELECT id, student_number, name, email, password, course, year_level, role, created_at, updated_at FROM users WHERE email = ?`, email).
		Scan(&user.ID, &user.StudentNumber, &user.Name, &user.Email, &user.Password, &user.Course, &user.YearLevel, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	return user, err
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	var user models.User
	err := r.DB.QueryRowContext(ctx, `SELECT id, student_number, name, email, course, year_level, role, created_at, updated_at FROM users WHERE id = ?`, id).
		Scan(&user.ID, &user.StudentNumber, &user.Name, &user.Email, &user.Course, &user.YearLevel, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	return user, err
}

func (r *UserRepository) CreateSession(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO sessions (user_id, refresh_token, expires_at) VALUES (?,?,?) ON DUPLICATE KEY UPDATE refresh_token = VALUES(refresh_token), expires_at = VALUES(expires_at)`, userID, token, expiresAt)
	return err
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, token string) (models.Session, error) {
	var s models.Session
	err := r.DB.QueryRowContext(ctx, `SELECT refresh_token, expires_at FROM sessions WHERE refresh_token = ?`, token).Scan(&s.RefreshToken, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, nil
	}
	return s, err
}

func (r *UserRepository) GetUserBySessionToken(ctx context.Context, token string) (models.User, error) {
	var user models.User
	err := r.DB.QueryRowContext(ctx, `
SELECT u.id, u.student_number, u.name, u.email, u.course, u.year_level, u.role, u.created_at, u.updated_at
FROM users u JOIN sessions s ON s.user_id = u.id
WHERE s.refresh_token = ? AND s.expires_at > NOW()`, token).
		Scan(&user.ID, &user.StudentNumber, &user.Name, &user.Email, &user.Course, &user.YearLevel, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	return user, err
}

func (r *UserRepository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = ?`, token)
	return err
}
