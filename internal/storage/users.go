package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brainxcel/lms-backend/internal/models"
)

const userColumns = `uid, email, full_name, password_hash, role, avatar_id, avatar_url,
		subscription_id, subscription_status, subscription_expires_on,
		reset_token_hash, reset_token_expiry, refresh_token, created_at, updated_at`

// CreateUser сохраняет нового пользователя и возвращает его UID.
// Дубликат email возвращает ErrDuplicate: уникальность обеспечивает индекс.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, full_name, password_hash, role, avatar_id, avatar_url,
			      subscription_status)
			  VALUES (lower($1), $2, $3, $4, $5, $6, $7)
			  RETURNING uid;`
	err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.FullName, user.PasswordHash, string(user.Role),
		user.AvatarID, user.AvatarURL, string(user.Subscription.Status)).Scan(&newUID)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUser возвращает пользователя по его UID вместе со списком купленных курсов.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	return s.getUser(ctx, op, query, userUID)
}

// GetUserByEmail возвращает пользователя по email без учёта регистра.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	return s.getUser(ctx, op, query, email)
}

// GetUserByResetToken возвращает пользователя, у которого сохранён данный
// хеш токена восстановления и срок его действия ещё не истёк.
func (s *Storage) GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	const op = "storage.GetUserByResetToken"
	query := `SELECT ` + userColumns + ` FROM users
			  WHERE reset_token_hash = $1 AND reset_token_expiry > $2`
	return s.getUser(ctx, op, query, tokenHash, now)
}

func (s *Storage) getUser(ctx context.Context, op, query string, args ...any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u := &models.User{}
	var (
		role, status                        string
		avatarID, avatarURL, subscriptionID sql.NullString
		expiresOn, resetExpiry              sql.NullTime
		resetHash, refreshToken             sql.NullString
	)
	row := s.DB.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&u.UID, &u.Email, &u.FullName, &u.PasswordHash, &role,
		&avatarID, &avatarURL, &subscriptionID, &status, &expiresOn,
		&resetHash, &resetExpiry, &refreshToken, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	parsedRole, err := models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	parsedStatus, err := models.ParseSubscriptionStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.Role = parsedRole
	u.AvatarID = avatarID.String
	u.AvatarURL = avatarURL.String
	u.Subscription = models.Subscription{
		ID:     subscriptionID.String,
		Status: parsedStatus,
	}
	if expiresOn.Valid {
		u.Subscription.ExpiresOn = &expiresOn.Time
	}
	if resetHash.Valid {
		u.ResetTokenHash = &resetHash.String
	}
	if resetExpiry.Valid {
		u.ResetTokenExpiry = &resetExpiry.Time
	}
	if refreshToken.Valid {
		u.RefreshToken = &refreshToken.String
	}

	courses, err := s.listPurchasedCourses(ctx, u.UID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.PurchasedCourses = courses
	return u, nil
}

func (s *Storage) listPurchasedCourses(ctx context.Context, userUID string) ([]string, error) {
	query := `SELECT course_id FROM purchased_courses WHERE user_uid = $1 ORDER BY purchased_at`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []string
	for rows.Next() {
		var courseID string
		if err := rows.Scan(&courseID); err != nil {
			return nil, err
		}
		result = append(result, courseID)
	}
	return result, rows.Err()
}

// UpdateRefreshToken перезаписывает единственный активный refresh-токен
// пользователя. nil очищает токен (выход из системы). Семантика
// last-writer-wins: предыдущий токен после перезаписи непригоден.
func (s *Storage) UpdateRefreshToken(ctx context.Context, userUID string, token *string) error {
	const op = "storage.UpdateRefreshToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET refresh_token = $1, updated_at = now() WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, token, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return checkAffected(op, res)
}

// UpdatePassword сохраняет новый хеш пароля пользователя.
func (s *Storage) UpdatePassword(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.UpdatePassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET password_hash = $1, updated_at = now() WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, passwordHash, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return checkAffected(op, res)
}

// SetResetToken сохраняет хеш одноразового токена восстановления и срок
// его действия.
func (s *Storage) SetResetToken(ctx context.Context, userUID, tokenHash string, expiry time.Time) error {
	const op = "storage.SetResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET reset_token_hash = $1, reset_token_expiry = $2, updated_at = now()
			  WHERE uid = $3`
	res, err := s.DB.ExecContext(ctx, query, tokenHash, expiry, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return checkAffected(op, res)
}

// ClearResetToken очищает хеш токена восстановления и срок его действия.
func (s *Storage) ClearResetToken(ctx context.Context, userUID string) error {
	const op = "storage.ClearResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET reset_token_hash = NULL, reset_token_expiry = NULL, updated_at = now()
			  WHERE uid = $1`
	res, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return checkAffected(op, res)
}

// ResetPassword одним запросом устанавливает новый хеш пароля и очищает
// токен восстановления — токен одноразовый, повтор невозможен.
func (s *Storage) ResetPassword(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.ResetPassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_hash = $1, reset_token_hash = NULL, reset_token_expiry = NULL,
			      updated_at = now()
			  WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, passwordHash, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return checkAffected(op, res)
}

// UpdateSubscription перезаписывает встроенную запись о подписке пользователя.
func (s *Storage) UpdateSubscription(ctx context.Context, userUID string, sub models.Subscription) error {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var subID *string
	if sub.ID != "" {
		subID = &sub.ID
	}
	query := `UPDATE users
			  SET subscription_id = $1, subscription_status = $2, subscription_expires_on = $3,
			      updated_at = now()
			  WHERE uid = $4`
	res, err := s.DB.ExecContext(ctx, query, subID, string(sub.Status), sub.ExpiresOn, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return checkAffected(op, res)
}

// AddPurchasedCourse добавляет курс в список купленных. Повторная вставка
// того же курса не изменяет данные (ON CONFLICT DO NOTHING).
func (s *Storage) AddPurchasedCourse(ctx context.Context, userUID, courseID string) error {
	const op = "storage.AddPurchasedCourse"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO purchased_courses (user_uid, course_id)
			  VALUES ($1, $2)
			  ON CONFLICT (user_uid, course_id) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, userUID, courseID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func checkAffected(op string, res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
