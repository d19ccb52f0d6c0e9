package repository

import (
	"context"
	"errors"
	"time"

	"parking-lot-manager/internal/domain/user"
	"parking-lot-manager/internal/infra"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var userColumns = []string{"id", "name", "email", "phone", "password_hash", "is_admin", "created_at", "updated_at"}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) (int64, error) {
	q := psql.Insert("users").
		Columns("name", "email", "phone", "password_hash", "is_admin", "created_at", "updated_at").
		Values(u.Name().Value(), u.Email().Value(), u.Phone().Value(), u.PasswordHash(), u.IsAdmin(), u.CreatedAt(), u.UpdatedAt()).
		Suffix("RETURNING id")

	var id int64
	if err := queryRow(ctx, r.db, q).Scan(&id); err != nil {
		return 0, infra.WrapRepoErr("failed to create user", err)
	}
	return id, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

func (r *UserRepository) FindByName(ctx context.Context, name string) (*user.User, error) {
	return r.findOne(ctx, squirrel.Eq{"name": name})
}

func (r *UserRepository) findOne(ctx context.Context, where squirrel.Sqlizer) (*user.User, error) {
	q := psql.Select(userColumns...).From("users").Where(where)
	u, err := scanUser(queryRow(ctx, r.db, q))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user", err)
	}
	return u, nil
}

func (r *UserRepository) ExistsAdmin(ctx context.Context) (bool, error) {
	q := psql.Select("EXISTS (SELECT 1 FROM users WHERE is_admin)")
	var exists bool
	if err := queryRow(ctx, r.db, q).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check admin", err)
	}
	return exists, nil
}

func (r *UserRepository) ListNonAdmin(ctx context.Context) ([]*user.User, error) {
	q := psql.Select(userColumns...).From("users").Where("NOT is_admin").OrderBy("id")
	rows, err := query(ctx, r.db, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list users", err)
	}
	users, err := collect(rows, scanUser)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan users", err)
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := exec(ctx, r.db, psql.Delete("users").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return infra.WrapRepoErr("failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFound("user not found")
	}
	return nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		id                       int64
		name, email, phone, hash string
		isAdmin                  bool
		createdAt, updatedAt     time.Time
	)
	if err := row.Scan(&id, &name, &email, &phone, &hash, &isAdmin, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	n, err := user.NewName(name)
	if err != nil {
		return nil, err
	}
	e, err := user.NewEmail(email)
	if err != nil {
		return nil, err
	}
	p, err := user.NewPhone(phone)
	if err != nil {
		return nil, err
	}
	return user.ReconstructUser(id, n, e, p, hash, isAdmin, createdAt.UTC(), updatedAt.UTC()), nil
}
