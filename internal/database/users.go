package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, restaurant_id, full_name, email, hashed_password, pin, role, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.RestaurantID, &u.FullName, &u.Email, &u.HashedPassword, &u.Pin, &u.Role, &u.CreatedAt)
	return u, err
}

const getUserByEmail = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByEmail, email))
}

const getUserByID = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByID, id))
}

const listUsersByRestaurant = `
SELECT ` + userColumns + `
FROM users
WHERE restaurant_id = $1
ORDER BY full_name
`

// ListUsersByRestaurant backs PIN login: PINs are hashed, so the caller
// compares against each staff member of the restaurant.
func (q *Queries) ListUsersByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsersByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

const getRestaurant = `
SELECT id, name, timezone, created_at
FROM restaurants
WHERE id = $1
`

func (q *Queries) GetRestaurant(ctx context.Context, id uuid.UUID) (Restaurant, error) {
	var r Restaurant
	err := q.db.QueryRow(ctx, getRestaurant, id).Scan(&r.ID, &r.Name, &r.Timezone, &r.CreatedAt)
	return r, err
}
