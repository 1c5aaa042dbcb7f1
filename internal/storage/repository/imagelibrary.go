package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const foreignKeyViolation = "23503"

// AppendImageURLs атомарно дописывает публичные URL в библиотеку пользователя.
//
// Библиотека хранится как append-only строки, поэтому дозапись — это один
// INSERT: одновременные загрузки двух клиентов не перетирают друг друга,
// а порядок внутри одного пакета сохраняется благодаря WITH ORDINALITY.
// Библиотека "создаётся" первой же дозаписью, отдельного шага создания нет.
func (s *Storage) AppendImageURLs(ctx context.Context, userUID string, urls []string) error {
	const op = "storage.AppendImageURLs"

	if len(urls) == 0 {
		return nil
	}

	query := `INSERT INTO image_library_entries (user_uid, url)
			  SELECT $1, u.url
			  FROM unnest($2::text[]) WITH ORDINALITY AS u(url, ord)
			  ORDER BY u.ord;`
	if _, err := s.DB.ExecContext(ctx, query, userUID, urls); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListImageURLs возвращает URL библиотеки пользователя в порядке загрузки.
//
// Возвращает ErrLibraryNotFound, если пользователь ещё ничего не загружал.
func (s *Storage) ListImageURLs(ctx context.Context, userUID string) ([]string, error) {
	const op = "storage.ListImageURLs"

	query := `SELECT url
			  FROM image_library_entries
			  WHERE user_uid = $1
			  ORDER BY id;`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var urls []string
	for rows.Next() {
		var url string
		if err = rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		urls = append(urls, url)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrLibraryNotFound)
	}
	return urls, nil
}
