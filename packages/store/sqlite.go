package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/abdul-hamid-achik/respext/packages/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS requests (
	id             TEXT PRIMARY KEY,
	workspace_id   TEXT NOT NULL DEFAULT '',
	name           TEXT NOT NULL DEFAULT '',
	method         TEXT NOT NULL,
	url            TEXT NOT NULL,
	headers        TEXT NOT NULL DEFAULT '[]',
	body           TEXT NOT NULL DEFAULT '',
	authentication TEXT,
	created_at     INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS responses (
	id           TEXT PRIMARY KEY,
	request_id   TEXT NOT NULL,
	status       INTEGER NOT NULL,
	status_text  TEXT NOT NULL DEFAULT '',
	content_type TEXT NOT NULL DEFAULT '',
	url          TEXT NOT NULL DEFAULT '',
	headers      TEXT NOT NULL DEFAULT '[]',
	elapsed      INTEGER NOT NULL DEFAULT 0,
	size         INTEGER NOT NULL DEFAULT 0,
	body_path    TEXT NOT NULL DEFAULT '',
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS responses_request_created ON responses (request_id, created_at);
`

const responseColumns = `id, request_id, status, status_text, content_type, url, headers, elapsed, size, body_path, created_at, updated_at`

const requestColumns = `id, workspace_id, name, method, url, headers, body, authentication, created_at, updated_at`

// SQLiteStore is a Store backed by a SQLite database.
type SQLiteStore struct {
	db           *sql.DB
	dataSource   string
	queryTimeout time.Duration
	now          func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database named by
// connectionString and applies the schema. Supported formats:
//   - sqlite://path/to/respext.db
//   - sqlite:./respext.db
//   - path/to/respext.db
//   - :memory:
func NewSQLiteStore(connectionString string) (*SQLiteStore, error) {
	dsn, err := parseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a :memory: database exists per connection
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{
		db:           db,
		dataSource:   dsn,
		queryTimeout: 30 * time.Second,
		now:          time.Now,
	}, nil
}

// parseConnectionString strips the sqlite scheme from a connection string.
func parseConnectionString(connStr string) (string, error) {
	connStr = strings.TrimSpace(connStr)

	switch {
	case connStr == "":
		return "", fmt.Errorf("empty database connection string")
	case strings.HasPrefix(connStr, "sqlite://"):
		return strings.TrimPrefix(connStr, "sqlite://"), nil
	case strings.HasPrefix(connStr, "sqlite:"):
		return strings.TrimPrefix(connStr, "sqlite:"), nil
	case strings.Contains(connStr, "://"):
		scheme, _, _ := strings.Cut(connStr, "://")
		return "", fmt.Errorf("unsupported database scheme: %s", scheme)
	default:
		return connStr, nil
	}
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) GetRequest(ctx context.Context, id string) (*model.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request %s: %w", id, err)
	}
	return req, nil
}

func (s *SQLiteStore) ListRequests(ctx context.Context) ([]*model.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT `+requestColumns+` FROM requests ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	list := make([]*model.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		list = append(list, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return list, nil
}

func (s *SQLiteStore) SaveRequest(ctx context.Context, req *model.Request) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	stampRequest(req, s.now())

	headers, err := marshalHeaders(req.Headers)
	if err != nil {
		return err
	}
	var auth sql.NullString
	if req.Authentication != nil {
		b, err := json.Marshal(req.Authentication)
		if err != nil {
			return fmt.Errorf("failed to encode authentication: %w", err)
		}
		auth = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO requests (`+requestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			workspace_id = excluded.workspace_id,
			name = excluded.name,
			method = excluded.method,
			url = excluded.url,
			headers = excluded.headers,
			body = excluded.body,
			authentication = excluded.authentication,
			updated_at = excluded.updated_at`,
		req.ID, req.WorkspaceID, req.Name, req.Method, req.URL, headers, req.Body, auth,
		req.CreatedAt.UnixNano(), req.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save request %s: %w", req.ID, err)
	}
	return nil
}

func (s *SQLiteStore) FindResponses(ctx context.Context, requestID string) ([]*model.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+responseColumns+` FROM responses WHERE request_id = ? ORDER BY created_at DESC, rowid DESC`,
		requestID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	list := make([]*model.Response, 0)
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		list = append(list, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return list, nil
}

func (s *SQLiteStore) SaveResponse(ctx context.Context, resp *model.Response) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	stampResponse(resp, s.now())

	headers, err := marshalHeaders(resp.Headers)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO responses (`+responseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			status_text = excluded.status_text,
			content_type = excluded.content_type,
			url = excluded.url,
			headers = excluded.headers,
			elapsed = excluded.elapsed,
			size = excluded.size,
			body_path = excluded.body_path,
			updated_at = excluded.updated_at`,
		resp.ID, resp.RequestID, resp.Status, resp.StatusText, resp.ContentType, resp.URL, headers,
		resp.Elapsed, resp.Size, resp.BodyPath, resp.CreatedAt.UnixNano(), resp.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save response %s: %w", resp.ID, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteResponses(ctx context.Context, requestID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM responses WHERE request_id = ?`, requestID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete responses of %s: %w", requestID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (*model.Request, error) {
	var (
		req                  model.Request
		headers              string
		auth                 sql.NullString
		createdAt, updatedAt int64
	)
	if err := row.Scan(&req.ID, &req.WorkspaceID, &req.Name, &req.Method, &req.URL,
		&headers, &req.Body, &auth, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(headers), &req.Headers); err != nil {
		return nil, fmt.Errorf("invalid headers of request %s: %w", req.ID, err)
	}
	if auth.Valid && auth.String != "" {
		req.Authentication = &model.Authentication{}
		if err := json.Unmarshal([]byte(auth.String), req.Authentication); err != nil {
			return nil, fmt.Errorf("invalid authentication of request %s: %w", req.ID, err)
		}
	}
	req.CreatedAt = time.Unix(0, createdAt)
	req.UpdatedAt = time.Unix(0, updatedAt)
	return &req, nil
}

func scanResponse(row scanner) (*model.Response, error) {
	var (
		resp                 model.Response
		headers              string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&resp.ID, &resp.RequestID, &resp.Status, &resp.StatusText, &resp.ContentType,
		&resp.URL, &headers, &resp.Elapsed, &resp.Size, &resp.BodyPath, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(headers), &resp.Headers); err != nil {
		return nil, fmt.Errorf("invalid headers of response %s: %w", resp.ID, err)
	}
	resp.CreatedAt = time.Unix(0, createdAt)
	resp.UpdatedAt = time.Unix(0, updatedAt)
	return &resp, nil
}

func marshalHeaders(headers []model.Header) (string, error) {
	if headers == nil {
		headers = []model.Header{}
	}
	b, err := json.Marshal(headers)
	if err != nil {
		return "", fmt.Errorf("failed to encode headers: %w", err)
	}
	return string(b), nil
}
