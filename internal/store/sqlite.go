package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY, -- UUID
        email TEXT UNIQUE NOT NULL,
        display_name TEXT NOT NULL DEFAULT 'User',
        password_hash TEXT NOT NULL,
        email_confirmed BOOLEAN DEFAULT TRUE,
        monthly_income REAL,
        credit_score INTEGER,
        employment_type TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS products (
        id TEXT PRIMARY KEY, -- UUID
        name TEXT NOT NULL,
        bank TEXT NOT NULL,
        type TEXT NOT NULL CHECK (type IN ('personal', 'education', 'home', 'vehicle', 'credit_line', 'debt_consolidation')),
        rate_apr REAL NOT NULL,
        min_income REAL NOT NULL DEFAULT 0,
        min_credit_score INTEGER NOT NULL DEFAULT 0,
        tenure_min_months INTEGER NOT NULL,
        tenure_max_months INTEGER NOT NULL,
        processing_fee_pct REAL NOT NULL DEFAULT 0,
        prepayment_allowed BOOLEAN NOT NULL DEFAULT TRUE,
        disbursal_speed TEXT NOT NULL DEFAULT 'standard',
        docs_level TEXT NOT NULL CHECK (docs_level IN ('minimal', 'standard', 'high')),
        summary TEXT,
        terms_json TEXT,
        faq_json TEXT,
        position INTEGER NOT NULL DEFAULT 0 -- Catalog insertion order
    );

    CREATE TABLE IF NOT EXISTS chat_sessions (
        id TEXT PRIMARY KEY, -- UUID
        user_id TEXT NOT NULL,
        product_id TEXT NOT NULL,
        messages TEXT NOT NULL, -- JSON-encoded turn array
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        UNIQUE (user_id, product_id),
        FOREIGN KEY (user_id) REFERENCES users (id),
        FOREIGN KEY (product_id) REFERENCES products (id)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods

// CreateUser stores the credential record. Display name and profile fields
// arrive later through UpsertUserIdentity and UpdateUserProfile.
func (s *SQLiteStore) CreateUser(email, passwordHash string) (*User, error) {
	userID := uuid.NewString()
	_, err := s.db.Exec(
		"INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)",
		userID, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return s.GetUserByID(userID)
}

func (s *SQLiteStore) GetUserByEmail(email string) (*User, error) {
	return s.queryUser("SELECT id, email, display_name, password_hash, email_confirmed, monthly_income, credit_score, employment_type, created_at FROM users WHERE email = ?", email)
}

func (s *SQLiteStore) GetUserByID(id string) (*User, error) {
	return s.queryUser("SELECT id, email, display_name, password_hash, email_confirmed, monthly_income, credit_score, employment_type, created_at FROM users WHERE id = ?", id)
}

func (s *SQLiteStore) queryUser(query string, arg any) (*User, error) {
	var user User
	var income sql.NullFloat64
	var score sql.NullInt64
	var employment sql.NullString
	err := s.db.QueryRow(query, arg).Scan(
		&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash,
		&user.EmailConfirmed, &income, &score, &employment, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if income.Valid {
		user.MonthlyIncome = &income.Float64
	}
	if score.Valid {
		sc := int(score.Int64)
		user.CreditScore = &sc
	}
	if employment.Valid {
		user.EmploymentType = &employment.String
	}
	return &user, nil
}

// UpsertUserIdentity syncs email and display name for an existing user, or
// creates the row if it is somehow missing. Used by the post-signup sync.
func (s *SQLiteStore) UpsertUserIdentity(userID, email, displayName string) error {
	_, err := s.db.Exec(`
        INSERT INTO users (id, email, display_name, password_hash) VALUES (?, ?, ?, '')
        ON CONFLICT (id) DO UPDATE SET email = excluded.email, display_name = excluded.display_name`,
		userID, email, displayName)
	if err != nil {
		return fmt.Errorf("failed to upsert user identity: %w", err)
	}
	return nil
}

// SetEmailConfirmed flips the verification flag. New accounts start
// confirmed; a deployment that verifies addresses clears the flag at signup
// and sets it from its confirmation link handler.
func (s *SQLiteStore) SetEmailConfirmed(userID string, confirmed bool) error {
	res, err := s.db.Exec("UPDATE users SET email_confirmed = ? WHERE id = ?", confirmed, userID)
	if err != nil {
		return fmt.Errorf("failed to update email confirmation: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("user not found, confirmation not updated")
	}
	return nil
}

func (s *SQLiteStore) UpdateUserProfile(userID string, monthlyIncome float64, creditScore int, employmentType string) error {
	stmt, err := s.db.Prepare("UPDATE users SET monthly_income = ?, credit_score = ?, employment_type = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare profile update: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(monthlyIncome, creditScore, employmentType, userID)
	if err != nil {
		return fmt.Errorf("failed to execute profile update: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("user not found, profile not updated")
	}
	return nil
}

// Product methods

const productColumns = "id, name, bank, type, rate_apr, min_income, min_credit_score, tenure_min_months, tenure_max_months, processing_fee_pct, prepayment_allowed, disbursal_speed, docs_level, summary, terms_json, faq_json"

func scanProduct(scan func(dest ...any) error) (*Product, error) {
	var p Product
	var summary, terms, faq sql.NullString
	err := scan(&p.ID, &p.Name, &p.Bank, &p.Type, &p.RateAPR, &p.MinIncome,
		&p.MinCreditScore, &p.TenureMinMonths, &p.TenureMaxMonths,
		&p.ProcessingFeePct, &p.PrepaymentAllowed, &p.DisbursalSpeed,
		&p.DocsLevel, &summary, &terms, &faq)
	if err != nil {
		return nil, err
	}
	p.Summary = summary.String
	p.TermsJSON = terms.String
	p.FAQJSON = faq.String
	return &p, nil
}

// GetProducts returns the full catalog in insertion order.
func (s *SQLiteStore) GetProducts() ([]Product, error) {
	rows, err := s.db.Query("SELECT " + productColumns + " FROM products ORDER BY position ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *p)
	}
	return products, nil
}

func (s *SQLiteStore) GetProductByID(id string) (*Product, error) {
	p, err := scanProduct(s.db.QueryRow("SELECT "+productColumns+" FROM products WHERE id = ?", id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) CountProducts() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) insertProduct(p *Product, position int) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	stmt, err := s.db.Prepare(`INSERT INTO products (id, name, bank, type, rate_apr, min_income, min_credit_score,
        tenure_min_months, tenure_max_months, processing_fee_pct, prepayment_allowed, disbursal_speed,
        docs_level, summary, terms_json, faq_json, position)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare product insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(p.ID, p.Name, p.Bank, p.Type, p.RateAPR, p.MinIncome, p.MinCreditScore,
		p.TenureMinMonths, p.TenureMaxMonths, p.ProcessingFeePct, p.PrepaymentAllowed,
		p.DisbursalSpeed, p.DocsLevel, nullable(p.Summary), nullable(p.TermsJSON), nullable(p.FAQJSON), position)
	if err != nil {
		return fmt.Errorf("failed to execute product insert: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Chat session methods

// GetChatSession returns the session for the (user, product) key, or nil if
// no conversation exists yet.
func (s *SQLiteStore) GetChatSession(userID, productID string) (*ChatSession, error) {
	var session ChatSession
	var messagesJSON string
	err := s.db.QueryRow(
		"SELECT id, user_id, product_id, messages, created_at, updated_at FROM chat_sessions WHERE user_id = ? AND product_id = ?",
		userID, productID).Scan(&session.ID, &session.UserID, &session.ProductID, &messagesJSON, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No session yet
		}
		return nil, fmt.Errorf("failed to query chat session: %w", err)
	}

	if err := json.Unmarshal([]byte(messagesJSON), &session.Turns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat turns: %w", err)
	}
	return &session, nil
}

// AppendChatTurns concatenates turns onto the session for the key, creating
// the session lazily on first use. Existing turns are never rewritten.
func (s *SQLiteStore) AppendChatTurns(userID, productID string, turns []Turn) (*ChatSession, error) {
	existing, err := s.GetChatSession(userID, productID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if existing == nil {
		messagesJSON, err := json.Marshal(turns)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal chat turns: %w", err)
		}
		session := &ChatSession{
			ID:        uuid.NewString(),
			UserID:    userID,
			ProductID: productID,
			Turns:     turns,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err = s.db.Exec(
			"INSERT INTO chat_sessions (id, user_id, product_id, messages, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			session.ID, userID, productID, string(messagesJSON), now, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert chat session: %w", err)
		}
		return session, nil
	}

	existing.Turns = append(existing.Turns, turns...)
	messagesJSON, err := json.Marshal(existing.Turns)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat turns: %w", err)
	}
	_, err = s.db.Exec(
		"UPDATE chat_sessions SET messages = ?, updated_at = ? WHERE id = ?",
		string(messagesJSON), now, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update chat session: %w", err)
	}
	existing.UpdatedAt = now
	return existing, nil
}
