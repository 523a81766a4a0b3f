package conversation

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/duologue/internal/scoring"
	"github.com/danielpatrickdp/duologue/internal/trigger"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	conversation_id  TEXT PRIMARY KEY,
	goal             TEXT NOT NULL,
	mode             TEXT NOT NULL,
	created_at       TEXT NOT NULL,
	ended_at         TEXT,
	end_reason       TEXT
);

CREATE TABLE IF NOT EXISTS turns (
	turn_id          TEXT PRIMARY KEY,
	conversation_id  TEXT NOT NULL,
	idx              INTEGER NOT NULL,
	role             TEXT NOT NULL,
	text             TEXT NOT NULL,
	coherence        REAL NOT NULL,
	topic_similarity REAL NOT NULL,
	uncertainty      REAL NOT NULL,
	reasoning_depth  REAL NOT NULL,
	fired            TEXT,
	directive        TEXT,
	created_at       TEXT NOT NULL,
	FOREIGN KEY (conversation_id) REFERENCES conversations(conversation_id)
);

CREATE INDEX IF NOT EXISTS idx_turns_conversation
ON turns(conversation_id, idx);

CREATE TABLE IF NOT EXISTS interventions (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id  TEXT NOT NULL,
	turn_idx         INTEGER NOT NULL,
	category         TEXT NOT NULL,
	directive        TEXT NOT NULL,
	created_at       TEXT NOT NULL,
	FOREIGN KEY (conversation_id) REFERENCES conversations(conversation_id)
);
`

// #endregion schema

// #region store-struct
// Store persists conversation transcripts in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by inspection tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region conversation-row

// Row summarizes one stored conversation.
type Row struct {
	ConversationID string
	Goal           string
	Mode           string
	CreatedAt      time.Time
	EndedAt        time.Time // zero while the conversation is still open
	EndReason      string
}

// #endregion conversation-row

// #region create-conversation
// CreateConversation registers a new conversation and returns its ID.
func (s *Store) CreateConversation(goal, mode string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO conversations (conversation_id, goal, mode, created_at)
		 VALUES (?, ?, ?, ?)`,
		id, goal, mode, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert conversation: %w", err)
	}
	return id, nil
}

// #endregion create-conversation

// #region append-turn
// AppendTurn persists one finished turn with its metrics. When the turn
// generated a directive, an interventions row is written in the same
// transaction.
func (s *Store) AppendTurn(conversationID string, rec TurnRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO turns
		 (turn_id, conversation_id, idx, role, text,
		  coherence, topic_similarity, uncertainty, reasoning_depth,
		  fired, directive, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, conversationID, rec.Index, string(rec.Role), rec.Text,
		rec.Snapshot.Coherence, rec.Snapshot.TopicSimilarity,
		rec.Snapshot.Uncertainty, rec.Snapshot.ReasoningDepth,
		nullIfEmpty(joinCategories(rec.Fired)),
		nullIfEmpty(rec.DirectiveText),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}

	if cat := rec.DirectiveCategory(); cat != "" {
		_, err = tx.Exec(
			`INSERT INTO interventions (conversation_id, turn_idx, category, directive, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			conversationID, rec.Index, string(cat), rec.DirectiveText,
			rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert intervention: %w", err)
		}
	}

	return tx.Commit()
}

// #endregion append-turn

// #region finish
// Finish marks a conversation ended with the given reason.
func (s *Store) Finish(conversationID, reason string) error {
	_, err := s.db.Exec(
		`UPDATE conversations SET ended_at = ?, end_reason = ? WHERE conversation_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), reason, conversationID,
	)
	if err != nil {
		return fmt.Errorf("finish conversation: %w", err)
	}
	return nil
}

// #endregion finish

// #region conversations
// Conversations returns the most recent conversations, newest first.
func (s *Store) Conversations(limit int) ([]Row, error) {
	rows, err := s.db.Query(
		`SELECT conversation_id, goal, mode, created_at, ended_at, end_reason
		 FROM conversations ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var createdStr string
		var endedStr, reason sql.NullString
		if err := rows.Scan(&r.ConversationID, &r.Goal, &r.Mode, &createdStr, &endedStr, &reason); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		if endedStr.Valid {
			r.EndedAt, _ = time.Parse(time.RFC3339Nano, endedStr.String)
		}
		if reason.Valid {
			r.EndReason = reason.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Conversation returns one conversation's summary row.
func (s *Store) Conversation(conversationID string) (Row, error) {
	var r Row
	var createdStr string
	var endedStr, reason sql.NullString
	err := s.db.QueryRow(
		`SELECT conversation_id, goal, mode, created_at, ended_at, end_reason
		 FROM conversations WHERE conversation_id = ?`, conversationID,
	).Scan(&r.ConversationID, &r.Goal, &r.Mode, &createdStr, &endedStr, &reason)
	if err != nil {
		return Row{}, fmt.Errorf("load conversation %s: %w", conversationID, err)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	if endedStr.Valid {
		r.EndedAt, _ = time.Parse(time.RFC3339Nano, endedStr.String)
	}
	if reason.Valid {
		r.EndReason = reason.String
	}
	return r, nil
}

// #endregion conversations

// #region turns
// Turns returns every recorded turn for a conversation, ordered by index.
func (s *Store) Turns(conversationID string) ([]TurnRecord, error) {
	rows, err := s.db.Query(
		`SELECT turn_id, idx, role, text,
		        coherence, topic_similarity, uncertainty, reasoning_depth,
		        fired, directive, created_at
		 FROM turns WHERE conversation_id = ? ORDER BY idx ASC`, conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var out []TurnRecord
	for rows.Next() {
		var rec TurnRecord
		var role, createdStr string
		var fired, directive sql.NullString
		var coh, topic, unc, depth float64
		if err := rows.Scan(&rec.ID, &rec.Index, &role, &rec.Text,
			&coh, &topic, &unc, &depth, &fired, &directive, &createdStr); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		rec.Role = Role(role)
		rec.Snapshot = scoring.Snapshot{
			Coherence:       float32(coh),
			TopicSimilarity: float32(topic),
			Uncertainty:     float32(unc),
			ReasoningDepth:  float32(depth),
		}
		if fired.Valid {
			rec.Fired = splitCategories(fired.String)
		}
		if directive.Valid {
			rec.DirectiveText = directive.String
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// #endregion turns

// #region interventions

// Intervention is one logged directive row.
type Intervention struct {
	TurnIndex int
	Category  trigger.Category
	Directive string
}

// Interventions returns every logged intervention for a conversation.
func (s *Store) Interventions(conversationID string) ([]Intervention, error) {
	rows, err := s.db.Query(
		`SELECT turn_idx, category, directive
		 FROM interventions WHERE conversation_id = ? ORDER BY turn_idx ASC`, conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list interventions: %w", err)
	}
	defer rows.Close()

	var out []Intervention
	for rows.Next() {
		var iv Intervention
		var cat string
		if err := rows.Scan(&iv.TurnIndex, &cat, &iv.Directive); err != nil {
			return nil, fmt.Errorf("scan intervention: %w", err)
		}
		iv.Category = trigger.Category(cat)
		out = append(out, iv)
	}
	return out, rows.Err()
}

// #endregion interventions

// #region helpers
func joinCategories(cats []trigger.Category) string {
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}

func splitCategories(s string) []trigger.Category {
	var out []trigger.Category
	for _, p := range strings.Split(s, ",") {
		if p != "" {
			out = append(out, trigger.Category(p))
		}
	}
	return out
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
